// Package postgres keeps the transaction document in a single Postgres row,
// versioned by the SHA-256 of its content.
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
	"viaqris/internal/sqlinline"
)

// Store implements domain.TransactionRepository on top of an audit-marked
// SQL executor.
type Store struct {
	sql  infra.SQLExecutor
	name string
}

func NewStore(sql infra.SQLExecutor, document string) *Store {
	if document == "" {
		document = "data.json"
	}
	return &Store{sql: sql, name: document}
}

func (s *Store) ReadAll(ctx context.Context) (*domain.Snapshot, error) {
	var content, version string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectDocument, s.name).Scan(&content, &version); err != nil {
		if infra.IsNoRows(err) {
			return &domain.Snapshot{Entries: domain.Entries{}}, nil
		}
		return nil, fmt.Errorf("%w: postgres read: %v", domain.ErrRemoteUnavailable, err)
	}
	entries := domain.Entries{}
	if err := json.Unmarshal([]byte(content), &entries); err != nil {
		return nil, fmt.Errorf("postgres read: parse document: %w", err)
	}
	return &domain.Snapshot{Entries: entries, Version: version}, nil
}

func (s *Store) Write(ctx context.Context, entries domain.Entries, version, message string) (*domain.WriteResult, error) {
	if entries == nil {
		entries = domain.Entries{}
	}
	doc, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("postgres write: encode document: %w", err)
	}
	next := Version(doc)

	var affected int64
	if version == "" {
		tag, err := s.sql.Exec(ctx, sqlinline.QInsertDocument, s.name, string(doc), next, message)
		if err != nil {
			return nil, fmt.Errorf("%w: postgres insert: %v", domain.ErrRemoteUnavailable, err)
		}
		affected = tag.RowsAffected()
	} else {
		tag, err := s.sql.Exec(ctx, sqlinline.QUpdateDocument, s.name, string(doc), next, message, version)
		if err != nil {
			return nil, fmt.Errorf("%w: postgres update: %v", domain.ErrRemoteUnavailable, err)
		}
		affected = tag.RowsAffected()
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: document %q changed since version %q", domain.ErrVersionConflict, s.name, version)
	}
	return &domain.WriteResult{Version: next}, nil
}

// Version derives the version token of a serialized document.
func Version(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

var _ domain.TransactionRepository = (*Store)(nil)
