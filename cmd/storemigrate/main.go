// Command storemigrate prepares the postgres transaction store and can seed
// it from an existing data.json export.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"viaqris/internal/domain"
	"viaqris/internal/infra"
	"viaqris/internal/sqlinline"
	"viaqris/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		dbURLFlag    string
		documentFlag string
		seedFlag     string
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "postgres connection string (fallbacks to DATABASE_URL)")
	flag.StringVar(&documentFlag, "document", "data.json", "document name to seed")
	flag.StringVar(&seedFlag, "seed", "", "optional data.json file imported when the document does not exist yet")
	flag.Parse()

	dbURL := strings.TrimSpace(dbURLFlag)
	if dbURL == "" {
		dbURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "storemigrate").Logger()

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	if _, err := db.ExecContext(ctx, sqlinline.Schema); err != nil {
		exitWithError(fmt.Errorf("failed to apply schema: %w", err))
	}
	logger.Info().Msg("schema applied")

	if seedFlag == "" {
		return
	}
	raw, err := os.ReadFile(seedFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to read seed: %w", err))
	}
	var entries domain.Entries
	if err := json.Unmarshal(raw, &entries); err != nil {
		exitWithError(fmt.Errorf("seed is not a transaction document: %w", err))
	}
	doc, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		exitWithError(err)
	}
	res, err := db.ExecContext(ctx, sqlinline.QInsertDocument, documentFlag, string(doc), postgres.Version(doc), "Seed from "+seedFlag+".")
	if err != nil {
		exitWithError(fmt.Errorf("failed to seed document: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.Warn().Str("document", documentFlag).Msg("document already exists, seed skipped")
		return
	}
	logger.Info().Str("document", documentFlag).Int("entries", len(entries)).Msg("document seeded")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
