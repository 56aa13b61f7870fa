package domain

import "context"

// Snapshot is the full transaction document together with the version token
// it was read at. An empty Version means the document does not exist yet.
type Snapshot struct {
	Entries Entries
	Version string
}

// WriteResult describes a successful document write.
type WriteResult struct {
	Version   string
	CommitURL string
}

// TransactionRepository persists the whole transaction document with
// optimistic concurrency. Write must fail with ErrVersionConflict when
// version no longer matches the stored document; it never retries.
type TransactionRepository interface {
	ReadAll(ctx context.Context) (*Snapshot, error)
	Write(ctx context.Context, entries Entries, version, message string) (*WriteResult, error)
}

// SettingsRepository loads and updates the page settings.
type SettingsRepository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, patch SettingsPatch) (Settings, error)
}
