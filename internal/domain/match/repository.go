package match

import (
	"context"
	"time"
)

// Repository exposes match persistence. Upsert is keyed on the provider
// external id and must be atomic at the storage layer so that two concurrent
// cycles observing the same fixture cannot double-insert.
type Repository interface {
	UpsertByExternalID(ctx context.Context, m Match) (Match, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Match, bool, error)
	GetByID(ctx context.Context, id string) (Match, bool, error)
	ListByStatus(ctx context.Context, statuses ...string) ([]Match, error)
	// FinishLiveExcept marks live matches whose external id is not in keep as
	// finished and returns how many rows changed. Matches without an external
	// id are left alone. Called only after a successful provider fetch;
	// absence from the feed is the finish signal.
	FinishLiveExcept(ctx context.Context, keep []string, finishedAt time.Time) (int, error)
}
