package metrics

import "context"

type Repository interface {
	// InsertIfMissing creates the metrics row for a match on first live
	// sighting and reports whether a row was written.
	InsertIfMissing(ctx context.Context, m Metrics) (bool, error)
	GetByMatchID(ctx context.Context, matchID string) (Metrics, bool, error)
	ListByMatchIDs(ctx context.Context, matchIDs []string) ([]Metrics, error)
}
