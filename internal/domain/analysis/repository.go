package analysis

import "context"

// Repository stores the 1:1 match analysis snapshot.
type Repository interface {
	Upsert(ctx context.Context, a Analysis) error
	GetByMatchID(ctx context.Context, matchID string) (Analysis, bool, error)
	ListByMatchIDs(ctx context.Context, matchIDs []string) ([]Analysis, error)
}
