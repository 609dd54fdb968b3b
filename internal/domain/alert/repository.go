package alert

import "context"

type Repository interface {
	InsertMany(ctx context.Context, alerts []Alert) error
	List(ctx context.Context, filter ListFilter) ([]Alert, error)
	// MarkRead reports whether the alert existed.
	MarkRead(ctx context.Context, alertID string) (bool, error)
}

// ListFilter narrows the consumer read path. Unread=nil returns all alerts.
type ListFilter struct {
	MatchID string
	Unread  *bool
	Limit   int
}
