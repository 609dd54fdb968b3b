package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rmarchetti/livevalue/internal/domain/alert"
)

type AlertRepository struct {
	mu    sync.RWMutex
	items []alert.Alert
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{}
}

func (r *AlertRepository) InsertMany(_ context.Context, alerts []alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, alerts...)
	return nil
}

func (r *AlertRepository) List(_ context.Context, filter alert.ListFilter) ([]alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alert.Alert, 0, len(r.items))
	for _, item := range r.items {
		if filter.MatchID != "" && item.MatchID != filter.MatchID {
			continue
		}
		if filter.Unread != nil && item.IsRead == *filter.Unread {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *AlertRepository) MarkRead(_ context.Context, alertID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == alertID {
			r.items[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}
