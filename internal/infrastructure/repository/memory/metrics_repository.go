package memory

import (
	"context"
	"sync"

	"github.com/rmarchetti/livevalue/internal/domain/metrics"
)

type MetricsRepository struct {
	mu    sync.RWMutex
	items map[string]metrics.Metrics
}

func NewMetricsRepository() *MetricsRepository {
	return &MetricsRepository{items: make(map[string]metrics.Metrics)}
}

func (r *MetricsRepository) InsertIfMissing(_ context.Context, m metrics.Metrics) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.MatchID]; ok {
		return false, nil
	}
	r.items[m.MatchID] = m
	return true, nil
}

func (r *MetricsRepository) GetByMatchID(_ context.Context, matchID string) (metrics.Metrics, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return metrics.Metrics{}, false, nil
	}
	return item, true, nil
}

func (r *MetricsRepository) ListByMatchIDs(_ context.Context, matchIDs []string) ([]metrics.Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metrics.Metrics, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if item, ok := r.items[matchID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
