package memory

import (
	"context"
	"sync"

	"github.com/rmarchetti/livevalue/internal/domain/analysis"
)

type AnalysisRepository struct {
	mu    sync.RWMutex
	items map[string]analysis.Analysis
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{items: make(map[string]analysis.Analysis)}
}

func (r *AnalysisRepository) Upsert(_ context.Context, a analysis.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[a.MatchID] = a
	return nil
}

func (r *AnalysisRepository) GetByMatchID(_ context.Context, matchID string) (analysis.Analysis, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return analysis.Analysis{}, false, nil
	}
	return item, true, nil
}

func (r *AnalysisRepository) ListByMatchIDs(_ context.Context, matchIDs []string) ([]analysis.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]analysis.Analysis, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if item, ok := r.items[matchID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
