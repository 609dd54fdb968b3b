package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
	seq   int
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{items: make(map[string]match.Match)}
}

func (r *MatchRepository) UpsertByExternalID(_ context.Context, m match.Match) (match.Match, bool, error) {
	key := m.IdentityKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[key]
	if ok {
		m.ID = existing.ID
		m.IsSynthetic = existing.IsSynthetic
		r.items[key] = m
		return m, false, nil
	}

	if strings.TrimSpace(m.ID) == "" {
		r.seq++
		m.ID = fmt.Sprintf("match-%d", r.seq)
	}
	r.items[key] = m
	return m, true, nil
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[externalID]
	if !ok {
		return match.Match{}, false, nil
	}
	return item, true, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, statuses ...string) ([]match.Match, error) {
	wanted := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[match.NormalizeStatus(status)] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.items))
	for _, item := range r.items {
		if len(wanted) > 0 {
			if _, ok := wanted[item.Status]; !ok {
				continue
			}
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out, nil
}

func (r *MatchRepository) FinishLiveExcept(_ context.Context, keep []string, finishedAt time.Time) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, externalID := range keep {
		keepSet[externalID] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	finished := 0
	for key, item := range r.items {
		if item.Status != match.StatusLive {
			continue
		}
		// seeded tuple-identity rows never appear in a feed, so absence
		// cannot finish them
		if item.ExternalID == "" {
			continue
		}
		if _, ok := keepSet[item.ExternalID]; ok {
			continue
		}
		item.Status = match.StatusFinished
		item.UpdatedAt = finishedAt
		r.items[key] = item
		finished++
	}
	return finished, nil
}
