package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/analysis"
	"github.com/rmarchetti/livevalue/internal/domain/match"
)

// Reconciler maps a live fixture onto stored match state. Lookup is exact on
// the provider external id, never fuzzy team-name matching. The previous
// analysis snapshot is captured here, before anything overwrites it.
type Reconciler struct {
	matches  match.Repository
	analyses analysis.Repository
}

func NewReconciler(matches match.Repository, analyses analysis.Repository) *Reconciler {
	return &Reconciler{matches: matches, analyses: analyses}
}

// ReconcileResult carries the merged match plus the context the rest of the
// cycle needs: whether this fixture is new and what the prior analysis was.
type ReconcileResult struct {
	Match    match.Match
	Previous *analysis.Analysis
	Created  bool
}

func (r *Reconciler) Reconcile(ctx context.Context, fx RawFixture, at time.Time) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Reconciler.Reconcile")
	defer span.End()

	externalID := strings.TrimSpace(fx.ExternalID)
	if externalID == "" {
		return ReconcileResult{}, fmt.Errorf("%w: fixture external id is empty", ErrInvalidInput)
	}

	existing, found, err := r.matches.GetByExternalID(ctx, externalID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("lookup match %s: %w", externalID, err)
	}
	if !found {
		return ReconcileResult{
			Match:   newMatchFromFixture(fx, at),
			Created: true,
		}, nil
	}

	if !match.CanTransition(existing.Status, match.StatusLive) {
		return ReconcileResult{}, fmt.Errorf("%w: match %s cannot move from %s to live", ErrInvalidInput, externalID, existing.Status)
	}

	var previous *analysis.Analysis
	prior, found, err := r.analyses.GetByMatchID(ctx, existing.ID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("load previous analysis for %s: %w", existing.ID, err)
	}
	if found {
		previous = &prior
	}

	merged := applyFixture(existing, fx, at)
	return ReconcileResult{Match: merged, Previous: previous}, nil
}

func newMatchFromFixture(fx RawFixture, at time.Time) match.Match {
	m := match.Match{
		ExternalID:  strings.TrimSpace(fx.ExternalID),
		HomeTeam:    strings.TrimSpace(fx.HomeTeam),
		AwayTeam:    strings.TrimSpace(fx.AwayTeam),
		League:      strings.TrimSpace(fx.League),
		Status:      match.StatusLive,
		KickoffAt:   fx.KickoffAt,
		IsSynthetic: fx.Synthetic,
		UpdatedAt:   at,
	}
	applyClockAndScore(&m, fx)
	return m
}

func applyFixture(existing match.Match, fx RawFixture, at time.Time) match.Match {
	existing.Status = match.StatusLive
	existing.UpdatedAt = at
	if league := strings.TrimSpace(fx.League); league != "" {
		existing.League = league
	}
	if !fx.KickoffAt.IsZero() {
		existing.KickoffAt = fx.KickoffAt
	}
	applyClockAndScore(&existing, fx)
	return existing
}

func applyClockAndScore(m *match.Match, fx RawFixture) {
	if fx.Minute != nil {
		m.Minute = *fx.Minute
	}
	if fx.GoalsHome != nil {
		m.ScoreHome = *fx.GoalsHome
	}
	if fx.GoalsAway != nil {
		m.ScoreAway = *fx.GoalsAway
	}
}
