package memory

import (
	"testing"
	"time"

	"github.com/rmarchetti/livevalue/internal/domain/match"
)

func TestMatchRepository_FinishLiveExcept_KeepsSeededMatches(t *testing.T) {
	repo := NewMatchRepository()
	kickoff := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	seeded := match.Match{
		HomeTeam:  "Alpha",
		AwayTeam:  "Beta",
		Status:    match.StatusLive,
		KickoffAt: kickoff,
	}
	if _, _, err := repo.UpsertByExternalID(t.Context(), seeded); err != nil {
		t.Fatalf("upsert seeded match: %v", err)
	}

	tracked := match.Match{
		ExternalID: "fx-1",
		HomeTeam:   "Gamma",
		AwayTeam:   "Delta",
		Status:     match.StatusLive,
		KickoffAt:  kickoff,
	}
	if _, _, err := repo.UpsertByExternalID(t.Context(), tracked); err != nil {
		t.Fatalf("upsert tracked match: %v", err)
	}

	finished, err := repo.FinishLiveExcept(t.Context(), nil, kickoff.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("finish live matches: %v", err)
	}
	if finished != 1 {
		t.Fatalf("expected one finished match, got %d", finished)
	}

	live, err := repo.ListByStatus(t.Context(), match.StatusLive)
	if err != nil {
		t.Fatalf("list live matches: %v", err)
	}
	if len(live) != 1 || live[0].ExternalID != "" {
		t.Fatalf("seeded match was finished: %+v", live)
	}

	stored, found, err := repo.GetByExternalID(t.Context(), "fx-1")
	if err != nil || !found {
		t.Fatalf("tracked match missing: found=%v err=%v", found, err)
	}
	if stored.Status != match.StatusFinished {
		t.Fatalf("tracked match not finished: %s", stored.Status)
	}
}
