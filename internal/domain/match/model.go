package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

// Match is one tracked game. Identity is ExternalID when the provider assigns
// one; synthetic and seeded matches fall back to the (home, away, kickoff) tuple.
type Match struct {
	ID          string
	ExternalID  string
	HomeTeam    string
	AwayTeam    string
	League      string
	Status      string
	Minute      int
	ScoreHome   int
	ScoreAway   int
	KickoffAt   time.Time
	IsSynthetic bool
	UpdatedAt   time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsValidStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusScheduled, StatusLive, StatusFinished:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a stored match may move from one status to
// another. The lifecycle is strictly scheduled -> live -> finished.
func CanTransition(from, to string) bool {
	from = NormalizeStatus(from)
	to = NormalizeStatus(to)
	if from == to {
		return true
	}
	switch from {
	case StatusScheduled:
		return to == StatusLive || to == StatusFinished
	case StatusLive:
		return to == StatusFinished
	default:
		return false
	}
}

// IdentityKey is the fallback identity for matches without a provider id.
func (m Match) IdentityKey() string {
	if key := strings.TrimSpace(m.ExternalID); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(m.HomeTeam)) + "|" +
		strings.ToLower(strings.TrimSpace(m.AwayTeam)) + "|" +
		m.KickoffAt.UTC().Format(time.RFC3339)
}
