package usecase

import (
	"context"
	"strings"
	"time"
)

// RawFixture is the provider-neutral shape of one fixture as fetched. Nullable
// provider fields stay pointers so that "missing" and "zero" remain distinct.
type RawFixture struct {
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	League     string
	Country    string
	StatusCode string
	Minute     *int
	GoalsHome  *int
	GoalsAway  *int
	KickoffAt  time.Time
	Synthetic  bool
}

// FixtureSource fetches the current snapshot of live fixtures from a provider.
// Transport failures come back as an error value with an empty slice; callers
// apply fallback policy, the source never decides it.
type FixtureSource interface {
	FetchLive(ctx context.Context) ([]RawFixture, error)
}

// DefaultLiveStatusCodes is the provider status allow-list for "in progress":
// first half, second half, half-time, extra time, break, penalties,
// suspended, interrupted.
var DefaultLiveStatusCodes = []string{"1H", "2H", "HT", "ET", "BT", "P", "SUSP", "INT"}

// LiveClassifier decides whether a provider status code counts as live.
// Unknown codes classify as not-live, never as an error.
type LiveClassifier struct {
	allowed map[string]struct{}
}

func NewLiveClassifier(codes []string) *LiveClassifier {
	if len(codes) == 0 {
		codes = DefaultLiveStatusCodes
	}

	allowed := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		allowed[code] = struct{}{}
	}

	return &LiveClassifier{allowed: allowed}
}

func (c *LiveClassifier) IsLive(statusCode string) bool {
	_, ok := c.allowed[strings.ToUpper(strings.TrimSpace(statusCode))]
	return ok
}
