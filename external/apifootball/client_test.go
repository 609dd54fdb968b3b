package apifootball

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmarchetti/livevalue/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		Token:          "test-token",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestClient_FetchLive_MapsFixtures(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("X-RapidAPI-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"response": [
				{
					"fixture": {"id": 101, "date": "2026-03-14T15:00:00+00:00", "status": {"short": "2H", "elapsed": 67}},
					"league": {"name": "Premier League", "country": "England"},
					"teams": {"home": {"name": "Alpha"}, "away": {"name": "Beta"}},
					"goals": {"home": 1, "away": 0}
				},
				{
					"fixture": {"id": 102, "date": "2026-03-14T16:00:00+00:00", "status": {"short": "HT", "elapsed": null}},
					"league": {"name": "La Liga", "country": "Spain"},
					"teams": {"home": {"name": "Gamma"}, "away": {"name": "Delta"}},
					"goals": {"home": null, "away": null}
				}
			]
		}`))
	})

	fixtures, err := client.FetchLive(t.Context())
	if err != nil {
		t.Fatalf("fetch live failed: %v", err)
	}

	if gotPath != "/fixtures" || gotQuery != "live=all" {
		t.Fatalf("unexpected request: %s?%s", gotPath, gotQuery)
	}
	if gotAuth != "test-token" {
		t.Fatalf("auth header not sent: %q", gotAuth)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected two fixtures, got %d", len(fixtures))
	}

	first := fixtures[0]
	if first.ExternalID != "101" || first.HomeTeam != "Alpha" || first.StatusCode != "2H" {
		t.Fatalf("fixture not mapped: %+v", first)
	}
	if first.Minute == nil || *first.Minute != 67 {
		t.Fatalf("elapsed minute not mapped: %+v", first.Minute)
	}
	if first.GoalsHome == nil || *first.GoalsHome != 1 {
		t.Fatalf("goals not mapped: %+v", first.GoalsHome)
	}
	if first.KickoffAt.IsZero() {
		t.Fatalf("kickoff not parsed")
	}

	second := fixtures[1]
	if second.Minute != nil || second.GoalsHome != nil {
		t.Fatalf("null provider fields must stay nil: %+v", second)
	}
}

func TestClient_FetchLive_Non2xxPreservesBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	})

	_, err := client.FetchLive(t.Context())
	if err == nil {
		t.Fatalf("expected error for non-2xx status")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusForbidden {
		t.Fatalf("status code not preserved: %d", provErr.StatusCode)
	}
	if provErr.Body != `{"message":"invalid key"}` {
		t.Fatalf("body not preserved: %q", provErr.Body)
	}
}

func TestClient_FetchLive_ServerErrorReturnsProviderError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := client.FetchLive(t.Context())
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status code not preserved: %d", provErr.StatusCode)
	}
}

func TestClient_FetchLive_EmptyFeed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response": []}`))
	})

	fixtures, err := client.FetchLive(t.Context())
	if err != nil {
		t.Fatalf("empty feed must not error: %v", err)
	}
	if len(fixtures) != 0 {
		t.Fatalf("expected empty slice, got %d", len(fixtures))
	}
}
