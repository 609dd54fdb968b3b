package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/rmarchetti/livevalue/internal/platform/logging"
	"github.com/rmarchetti/livevalue/internal/platform/resilience"
	"github.com/rmarchetti/livevalue/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	authHeader     = "X-RapidAPI-Key"
	maxBodyBytes   = 4 << 20
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

// ProviderError preserves the provider's status code and body text for
// diagnostics. A zero status code means the request never got a response.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api-football request failed: %v", e.Err)
	}
	return fmt.Sprintf("api-football status=%d body=%s", e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches live fixtures from API-Football. It implements
// usecase.FixtureSource; every failure mode surfaces as an error value so the
// ingestion cycle can apply its fallback policy.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchLive(ctx context.Context) ([]usecase.RawFixture, error) {
	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"live": "all"}, &envelope); err != nil {
		return nil, err
	}

	fixtures := make([]usecase.RawFixture, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		fixtures = append(fixtures, mapFixture(item))
	}
	return fixtures, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: live fixtures provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return &ProviderError{Err: fmt.Errorf("decode provider payload: %w", err)}
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, &ProviderError{Err: fmt.Errorf("build request: %w", err)}
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(authHeader, c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(
				&ProviderError{Err: fmt.Errorf("send request: %s", c.sanitize(err.Error()))},
				errAPIFootballTransient,
			)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = crerr.Mark(
					&ProviderError{Err: fmt.Errorf("read response body: %w", readErr)},
					errAPIFootballTransient,
				)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				provErr := &ProviderError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
				if !isRetryableStatus(resp.StatusCode) {
					return nil, provErr
				}
				lastErr = crerr.Mark(provErr, errAPIFootballTransient)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &ProviderError{Err: ctx.Err()}
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = &ProviderError{Err: fmt.Errorf("provider request failed")}
	}
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return value
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type fixturesEnvelope struct {
	Response []fixtureItem `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"league"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

func mapFixture(item fixtureItem) usecase.RawFixture {
	fx := usecase.RawFixture{
		ExternalID: fmt.Sprintf("%d", item.Fixture.ID),
		HomeTeam:   item.Teams.Home.Name,
		AwayTeam:   item.Teams.Away.Name,
		League:     item.League.Name,
		Country:    item.League.Country,
		StatusCode: item.Fixture.Status.Short,
		Minute:     item.Fixture.Status.Elapsed,
		GoalsHome:  item.Goals.Home,
		GoalsAway:  item.Goals.Away,
	}
	if parsed, err := time.Parse(time.RFC3339, item.Fixture.Date); err == nil {
		fx.KickoffAt = parsed
	}
	return fx
}
