package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rmarchetti/livevalue/internal/domain/alert"
	"github.com/rmarchetti/livevalue/internal/platform/logging"
	"github.com/rmarchetti/livevalue/internal/usecase"
)

// JobScheduler re-arms the delayed ingestion callback after every cycle.
type JobScheduler interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type Handler struct {
	ingestionService *usecase.IngestionService
	queryService     *usecase.QueryService
	scheduler        JobScheduler
	liveInterval     time.Duration
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	ingestionService *usecase.IngestionService,
	queryService *usecase.QueryService,
	scheduler JobScheduler,
	liveInterval time.Duration,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestionService: ingestionService,
		queryService:     queryService,
		scheduler:        scheduler,
		liveInterval:     liveInterval,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type listMatchesRequest struct {
	Statuses []string `validate:"omitempty,dive,oneof=scheduled live finished"`
	Limit    int      `validate:"min=0,max=500"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	req := listMatchesRequest{
		Statuses: splitQueryCSV(r.URL.Query().Get("status")),
	}
	limit, err := parseQueryInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid limit: %v", usecase.ErrInvalidInput, err))
		return
	}
	req.Limit = limit

	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.queryService.ListMatches(ctx, usecase.ListMatchesInput{
		Statuses: req.Statuses,
		Limit:    req.Limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "statuses", req.Statuses, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchViewDTO, 0, len(views))
	for _, view := range views {
		items = append(items, matchViewToDTO(view))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAlerts")
	defer span.End()

	limit, err := parseQueryInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid limit: %v", usecase.ErrInvalidInput, err))
		return
	}

	input := usecase.ListAlertsInput{
		MatchID: strings.TrimSpace(r.URL.Query().Get("match_id")),
		Limit:   limit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("unread")); raw != "" {
		unread, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid unread filter: %v", usecase.ErrInvalidInput, parseErr))
			return
		}
		input.Unread = &unread
	}

	alerts, err := h.queryService.ListAlerts(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "list alerts failed", "match_id", input.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]alertDTO, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, alertToDTO(a))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkAlertRead")
	defer span.End()

	alertID := r.PathValue("alertID")
	if err := h.queryService.MarkAlertRead(ctx, alertID); err != nil {
		h.logger.WarnContext(ctx, "mark alert read failed", "alert_id", alertID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": alertID, "is_read": true})
}

func splitQueryCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parseQueryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

type matchDTO struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"external_id,omitempty"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	League      string    `json:"league,omitempty"`
	Status      string    `json:"status"`
	Minute      int       `json:"minute"`
	ScoreHome   int       `json:"score_home"`
	ScoreAway   int       `json:"score_away"`
	KickoffAt   time.Time `json:"kickoff_at"`
	IsSynthetic bool      `json:"is_synthetic"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type analysisDTO struct {
	UnderThresholdProb float64   `json:"under_threshold_probability"`
	CurrentOdds        float64   `json:"current_odds"`
	RecommendedOdds    float64   `json:"recommended_odds"`
	EVPercentage       float64   `json:"ev_percentage"`
	Recommendation     string    `json:"recommendation"`
	ConfidenceLevel    string    `json:"confidence_level"`
	Rating             int       `json:"rating"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type metricsDTO struct {
	XGHome           float64 `json:"xg_home"`
	XGAway           float64 `json:"xg_away"`
	XGTotal          float64 `json:"xg_total"`
	DangerousAttacks int     `json:"dangerous_attacks"`
	PossessionHome   int     `json:"possession_home"`
	PossessionAway   int     `json:"possession_away"`
	ShotsHome        int     `json:"shots_home"`
	ShotsAway        int     `json:"shots_away"`
	ShotsOnTgtHome   int     `json:"shots_on_target_home"`
	ShotsOnTgtAway   int     `json:"shots_on_target_away"`
	CornersHome      int     `json:"corners_home"`
	CornersAway      int     `json:"corners_away"`
}

type matchViewDTO struct {
	Match    matchDTO     `json:"match"`
	Analysis *analysisDTO `json:"analysis,omitempty"`
	Metrics  *metricsDTO  `json:"metrics,omitempty"`
}

type alertDTO struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	AlertType string    `json:"alert_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func matchViewToDTO(view usecase.MatchView) matchViewDTO {
	out := matchViewDTO{
		Match: matchDTO{
			ID:          view.Match.ID,
			ExternalID:  view.Match.ExternalID,
			HomeTeam:    view.Match.HomeTeam,
			AwayTeam:    view.Match.AwayTeam,
			League:      view.Match.League,
			Status:      view.Match.Status,
			Minute:      view.Match.Minute,
			ScoreHome:   view.Match.ScoreHome,
			ScoreAway:   view.Match.ScoreAway,
			KickoffAt:   view.Match.KickoffAt,
			IsSynthetic: view.Match.IsSynthetic,
			UpdatedAt:   view.Match.UpdatedAt,
		},
	}
	if view.Analysis != nil {
		out.Analysis = &analysisDTO{
			UnderThresholdProb: view.Analysis.UnderThresholdProb,
			CurrentOdds:        view.Analysis.CurrentOdds,
			RecommendedOdds:    view.Analysis.RecommendedOdds,
			EVPercentage:       view.Analysis.EVPercentage,
			Recommendation:     view.Analysis.Recommendation,
			ConfidenceLevel:    view.Analysis.ConfidenceLevel,
			Rating:             view.Analysis.Rating,
			UpdatedAt:          view.Analysis.UpdatedAt,
		}
	}
	if view.Metrics != nil {
		out.Metrics = &metricsDTO{
			XGHome:           view.Metrics.XGHome,
			XGAway:           view.Metrics.XGAway,
			XGTotal:          view.Metrics.XGTotal,
			DangerousAttacks: view.Metrics.DangerousAttacks,
			PossessionHome:   view.Metrics.PossessionHome,
			PossessionAway:   view.Metrics.PossessionAway,
			ShotsHome:        view.Metrics.ShotsHome,
			ShotsAway:        view.Metrics.ShotsAway,
			ShotsOnTgtHome:   view.Metrics.ShotsOnTgtHome,
			ShotsOnTgtAway:   view.Metrics.ShotsOnTgtAway,
			CornersHome:      view.Metrics.CornersHome,
			CornersAway:      view.Metrics.CornersAway,
		}
	}
	return out
}

func alertToDTO(a alert.Alert) alertDTO {
	return alertDTO{
		ID:        a.ID,
		MatchID:   a.MatchID,
		AlertType: a.AlertType,
		Title:     a.Title,
		Message:   a.Message,
		Priority:  a.Priority,
		IsRead:    a.IsRead,
		CreatedAt: a.CreatedAt,
	}
}
