package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/rmarchetti/livevalue/internal/usecase"
)

const ingestionJobPath = "/v1/internal/jobs/ingestion/run"

type runIngestionJobRequest struct {
	Reschedule *bool `json:"reschedule"`
}

// RunIngestionJob executes one ingestion cycle and, unless the caller opts
// out, re-arms the next delayed callback through the scheduler.
func (h *Handler) RunIngestionJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestionJob")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeRunIngestionJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.ingestionService.RunCycle(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run ingestion job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	reschedule := req.Reschedule == nil || *req.Reschedule
	if reschedule && h.scheduler != nil && h.liveInterval > 0 {
		dedupID := fmt.Sprintf("ingestion-%d", time.Now().UTC().Truncate(h.liveInterval).Unix())
		if err := h.scheduler.Enqueue(ctx, ingestionJobPath, nil, h.liveInterval, dedupID); err != nil {
			h.logger.WarnContext(ctx, "reschedule ingestion job failed", "error", err)
		}
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func decodeRunIngestionJobRequest(r *http.Request) (runIngestionJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req runIngestionJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return runIngestionJobRequest{}, nil
		}
		return runIngestionJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
