package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// ProgressResponse is the body of GET /api/progress.
type ProgressResponse struct {
	Date string `json:"date"`
	srs.Progress
}

// ProgressHandler serves the progress summary.
type ProgressHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(reviewService review.Service, logger *slog.Logger) *ProgressHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ProgressHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgress handles GET /api/progress.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	progress, err := h.reviewService.Progress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		Date:     h.reviewService.Today().Format(domain.DateLayout),
		Progress: progress,
	})
}
