package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// SessionHandler serves the review session endpoints.
type SessionHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(reviewService review.Service, logger *slog.Logger) *SessionHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /api/sessions. An empty body starts a session
// over today's due items.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, wrapDecodeError(err), "")
			return
		}
		if err := shared.ValidateRequest(&req); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	view, err := h.reviewService.StartSession(r.Context(), userID, ids)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	log.Info("review session started",
		slog.Int("total", view.Total),
		slog.Bool("explicit_items", len(ids) > 0))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(view))
}

// CurrentSession handles GET /api/sessions/current.
func (h *SessionHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	view, err := h.reviewService.CurrentSession(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(view))
}

// CompleteCurrent handles POST /api/sessions/current/complete. It answers
// 204 when the session has nothing left to review.
func (h *SessionHandler) CompleteCurrent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	answer, ok := decodeAnswer(w, r, log)
	if !ok {
		return
	}

	result, err := h.reviewService.CompleteCurrent(r.Context(), userID, answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete review")
		return
	}

	log.Debug("session item completed",
		slog.String("item_id", result.Reviewed.ID.String()),
		slog.Int("remaining", result.Session.Remaining))
	shared.RespondWithJSON(w, r, http.StatusOK, CompleteResponse{
		Reviewed: itemToResponse(&result.Reviewed),
		Session:  sessionToResponse(result.Session),
	})
}

// AdvanceSession handles POST /api/sessions/current/advance.
func (h *SessionHandler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	view, err := h.reviewService.AdvanceSession(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to advance review session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(view))
}
