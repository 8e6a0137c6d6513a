package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/service/review"
)

// ItemHandler serves the memory item endpoints.
type ItemHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(reviewService review.Service, logger *slog.Logger) *ItemHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ItemHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}
	return &ItemHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "item_handler")),
	}
}

// CreateItem handles POST /api/items.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid create item body", slog.String("error", err.Error()))
		HandleAPIError(w, r, wrapDecodeError(err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	categoryID := uuid.Nil
	if req.CategoryID != "" {
		// already validated as a uuid
		categoryID = uuid.MustParse(req.CategoryID)
	}

	item, err := h.reviewService.CreateItem(r.Context(), userID, review.NewItem{
		CategoryID:  categoryID,
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create memory item")
		return
	}

	log.Info("memory item created", slog.String("item_id", item.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// ListItems handles GET /api/items.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	items, err := h.reviewService.ListItems(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list memory items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ItemListResponse{
		Items: itemsToResponse(items),
		Count: len(items),
	})
}

// DueItems handles GET /api/items/due. The optional date query parameter
// (YYYY-MM-DD) defaults to today.
func (h *ItemHandler) DueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	date := h.reviewService.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		date = parsed
	}

	items, err := h.reviewService.DueItems(r.Context(), userID, date)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due memory items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueItemsResponse{
		Date:  date.Format(domain.DateLayout),
		Items: itemsToResponse(items),
		Count: len(items),
	})
}

// GetItem handles GET /api/items/{id}.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	item, err := h.reviewService.GetItem(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get memory item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// ArchiveItem handles POST /api/items/{id}/archive.
func (h *ItemHandler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// UnarchiveItem handles POST /api/items/{id}/unarchive.
func (h *ItemHandler) UnarchiveItem(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *ItemHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var (
		item *domain.MemoryItem
		err  error
	)
	if archived {
		item, err = h.reviewService.ArchiveItem(r.Context(), userID, itemID)
	} else {
		item, err = h.reviewService.UnarchiveItem(r.Context(), userID, itemID)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update memory item")
		return
	}

	log.Debug("memory item archive flag set",
		slog.String("item_id", itemID.String()),
		slog.Bool("archived", archived))
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// SubmitReview handles POST /api/items/{id}/review.
func (h *ItemHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	answer, ok := decodeAnswer(w, r, log)
	if !ok {
		return
	}

	item, err := h.reviewService.SubmitReview(r.Context(), userID, itemID, answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("item_id", item.ID.String()),
		slog.Int("stage", item.Stage))
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// decodeAnswer reads and validates an AnswerRequest body, writing a 400 on
// failure.
func decodeAnswer(w http.ResponseWriter, r *http.Request, log *slog.Logger) (review.Answer, bool) {
	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid answer body", slog.String("error", err.Error()))
		HandleAPIError(w, r, wrapDecodeError(err), "")
		return review.Answer{}, false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return review.Answer{}, false
	}
	perf, err := domain.ParsePerformance(req.Performance)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return review.Answer{}, false
	}
	return review.Answer{Performance: perf, TimeSpentSeconds: req.TimeSpentSeconds}, true
}
