package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/events"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*reviewServiceImpl)(nil)

// userSession is one user's review session. Its mutex serialises session
// operations for that user; session.Queue itself is not safe for concurrent use.
type userSession struct {
	mu         sync.Mutex
	queue      *session.Queue
	collection *session.SliceCollection
	reviewed   int
}

// reviewServiceImpl implements the Service interface.
type reviewServiceImpl struct {
	items        store.MemoryItemStore
	tx           Transactor
	srsService   srs.Service
	emitter      events.EventEmitter
	logger       *slog.Logger
	now          domain.Clock
	sessionLimit int

	mu       sync.Mutex
	sessions map[uuid.UUID]*userSession
}

// Option configures the review service.
type Option func(*reviewServiceImpl)

// WithClock injects the time source used for new items, archive toggles and
// events. Pass the same clock the srs.Service uses.
func WithClock(clock domain.Clock) Option {
	return func(s *reviewServiceImpl) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSessionLimit caps the number of items in a session. Zero means unlimited.
func WithSessionLimit(n int) Option {
	return func(s *reviewServiceImpl) {
		s.sessionLimit = n
	}
}

// WithEventEmitter publishes review and archive events to emitter.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *reviewServiceImpl) {
		s.emitter = emitter
	}
}

// NewReviewService creates a new Service implementation.
func NewReviewService(
	items store.MemoryItemStore,
	tx Transactor,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if items == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("items cannot be nil")
	}
	if tx == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tx cannot be nil")
	}
	if srsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewServiceImpl{
		items:      items,
		tx:         tx,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "review_service")),
		now:        domain.SystemClock,
		sessions:   make(map[uuid.UUID]*userSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today implements Service.Today.
func (s *reviewServiceImpl) Today() time.Time {
	return s.srsService.Today()
}

// CreateItem implements Service.CreateItem.
func (s *reviewServiceImpl) CreateItem(
	ctx context.Context,
	userID uuid.UUID,
	req NewItem,
) (*domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := domain.NewMemoryItem(userID, req.CategoryID, req.Title, req.Content, req.ContentType, s.now())
	if err != nil {
		log.Debug("rejected new memory item",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, s.fail(log, "create_item", "failed to save memory item", err)
	}

	log.Info("memory item created",
		slog.String("user_id", userID.String()),
		slog.String("item_id", item.ID.String()))
	return item, nil
}

// GetItem implements Service.GetItem.
func (s *reviewServiceImpl) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := s.loadOwned(ctx, s.items, userID, itemID)
	if err != nil {
		return nil, s.fail(log, "get_item", "failed to get memory item", err)
	}
	return item, nil
}

// ListItems implements Service.ListItems.
func (s *reviewServiceImpl) ListItems(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(log, "list_items", "failed to list memory items", err)
	}
	return items, nil
}

// ArchiveItem implements Service.ArchiveItem.
func (s *reviewServiceImpl) ArchiveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error) {
	return s.setArchived(ctx, userID, itemID, true)
}

// UnarchiveItem implements Service.UnarchiveItem.
func (s *reviewServiceImpl) UnarchiveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryItem, error) {
	return s.setArchived(ctx, userID, itemID, false)
}

func (s *reviewServiceImpl) setArchived(
	ctx context.Context,
	userID, itemID uuid.UUID,
	archived bool,
) (*domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	operation, eventType := "unarchive_item", events.TypeItemUnarchived
	if archived {
		operation, eventType = "archive_item", events.TypeItemArchived
	}

	var (
		result  *domain.MemoryItem
		changed bool
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, items store.MemoryItemStore) error {
		item, err := s.loadOwned(ctx, items, userID, itemID)
		if err != nil {
			return err
		}
		result = item
		if item.Archived == archived {
			return nil
		}

		previous := item.UpdatedAt
		if archived {
			item.Archive(s.now())
		} else {
			item.Unarchive(s.now())
		}
		if err := items.Update(ctx, item, previous); err != nil {
			return mapStoreError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, s.fail(log, operation, "failed to update archive flag", err)
	}

	if changed {
		log.Info("memory item archive flag changed",
			slog.String("item_id", itemID.String()),
			slog.Bool("archived", archived))
		event, err := events.NewEvent(eventType, userID, events.ItemPayload{ItemID: itemID}, s.now())
		s.publish(ctx, event, err)
	}
	return result, nil
}

// DueItems implements Service.DueItems.
func (s *reviewServiceImpl) DueItems(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) ([]domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(log, "due_items", "failed to list memory items", err)
	}

	due := s.srsService.SelectDue(items, date)
	log.Debug("selected due items",
		slog.String("user_id", userID.String()),
		slog.String("date", domain.Date(date).Format(domain.DateLayout)),
		slog.Int("count", len(due)))
	return due, nil
}

// SubmitReview implements Service.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, itemID uuid.UUID,
	answer Answer,
) (*domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !answer.Performance.Valid() {
		log.Warn("invalid review performance",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("performance", string(answer.Performance)))
		return nil, ErrInvalidPerformance
	}

	var before, after domain.MemoryItem
	err := s.tx.InTx(ctx, func(ctx context.Context, items store.MemoryItemStore) error {
		item, err := s.loadOwned(ctx, items, userID, itemID)
		if err != nil {
			return err
		}
		if item.Archived {
			return ErrItemArchived
		}

		before = *item
		after = s.srsService.RecordReview(before, answer.Performance, answer.TimeSpentSeconds)
		if err := items.Update(ctx, &after, before.UpdatedAt); err != nil {
			return mapStoreError(err)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(log, "submit_review", "failed to record review", err)
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("performance", string(answer.Performance)),
		slog.Int("stage", after.Stage),
		slog.String("next_review_date", after.NextReviewDate.Format(domain.DateLayout)))

	event, eventErr := events.NewReviewRecordedEvent(before, after, s.now())
	s.publish(ctx, event, eventErr)
	return &after, nil
}

// StartSession implements Service.StartSession.
func (s *reviewServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	itemIDs []uuid.UUID,
) (SessionView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var items []domain.MemoryItem
	if len(itemIDs) == 0 {
		all, err := s.items.ListByUser(ctx, userID)
		if err != nil {
			return SessionView{}, s.fail(log, "start_session", "failed to list memory items", err)
		}
		items = all
	} else {
		seen := make(map[uuid.UUID]bool, len(itemIDs))
		for _, id := range itemIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			item, err := s.loadOwned(ctx, s.items, userID, id)
			if err != nil {
				return SessionView{}, s.fail(log, "start_session", "failed to load session item", err)
			}
			items = append(items, *item)
		}
	}

	us := s.sessionFor(userID)
	us.mu.Lock()
	defer us.mu.Unlock()

	us.collection = session.NewSliceCollection(items)
	us.queue = session.NewQueue(s.srsService, us.collection, session.WithLimit(s.sessionLimit))
	us.reviewed = 0
	if len(itemIDs) == 0 {
		us.queue.StartDue()
	} else {
		us.queue.Start(items)
	}

	view := viewOf(us.queue)
	log.Info("review session started",
		slog.String("user_id", userID.String()),
		slog.Int("items", view.Total),
		slog.Bool("due_today", len(itemIDs) == 0))
	return view, nil
}

// CurrentSession implements Service.CurrentSession.
func (s *reviewServiceImpl) CurrentSession(ctx context.Context, userID uuid.UUID) (SessionView, error) {
	us := s.lookupSession(userID)
	if us == nil {
		return emptyView(), nil
	}

	us.mu.Lock()
	defer us.mu.Unlock()
	return viewOf(us.queue), nil
}

// CompleteCurrent implements Service.CompleteCurrent.
//
// The current item is re-read from the store first so a review recorded
// elsewhere since the session started is not lost. If the item can no longer
// be reviewed (archived or deleted) it is skipped. If persisting fails the
// session is left where it was.
func (s *reviewServiceImpl) CompleteCurrent(
	ctx context.Context,
	userID uuid.UUID,
	answer Answer,
) (*CompleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !answer.Performance.Valid() {
		return nil, ErrInvalidPerformance
	}

	us := s.lookupSession(userID)
	if us == nil {
		return nil, ErrNoActiveSession
	}
	us.mu.Lock()
	defer us.mu.Unlock()

	current, ok := us.queue.Current()
	if !ok {
		return nil, ErrNoActiveSession
	}

	snapshot := us.queue.Snapshot()
	var before, after domain.MemoryItem
	err := s.tx.InTx(ctx, func(ctx context.Context, items store.MemoryItemStore) error {
		fresh, err := s.loadOwned(ctx, items, userID, current.ID)
		if err != nil {
			return err
		}
		if fresh.Archived {
			return ErrItemArchived
		}

		us.queue.ReplaceCurrent(*fresh)
		before = *fresh
		after, _ = us.queue.CompleteCurrent(answer.Performance, answer.TimeSpentSeconds)
		if err := items.Update(ctx, &after, before.UpdatedAt); err != nil {
			return mapStoreError(err)
		}
		return nil
	})
	if err != nil {
		us.queue.Restore(snapshot)
		if errors.Is(err, ErrItemArchived) || errors.Is(err, ErrItemNotFound) {
			log.Info("skipping session item that can no longer be reviewed",
				slog.String("user_id", userID.String()),
				slog.String("item_id", current.ID.String()),
				slog.String("reason", err.Error()))
			us.queue.Advance()
			s.finishIfDone(ctx, userID, us)
		}
		return nil, s.fail(log, "complete_current", "failed to record session review", err)
	}

	us.collection.Put(after)
	us.reviewed++

	event, eventErr := events.NewReviewRecordedEvent(before, after, s.now())
	s.publish(ctx, event, eventErr)
	s.finishIfDone(ctx, userID, us)

	return &CompleteResult{Reviewed: after, Session: viewOf(us.queue)}, nil
}

// AdvanceSession implements Service.AdvanceSession.
func (s *reviewServiceImpl) AdvanceSession(ctx context.Context, userID uuid.UUID) (SessionView, error) {
	us := s.lookupSession(userID)
	if us == nil {
		return emptyView(), nil
	}

	us.mu.Lock()
	defer us.mu.Unlock()

	if us.queue.State() == session.StateEmpty {
		return emptyView(), nil
	}
	us.queue.Advance()
	s.finishIfDone(ctx, userID, us)
	return viewOf(us.queue), nil
}

// Progress implements Service.Progress.
func (s *reviewServiceImpl) Progress(ctx context.Context, userID uuid.UUID) (srs.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return srs.Progress{}, s.fail(log, "progress", "failed to list memory items", err)
	}
	return s.srsService.Progress(items), nil
}

// loadOwned fetches an item and checks that userID owns it.
func (s *reviewServiceImpl) loadOwned(
	ctx context.Context,
	items store.MemoryItemStore,
	userID, itemID uuid.UUID,
) (*domain.MemoryItem, error) {
	item, err := items.GetByID(ctx, itemID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get memory item: %w", err)
	}
	if item.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("user does not own memory item",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("owner_id", item.UserID.String()))
		return nil, ErrItemNotOwned
	}
	return item, nil
}

func (s *reviewServiceImpl) sessionFor(userID uuid.UUID) *userSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	us, ok := s.sessions[userID]
	if !ok {
		collection := session.NewSliceCollection(nil)
		us = &userSession{
			collection: collection,
			queue:      session.NewQueue(s.srsService, collection, session.WithLimit(s.sessionLimit)),
		}
		s.sessions[userID] = us
	}
	return us
}

func (s *reviewServiceImpl) lookupSession(userID uuid.UUID) *userSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// finishIfDone publishes session.completed once the queue is exhausted.
// Callers hold us.mu.
func (s *reviewServiceImpl) finishIfDone(ctx context.Context, userID uuid.UUID, us *userSession) {
	if us.queue.State() != session.StateEmpty || us.reviewed == 0 {
		return
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("review session completed",
		slog.String("user_id", userID.String()),
		slog.Int("reviewed", us.reviewed))
	event, err := events.NewEvent(events.TypeSessionCompleted, userID,
		events.SessionCompletedPayload{Reviewed: us.reviewed}, s.now())
	us.reviewed = 0
	s.publish(ctx, event, err)
}

// publish emits event if an emitter is configured. Failures are logged and
// never reach the caller: the state change has already been committed.
func (s *reviewServiceImpl) publish(ctx context.Context, event *events.Event, buildErr error) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	if buildErr != nil {
		log.Error("failed to build event", slog.String("error", buildErr.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type))
	}
}

// fail passes expected errors through and wraps everything else in a ServiceError.
func (s *reviewServiceImpl) fail(log *slog.Logger, operation, message string, err error) error {
	if isExpected(err) {
		return err
	}
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return NewServiceError(operation, message, err)
}

func mapStoreError(err error) error {
	switch {
	case store.IsConflictError(err):
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	case store.IsNotFoundError(err):
		return ErrItemNotFound
	default:
		return err
	}
}

func viewOf(q *session.Queue) SessionView {
	view := SessionView{
		State:     q.State(),
		Position:  q.Cursor(),
		Total:     q.Len(),
		Remaining: q.Remaining(),
	}
	if current, ok := q.Current(); ok {
		view.Current = &current
	}
	return view
}

func emptyView() SessionView {
	return SessionView{State: session.StateEmpty}
}
