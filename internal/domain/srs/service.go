package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Service defines the interface for SRS algorithm operations.
//
// All methods are pure with respect to their inputs: items are passed by
// value and updated copies are returned.
type Service interface {
	// Schedule computes the next stage, due date and status for item.
	// Panics if performance is invalid or item is archived.
	Schedule(item domain.MemoryItem, performance domain.Performance) Result

	// RecordReview appends a review to item's history, applies the schedule
	// and bumps UpdatedAt. Panics if performance is invalid or item is archived.
	RecordReview(
		item domain.MemoryItem,
		performance domain.Performance,
		timeSpentSeconds int,
	) domain.MemoryItem

	// SelectDue returns the items due on referenceDate in input order.
	SelectDue(items []domain.MemoryItem, referenceDate time.Time) []domain.MemoryItem

	// SelectDueToday is SelectDue for the service clock's current date.
	SelectDueToday(items []domain.MemoryItem) []domain.MemoryItem

	// Progress summarises items as of the service clock's current date.
	Progress(items []domain.MemoryItem) Progress

	// Today is the service clock's current calendar date.
	Today() time.Time
}

// Option configures the default service.
type Option func(*defaultService)

// WithClock injects the time source used for "today" and UpdatedAt.
func WithClock(clock domain.Clock) Option {
	return func(s *defaultService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithParams replaces the default interval ladder.
func WithParams(params *Params) Option {
	return func(s *defaultService) {
		if params != nil {
			s.params = params
		}
	}
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	now    domain.Clock
}

var _ Service = (*defaultService)(nil)

// NewService creates a new SRS service with default parameters and the
// system clock unless overridden by opts.
func NewService(opts ...Option) Service {
	s := &defaultService{
		params: NewDefaultParams(),
		now:    domain.SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *defaultService) Schedule(item domain.MemoryItem, performance domain.Performance) Result {
	mustBeReviewable(&item)
	return Schedule(item.Stage, performance, s.now(), s.params)
}

func (s *defaultService) RecordReview(
	item domain.MemoryItem,
	performance domain.Performance,
	timeSpentSeconds int,
) domain.MemoryItem {
	mustBeReviewable(&item)
	if timeSpentSeconds < 0 {
		timeSpentSeconds = 0
	}
	return applyReview(item, performance, timeSpentSeconds, s.now(), s.params)
}

func (s *defaultService) SelectDue(items []domain.MemoryItem, referenceDate time.Time) []domain.MemoryItem {
	return SelectDue(items, referenceDate)
}

func (s *defaultService) SelectDueToday(items []domain.MemoryItem) []domain.MemoryItem {
	return SelectDue(items, s.Today())
}

func (s *defaultService) Progress(items []domain.MemoryItem) Progress {
	return Summarize(items, s.Today())
}

func (s *defaultService) Today() time.Time {
	return domain.Date(s.now())
}

// mustBeReviewable panics on archived items; the scheduler never touches
// the archive flag, so callers must filter them out first.
func mustBeReviewable(item *domain.MemoryItem) {
	if item.Archived {
		// ALLOW-PANIC: reviewing an archived item is a caller bug
		panic(fmt.Sprintf("srs: item %s is archived and cannot be scheduled", item.ID))
	}
}
