package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/store"
)

// timestampPrecision is the resolution of PostgreSQL TIMESTAMPTZ columns.
// Timestamps are truncated to it before writing so that the value held by
// the caller compares equal to the stored one.
const timestampPrecision = time.Microsecond

const itemColumns = `id, user_id, category_id, title, content, content_type,
		stage, next_review_date, archived, created_at, updated_at`

// PostgresMemoryItemStore implements the store.MemoryItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMemoryItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryItemStore creates a new PostgreSQL implementation of the MemoryItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMemoryItemStore(db store.DBTX, logger *slog.Logger) *PostgresMemoryItemStore {
	if db == nil {
		// ALLOW-PANIC: constructor invariant
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemoryItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_item_store")),
	}
}

// Ensure PostgresMemoryItemStore implements store.MemoryItemStore interface
var _ store.MemoryItemStore = (*PostgresMemoryItemStore)(nil)

// WithTx implements store.MemoryItemStore.WithTx
func (s *PostgresMemoryItemStore) WithTx(tx *sql.Tx) store.MemoryItemStore {
	return &PostgresMemoryItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.MemoryItemStore.Create
// It inserts the item row followed by its history, if any. Callers that need
// atomicity should use WithTx inside store.RunInTransaction.
func (s *PostgresMemoryItemStore) Create(ctx context.Context, item *domain.MemoryItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("memory item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	item.CreatedAt = truncateTimestamp(item.CreatedAt)
	item.UpdatedAt = truncateTimestamp(item.UpdatedAt)

	query := `
		INSERT INTO memory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		nullUUID(item.CategoryID),
		item.Title,
		item.Content,
		item.ContentType,
		item.Stage,
		domain.Date(item.NextReviewDate),
		item.Archived,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create memory item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("user_id", item.UserID.String()))
		return store.NewStoreError("memory_item", "create", "failed to insert memory item", MapError(err))
	}

	if err := s.insertHistory(ctx, item.ID, 0, item.History); err != nil {
		log.Error("failed to insert review history",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	log.Debug("memory item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID.String()))
	return nil
}

// GetByID implements store.MemoryItemStore.GetByID
func (s *PostgresMemoryItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + itemColumns + ` FROM memory_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory item not found", slog.String("item_id", id.String()))
			return nil, store.ErrMemoryItemNotFound
		}
		log.Error("failed to get memory item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, store.NewStoreError("memory_item", "get", "failed to query memory item", MapError(err))
	}

	history, err := s.loadHistory(ctx,
		`SELECT item_id, review_date, performance, time_spent_seconds
		FROM review_records
		WHERE item_id = $1
		ORDER BY seq`, id)
	if err != nil {
		log.Error("failed to load review history",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, err
	}
	item.History = historyFor(history, item.ID)

	return &item, nil
}

// ListByUser implements store.MemoryItemStore.ListByUser
func (s *PostgresMemoryItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MemoryItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + itemColumns + `
		FROM memory_items
		WHERE user_id = $1
		ORDER BY created_at, id`

	items, err := s.queryItems(ctx, query, userID)
	if err != nil {
		log.Error("failed to list memory items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	if len(items) == 0 {
		return items, nil
	}

	history, err := s.loadHistory(ctx,
		`SELECT r.item_id, r.review_date, r.performance, r.time_spent_seconds
		FROM review_records r
		JOIN memory_items m ON m.id = r.item_id
		WHERE m.user_id = $1
		ORDER BY r.item_id, r.seq`, userID)
	if err != nil {
		log.Error("failed to load review history",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	for i := range items {
		items[i].History = historyFor(history, items[i].ID)
	}

	log.Debug("memory items listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// Update implements store.MemoryItemStore.Update
func (s *PostgresMemoryItemStore) Update(
	ctx context.Context,
	item *domain.MemoryItem,
	expectedUpdatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("memory item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	// Any writer that appended history also bumped updated_at, so a stale
	// count here makes the guarded UPDATE below fail with a conflict.
	var stored int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_records WHERE item_id = $1`, item.ID).Scan(&stored)
	if err != nil {
		return store.NewStoreError("memory_item", "update", "failed to count review history", MapError(err))
	}
	if stored > len(item.History) {
		log.Warn("refusing to drop stored review history",
			slog.String("item_id", item.ID.String()),
			slog.Int("stored", stored),
			slog.Int("given", len(item.History)))
		return fmt.Errorf("%w: review history cannot shrink from %d to %d entries",
			store.ErrInvalidEntity, stored, len(item.History))
	}

	item.UpdatedAt = truncateTimestamp(item.UpdatedAt)

	query := `
		UPDATE memory_items
		SET category_id = $2, title = $3, content = $4, content_type = $5,
			stage = $6, next_review_date = $7, archived = $8, updated_at = $9
		WHERE id = $1 AND updated_at = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		nullUUID(item.CategoryID),
		item.Title,
		item.Content,
		item.ContentType,
		item.Stage,
		domain.Date(item.NextReviewDate),
		item.Archived,
		item.UpdatedAt,
		truncateTimestamp(expectedUpdatedAt),
	)
	if err != nil {
		log.Error("failed to update memory item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return store.NewStoreError("memory_item", "update", "failed to update memory item", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrConflict); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		exists, existsErr := s.exists(ctx, item.ID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return store.ErrMemoryItemNotFound
		}
		log.Info("memory item changed concurrently",
			slog.String("item_id", item.ID.String()))
		return fmt.Errorf("%w: memory item %s was modified", store.ErrConflict, item.ID)
	}

	if err := s.insertHistory(ctx, item.ID, stored, item.History[stored:]); err != nil {
		log.Error("failed to append review history",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	log.Debug("memory item updated",
		slog.String("item_id", item.ID.String()),
		slog.Int("stage", item.Stage),
		slog.Int("new_reviews", len(item.History)-stored))
	return nil
}

// Delete implements store.MemoryItemStore.Delete
// Review history is removed by the ON DELETE CASCADE constraint.
func (s *PostgresMemoryItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memory_items WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete memory item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return store.NewStoreError("memory_item", "delete", "failed to delete memory item", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrMemoryItemNotFound); err != nil {
		return err
	}

	log.Debug("memory item deleted", slog.String("item_id", id.String()))
	return nil
}

func (s *PostgresMemoryItemStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM memory_items WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, store.NewStoreError("memory_item", "update", "failed to check memory item", MapError(err))
	}
	return exists, nil
}

func (s *PostgresMemoryItemStore) insertHistory(
	ctx context.Context,
	itemID uuid.UUID,
	firstSeq int,
	records []domain.ReviewRecord,
) error {
	query := `
		INSERT INTO review_records (item_id, seq, review_date, performance, time_spent_seconds)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, r := range records {
		_, err := s.db.ExecContext(ctx, query,
			itemID,
			firstSeq+i,
			domain.Date(r.Date),
			string(r.Performance),
			r.TimeSpentSeconds,
		)
		if err != nil {
			return store.NewStoreError("review_record", "create", "failed to insert review record", MapError(err))
		}
	}
	return nil
}

func (s *PostgresMemoryItemStore) queryItems(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.MemoryItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("memory_item", "list", "failed to query memory items", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	items := []domain.MemoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, store.NewStoreError("memory_item", "list", "failed to scan memory item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("memory_item", "list", "failed to iterate memory items", MapError(err))
	}

	return items, nil
}

// loadHistory runs a query returning (item_id, review_date, performance,
// time_spent_seconds) rows already ordered by seq within each item.
func (s *PostgresMemoryItemStore) loadHistory(
	ctx context.Context,
	query string,
	args ...any,
) (map[uuid.UUID][]domain.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("review_record", "list", "failed to query review history", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	history := make(map[uuid.UUID][]domain.ReviewRecord)
	for rows.Next() {
		var (
			itemID      uuid.UUID
			record      domain.ReviewRecord
			performance string
		)
		if err := rows.Scan(&itemID, &record.Date, &performance, &record.TimeSpentSeconds); err != nil {
			return nil, store.NewStoreError("review_record", "list", "failed to scan review record", err)
		}
		record.Date = domain.Date(record.Date)
		record.Performance = domain.Performance(performance)
		history[itemID] = append(history[itemID], record)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_record", "list", "failed to iterate review history", MapError(err))
	}

	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.MemoryItem, error) {
	var (
		item     domain.MemoryItem
		category uuid.NullUUID
	)
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&category,
		&item.Title,
		&item.Content,
		&item.ContentType,
		&item.Stage,
		&item.NextReviewDate,
		&item.Archived,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.MemoryItem{}, err
	}

	if category.Valid {
		item.CategoryID = category.UUID
	}
	item.NextReviewDate = domain.Date(item.NextReviewDate)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func historyFor(history map[uuid.UUID][]domain.ReviewRecord, id uuid.UUID) []domain.ReviewRecord {
	if records, ok := history[id]; ok {
		return records
	}
	return []domain.ReviewRecord{}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func truncateTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(timestampPrecision)
}
