package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeTime = time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.UTC)

func newMockStore(t *testing.T) (*PostgresMemoryItemStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresMemoryItemStore(db, nil), mock
}

func newStoreItem(t *testing.T) *domain.MemoryItem {
	t.Helper()
	item, err := domain.NewMemoryItem(uuid.New(), uuid.Nil, "Mitochondria", "powerhouse", "text", storeTime)
	require.NoError(t, err)
	return item
}

func itemRows(items ...*domain.MemoryItem) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "category_id", "title", "content", "content_type",
		"stage", "next_review_date", "archived", "created_at", "updated_at",
	})
	for _, item := range items {
		var category any
		if item.CategoryID != uuid.Nil {
			category = item.CategoryID.String()
		}
		rows.AddRow(
			item.ID.String(), item.UserID.String(), category,
			item.Title, item.Content, item.ContentType,
			int64(item.Stage), item.NextReviewDate, item.Archived,
			item.CreatedAt, item.UpdatedAt,
		)
	}
	return rows
}

func historyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"item_id", "review_date", "performance", "time_spent_seconds"})
}

func TestNewPostgresMemoryItemStorePanicsWithoutDB(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewPostgresMemoryItemStore(nil, nil) })
}

func TestMemoryItemStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("inserts item and history", func(t *testing.T) {
		s, mock := newMockStore(t)
		item := newStoreItem(t)
		item.History = append(item.History, domain.ReviewRecord{
			Date:        storeTime,
			Performance: domain.PerformanceEasy,
		})

		mock.ExpectExec("INSERT INTO memory_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO review_records").
			WithArgs(item.ID, 0, domain.Date(storeTime), "easy", 0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), item))
		assert.Equal(t, storeTime.Truncate(time.Microsecond), item.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid item is rejected before touching the database", func(t *testing.T) {
		s, mock := newMockStore(t)
		item := newStoreItem(t)
		item.Title = ""

		err := s.Create(context.Background(), item)
		assert.ErrorIs(t, err, domain.ErrEmptyItemTitle)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO memory_items").
			WillReturnError(newPgError(uniqueViolationCode))

		err := s.Create(context.Background(), newStoreItem(t))
		assert.ErrorIs(t, err, store.ErrDuplicate)

		var storeErr *store.StoreError
		require.True(t, errors.As(err, &storeErr))
		assert.Equal(t, "create", storeErr.Operation)
	})
}

func TestMemoryItemStoreGetByID(t *testing.T) {
	t.Parallel()

	t.Run("found with history", func(t *testing.T) {
		s, mock := newMockStore(t)
		item := newStoreItem(t)
		item.CategoryID = uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM memory_items WHERE id = \\$1").
			WithArgs(item.ID).
			WillReturnRows(itemRows(item))
		mock.ExpectQuery("FROM review_records").
			WithArgs(item.ID).
			WillReturnRows(historyRows().
				AddRow(item.ID.String(), storeTime, "hard", int64(12)).
				AddRow(item.ID.String(), storeTime.AddDate(0, 0, 4), "again", int64(3)))

		got, err := s.GetByID(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.CategoryID, got.CategoryID)
		require.Len(t, got.History, 2)
		assert.Equal(t, domain.PerformanceHard, got.History[0].Performance)
		assert.Equal(t, 12, got.History[0].TimeSpentSeconds)
		assert.Equal(t, domain.Date(storeTime.AddDate(0, 0, 4)), got.History[1].Date)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("uncategorised item without history", func(t *testing.T) {
		s, mock := newMockStore(t)
		item := newStoreItem(t)

		mock.ExpectQuery("FROM memory_items").WillReturnRows(itemRows(item))
		mock.ExpectQuery("FROM review_records").WillReturnRows(historyRows())

		got, err := s.GetByID(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, got.CategoryID)
		assert.NotNil(t, got.History)
		assert.Empty(t, got.History)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM memory_items").WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrMemoryItemNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestMemoryItemStoreListByUser(t *testing.T) {
	t.Parallel()

	t.Run("attaches history per item", func(t *testing.T) {
		s, mock := newMockStore(t)
		first := newStoreItem(t)
		second := newStoreItem(t)
		second.UserID = first.UserID

		mock.ExpectQuery("FROM memory_items\\s+WHERE user_id = \\$1\\s+ORDER BY created_at, id").
			WithArgs(first.UserID).
			WillReturnRows(itemRows(first, second))
		mock.ExpectQuery("JOIN memory_items").
			WithArgs(first.UserID).
			WillReturnRows(historyRows().
				AddRow(second.ID.String(), storeTime, "medium", int64(5)))

		items, err := s.ListByUser(context.Background(), first.UserID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first.ID, items[0].ID)
		assert.Empty(t, items[0].History)
		require.Len(t, items[1].History, 1)
		assert.Equal(t, domain.PerformanceMedium, items[1].History[0].Performance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no items skips history query", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("FROM memory_items").WillReturnRows(itemRows())

		items, err := s.ListByUser(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryItemStoreUpdate(t *testing.T) {
	t.Parallel()

	reviewed := func(t *testing.T) (*domain.MemoryItem, time.Time) {
		item := newStoreItem(t)
		previous := item.UpdatedAt
		item.History = append(item.History,
			domain.ReviewRecord{Date: storeTime, Performance: domain.PerformanceHard},
			domain.ReviewRecord{Date: storeTime.AddDate(0, 0, 4), Performance: domain.PerformanceEasy, TimeSpentSeconds: 9},
		)
		item.Stage = 3
		item.UpdatedAt = storeTime.Add(time.Hour)
		return item, previous
	}

	t.Run("appends only new history", func(t *testing.T) {
		s, mock := newMockStore(t)
		item, previous := reviewed(t)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_records").
			WithArgs(item.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectExec("UPDATE memory_items").
			WithArgs(item.ID, sqlmock.AnyArg(), item.Title, item.Content, item.ContentType,
				3, sqlmock.AnyArg(), false, sqlmock.AnyArg(), previous.Truncate(time.Microsecond)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO review_records").
			WithArgs(item.ID, 1, domain.Date(storeTime.AddDate(0, 0, 4)), "easy", 9).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), item, previous))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale updated_at is a conflict", func(t *testing.T) {
		s, mock := newMockStore(t)
		item, previous := reviewed(t)

		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectExec("UPDATE memory_items").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(item.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := s.Update(context.Background(), item, previous)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.True(t, store.IsConflictError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		s, mock := newMockStore(t)
		item, previous := reviewed(t)

		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectExec("UPDATE memory_items").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := s.Update(context.Background(), item, previous)
		assert.ErrorIs(t, err, store.ErrMemoryItemNotFound)
	})

	t.Run("history cannot shrink", func(t *testing.T) {
		s, mock := newMockStore(t)
		item, previous := reviewed(t)

		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

		err := s.Update(context.Background(), item, previous)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryItemStoreDelete(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM memory_items").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM memory_items").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrMemoryItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryItemStoreWithTx(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM memory_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	s := NewPostgresMemoryItemStore(db, nil).WithTx(tx)
	require.NoError(t, s.Delete(context.Background(), uuid.New()))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
