// internal/catalog/store_test.go
package catalog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/recommend"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock, db
}

func giftColumns() []string {
	return []string{"id", "name", "description", "category", "age_min", "age_max", "price", "image", "created_at"}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestStore_ListGifts(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	created := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, description, category").
		WillReturnRows(sqlmock.NewRows(giftColumns()).
			AddRow("g1", "Gaming Headset", "Wireless headset", "gaming", 12, 100, 59.99, "", created).
			AddRow("g2", "Crystal Growing Kit", "", "science", 8, 100, 24.99, "", created))

	gifts, err := store.ListGifts(context.Background())
	require.NoError(t, err)
	require.Len(t, gifts, 2)
	assert.Equal(t, "Gaming Headset", gifts[0].Name)
	assert.Equal(t, 59.99, gifts[0].Price)
	assert.Equal(t, "science", gifts[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListGifts_QueryError(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT id, name, description, category").
		WillReturnError(sql.ErrConnDone)

	_, err := store.ListGifts(context.Background())
	assert.Error(t, err)
}

func TestStore_ListCategories(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT id, name, interests").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "interests"}).
			AddRow("c1", "gaming", pq.Array([]string{"gaming"})).
			AddRow("c2", "science", pq.Array([]string{"dinosaurs", "science"})))

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "gaming", categories[0].Name)
	assert.Equal(t, []string{"dinosaurs", "science"}, categories[1].Interests)
}

func TestStore_CountGifts(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountGifts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestStore_SeedFromKnowledgeBase_SkipsNonEmptyCatalog(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	kb := recommend.NewKnowledgeBase(
		[]string{"gaming"},
		map[string][]recommend.GiftTemplate{
			"gaming": {{Name: "Gaming Headset", Category: "gaming", AgeMin: 12}},
		},
	)

	require.NoError(t, store.SeedFromKnowledgeBase(context.Background(), kb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SeedFromKnowledgeBase_PopulatesEmptyCatalog(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO gifts")
	mock.ExpectExec("INSERT INTO gifts").
		WithArgs("kb-001", "Gaming Headset", "", "gaming", 12, 100, 0.0, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO categories")
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("cat-01", "gaming", pq.Array([]string{"gaming"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	kb := recommend.NewKnowledgeBase(
		[]string{"gaming"},
		map[string][]recommend.GiftTemplate{
			"gaming": {{Name: "Gaming Headset", Category: "gaming", AgeMin: 12}},
		},
	)

	require.NoError(t, store.SeedFromKnowledgeBase(context.Background(), kb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS gifts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS categories").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_gifts_category").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
