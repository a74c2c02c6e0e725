// internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/models"
	"gift-finder-backend/internal/recommend"
)

// Store reads and writes the gift catalog in PostgreSQL.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// NewStore creates a catalog store on an open connection pool.
func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS gifts (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL,
			age_min     INTEGER NOT NULL DEFAULT 0,
			age_max     INTEGER NOT NULL DEFAULT 100,
			price       NUMERIC(10,2) NOT NULL DEFAULT 0,
			image       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			interests TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_category ON gifts (category)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// ListGifts returns the full catalog ordered by insertion time, which
// keeps candidate positions stable between requests.
func (s *Store) ListGifts(ctx context.Context) ([]models.Gift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, age_min, age_max, price, image, created_at
		FROM gifts
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	defer rows.Close()

	var gifts []models.Gift
	for rows.Next() {
		var g models.Gift
		if err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.Category,
			&g.AgeMin, &g.AgeMax, &g.Price, &g.Image, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gift row: %w", err)
		}
		gifts = append(gifts, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gift rows: %w", err)
	}
	return gifts, nil
}

// ListCategories returns all categories with their interest tags.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, interests
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, pq.Array(&c.Interests)); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

// CountGifts returns the number of catalog entries.
func (s *Store) CountGifts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gifts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count gifts: %w", err)
	}
	return count, nil
}

// InsertGifts stores gifts, skipping IDs that already exist.
func (s *Store) InsertGifts(ctx context.Context, gifts []models.Gift) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin gift insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gifts (id, name, description, category, age_min, age_max, price, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare gift insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range gifts {
		if _, err := stmt.ExecContext(ctx,
			g.ID, g.Name, g.Description, g.Category,
			g.AgeMin, g.AgeMax, g.Price, g.Image,
		); err != nil {
			return fmt.Errorf("insert gift %s: %w", g.ID, err)
		}
	}
	return tx.Commit()
}

// InsertCategories stores categories, skipping IDs that already exist.
func (s *Store) InsertCategories(ctx context.Context, categories []models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin category insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, interests)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare category insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range categories {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, pq.Array(c.Interests)); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// SeedFromKnowledgeBase populates an empty catalog from the gift
// knowledge base so a fresh deployment can answer searches immediately.
// A non-empty catalog is left untouched.
func (s *Store) SeedFromKnowledgeBase(ctx context.Context, kb *recommend.KnowledgeBase) error {
	count, err := s.CountGifts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var gifts []models.Gift
	categorySeen := map[string][]string{}
	var categoryOrder []string
	id := 0
	for _, key := range kb.Keys() {
		templates, _ := kb.Lookup(key)
		for _, tmpl := range templates {
			id++
			gift := tmpl.Gift()
			gift.ID = fmt.Sprintf("kb-%03d", id)
			gifts = append(gifts, gift)
			if _, ok := categorySeen[gift.Category]; !ok {
				categoryOrder = append(categoryOrder, gift.Category)
			}
			categorySeen[gift.Category] = appendUnique(categorySeen[gift.Category], key)
		}
	}

	if err := s.InsertGifts(ctx, gifts); err != nil {
		return err
	}

	var categories []models.Category
	for i, name := range categoryOrder {
		categories = append(categories, models.Category{
			ID:        fmt.Sprintf("cat-%02d", i+1),
			Name:      name,
			Interests: categorySeen[name],
		})
	}
	if err := s.InsertCategories(ctx, categories); err != nil {
		return err
	}

	s.logger.Info("seeded catalog from knowledge base", map[string]interface{}{
		"gifts":      len(gifts),
		"categories": len(categories),
	})
	return nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
