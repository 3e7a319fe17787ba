package faqrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// SQLiteRepository implements faq.Repository on a modernc SQLite database.
// Timestamps are stored as unix nanoseconds so ordering is exact.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates the faqs table if needed.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS faqs (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category TEXT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_faqs_created_at ON faqs (created_at);
	`)
	if err != nil {
		return nil, fmt.Errorf("create faqs table: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// Upsert implements faq.Repository. CreatedAt survives updates.
func (r *SQLiteRepository) Upsert(ctx context.Context, item faq.FAQ) error {
	now := r.now().UTC().UnixNano()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO faqs (id, question, answer, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET question = excluded.question,
			answer = excluded.answer,
			category = excluded.category,
			updated_at = excluded.updated_at
	`, item.ID, item.Question, item.Answer, nullableString(item.Category), now, now)
	return err
}

// Delete implements faq.Repository.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	return err
}

// FindByIDs implements faq.Repository.
func (r *SQLiteRepository) FindByIDs(ctx context.Context, ids []string) ([]faq.FAQ, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, `
		SELECT id, question, answer, category, created_at, updated_at
		FROM faqs
		WHERE id IN (`+placeholders+`)
	`, args...)
}

// List implements faq.Repository, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]faq.FAQ, error) {
	return r.query(ctx, `
		SELECT id, question, answer, category, created_at, updated_at
		FROM faqs
		ORDER BY created_at DESC, rowid DESC
	`)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]faq.FAQ, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []faq.FAQ
	for rows.Next() {
		var (
			item             faq.FAQ
			category         sql.NullString
			created, updated int64
		)
		if err := rows.Scan(&item.ID, &item.Question, &item.Answer, &category, &created, &updated); err != nil {
			return nil, err
		}
		item.Category = category.String
		item.CreatedAt = time.Unix(0, created).UTC()
		item.UpdatedAt = time.Unix(0, updated).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

var _ faq.Repository = (*SQLiteRepository)(nil)
