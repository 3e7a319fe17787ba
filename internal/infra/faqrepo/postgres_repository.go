package faqrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// PostgresRepository implements faq.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts or replaces a FAQ row by id.
func (r *PostgresRepository) Upsert(ctx context.Context, item faq.FAQ) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO faqs (id, question, answer, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			category = EXCLUDED.category,
			updated_at = NOW()
	`, item.ID, item.Question, item.Answer, nullableString(item.Category))
	return err
}

// Delete removes a FAQ row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM faqs WHERE id = $1`, id)
	return err
}

// FindByIDs fetches the rows that exist for ids.
func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []string) ([]faq.FAQ, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, answer, category, created_at, updated_at
		FROM faqs
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []faq.FAQ
	for rows.Next() {
		item, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// List returns every row, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]faq.FAQ, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, answer, category, created_at, updated_at
		FROM faqs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []faq.FAQ
	for rows.Next() {
		item, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFAQ(row rowScanner) (faq.FAQ, error) {
	var (
		item     faq.FAQ
		category sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Question, &item.Answer, &category, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return faq.FAQ{}, err
	}
	item.Category = category.String
	return item, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ faq.Repository = (*PostgresRepository)(nil)
