package vectorindex

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// PGVectorIndex stores FAQ embeddings in Postgres using the pgvector extension.
// Scores are cosine similarity, 1 - cosine distance.
type PGVectorIndex struct {
	pool *pgxpool.Pool
}

// NewPGVectorIndex constructs the index over the faq_embeddings table.
func NewPGVectorIndex(pool *pgxpool.Pool) *PGVectorIndex {
	return &PGVectorIndex{pool: pool}
}

func (p *PGVectorIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO faq_embeddings (id, embedding, question, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			question = EXCLUDED.question,
			category = EXCLUDED.category
	`, id, pgvector.NewVector(vector), metadata[faq.MetadataQuestion], metadata[faq.MetadataCategory])
	return err
}

func (p *PGVectorIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.pool.Exec(ctx, `DELETE FROM faq_embeddings WHERE id = ANY($1)`, ids)
	return err
}

func (p *PGVectorIndex) Query(ctx context.Context, vector []float32, opts faq.QueryOptions) ([]faq.VectorMatch, error) {
	limit := opts.TopK
	if limit <= 0 {
		limit = 5
	}
	rows, err := p.pool.Query(ctx, `
		SELECT id, question, category, 1 - (embedding <=> $1) AS score
		FROM faq_embeddings
		ORDER BY embedding <=> $1 ASC
		LIMIT $2
	`, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []faq.VectorMatch
	for rows.Next() {
		var (
			match              faq.VectorMatch
			question, category string
		)
		if err := rows.Scan(&match.ID, &question, &category, &match.Score); err != nil {
			return nil, err
		}
		if opts.ReturnMetadata {
			match.Metadata = map[string]string{
				faq.MetadataQuestion: question,
				faq.MetadataCategory: category,
			}
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

var _ faq.VectorIndex = (*PGVectorIndex)(nil)
