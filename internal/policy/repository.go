package policy

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type Repository interface {
	InsertChunk(ctx context.Context, c *Chunk, embedding []float32) (int64, error)
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]Chunk, error)
}

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) InsertChunk(ctx context.Context, c *Chunk, embedding []float32) (int64, error) {
	var id int64

	err := r.db.QueryRow(ctx, `
		INSERT INTO policy_chunk (category, title, content, source, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		c.Category,
		c.Title,
		c.Content,
		c.Source,
		c.Tags,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if embedding != nil {
		vec := pgvector.NewVector(embedding)
		_, err = r.db.Exec(ctx, `
			INSERT INTO policy_chunk_embedding (chunk_id, embedding)
			VALUES ($1, $2)
		`, id, vec)
		if err != nil {
			return 0, err
		}
	}

	return id, nil
}

// SearchSimilar returns the chunks nearest to embedding across all
// categories, ordered by distance.
func (r *PgRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]Chunk, error) {
	if limit <= 0 {
		limit = DefaultTopK
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.category, c.title, c.content, c.source, c.tags, c.created_at, c.updated_at
		FROM policy_chunk c
		JOIN policy_chunk_embedding e ON c.id = e.chunk_id
		ORDER BY e.embedding <-> $1
		LIMIT $2
	`, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(
			&c.ID,
			&c.Category,
			&c.Title,
			&c.Content,
			&c.Source,
			&c.Tags,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}
