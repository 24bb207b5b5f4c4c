package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

type EmbeddingRepo struct {
	db dbutil.Queryer
}

func NewEmbeddingRepo(db dbutil.Queryer) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

// Upsert stores the vector for a chunk, replacing any existing one. A
// chunk holds at most one embedding.
func (r *EmbeddingRepo) Upsert(ctx context.Context, emb *model.Embedding) error {
	const query = `
		INSERT INTO embeddings (id, chunk_id, vector, mtime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id) DO UPDATE SET
			vector = EXCLUDED.vector,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query,
		emb.ID,
		emb.ChunkID,
		pgvector.NewVector(emb.Vector),
		emb.Mtime,
	)
	return err
}

func (r *EmbeddingRepo) GetByChunkID(ctx context.Context, chunkID string) (*model.Embedding, error) {
	const query = `SELECT id, chunk_id, vector, mtime FROM embeddings WHERE chunk_id = $1`
	row := r.db.QueryRowContext(ctx, query, chunkID)
	var emb model.Embedding
	var vec pgvector.Vector
	if err := row.Scan(&emb.ID, &emb.ChunkID, &vec, &emb.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	emb.Vector = vec.Slice()
	return &emb, nil
}

func (r *EmbeddingRepo) ExistsForChunk(ctx context.Context, chunkID string) (bool, error) {
	const query = `SELECT 1 FROM embeddings WHERE chunk_id = $1`
	row := r.db.QueryRowContext(ctx, query, chunkID)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *EmbeddingRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM embeddings")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
