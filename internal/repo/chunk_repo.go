package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

type ChunkRepo struct {
	db dbutil.Queryer
}

func NewChunkRepo(db dbutil.Queryer) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Create(ctx context.Context, chunk *model.Chunk) error {
	data := map[string]interface{}{
		"id":          chunk.ID,
		"document_id": chunk.DocumentID,
		"section_id":  chunk.SectionID,
		"index":       chunk.Index,
		"text":        chunk.Text,
		"ctime":       chunk.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chunks", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

// GetByPosition looks up a chunk by its (document, section, index)
// identity, the uniqueness rule that keeps chunk creation idempotent.
func (r *ChunkRepo) GetByPosition(ctx context.Context, docID, sectionID string, index int) (*model.Chunk, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"section_id":  sectionID,
		"index":       index,
	}
	sqlStr, args, err := builder.BuildSelect("chunks", where, []string{"id", "document_id", "section_id", "index", "text", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var chunk model.Chunk
	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SectionID, &chunk.Index, &chunk.Text, &chunk.Ctime); err != nil {
		return nil, err
	}
	return &chunk, rows.Err()
}

func (r *ChunkRepo) GetByID(ctx context.Context, chunkID string) (*model.Chunk, error) {
	const query = `SELECT id, document_id, section_id, index, text, ctime FROM chunks WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, chunkID)
	var chunk model.Chunk
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SectionID, &chunk.Index, &chunk.Text, &chunk.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &chunk, nil
}

func (r *ChunkRepo) ListByDocument(ctx context.Context, docID string) ([]model.Chunk, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "section_id, index",
	}
	sqlStr, args, err := builder.BuildSelect("chunks", where, []string{"id", "document_id", "section_id", "index", "text", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chunks := make([]model.Chunk, 0)
	for rows.Next() {
		var chunk model.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SectionID, &chunk.Index, &chunk.Text, &chunk.Ctime); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// ListMissingEmbeddings pulls chunks that have no stored embedding yet,
// in insertion order.
func (r *ChunkRepo) ListMissingEmbeddings(ctx context.Context, limit int) ([]model.Chunk, error) {
	const query = `
		SELECT c.id, c.document_id, c.section_id, c.index, c.text, c.ctime
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.id IS NULL
		ORDER BY c.ctime
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	chunks := make([]model.Chunk, 0)
	for rows.Next() {
		var chunk model.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SectionID, &chunk.Index, &chunk.Text, &chunk.Ctime); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// CountMissingEmbeddings reports the size of the whole pending backlog.
func (r *ChunkRepo) CountMissingEmbeddings(ctx context.Context) (int, error) {
	const query = `
		SELECT COUNT(1)
		FROM chunks c
		LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE e.id IS NULL
	`
	row := r.db.QueryRowContext(ctx, query)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM chunks")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
