package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

var documentFields = []string{
	"id", "source_id", "title", "type", "citation", "jurisdiction",
	"date_enacted", "date_commenced", "date_last_amended", "published_at",
	"content_hash", "ctime", "mtime",
}

type DocumentRepo struct {
	db dbutil.Queryer
}

func NewDocumentRepo(db dbutil.Queryer) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":                doc.ID,
		"source_id":         doc.SourceID,
		"title":             doc.Title,
		"type":              string(doc.Type),
		"citation":          doc.Citation,
		"jurisdiction":      doc.Jurisdiction,
		"date_enacted":      doc.DateEnacted,
		"date_commenced":    doc.DateCommenced,
		"date_last_amended": doc.DateLastAmended,
		"published_at":      doc.PublishedAt,
		"content_hash":      doc.ContentHash,
		"ctime":             doc.Ctime,
		"mtime":             doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) Update(ctx context.Context, doc *model.Document) error {
	where := map[string]interface{}{
		"id": doc.ID,
	}
	update := map[string]interface{}{
		"title":             doc.Title,
		"citation":          doc.Citation,
		"jurisdiction":      doc.Jurisdiction,
		"date_enacted":      doc.DateEnacted,
		"date_commenced":    doc.DateCommenced,
		"date_last_amended": doc.DateLastAmended,
		"published_at":      doc.PublishedAt,
		"content_hash":      doc.ContentHash,
		"mtime":             doc.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// GetByTitleAndType returns the most recently created document matching
// (title, type). Title matching is the upsert identity rule; two distinct
// documents sharing a title would collide here.
func (r *DocumentRepo) GetByTitleAndType(ctx context.Context, title string, docType model.DocumentType) (*model.Document, error) {
	where := map[string]interface{}{
		"title":    title,
		"type":     string(docType),
		"_orderby": "ctime desc",
		"_limit":   []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
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
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}
	return doc, rows.Err()
}

// LockByID takes a row lock on the document so concurrent ingestion runs
// for the same title/type serialize on the update path. Must run inside
// a transaction.
func (r *DocumentRepo) LockByID(ctx context.Context, docID string) error {
	const query = `SELECT id FROM documents WHERE id = $1 FOR UPDATE`
	var id string
	if err := r.db.QueryRowContext(ctx, query, docID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return appErr.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id": docID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
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
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, err
	}
	return doc, rows.Err()
}

func (r *DocumentRepo) List(ctx context.Context, limit, offset uint) ([]model.Document, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	docs := make([]model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) ListIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM documents ORDER BY ctime`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM documents")
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanDocument(rows *sql.Rows) (*model.Document, error) {
	var doc model.Document
	var docType string
	if err := rows.Scan(
		&doc.ID,
		&doc.SourceID,
		&doc.Title,
		&docType,
		&doc.Citation,
		&doc.Jurisdiction,
		&doc.DateEnacted,
		&doc.DateCommenced,
		&doc.DateLastAmended,
		&doc.PublishedAt,
		&doc.ContentHash,
		&doc.Ctime,
		&doc.Mtime,
	); err != nil {
		return nil, err
	}
	doc.Type = model.DocumentType(docType)
	return &doc, nil
}
