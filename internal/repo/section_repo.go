package repo

import (
	"context"

	"github.com/didi/gendry/builder"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
)

type SectionRepo struct {
	db dbutil.Queryer
}

func NewSectionRepo(db dbutil.Queryer) *SectionRepo {
	return &SectionRepo{db: db}
}

func (r *SectionRepo) Create(ctx context.Context, section *model.Section) error {
	data := map[string]interface{}{
		"id":          section.ID,
		"document_id": section.DocumentID,
		"index":       section.Index,
		"heading":     section.Heading,
		"text":        section.Text,
		"ctime":       section.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("sections", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *SectionRepo) DeleteByDocument(ctx context.Context, docID string) error {
	const query = `DELETE FROM sections WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, query, docID)
	return err
}

// ListByDocument returns sections in reading order.
func (r *SectionRepo) ListByDocument(ctx context.Context, docID string) ([]model.Section, error) {
	where := map[string]interface{}{
		"document_id": docID,
		"_orderby":    "index",
	}
	sqlStr, args, err := builder.BuildSelect("sections", where, []string{"id", "document_id", "index", "heading", "text", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sections := make([]model.Section, 0)
	for rows.Next() {
		var section model.Section
		if err := rows.Scan(&section.ID, &section.DocumentID, &section.Index, &section.Heading, &section.Text, &section.Ctime); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}

func (r *SectionRepo) CountByDocument(ctx context.Context, docID string) (int, error) {
	row := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sections WHERE document_id = $1", docID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
