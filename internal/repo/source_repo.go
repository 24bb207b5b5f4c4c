package repo

import (
	"context"
	"database/sql"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

type SourceRepo struct {
	db dbutil.Queryer
}

func NewSourceRepo(db dbutil.Queryer) *SourceRepo {
	return &SourceRepo{db: db}
}

// FindOrCreate resolves a source by name, inserting it with the candidate
// ID when absent. Sources are never updated after creation.
func (r *SourceRepo) FindOrCreate(ctx context.Context, src *model.Source) (string, error) {
	const insert = `
		INSERT INTO sources (id, name, url, ctime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, src.ID, src.Name, src.URL, src.Ctime); err != nil {
		return "", err
	}
	const query = `SELECT id FROM sources WHERE name = $1`
	var id string
	if err := r.db.QueryRowContext(ctx, query, src.Name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *SourceRepo) GetByName(ctx context.Context, name string) (*model.Source, error) {
	const query = `SELECT id, name, url, ctime FROM sources WHERE name = $1`
	row := r.db.QueryRowContext(ctx, query, name)
	var src model.Source
	if err := row.Scan(&src.ID, &src.Name, &src.URL, &src.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &src, nil
}
