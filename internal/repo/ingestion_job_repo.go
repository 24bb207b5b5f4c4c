package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/dbutil"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

type IngestionJobRepo struct {
	db dbutil.Queryer
}

func NewIngestionJobRepo(db dbutil.Queryer) *IngestionJobRepo {
	return &IngestionJobRepo{db: db}
}

func (r *IngestionJobRepo) Create(ctx context.Context, job *model.IngestionJob) error {
	data := map[string]interface{}{
		"id":          job.ID,
		"source":      job.Source,
		"status":      job.Status,
		"error":       job.Error,
		"started_at":  job.StartedAt,
		"finished_at": job.FinishedAt,
	}
	sqlStr, args, err := builder.BuildInsert("ingestion_jobs", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Finish transitions a RUNNING job to a terminal status exactly once.
// A second finish attempt reports ErrJobFinished.
func (r *IngestionJobRepo) Finish(ctx context.Context, jobID, status, errMsg string, finishedAt int64) error {
	const query = `
		UPDATE ingestion_jobs
		SET status = $1, error = $2, finished_at = $3
		WHERE id = $4 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, status, errMsg, finishedAt, jobID, model.JobStatusRunning)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrJobFinished
	}
	return nil
}

func (r *IngestionJobRepo) Get(ctx context.Context, jobID string) (*model.IngestionJob, error) {
	const query = `
		SELECT id, source, status, error, started_at, finished_at
		FROM ingestion_jobs
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, jobID)
	var job model.IngestionJob
	if err := row.Scan(&job.ID, &job.Source, &job.Status, &job.Error, &job.StartedAt, &job.FinishedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *IngestionJobRepo) List(ctx context.Context, limit, offset uint) ([]model.IngestionJob, error) {
	where := map[string]interface{}{
		"_orderby": "started_at desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("ingestion_jobs", where, []string{"id", "source", "status", "error", "started_at", "finished_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	jobs := make([]model.IngestionJob, 0)
	for rows.Next() {
		var job model.IngestionJob
		if err := rows.Scan(&job.ID, &job.Source, &job.Status, &job.Error, &job.StartedAt, &job.FinishedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
