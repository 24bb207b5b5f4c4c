package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/yardlex/lexingest/internal/model"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
	"github.com/yardlex/lexingest/internal/pkg/timeutil"
	"github.com/yardlex/lexingest/internal/repo"
)

// IngestService upserts parsed documents. The content fingerprint decides
// whether a matched document is rewritten or left untouched.
type IngestService struct {
	db   *sql.DB
	jobs *repo.IngestionJobRepo
}

func NewIngestService(db *sql.DB) *IngestService {
	return &IngestService{
		db:   db,
		jobs: repo.NewIngestionJobRepo(db),
	}
}

// Ingest stores a parsed document and its sections in one transaction.
// Returns the document ID and whether a new document row was created.
func (s *IngestService) Ingest(ctx context.Context, parsed *model.ParsedDocument, sourceName, sourceURL string) (string, bool, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("title", parsed.Title), zap.String("type", string(parsed.Type)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin ingest tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	docID, isNew, err := s.ingestInTx(ctx, tx, parsed, sourceName, sourceURL)
	if err != nil {
		return "", false, err
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit ingest tx: %w", err)
	}
	if isNew {
		logger.Info("document created", zap.String("doc_id", docID))
	}
	return docID, isNew, nil
}

func (s *IngestService) ingestInTx(ctx context.Context, tx *sql.Tx, parsed *model.ParsedDocument, sourceName, sourceURL string) (string, bool, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("title", parsed.Title))
	sources := repo.NewSourceRepo(tx)
	documents := repo.NewDocumentRepo(tx)
	sections := repo.NewSectionRepo(tx)
	now := timeutil.NowUnix()

	sourceID, err := sources.FindOrCreate(ctx, &model.Source{
		ID:    newID(),
		Name:  sourceName,
		URL:   sourceURL,
		Ctime: now,
	})
	if err != nil {
		return "", false, fmt.Errorf("resolve source: %w", err)
	}

	publishedAt := parsed.PublishedAt
	if publishedAt == 0 {
		publishedAt = parsed.DateEnacted
	}

	existing, err := documents.GetByTitleAndType(ctx, parsed.Title, parsed.Type)
	if err != nil && !appErr.IsNotFound(err) {
		return "", false, fmt.Errorf("lookup document: %w", err)
	}

	if existing != nil {
		// Serialize concurrent runs targeting the same document.
		if err := documents.LockByID(ctx, existing.ID); err != nil {
			return "", false, fmt.Errorf("lock document: %w", err)
		}
		if parsed.ContentHash != "" && existing.ContentHash == parsed.ContentHash {
			logger.Debug("document unchanged, skipping", zap.String("doc_id", existing.ID))
			return existing.ID, false, nil
		}
		existing.Title = parsed.Title
		existing.Citation = parsed.Citation
		existing.Jurisdiction = parsed.Jurisdiction
		existing.DateEnacted = parsed.DateEnacted
		existing.DateCommenced = parsed.DateCommenced
		existing.DateLastAmended = parsed.DateLastAmended
		existing.PublishedAt = publishedAt
		existing.ContentHash = parsed.ContentHash
		existing.Mtime = now
		if err := documents.Update(ctx, existing); err != nil {
			return "", false, fmt.Errorf("update document: %w", err)
		}
		// No partial section diffing: drop and recreate.
		if err := sections.DeleteByDocument(ctx, existing.ID); err != nil {
			return "", false, fmt.Errorf("delete sections: %w", err)
		}
		if err := s.insertSections(ctx, sections, existing.ID, parsed.Sections, now); err != nil {
			return "", false, err
		}
		logger.Info("document updated", zap.String("doc_id", existing.ID), zap.Int("sections", len(parsed.Sections)))
		return existing.ID, false, nil
	}

	doc := &model.Document{
		ID:              newID(),
		SourceID:        sourceID,
		Title:           parsed.Title,
		Type:            parsed.Type,
		Citation:        parsed.Citation,
		Jurisdiction:    parsed.Jurisdiction,
		DateEnacted:     parsed.DateEnacted,
		DateCommenced:   parsed.DateCommenced,
		DateLastAmended: parsed.DateLastAmended,
		PublishedAt:     publishedAt,
		ContentHash:     parsed.ContentHash,
		Ctime:           now,
		Mtime:           now,
	}
	if err := documents.Create(ctx, doc); err != nil {
		return "", false, fmt.Errorf("create document: %w", err)
	}
	if err := s.insertSections(ctx, sections, doc.ID, parsed.Sections, now); err != nil {
		return "", false, err
	}
	return doc.ID, true, nil
}

func (s *IngestService) insertSections(ctx context.Context, sections *repo.SectionRepo, docID string, parsed []model.ParsedSection, now int64) error {
	for _, section := range parsed {
		if err := sections.Create(ctx, &model.Section{
			ID:         newID(),
			DocumentID: docID,
			Index:      section.Index,
			Heading:    section.Heading,
			Text:       section.Text,
			Ctime:      now,
		}); err != nil {
			return fmt.Errorf("create section %d: %w", section.Index, err)
		}
	}
	return nil
}

// RunJob wraps a scrape invocation with ingestion-job tracking: the job
// row transitions RUNNING to COMPLETED or FAILED exactly once.
func (s *IngestService) RunJob(ctx context.Context, source string, scrape func(ctx context.Context) (*model.ScrapeResult, error)) (*model.ScrapeResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("source", source))
	job := &model.IngestionJob{
		ID:        newID(),
		Source:    source,
		Status:    model.JobStatusRunning,
		StartedAt: timeutil.NowUnix(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create ingestion job: %w", err)
	}
	logger.Info("ingestion job started", zap.String("job_id", job.ID))

	result, err := scrape(ctx)
	if err != nil {
		if finishErr := s.jobs.Finish(ctx, job.ID, model.JobStatusFailed, err.Error(), timeutil.NowUnix()); finishErr != nil {
			logger.Error("failed to finish job", zap.Error(finishErr))
		}
		logger.Error("ingestion job failed", zap.String("job_id", job.ID), zap.Error(err))
		return &model.ScrapeResult{
			Success: false,
			Errors:  []string{err.Error()},
			Message: fmt.Sprintf("job failed: %v", err),
		}, err
	}

	status := model.JobStatusCompleted
	errMsg := ""
	if !result.Success {
		status = model.JobStatusFailed
		errMsg = strings.Join(result.Errors, "; ")
	}
	if finishErr := s.jobs.Finish(ctx, job.ID, status, errMsg, timeutil.NowUnix()); finishErr != nil {
		logger.Error("failed to finish job", zap.Error(finishErr))
	}
	logger.Info("ingestion job finished",
		zap.String("job_id", job.ID),
		zap.String("status", status),
		zap.Int("found", result.DocumentsFound),
		zap.Int("inserted", result.DocumentsInserted),
		zap.Int("updated", result.DocumentsUpdated),
	)
	return result, nil
}
