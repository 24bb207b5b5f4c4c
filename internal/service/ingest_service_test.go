package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/hashutil"
	"github.com/yardlex/lexingest/internal/repo"
	"github.com/yardlex/lexingest/internal/testutil"
)

func buildParsed(title, body string) *model.ParsedDocument {
	return &model.ParsedDocument{
		Title:        title,
		Type:         model.DocumentTypeAct,
		Citation:     "Act 12 of 2020",
		Jurisdiction: "JM",
		RawText:      body,
		Sections: []model.ParsedSection{
			{Index: 0, Heading: "1", Text: "1 First provision. " + body},
			{Index: 1, Heading: "2", Text: "2 Second provision."},
		},
		ContentHash: hashutil.ContentHash(body),
	}
}

func TestIngestCreateUpdateSkip(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	svc := NewIngestService(conn)
	ctx := context.Background()
	title := fmt.Sprintf("Test Ingest Act %d", time.Now().UnixNano())

	parsed := buildParsed(title, "original body")
	docID, isNew, err := svc.Ingest(ctx, parsed, "test-source", "https://example.test")
	require.NoError(t, err)
	require.True(t, isNew)
	require.NotEmpty(t, docID)

	sections := repo.NewSectionRepo(conn)
	before, err := sections.ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	// Same content hash: nothing is rewritten.
	docID2, isNew2, err := svc.Ingest(ctx, buildParsed(title, "original body"), "test-source", "https://example.test")
	require.NoError(t, err)
	require.False(t, isNew2)
	require.Equal(t, docID, docID2)
	unchanged, err := sections.ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, before[0].ID, unchanged[0].ID)

	// New content: document updated, sections recreated.
	changed := buildParsed(title, "revised body")
	changed.Sections = append(changed.Sections, model.ParsedSection{Index: 2, Heading: "3", Text: "3 Third provision."})
	docID3, isNew3, err := svc.Ingest(ctx, changed, "test-source", "https://example.test")
	require.NoError(t, err)
	require.False(t, isNew3)
	require.Equal(t, docID, docID3)
	after, err := sections.ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, after, 3)
	require.NotEqual(t, before[0].ID, after[0].ID)

	doc, err := repo.NewDocumentRepo(conn).GetByID(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, hashutil.ContentHash("revised body"), doc.ContentHash)
}

func TestRunJobCompleted(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	svc := NewIngestService(conn)
	ctx := context.Background()
	source := fmt.Sprintf("job-ok-%d", time.Now().UnixNano())

	result, err := svc.RunJob(ctx, source, func(ctx context.Context) (*model.ScrapeResult, error) {
		return &model.ScrapeResult{Success: true, DocumentsFound: 3, DocumentsInserted: 2, DocumentsUpdated: 1}, nil
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	job := findJobBySource(t, conn, source)
	require.Equal(t, model.JobStatusCompleted, job.Status)
	require.Empty(t, job.Error)
	require.NotZero(t, job.FinishedAt)
}

func TestRunJobFailed(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	svc := NewIngestService(conn)
	ctx := context.Background()
	source := fmt.Sprintf("job-fail-%d", time.Now().UnixNano())

	_, err := svc.RunJob(ctx, source, func(ctx context.Context) (*model.ScrapeResult, error) {
		return nil, fmt.Errorf("upstream exploded")
	})
	require.Error(t, err)

	job := findJobBySource(t, conn, source)
	require.Equal(t, model.JobStatusFailed, job.Status)
	require.Contains(t, job.Error, "upstream exploded")
	require.NotZero(t, job.FinishedAt)
}

func findJobBySource(t *testing.T, conn *sql.DB, source string) *model.IngestionJob {
	t.Helper()
	jobs, err := repo.NewIngestionJobRepo(conn).List(context.Background(), 50, 0)
	require.NoError(t, err)
	for i := range jobs {
		if jobs[i].Source == source {
			return &jobs[i]
		}
	}
	t.Fatalf("no ingestion job found for source %s", source)
	return nil
}
