package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/ai"
	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/hashutil"
	"github.com/yardlex/lexingest/internal/repo"
	"github.com/yardlex/lexingest/internal/testutil"
)

type fakeEmbedder struct {
	calls   int
	texts   []string
	err     error
	failN   int
	failErr error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.failN > 0 {
		f.failN--
		return nil, f.failErr
	}
	f.calls++
	f.texts = append(f.texts, texts...)
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 1, 2})
	}
	return vectors, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

func ingestFixture(t *testing.T, svc *IngestService, body string) string {
	t.Helper()
	title := fmt.Sprintf("Embed Fixture Act %d", time.Now().UnixNano())
	parsed := &model.ParsedDocument{
		Title:        title,
		Type:         model.DocumentTypeAct,
		Jurisdiction: "JM",
		RawText:      body,
		Sections: []model.ParsedSection{
			{Index: 0, Heading: "1", Text: body},
		},
		ContentHash: hashutil.ContentHash(body),
	}
	docID, _, err := svc.Ingest(context.Background(), parsed, "embed-test-source", "")
	require.NoError(t, err)
	return docID
}

func uniqueBody() string {
	return fmt.Sprintf("The minister may make regulations under this part. Stamp %d marks this text unique.", time.Now().UnixNano())
}

func multiSentenceBody() string {
	stamp := time.Now().UnixNano()
	return fmt.Sprintf("Alpha clause %d applies here. Beta clause %d applies here. Gamma clause %d applies here. Delta clause %d applies here.",
		stamp, stamp, stamp, stamp)
}

func TestMaterializeChunksIdempotent(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	svc := NewEmbeddingService(conn, ai.NewChunker(1000, 200), &fakeEmbedder{}, 10)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, uniqueBody())
	created, err := svc.MaterializeChunks(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	again, err := svc.MaterializeChunks(ctx, docID)
	require.NoError(t, err)
	require.Zero(t, again)
}

func TestProcessDocumentEmbedsOnce(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{}
	svc := NewEmbeddingService(conn, ai.NewChunker(1000, 200), embedder, 10)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, uniqueBody())
	written, err := svc.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, 1, written)
	require.Equal(t, 1, embedder.calls)

	written, err = svc.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.Zero(t, written)
	require.Equal(t, 1, embedder.calls)

	chunks, err := repo.NewChunkRepo(conn).ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	emb, err := repo.NewEmbeddingRepo(conn).GetByChunkID(ctx, chunks[0].ID)
	require.NoError(t, err)
	require.Len(t, emb.Vector, 3)
}

func TestProcessDocumentCacheHitSkipsProvider(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{}
	svc := NewEmbeddingService(conn, ai.NewChunker(1000, 200), embedder, 10)
	ctx := context.Background()

	body := uniqueBody()
	first := ingestFixture(t, ingest, body)
	_, err := svc.ProcessDocument(ctx, first)
	require.NoError(t, err)
	require.Equal(t, 1, embedder.calls)

	// A second document with identical text resolves from the cache.
	second := ingestFixture(t, ingest, body)
	written, err := svc.ProcessDocument(ctx, second)
	require.NoError(t, err)
	require.Equal(t, 1, written)
	require.Equal(t, 1, embedder.calls)
}

func TestProcessDocumentProviderUnavailable(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{err: ai.ErrUnavailable}
	svc := NewEmbeddingService(conn, ai.NewChunker(1000, 200), embedder, 10)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, uniqueBody())
	written, err := svc.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.Zero(t, written)

	// The chunks stay pending for a later run with credentials.
	chunks, err := repo.NewChunkRepo(conn).ListByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	exists, err := repo.NewEmbeddingRepo(conn).ExistsForChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestProcessDocumentContinuesPastFailedBatch(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{failN: 1, failErr: fmt.Errorf("status 500")}
	svc := NewEmbeddingService(conn, ai.NewChunker(60, 10), embedder, 1)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, multiSentenceBody())
	created, err := svc.MaterializeChunks(ctx, docID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, created, 2)

	// One bad batch must not abort the document.
	written, err := svc.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, created-1, written)

	// The failed chunk stays pending and succeeds on the next pass.
	written, err = svc.ProcessDocument(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, 1, written)

	chunks, err := repo.NewChunkRepo(conn).ListByDocument(ctx, docID)
	require.NoError(t, err)
	embeddings := repo.NewEmbeddingRepo(conn)
	for _, chunk := range chunks {
		exists, err := embeddings.ExistsForChunk(ctx, chunk.ID)
		require.NoError(t, err)
		require.True(t, exists)
	}
}

func TestUpdateAllUnavailableCountsWholeBacklog(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{err: ai.ErrUnavailable}
	svc := NewEmbeddingService(conn, ai.NewChunker(60, 10), embedder, 1)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, multiSentenceBody())
	created, err := svc.MaterializeChunks(ctx, docID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, created, 3)

	// Skipped covers the entire backlog, not just the first window.
	stats, err := svc.UpdateAll(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Processed)
	require.Zero(t, stats.Failed)
	require.GreaterOrEqual(t, stats.Skipped, created)
}

func TestUpdateAllProcessesBacklog(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	ingest := NewIngestService(conn)
	embedder := &fakeEmbedder{}
	svc := NewEmbeddingService(conn, ai.NewChunker(1000, 200), embedder, 10)
	ctx := context.Background()

	docID := ingestFixture(t, ingest, uniqueBody())
	created, err := svc.MaterializeChunks(ctx, docID)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	stats, err := svc.UpdateAll(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.Processed, 1)
	require.Zero(t, stats.Failed)

	chunks, err := repo.NewChunkRepo(conn).ListByDocument(ctx, docID)
	require.NoError(t, err)
	exists, err := repo.NewEmbeddingRepo(conn).ExistsForChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	require.True(t, exists)
}
