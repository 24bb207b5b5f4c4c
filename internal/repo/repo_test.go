package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/model"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
	"github.com/yardlex/lexingest/internal/testutil"
)

func testID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestSourceRepoFindOrCreate(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewSourceRepo(conn)
	ctx := context.Background()
	name := testID("source")

	first, err := repo.FindOrCreate(ctx, &model.Source{ID: testID("src"), Name: name, URL: "https://example.test", Ctime: time.Now().Unix()})
	require.NoError(t, err)
	second, err := repo.FindOrCreate(ctx, &model.Source{ID: testID("src"), Name: name, Ctime: time.Now().Unix()})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDocumentRepoLifecycle(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewDocumentRepo(conn)
	ctx := context.Background()
	now := time.Now().Unix()
	title := testID("Document Title")

	doc := &model.Document{
		ID:          testID("doc"),
		Title:       title,
		Type:        model.DocumentTypeAct,
		ContentHash: "hash-1",
		Ctime:       now,
		Mtime:       now,
	}
	require.NoError(t, repo.Create(ctx, doc))

	found, err := repo.GetByTitleAndType(ctx, title, model.DocumentTypeAct)
	require.NoError(t, err)
	require.Equal(t, doc.ID, found.ID)

	_, err = repo.GetByTitleAndType(ctx, title, model.DocumentTypeCase)
	require.True(t, appErr.IsNotFound(err))

	found.ContentHash = "hash-2"
	found.Mtime = now + 1
	require.NoError(t, repo.Update(ctx, found))

	loaded, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, "hash-2", loaded.ContentHash)

	missing := &model.Document{ID: testID("missing"), Title: "x", Type: model.DocumentTypeAct}
	require.True(t, appErr.IsNotFound(repo.Update(ctx, missing)))
}

func TestChunkRepoUniquePosition(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewChunkRepo(conn)
	ctx := context.Background()
	now := time.Now().Unix()
	docID := testID("doc")
	sectionID := testID("sec")

	chunk := &model.Chunk{ID: testID("chunk"), DocumentID: docID, SectionID: sectionID, Index: 0, Text: "body", Ctime: now}
	require.NoError(t, repo.Create(ctx, chunk))

	dup := &model.Chunk{ID: testID("chunk"), DocumentID: docID, SectionID: sectionID, Index: 0, Text: "body", Ctime: now}
	require.ErrorIs(t, repo.Create(ctx, dup), appErr.ErrConflict)

	found, err := repo.GetByPosition(ctx, docID, sectionID, 0)
	require.NoError(t, err)
	require.Equal(t, chunk.ID, found.ID)
}

func TestEmbeddingRepoUpsertReplaces(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewEmbeddingRepo(conn)
	ctx := context.Background()
	chunkID := testID("chunk")

	require.NoError(t, repo.Upsert(ctx, &model.Embedding{ID: testID("emb"), ChunkID: chunkID, Vector: []float32{1, 2, 3}, Mtime: 1}))
	require.NoError(t, repo.Upsert(ctx, &model.Embedding{ID: testID("emb"), ChunkID: chunkID, Vector: []float32{4, 5, 6}, Mtime: 2}))

	emb, err := repo.GetByChunkID(ctx, chunkID)
	require.NoError(t, err)
	require.Equal(t, []float32{4, 5, 6}, emb.Vector)
	require.EqualValues(t, 2, emb.Mtime)
}

func TestIngestionJobFinishOnce(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewIngestionJobRepo(conn)
	ctx := context.Background()

	job := &model.IngestionJob{ID: testID("job"), Source: "acts", Status: model.JobStatusRunning, StartedAt: time.Now().Unix()}
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.Finish(ctx, job.ID, model.JobStatusCompleted, "", time.Now().Unix()))
	err := repo.Finish(ctx, job.ID, model.JobStatusFailed, "late", time.Now().Unix())
	require.ErrorIs(t, err, appErr.ErrJobFinished)

	loaded, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.JobStatusCompleted, loaded.Status)
}

func TestEmbeddingCacheRoundTrip(t *testing.T) {
	conn := testutil.OpenTestDB(t)
	repo := NewEmbeddingCacheRepo(conn)
	ctx := context.Background()
	hash := testID("hash")

	_, ok, err := repo.Get(ctx, "test-model", hash)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Save(ctx, &model.EmbeddingCache{ModelName: "test-model", ContentHash: hash, Embedding: []float32{0.5, 1.5}, Ctime: time.Now().Unix()}))
	vec, ok, err := repo.Get(ctx, "test-model", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []float32{0.5, 1.5}, vec)
}
