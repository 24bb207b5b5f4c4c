package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/yardlex/lexingest/internal/ai"
	"github.com/yardlex/lexingest/internal/model"
	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
	"github.com/yardlex/lexingest/internal/pkg/hashutil"
	"github.com/yardlex/lexingest/internal/pkg/timeutil"
	"github.com/yardlex/lexingest/internal/repo"
)

const (
	embedCacheSize = 4096
	embedCacheTTL  = 30 * time.Minute
)

// EmbedStats summarizes one embedding update run.
type EmbedStats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// EmbeddingService splits stored sections into chunks and keeps one
// vector per chunk. Provider results are cached in memory and in the
// embedding_cache table keyed by (model, content hash), so identical
// text never hits the provider twice.
type EmbeddingService struct {
	db        *sql.DB
	chunker   *ai.Chunker
	embedder  ai.IEmbedder
	batchSize int
	memCache  *lru.LRU[string, []float32]
	cache     *repo.EmbeddingCacheRepo
	sections  *repo.SectionRepo
	chunks    *repo.ChunkRepo
}

func NewEmbeddingService(db *sql.DB, chunker *ai.Chunker, embedder ai.IEmbedder, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &EmbeddingService{
		db:        db,
		chunker:   chunker,
		embedder:  embedder,
		batchSize: batchSize,
		memCache:  lru.NewLRU[string, []float32](embedCacheSize, nil, embedCacheTTL),
		cache:     repo.NewEmbeddingCacheRepo(db),
		sections:  repo.NewSectionRepo(db),
		chunks:    repo.NewChunkRepo(db),
	}
}

// MaterializeChunks splits every section of a document into chunks and
// stores the ones not present yet. A chunk is identified by its
// (document, section, index) position, so re-running is a no-op.
// Returns the number of chunks created.
func (s *EmbeddingService) MaterializeChunks(ctx context.Context, docID string) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("doc_id", docID))
	sectionList, err := s.sections.ListByDocument(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("list sections: %w", err)
	}
	created := 0
	now := timeutil.NowUnix()
	for _, section := range sectionList {
		pieces := s.chunker.Chunk(section.Text, true)
		index := 0
		for _, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			_, err := s.chunks.GetByPosition(ctx, docID, section.ID, index)
			if err == nil {
				index++
				continue
			}
			if !appErr.IsNotFound(err) {
				return created, fmt.Errorf("lookup chunk: %w", err)
			}
			createErr := s.chunks.Create(ctx, &model.Chunk{
				ID:         newID(),
				DocumentID: docID,
				SectionID:  section.ID,
				Index:      index,
				Text:       piece,
				Ctime:      now,
			})
			if createErr != nil && !errors.Is(createErr, appErr.ErrConflict) {
				return created, fmt.Errorf("create chunk: %w", createErr)
			}
			if createErr == nil {
				created++
			}
			index++
		}
	}
	if created > 0 {
		logger.Info("chunks materialized", zap.Int("created", created))
	}
	return created, nil
}

// ProcessDocument materializes chunks for one document and embeds the
// ones still missing a vector. Returns the number of vectors written.
// A provider without credentials is not an error: the chunks stay
// pending and a later run picks them up.
func (s *EmbeddingService) ProcessDocument(ctx context.Context, docID string) (int, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("doc_id", docID))
	if _, err := s.MaterializeChunks(ctx, docID); err != nil {
		return 0, err
	}
	chunkList, err := s.chunks.ListByDocument(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("list chunks: %w", err)
	}
	embeddings := repo.NewEmbeddingRepo(s.db)
	pending := make([]model.Chunk, 0, len(chunkList))
	for _, chunk := range chunkList {
		exists, err := embeddings.ExistsForChunk(ctx, chunk.ID)
		if err != nil {
			return 0, fmt.Errorf("check embedding: %w", err)
		}
		if !exists {
			pending = append(pending, chunk)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	written := 0
	failed := 0
	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		count, err := s.embedBatch(ctx, pending[start:end])
		if err != nil {
			if appErr.IsUnavailable(err) {
				logger.Warn("embedding provider unavailable, leaving chunks pending", zap.Int("pending", len(pending)-written))
				return written, nil
			}
			// A bad batch stays pending for the next sweep; the rest
			// of the document still gets embedded.
			logger.Error("embedding batch failed", zap.Int("size", end-start), zap.Error(err))
			failed += end - start
			continue
		}
		written += count
	}
	logger.Info("document embedded", zap.Int("vectors", written), zap.Int("failed", failed))
	return written, nil
}

// UpdateAll embeds every chunk in the store that has no vector yet,
// one batch per transaction. A failed batch is counted and skipped so
// one bad batch cannot stall the rest of the backlog.
func (s *EmbeddingService) UpdateAll(ctx context.Context) (*EmbedStats, error) {
	logger := logutil.GetLogger(ctx)
	stats := &EmbedStats{}
	seen := make(map[string]struct{})
	for {
		// Failed chunks stay missing and come back from the query, so
		// widen the window by the ones already attempted.
		batch, err := s.chunks.ListMissingEmbeddings(ctx, s.batchSize+len(seen))
		if err != nil {
			return stats, fmt.Errorf("list pending chunks: %w", err)
		}
		fresh := make([]model.Chunk, 0, s.batchSize)
		for _, chunk := range batch {
			if _, ok := seen[chunk.ID]; ok {
				continue
			}
			seen[chunk.ID] = struct{}{}
			fresh = append(fresh, chunk)
			if len(fresh) == s.batchSize {
				break
			}
		}
		if len(fresh) == 0 {
			break
		}
		count, err := s.embedBatchTx(ctx, fresh)
		if err != nil {
			if appErr.IsUnavailable(err) {
				// The whole remaining backlog is skipped, not just
				// this window.
				remaining, countErr := s.chunks.CountMissingEmbeddings(ctx)
				if countErr != nil {
					return stats, fmt.Errorf("count pending chunks: %w", countErr)
				}
				if skipped := remaining - stats.Failed; skipped > 0 {
					stats.Skipped += skipped
				}
				logger.Warn("embedding provider unavailable, stopping update",
					zap.Int("processed", stats.Processed),
					zap.Int("skipped", stats.Skipped),
				)
				break
			}
			logger.Error("embedding batch failed", zap.Int("size", len(fresh)), zap.Error(err))
			stats.Failed += len(fresh)
			continue
		}
		stats.Processed += count
	}
	logger.Info("embedding update finished",
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func (s *EmbeddingService) embedBatchTx(ctx context.Context, batch []model.Chunk) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin embed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	count, err := s.embedBatchInto(ctx, repo.NewEmbeddingRepo(tx), batch)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit embed tx: %w", err)
	}
	return count, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, batch []model.Chunk) (int, error) {
	return s.embedBatchInto(ctx, repo.NewEmbeddingRepo(s.db), batch)
}

func (s *EmbeddingService) embedBatchInto(ctx context.Context, embeddings *repo.EmbeddingRepo, batch []model.Chunk) (int, error) {
	vectors := make([][]float32, len(batch))
	missing := make([]int, 0, len(batch))
	hashes := make([]string, len(batch))
	for i, chunk := range batch {
		hashes[i] = hashutil.ContentHash(chunk.Text)
		if vec, ok := s.cachedVector(ctx, hashes[i]); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) > 0 {
		texts := make([]string, 0, len(missing))
		for _, i := range missing {
			texts = append(texts, batch[i].Text)
		}
		fetched, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, err
		}
		if len(fetched) != len(missing) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(fetched), len(missing))
		}
		for pos, i := range missing {
			vectors[i] = fetched[pos]
			s.storeCachedVector(ctx, hashes[i], fetched[pos])
		}
	}
	now := timeutil.NowUnix()
	for i, chunk := range batch {
		err := embeddings.Upsert(ctx, &model.Embedding{
			ID:      newID(),
			ChunkID: chunk.ID,
			Vector:  vectors[i],
			Mtime:   now,
		})
		if err != nil {
			return 0, fmt.Errorf("store embedding for chunk %s: %w", chunk.ID, err)
		}
	}
	return len(batch), nil
}

// Probe asks the provider for one vector, bypassing both caches. Used
// by the healthcheck to verify credentials.
func (s *EmbeddingService) Probe(ctx context.Context) ([]float32, error) {
	return s.embedder.Embed(ctx, "healthcheck")
}

func (s *EmbeddingService) cachedVector(ctx context.Context, contentHash string) ([]float32, bool) {
	key := s.embedder.ModelName() + ":" + contentHash
	if vec, ok := s.memCache.Get(key); ok {
		return vec, true
	}
	vec, ok, err := s.cache.Get(ctx, s.embedder.ModelName(), contentHash)
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache lookup failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s.memCache.Add(key, vec)
	return vec, true
}

func (s *EmbeddingService) storeCachedVector(ctx context.Context, contentHash string, vec []float32) {
	key := s.embedder.ModelName() + ":" + contentHash
	s.memCache.Add(key, vec)
	err := s.cache.Save(ctx, &model.EmbeddingCache{
		ModelName:   s.embedder.ModelName(),
		ContentHash: contentHash,
		Embedding:   vec,
		Ctime:       timeutil.NowUnix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache save failed", zap.Error(err))
	}
}
