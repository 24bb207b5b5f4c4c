package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/yardlex/lexingest/internal/pkg/timeutil"
	"github.com/yardlex/lexingest/internal/repo"
)

// EmbeddingCacheCleanupJob drops cache rows older than maxAgeDays.
type EmbeddingCacheCleanupJob struct {
	repo       *repo.EmbeddingCacheRepo
	maxAgeDays int
}

func NewEmbeddingCacheCleanupJob(repo *repo.EmbeddingCacheRepo, maxAgeDays int) *EmbeddingCacheCleanupJob {
	return &EmbeddingCacheCleanupJob{repo: repo, maxAgeDays: maxAgeDays}
}

func (j *EmbeddingCacheCleanupJob) Name() string {
	return "embedding_cache_cleanup"
}

func (j *EmbeddingCacheCleanupJob) Run(ctx context.Context) error {
	if j.repo == nil || j.maxAgeDays <= 0 {
		return nil
	}
	cutoff := timeutil.NowUnix() - int64(j.maxAgeDays)*86400
	deleted, err := j.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("embedding cache cleaned", zap.Int64("deleted", deleted))
	}
	return nil
}
