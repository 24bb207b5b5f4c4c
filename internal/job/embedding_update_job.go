package job

import (
	"context"

	"github.com/yardlex/lexingest/internal/service"
)

// EmbeddingUpdateJob sweeps the store for chunks without vectors.
type EmbeddingUpdateJob struct {
	embeddings *service.EmbeddingService
}

func NewEmbeddingUpdateJob(embeddings *service.EmbeddingService) *EmbeddingUpdateJob {
	return &EmbeddingUpdateJob{embeddings: embeddings}
}

func (j *EmbeddingUpdateJob) Name() string {
	return "embedding_update"
}

func (j *EmbeddingUpdateJob) Run(ctx context.Context) error {
	if j.embeddings == nil {
		return nil
	}
	_, err := j.embeddings.UpdateAll(ctx)
	return err
}
