package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yardlex/lexingest/internal/config"
)

// IStore archives raw scraped content keyed by source and content
// fingerprint, so every revision of a page stays retrievable.
type IStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// New builds the archive store named by the config. An empty type
// disables archiving and returns a nil store.
func New(cfg config.ArchiveConfig) (IStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "":
		return nil, nil
	case "local":
		return newLocalStore(cfg.Dir)
	case "s3":
		return newS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.Type)
	}
}
