package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appErr "github.com/yardlex/lexingest/internal/pkg/errors"
)

// ErrUnavailable marks a provider that has no credential configured.
// Callers degrade (skip embedding) instead of failing the run.
var ErrUnavailable = appErr.ErrUnavailable

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string, dimensions int) ([]float32, error)
	EmbedBatch(ctx context.Context, model string, texts []string, dimensions int) ([][]float32, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

type embedder struct {
	provider   IEmbedProvider
	model      string
	dimensions int
}

func NewEmbedder(p IEmbedProvider, model string, dimensions int) IEmbedder {
	return &embedder{provider: p, model: model, dimensions: dimensions}
}

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, e.dimensions)
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.provider.EmbedBatch(ctx, e.model, texts, e.dimensions)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IEmbedProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		// Providers tolerate missing config and degrade to unavailable.
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
