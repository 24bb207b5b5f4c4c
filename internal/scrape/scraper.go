package scrape

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yardlex/lexingest/internal/config"
	"github.com/yardlex/lexingest/internal/filestore"
	"github.com/yardlex/lexingest/internal/ingest"
	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/service"
)

// Deps carries everything a scraper needs. Archive may be nil when raw
// content archiving is disabled.
type Deps struct {
	Fetcher    *Fetcher
	Parser     *ingest.Parser
	Ingest     *service.IngestService
	Embeddings *service.EmbeddingService
	Archive    filestore.IStore
	Config     config.ScrapeConfig
}

type Scraper interface {
	Name() string
	Scrape(ctx context.Context) (*model.ScrapeResult, error)
}

type ScraperFactory func(deps *Deps) Scraper

var registry = map[string]ScraperFactory{}

func Register(name string, factory ScraperFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func New(name string, deps *Deps) (Scraper, error) {
	factory := registry[strings.ToLower(strings.TrimSpace(name))]
	if factory == nil {
		return nil, fmt.Errorf("unknown scrape source: %s", name)
	}
	return factory(deps), nil
}

// Names lists registered sources in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
