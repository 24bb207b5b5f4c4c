package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/yardlex/lexingest/internal/scrape"
	"github.com/yardlex/lexingest/internal/service"
)

// ScrapeJob runs every registered scraper in sequence under ingestion
// job tracking.
type ScrapeJob struct {
	ingest *service.IngestService
	deps   *scrape.Deps
}

func NewScrapeJob(ingest *service.IngestService, deps *scrape.Deps) *ScrapeJob {
	return &ScrapeJob{ingest: ingest, deps: deps}
}

func (j *ScrapeJob) Name() string {
	return "scrape_all"
}

func (j *ScrapeJob) Run(ctx context.Context) error {
	var failures []string
	for _, name := range scrape.Names() {
		scraper, err := scrape.New(name, j.deps)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if _, err := j.ingest.RunJob(ctx, name, scraper.Scrape); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("scrape failures: %s", strings.Join(failures, "; "))
	}
	return nil
}
