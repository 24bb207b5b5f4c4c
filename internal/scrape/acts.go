package scrape

import (
	"strings"

	"github.com/yardlex/lexingest/internal/model"
)

func newActsScraper(deps *Deps) Scraper {
	return &siteScraper{
		name:    "acts",
		baseURL: deps.Config.ActsBaseURL,
		docType: model.DocumentTypeAct,
		linkMatch: func(href string) bool {
			return strings.Contains(href, "/acts/") || strings.Contains(href, "/act/")
		},
		deps: deps,
	}
}

func init() {
	Register("acts", newActsScraper)
}
