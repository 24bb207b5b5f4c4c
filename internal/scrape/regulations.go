package scrape

import (
	"strings"

	"github.com/yardlex/lexingest/internal/model"
)

func newRegulationsScraper(deps *Deps) Scraper {
	return &siteScraper{
		name:    "regulations",
		baseURL: deps.Config.RegulationsBaseURL,
		docType: model.DocumentTypeRegulation,
		linkMatch: func(href string) bool {
			return strings.Contains(href, "/regulations/") || strings.Contains(href, "/regulation/")
		},
		deps: deps,
	}
}

func init() {
	Register("regulations", newRegulationsScraper)
}
