package scrape

import (
	"strings"

	"github.com/yardlex/lexingest/internal/model"
)

func newCasesScraper(deps *Deps) Scraper {
	return &siteScraper{
		name:    "cases",
		baseURL: deps.Config.CasesBaseURL,
		docType: model.DocumentTypeCase,
		linkMatch: func(href string) bool {
			return strings.Contains(href, "/judgments/") || strings.Contains(href, "/cases/") || strings.Contains(href, "/judgment/")
		},
		deps: deps,
	}
}

func init() {
	Register("cases", newCasesScraper)
}
