package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/hashutil"
)

// siteScraper walks an index page, follows the document links it
// recognizes and pushes each page through parse, ingest and embed.
type siteScraper struct {
	name      string
	baseURL   string
	docType   model.DocumentType
	linkMatch func(href string) bool
	deps      *Deps
}

func (s *siteScraper) Name() string {
	return s.name
}

func (s *siteScraper) Scrape(ctx context.Context) (*model.ScrapeResult, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("scrape source %s has no base url configured", s.name)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("source", s.name))
	page, err := s.deps.Fetcher.Get(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	links, err := extractDocumentLinks(page, s.baseURL, s.linkMatch)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	result := &model.ScrapeResult{DocumentsFound: len(links)}
	for _, link := range links {
		if err := s.processLink(ctx, link, result); err != nil {
			logger.Warn("document scrape failed", zap.String("link", link), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", link, err))
		}
	}
	result.Success = len(result.Errors) == 0
	result.Message = fmt.Sprintf("found %d, inserted %d, updated %d", result.DocumentsFound, result.DocumentsInserted, result.DocumentsUpdated)
	return result, nil
}

func (s *siteScraper) processLink(ctx context.Context, link string, result *model.ScrapeResult) error {
	content, err := s.deps.Fetcher.Get(ctx, link)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	s.archive(ctx, content)
	parsed := s.deps.Parser.ParseHTML(string(content), link, s.docType)
	docID, isNew, err := s.deps.Ingest.Ingest(ctx, parsed, s.name, s.baseURL)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if isNew {
		result.DocumentsInserted++
	} else {
		result.DocumentsUpdated++
	}
	if s.deps.Embeddings != nil {
		if _, err := s.deps.Embeddings.ProcessDocument(ctx, docID); err != nil {
			return fmt.Errorf("embed: %w", err)
		}
	}
	return nil
}

func (s *siteScraper) archive(ctx context.Context, content []byte) {
	if s.deps.Archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s.html", s.name, hashutil.ContentHash(string(content)))
	if err := s.deps.Archive.Save(ctx, key, content); err != nil {
		logutil.GetLogger(ctx).Warn("archive raw content failed", zap.String("key", key), zap.Error(err))
	}
}

// extractDocumentLinks resolves every matching anchor href against the
// index URL, deduplicated in page order.
func extractDocumentLinks(page []byte, baseURL string, match func(string) bool) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	root, err := xhtml.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil, err
	}
	links := make([]string, 0)
	seen := make(map[string]struct{})
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" || strings.HasPrefix(href, "#") || !match(href) {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				resolved := base.ResolveReference(ref).String()
				if _, ok := seen[resolved]; ok {
					continue
				}
				seen[resolved] = struct{}{}
				links = append(links, resolved)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return links, nil
}
