package ingest

import (
	"regexp"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"

	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/pkg/hashutil"
)

const untitledDocument = "Untitled Document"

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Citation[:\s]+([A-Z0-9\s]+)`),
	regexp.MustCompile(`(?i)([A-Z]{2,}\s+\d+\s+of\s+\d{4})`),
	regexp.MustCompile(`(?i)([A-Z]{2,}\s+No\.\s+\d+)`),
}

const (
	numericDatePattern = `\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`
	writtenDatePattern = `\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`
)

var dateFormats = []string{
	"2-1-2006",
	"2/1/2006",
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
}

var dateKeywords = map[string][]string{
	"enacted":   {"enacted", "passed", "assented"},
	"commenced": {"commenced", "effective", "in force"},
	"amended":   {"amended", "revised", "updated"},
	"published": {"published", "gazetted"},
}

var dateRoleRegexps = buildDateRoleRegexps()

func buildDateRoleRegexps() map[string][]*regexp.Regexp {
	result := make(map[string][]*regexp.Regexp, len(dateKeywords))
	for role, keywords := range dateKeywords {
		for _, keyword := range keywords {
			pattern := `(?i)` + regexp.QuoteMeta(keyword) + `[:\s]+(?:on\s+)?(` + numericDatePattern + `|` + writtenDatePattern + `)`
			result[role] = append(result[role], regexp.MustCompile(pattern))
		}
	}
	return result
}

// Parser turns raw HTML/text content into structured documents. Pure
// transformation, no I/O.
type Parser struct {
	jurisdiction string
}

func NewParser(jurisdiction string) *Parser {
	return &Parser{jurisdiction: jurisdiction}
}

func (p *Parser) ParseHTML(htmlContent, sourceURL string, docType model.DocumentType) *model.ParsedDocument {
	title := untitledDocument
	var plainText string
	if root, err := xhtml.Parse(strings.NewReader(htmlContent)); err == nil {
		title = extractHTMLTitle(root)
		plainText = nodeText(root)
	} else {
		plainText = htmlContent
	}
	rawText := CleanHTML(htmlContent)
	return p.build(title, extractCitation(plainText), extractDates(plainText), rawText, sourceURL, docType)
}

func (p *Parser) ParseText(textContent, sourceURL string, docType model.DocumentType) *model.ParsedDocument {
	normalized := NormalizeText(textContent)
	title := extractTextTitle(normalized)
	return p.build(title, extractCitation(normalized), extractDates(normalized), normalized, sourceURL, docType)
}

func (p *Parser) ParseMarkdown(markdownContent, sourceURL string, docType model.DocumentType) *model.ParsedDocument {
	normalized := NormalizeMarkdown(markdownContent)
	title := extractTextTitle(normalized)
	return p.build(title, extractCitation(normalized), extractDates(normalized), normalized, sourceURL, docType)
}

func (p *Parser) build(title, citation string, dates map[string]int64, rawText, sourceURL string, docType model.DocumentType) *model.ParsedDocument {
	return &model.ParsedDocument{
		Title:           title,
		Type:            docType,
		SourceURL:       sourceURL,
		Citation:        citation,
		Jurisdiction:    p.jurisdiction,
		DateEnacted:     dates["enacted"],
		DateCommenced:   dates["commenced"],
		DateLastAmended: dates["amended"],
		PublishedAt:     dates["published"],
		RawText:         rawText,
		Sections:        ExtractSections(rawText),
		ContentHash:     hashutil.ContentHash(rawText),
	}
}

var textTitleHeadingRegex = regexp.MustCompile(`(?i)^(Section|Part|Division)\s+\d+`)

// extractTextTitle scans the first lines for something title-shaped: short
// enough, and not itself a section heading.
func extractTextTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) >= 200 {
			continue
		}
		if textTitleHeadingRegex.MatchString(line) {
			continue
		}
		return line
	}
	return untitledDocument
}

func extractHTMLTitle(root *xhtml.Node) string {
	candidates := []func(*xhtml.Node) string{
		func(n *xhtml.Node) string { return textOfFirst(n, byTag("h1")) },
		func(n *xhtml.Node) string { return textOfFirst(n, byClass("title")) },
		func(n *xhtml.Node) string { return textOfFirst(n, byClass("document-title")) },
		func(n *xhtml.Node) string { return textOfFirst(n, byTag("title")) },
		func(n *xhtml.Node) string {
			meta := findFirst(n, func(node *xhtml.Node) bool {
				return node.Type == xhtml.ElementNode && node.Data == "meta" && attrValue(node, "property") == "og:title"
			})
			if meta == nil {
				return ""
			}
			return strings.TrimSpace(attrValue(meta, "content"))
		},
	}
	for _, candidate := range candidates {
		if title := candidate(root); title != "" {
			return title
		}
	}
	return untitledDocument
}

func extractCitation(text string) string {
	for _, pattern := range citationPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractDates finds one date per role; the first keyword with a parseable
// date token wins.
func extractDates(text string) map[string]int64 {
	dates := make(map[string]int64, len(dateRoleRegexps))
	for role, patterns := range dateRoleRegexps {
		for _, pattern := range patterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if ts := parseDate(m[1]); ts != 0 {
				dates[role] = ts
				break
			}
		}
	}
	return dates
}

func parseDate(value string) int64 {
	value = strings.TrimSpace(value)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.Unix()
		}
	}
	return 0
}

func byTag(tag string) func(*xhtml.Node) bool {
	return func(n *xhtml.Node) bool {
		return n.Type == xhtml.ElementNode && n.Data == tag
	}
}

func byClass(class string) func(*xhtml.Node) bool {
	return func(n *xhtml.Node) bool {
		if n.Type != xhtml.ElementNode {
			return false
		}
		for _, token := range strings.Fields(attrValue(n, "class")) {
			if token == class {
				return true
			}
		}
		return false
	}
}

func findFirst(n *xhtml.Node, pred func(*xhtml.Node) bool) *xhtml.Node {
	if pred(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, pred); found != nil {
			return found
		}
	}
	return nil
}

func textOfFirst(root *xhtml.Node, pred func(*xhtml.Node) bool) string {
	node := findFirst(root, pred)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(nodeText(node))
}

func nodeText(n *xhtml.Node) string {
	var sb strings.Builder
	var walk func(node *xhtml.Node)
	walk = func(node *xhtml.Node) {
		if node.Type == xhtml.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func attrValue(n *xhtml.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
