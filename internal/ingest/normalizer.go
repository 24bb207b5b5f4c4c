package ingest

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"
)

var (
	blankLineRegex = regexp.MustCompile(`\n\s*\n\s*\n+`)
	spaceRunRegex  = regexp.MustCompile(`[ \t]+`)
)

// nonContentTags are stripped wholesale before text extraction.
var nonContentTags = map[string]struct{}{
	"script": {},
	"style":  {},
	"nav":    {},
	"header": {},
	"footer": {},
	"aside":  {},
	"ad":     {},
}

// CleanHTML extracts visible text from raw HTML, one line per text block,
// with whitespace collapsed. Pure function.
func CleanHTML(htmlContent string) string {
	root, err := xhtml.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// net/html recovers from almost anything; treat the input as text.
		return NormalizeText(htmlContent)
	}
	var blocks []string
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			if _, skip := nonContentTags[n.Data]; skip {
				return
			}
		}
		if n.Type == xhtml.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				blocks = append(blocks, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return collapseWhitespace(strings.Join(blocks, "\n"))
}

// NormalizeText canonicalizes plain text: entities decoded, line endings
// unified, blank-line runs and space runs collapsed. Pure function.
func NormalizeText(text string) string {
	text = xhtml.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return collapseWhitespace(text)
}

// NormalizeMarkdown flattens markdown to plain text, one line per block,
// before the usual normalization.
func NormalizeMarkdown(markdown string) string {
	md := goldmark.New()
	source := []byte(markdown)
	reader := gmtext.NewReader(source)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if text := extractNodeText(node, source); text != "" {
			blocks = append(blocks, text)
		}
	}
	return NormalizeText(strings.Join(blocks, "\n"))
}

func extractNodeText(n ast.Node, source []byte) string {
	if code, ok := n.(*ast.FencedCodeBlock); ok {
		var sb strings.Builder
		for i := 0; i < code.Lines().Len(); i++ {
			line := code.Lines().At(i)
			sb.Write(line.Value(source))
		}
		return strings.TrimSpace(sb.String())
	}
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func collapseWhitespace(text string) string {
	text = blankLineRegex.ReplaceAllString(text, "\n\n")
	text = spaceRunRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
