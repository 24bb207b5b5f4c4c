package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yardlex/lexingest/internal/model"
)

func TestParseHTMLTitlePriority(t *testing.T) {
	parser := NewParser("JM")

	doc := parser.ParseHTML(`<html><head><title>Page Title</title></head><body><h1>The Test Act</h1></body></html>`, "http://example.test/a", model.DocumentTypeAct)
	require.Equal(t, "The Test Act", doc.Title)

	doc = parser.ParseHTML(`<html><head><title>Page Title</title></head><body><div class="title">Styled Title</div></body></html>`, "http://example.test/a", model.DocumentTypeAct)
	require.Equal(t, "Styled Title", doc.Title)

	doc = parser.ParseHTML(`<html><head><meta property="og:title" content="OG Title"></head><body><p>body</p></body></html>`, "http://example.test/a", model.DocumentTypeAct)
	// <title> is absent; og:title is next after the class selectors.
	require.Equal(t, "OG Title", doc.Title)

	doc = parser.ParseHTML(`<body><p>no headings at all</p></body>`, "http://example.test/a", model.DocumentTypeAct)
	require.Equal(t, "Untitled Document", doc.Title)
}

func TestParseTextTitleSkipsHeadings(t *testing.T) {
	parser := NewParser("JM")
	doc := parser.ParseText("Section 1. Short title\nThe Companies Act\nbody text", "", model.DocumentTypeAct)
	require.Equal(t, "The Companies Act", doc.Title)
}

func TestParseTextTitleFallback(t *testing.T) {
	parser := NewParser("JM")
	doc := parser.ParseText("", "", model.DocumentTypeOther)
	require.Equal(t, "Untitled Document", doc.Title)
}

func TestExtractCitation(t *testing.T) {
	require.Equal(t, "ACT 15 of 2020", extractCitation("This is the law, ACT 15 of 2020, as amended."))
	require.Equal(t, "LN No. 42", extractCitation("Gazette reference LN No. 42 applies."))
	require.Empty(t, extractCitation("Nothing relevant appears in this paragraph."))
}

func TestExtractDates(t *testing.T) {
	text := "This Act was assented on 15 January 2020 and commenced: 01/03/2020. Published 2 February 2020."
	dates := extractDates(text)

	enacted := time.Unix(dates["enacted"], 0).UTC()
	require.Equal(t, 2020, enacted.Year())
	require.Equal(t, time.January, enacted.Month())
	require.Equal(t, 15, enacted.Day())

	commenced := time.Unix(dates["commenced"], 0).UTC()
	require.Equal(t, time.March, commenced.Month())
	require.Equal(t, 1, commenced.Day())

	published := time.Unix(dates["published"], 0).UTC()
	require.Equal(t, time.February, published.Month())

	require.Zero(t, dates["amended"])
}

func TestParseTextProducesSectionsAndHash(t *testing.T) {
	parser := NewParser("JM")
	content := "The Test Act\n\nSection 1. Short title.\nThis Act may be cited as the Test Act.\n\nSection 2. Definitions.\nIn this Act..."
	doc := parser.ParseText(content, "http://example.test/act", model.DocumentTypeAct)

	require.Equal(t, "The Test Act", doc.Title)
	require.Equal(t, "JM", doc.Jurisdiction)
	require.Len(t, doc.Sections, 3)
	require.NotEmpty(t, doc.ContentHash)

	again := parser.ParseText(content, "http://example.test/act", model.DocumentTypeAct)
	require.Equal(t, doc.ContentHash, again.ContentHash)
}
