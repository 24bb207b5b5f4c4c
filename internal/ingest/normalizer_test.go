package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanHTMLStripsNonContent(t *testing.T) {
	html := `
		<html><head><script>var x = 1;</script><style>.a{}</style></head>
		<body>
			<nav>Menu</nav>
			<h1>The Test Act</h1>
			<p>Section 1. Short title.</p>
			<footer>Copyright</footer>
		</body></html>`
	text := CleanHTML(html)
	require.Contains(t, text, "The Test Act")
	require.Contains(t, text, "Section 1. Short title.")
	require.NotContains(t, text, "var x = 1")
	require.NotContains(t, text, "Menu")
	require.NotContains(t, text, "Copyright")
}

func TestNormalizeTextLineEndingsAndEntities(t *testing.T) {
	text := NormalizeText("Title&amp;Co\r\nLine two\rLine three")
	require.Equal(t, "Title&Co\nLine two\nLine three", text)
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	text := NormalizeText("  a\t\tb\n\n\n\n\nc  ")
	require.Equal(t, "a b\n\nc", text)
}

func TestNormalizeTextDeterministic(t *testing.T) {
	input := "Some  text\r\n\r\n\r\nwith   noise"
	require.Equal(t, NormalizeText(input), NormalizeText(input))
}

func TestNormalizeMarkdownFlattens(t *testing.T) {
	md := "# The Test Act\n\nThis Act may be cited as the *Test Act*.\n"
	text := NormalizeMarkdown(md)
	require.Contains(t, text, "The Test Act")
	require.Contains(t, text, "This Act may be cited as the Test Act")
	require.NotContains(t, text, "#")
	require.NotContains(t, text, "*")
}
