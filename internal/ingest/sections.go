package ingest

import (
	"regexp"
	"strings"

	"github.com/yardlex/lexingest/internal/model"
)

// Heading patterns recognized by the section splitter, tried in order.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Section\s+(\d+[A-Za-z]?)\s*[:.]?\s*(.*)$`),
	regexp.MustCompile(`(?i)^(\d+[A-Za-z]?)[.)]\s+(.+)$`),
	regexp.MustCompile(`(?i)^Part\s+([IVX]+|[A-Z])\s*[:.]?\s*(.*)$`),
	regexp.MustCompile(`(?i)^Division\s+(\d+[A-Za-z]?)\s*[:.]?\s*(.*)$`),
	regexp.MustCompile(`(?i)^Subsection\s+\((\d+[a-z]?)\)\s*[:.]?\s*(.*)$`),
}

// ExtractSections splits normalized text into ordered sections on heading
// boundaries. The heading label is the pattern's captured number or letter.
// Text with no recognizable headings comes back as a single section.
func ExtractSections(text string) []model.ParsedSection {
	var sections []model.ParsedSection
	var body []string
	var heading string
	index := 0

	flush := func() {
		if len(body) == 0 {
			return
		}
		sections = append(sections, model.ParsedSection{
			Index:   index,
			Heading: heading,
			Text:    strings.TrimSpace(strings.Join(body, "\n")),
		})
		index++
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			// Blank lines inside a section body are kept.
			if len(body) > 0 {
				body = append(body, "")
			}
			continue
		}

		matched := false
		for _, pattern := range sectionPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			flush()
			if len(m) >= 3 {
				heading = strings.TrimSpace(m[1])
			} else {
				heading = ""
			}
			body = nil
			matched = true
			break
		}
		if !matched {
			body = append(body, line)
		}
	}
	flush()

	if len(sections) == 0 {
		sections = append(sections, model.ParsedSection{Index: 0, Text: text})
	}
	return sections
}
