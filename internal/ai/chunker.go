package ai

import (
	"regexp"
	"strings"
)

// Chunker splits section text into size-bounded, overlapping chunks, the
// unit fed to the embedding provider.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

var sentenceEndRegex = regexp.MustCompile(`[.!?]\s+`)

// Chunk splits text into chunks. Sentence mode greedily packs whole
// sentences and seeds each new chunk with the tail of the previous one;
// character mode slides a fixed window.
func (c *Chunker) Chunk(text string, preserveSentences bool) []string {
	if !preserveSentences {
		return c.chunkByCharacters(text)
	}
	return c.chunkBySentences(text)
}

func (c *Chunker) chunkBySentences(text string) []string {
	sentences := splitSentences(text)
	var chunks []string
	var current []string

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		currentText := strings.Join(current, " ")
		if len(currentText)+len(sentence)+1 > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, currentText)
			if c.chunkOverlap > 0 {
				current = []string{c.overlapTail(current, currentText)}
			} else {
				current = nil
			}
		}
		current = append(current, sentence)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// overlapTail takes the last two sentences of the closed chunk, truncated
// to the configured overlap length.
func (c *Chunker) overlapTail(current []string, currentText string) string {
	overlap := currentText
	if len(current) >= 2 {
		overlap = strings.Join(current[len(current)-2:], " ")
	}
	runes := []rune(overlap)
	if len(runes) > c.chunkOverlap {
		return string(runes[len(runes)-c.chunkOverlap:])
	}
	return overlap
}

func (c *Chunker) chunkByCharacters(text string) []string {
	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - c.chunkOverlap
	}
	return chunks
}

// splitSentences cuts after ./!/? followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRegex.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
