package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkSentencesWithOverlap(t *testing.T) {
	// Three 20-character sentences against a 50-char budget.
	s1 := "Aaaa aaaa aaaa aaa."
	s2 := "Bbbb bbbb bbbb bbb."
	s3 := "Cccc cccc cccc ccc."
	text := s1 + " " + s2 + " " + s3

	chunker := NewChunker(50, 10)
	chunks := chunker.Chunk(text, true)

	require.Len(t, chunks, 2)
	require.Equal(t, s1+" "+s2, chunks[0])
	// The second chunk is seeded with a tail of at most 10 chars.
	require.True(t, strings.HasSuffix(chunks[1], s3))
	overlap := strings.TrimSuffix(chunks[1], " "+s3)
	require.LessOrEqual(t, len(overlap), 10)
	require.True(t, strings.HasSuffix(chunks[0], overlap))
}

func TestChunkSentencesNoOverlap(t *testing.T) {
	chunker := NewChunker(25, 0)
	chunks := chunker.Chunk("One sentence here. Two sentence here. Three sentence here.", true)
	require.Len(t, chunks, 3)
	require.Equal(t, "One sentence here.", chunks[0])
	require.Equal(t, "Two sentence here.", chunks[1])
	require.Equal(t, "Three sentence here.", chunks[2])
}

func TestChunkShortTextSingleChunk(t *testing.T) {
	chunker := NewChunker(1000, 200)
	chunks := chunker.Chunk("Short text. Nothing to split.", true)
	require.Equal(t, []string{"Short text. Nothing to split."}, chunks)
}

func TestChunkNoSentencesReturnsOriginal(t *testing.T) {
	chunker := NewChunker(10, 2)
	chunks := chunker.Chunk("", true)
	require.Equal(t, []string{""}, chunks)
}

func TestChunkByCharacters(t *testing.T) {
	chunker := NewChunker(10, 3)
	text := "abcdefghijklmnopqrst"
	chunks := chunker.Chunk(text, false)
	require.Equal(t, "abcdefghij", chunks[0])
	// Window strides by size minus overlap.
	require.Equal(t, "hijklmnopq", chunks[1])
	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 10)
	}
	require.True(t, strings.HasSuffix(chunks[len(chunks)-1], "t"))
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First one. Second one! Third one? Tail without end")
	require.Equal(t, []string{"First one.", "Second one!", "Third one?", "Tail without end"}, sentences)
}
