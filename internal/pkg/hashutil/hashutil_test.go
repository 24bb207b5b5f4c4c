package hashutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentHashNormalization(t *testing.T) {
	require.Equal(t, ContentHash(" Foo\r\nBar "), ContentHash("foo\nbar"))
	require.Equal(t, ContentHash("Text\rwith\rCR"), ContentHash("text\nwith\ncr"))
	require.NotEqual(t, ContentHash("foo bar"), ContentHash("foo baz"))
}

func TestContentHashStable(t *testing.T) {
	require.Equal(t, ContentHash("The Test Act"), ContentHash("The Test Act"))
	require.Len(t, ContentHash("anything"), 64)
}
