package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapText(t *testing.T) {
	t.Run("returns short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", capText("hello", 100))
	})

	t.Run("truncates to the max length", func(t *testing.T) {
		long := strings.Repeat("a", 20)
		assert.Equal(t, strings.Repeat("a", 10), capText(long, 10))
	})

	t.Run("strips invalid utf-8 before capping", func(t *testing.T) {
		s := "valid\xffbytes"
		out := capText(s, 100)
		assert.True(t, strings.HasPrefix(out, "valid"))
	})
}

func TestExtractText_PlainTextFallback(t *testing.T) {
	text, err := extractText("notes.txt", "text/plain", []byte("Ana Pop, ana@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Ana Pop, ana@example.com", text)
}

func TestExtractText_UnknownExtensionFallsBackToPlainDecode(t *testing.T) {
	text, err := extractText("cv", "", []byte("plain fallback content"))
	require.NoError(t, err)
	assert.Equal(t, "plain fallback content", text)
}

func TestExtractText_CapsAtMaxContentTextChars(t *testing.T) {
	data := []byte(strings.Repeat("x", maxContentTextChars+500))
	text, err := extractText("notes.txt", "text/plain", data)
	require.NoError(t, err)
	assert.Len(t, text, maxContentTextChars)
}
