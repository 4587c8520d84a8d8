package service

import (
	"testing"

	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatTranscript(t *testing.T) {
	t.Run("joins role-prefixed turns with blank lines", func(t *testing.T) {
		turns := []TranscriptTurn{
			{Role: "agent", Message: "Hello, this is a call regarding..."},
			{Role: "user", Content: "Yes, hello..."},
		}
		got := FormatTranscript(turns)
		assert.Equal(t, "Agent: Hello, this is a call regarding...\n\nUser: Yes, hello...", got)
	})

	t.Run("falls back across message/content/text fields", func(t *testing.T) {
		turns := []TranscriptTurn{{Role: "agent", Text: "fallback text"}}
		assert.Equal(t, "Agent: fallback text", FormatTranscript(turns))
	})

	t.Run("skips turns with no role or no text", func(t *testing.T) {
		turns := []TranscriptTurn{{Role: "", Message: "no role"}, {Role: "agent", Message: ""}}
		assert.Equal(t, "", FormatTranscript(turns))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", FormatTranscript(nil))
	})
}

func TestRawStatus(t *testing.T) {
	cases := map[string]model.Status{
		"done":        model.StatusCompleted,
		"completed":   model.StatusCompleted,
		"failed":      model.StatusFailed,
		"no_answer":   model.StatusNoAnswer,
		"busy":        model.StatusBusy,
		"in_progress": model.StatusInProgress,
		"processing":  model.StatusInProgress,
		"gibberish":   model.StatusInProgress,
	}
	for raw, want := range cases {
		assert.Equal(t, want, model.RawStatus(raw), raw)
	}
}
