package service

import (
	"strings"
)

// TranscriptTurn is one turn of a raw voice-agent transcript. Turns use "message",
// "content" or "text" interchangeably for the spoken text depending on API version.
type TranscriptTurn struct {
	Role    string
	Message string
	Content string
	Text    string
}

// FormatTranscript renders transcript turns as alternating "Role: text" blocks
// separated by a blank line.
func FormatTranscript(turns []TranscriptTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var lines []string
	for _, t := range turns {
		role := capitalize(t.Role)
		text := firstNonEmpty(t.Message, t.Content, t.Text)
		if role != "" && text != "" {
			lines = append(lines, role+": "+text)
		}
	}
	return strings.Join(lines, "\n\n")
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
