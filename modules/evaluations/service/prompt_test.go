package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFormAnswers_Empty(t *testing.T) {
	assert.Equal(t, "No pre-screening answers available.", FormatFormAnswers(nil))
}

func TestFormatFormAnswers_SortedDeterministic(t *testing.T) {
	answers := map[string]string{
		"drivers_license": "Yes",
		"available_nights": "No",
	}
	got := FormatFormAnswers(answers)
	assert.Equal(t, "Q: Available nights\nA: No\n\nQ: Drivers license\nA: Yes", got)
}

func TestBuildSystemPrompt_WrapsInjectionGuard(t *testing.T) {
	prompt := buildSystemPrompt("Must have 3 years experience.")
	assert.True(t, strings.HasPrefix(prompt, "Content inside <candidate_data> tags"))
	assert.Contains(t, prompt, "Must have 3 years experience.")
}

func TestBuildSystemPrompt_FallsBackWhenEmpty(t *testing.T) {
	prompt := buildSystemPrompt("")
	assert.Contains(t, prompt, defaultQualificationPrompt)
}

func TestBuildUserMessage_WrapsCandidateData(t *testing.T) {
	msg := buildUserMessage("Q: x\nA: y", "Agent: hi")
	assert.Contains(t, msg, "<candidate_data>")
	assert.Contains(t, msg, "</candidate_data>")
	assert.Contains(t, msg, "## Call Transcript\nAgent: hi")
	assert.Contains(t, msg, `"outcome": "qualified|not_qualified|callback_requested|needs_human"`)
}
