package textutil

import (
	"sort"
	"strings"
)

// ApplyPlaceholders replaces {key} tokens in template with values from context.
// Unknown placeholders are left untouched rather than erroring, since templates are
// free-form user input and a missing key should degrade gracefully.
func ApplyPlaceholders(template string, context map[string]string) string {
	for key, value := range context {
		template = strings.ReplaceAll(template, "{"+key+"}", value)
	}
	return template
}

// FormatFormAnswers renders a pre-screening form-answers map as a human-readable Q&A
// block, for injection into a voice-agent prompt or message template. Keys are sorted
// for deterministic output across repeated calls with the same map.
func FormatFormAnswers(answers map[string]string) string {
	if len(answers) == 0 {
		return "No pre-screening answers available."
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		question := strings.ReplaceAll(k, "_", " ")
		question = strings.TrimSpace(question)
		if question != "" {
			question = strings.ToUpper(question[:1]) + question[1:]
		}
		lines = append(lines, "Q: "+question+"\nA: "+answers[k])
	}
	return strings.Join(lines, "\n\n")
}
