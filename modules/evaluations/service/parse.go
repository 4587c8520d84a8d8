package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/textutil"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/evaluations/model"
)

// llmResponseDTO mirrors the JSON schema we ask the LLM for. Pointer fields
// distinguish "absent" from the zero value so missing-field validation is exact.
type llmResponseDTO struct {
	Outcome             string            `json:"outcome"`
	Qualified           *bool             `json:"qualified"`
	Score               *int              `json:"score"`
	Reasoning           *string           `json:"reasoning"`
	Criteria            []model.Criterion `json:"criteria"`
	DisqualifyingFactor *string           `json:"disqualifying_factor"`
	CallbackRequested   bool              `json:"callback_requested"`
	CallbackNotes       *string           `json:"callback_notes"`
	NeedsHuman          bool              `json:"needs_human"`
	NeedsHumanNotes     *string           `json:"needs_human_notes"`
	CallbackAt          *string           `json:"callback_at"`
}

// rawSnippetLen bounds how much of a malformed response is echoed into an error.
const rawSnippetLen = 300

// parseLLMResult parses raw into a validated model.LLMResult.
//
// Strategy: strip any markdown code fence, attempt a strict parse; on failure run a
// small targeted repair pass (trailing commas, unquoted keys, unbalanced braces) and
// parse again; on a second failure, fail with a truncated snippet of the original.
func parseLLMResult(raw string) (*model.LLMResult, error) {
	text := textutil.StripJSONFence(raw)

	var dto llmResponseDTO
	firstErr := json.Unmarshal([]byte(text), &dto)
	if firstErr != nil {
		repaired := repairJSON(text)
		if secondErr := json.Unmarshal([]byte(repaired), &dto); secondErr != nil {
			return nil, fmt.Errorf("%w: %v (after repair: %v). raw: %s",
				model.ErrParseFailed, firstErr, secondErr, snippet(raw))
		}
	}

	if dto.Outcome == "" || dto.Qualified == nil || dto.Score == nil || dto.Reasoning == nil {
		return nil, fmt.Errorf("%w: raw: %s", model.ErrMissingFields, snippet(raw))
	}

	outcome := model.Outcome(dto.Outcome)
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: %q. raw: %s", model.ErrUnknownOutcome, dto.Outcome, snippet(raw))
	}

	return &model.LLMResult{
		Outcome:             outcome,
		Qualified:           *dto.Qualified,
		Score:               clampScore(*dto.Score),
		Reasoning:           *dto.Reasoning,
		Criteria:            dto.Criteria,
		DisqualifyingFactor: dto.DisqualifyingFactor,
		CallbackRequested:   dto.CallbackRequested,
		CallbackNotes:       dto.CallbackNotes,
		NeedsHuman:          dto.NeedsHuman,
		NeedsHumanNotes:     dto.NeedsHumanNotes,
		CallbackAt:          parseOptionalDatetime(dto.CallbackAt),
		Raw:                 raw,
	}, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func snippet(raw string) string {
	if len(raw) <= rawSnippetLen {
		return raw
	}
	return raw[:rawSnippetLen]
}

// parseOptionalDatetime parses an ISO 8601 datetime. A nil pointer, empty string, or
// a naive datetime (no offset/zone) all become nil, treating an ambiguous callback_at
// the same as an absent one rather than assuming a zone.
func parseOptionalDatetime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

var (
	trailingCommaRE = regexp.MustCompile(`,(\s*[}\]])`)
	bareKeyRE       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
)

// repairJSON applies a narrow set of fixups for the malformed JSON shapes an LLM
// tends to produce: trailing commas before a closing brace/bracket, unquoted object
// keys, and truncated output missing its closing braces/brackets.
func repairJSON(s string) string {
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	s = bareKeyRE.ReplaceAllString(s, `$1"$2"$3`)
	return closeUnbalanced(s)
}

// closeUnbalanced appends any closing braces/brackets missing from a truncated
// response, tracking nesting order so they close in the right sequence.
func closeUnbalanced(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}
