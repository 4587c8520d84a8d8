package textutil

import "regexp"

// jsonFenceRE matches an optional ```json ... ``` (or bare ``` ... ```) markdown fence,
// the shape both the evaluation adapter and the CV content-extraction LLM occasionally
// wrap their JSON response in despite being instructed not to.
var jsonFenceRE = regexp.MustCompile(`(?is)` + "```" + `(?:json)?\s*(.*?)` + "```")

// StripJSONFence removes a surrounding markdown code fence from raw, if present, and
// trims whitespace. If no fence is found, raw is returned trimmed unchanged.
func StripJSONFence(raw string) string {
	trimmed := trimSpace(raw)
	if m := jsonFenceRE.FindStringSubmatch(trimmed); m != nil {
		return trimSpace(m[1])
	}
	return trimmed
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// referenceIDRE extracts an embedded application id from a CV email subject or body,
// priority 3: "app #123", "application id: 123", "ref 123", "#123".
var referenceIDRE = regexp.MustCompile(`(?i)(?:app(?:lication)?[\s#\-]*(?:id)?|ref(?:erence)?|#|id)\s*[:#\-]?\s*(\d+)`)

// ExtractReferenceID returns the first embedded numeric reference id found in s, and
// whether one was found.
func ExtractReferenceID(s string) (string, bool) {
	m := referenceIDRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// displayNameRE parses a "Name" <addr> / Name <addr> sender header into its display
// name component.
var displayNameRE = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<[^>]+>\s*$`)

// ExtractDisplayName returns the display-name portion of a sender header such as
// `Ana Pop <ana@example.com>`, or false if sender has no angle-bracket address part.
func ExtractDisplayName(sender string) (string, bool) {
	m := displayNameRE.FindStringSubmatch(sender)
	if m == nil {
		return "", false
	}
	name := trimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}
