package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/llm"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/textutil"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/ports"
)

const extractionSystemPrompt = "You are a precise data extraction assistant. " +
	"Extract contact information from CV/resume text. " +
	"Respond ONLY with a valid JSON object — no prose, no markdown fences."

const extractionMaxTokens = 256

// extractedContact is the four-field shape the content-extraction LLM call (priority
// 5) is asked to return.
type extractedContact struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// extractContactViaLLM asks the fast model to pull contact details out of raw CV text,
// for the content-extraction pass of the matching cascade.
func extractContactViaLLM(ctx context.Context, client ports.LLMClient, model string, text string) (*extractedContact, error) {
	userMessage := "Extract the following fields from the CV text below. " +
		"If a field cannot be found, use null.\n\n" +
		"Return exactly this JSON schema:\n" +
		"{\n" +
		`  "first_name": "<first name or null>",` + "\n" +
		`  "last_name": "<last name or null>",` + "\n" +
		`  "email": "<email address or null>",` + "\n" +
		`  "phone": "<phone number or null>"` + "\n" +
		"}\n\n" +
		"--- CV TEXT START ---\n" + text + "\n--- CV TEXT END ---"

	resp, err := client.Complete(ctx, llm.Request{
		Model:     model,
		MaxTokens: extractionMaxTokens,
		System:    extractionSystemPrompt,
		User:      userMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("cv content extraction: %w", err)
	}

	raw := textutil.StripJSONFence(strings.TrimSpace(resp.Text))
	var contact extractedContact
	if err := json.Unmarshal([]byte(raw), &contact); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrExtractionFailed, err)
	}
	return &contact, nil
}
