// Package voiceagent wraps the ElevenLabs Conversational AI outbound-call API behind
// the calls module's narrow ports.VoiceAgentClient interface. It knows nothing about
// Applications or Calls — callers hand it a CallSubject/CallResult DTO and get back an
// external identifier or normalised poll result.
package voiceagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/textutil"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
)

const (
	outboundCallPath  = "/v1/convai/twilio/outbound-call"
	batchCallPath     = "/v1/convai/batch-calling/submit"
	conversationPath  = "/v1/convai/conversations/%s"
)

// conversationIDKeys lists, in priority order, the field names ElevenLabs may use for
// the conversation identifier across API versions.
var conversationIDKeys = []string{"conversation_id", "call_id", "id", "call_sid"}

// Client talks to the ElevenLabs ConvAI/Twilio outbound-call API over plain
// net/http — there is no official Go SDK for this API in the dependency set, so the
// request/response shapes are hand-rolled against the documented JSON contract.
type Client struct {
	http          *http.Client
	baseURL       string
	apiKey        string
	agentID       string
	phoneNumberID string
	pollTimeout   time.Duration
}

func New(cfg config.VoiceAgentConfig) *Client {
	return &Client{
		http:          &http.Client{Timeout: cfg.SendTimeout},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		agentID:       cfg.AgentID,
		phoneNumberID: cfg.PhoneNumberID,
		pollTimeout:   cfg.PollTimeout,
	}
}

// InitiateCall places a single outbound call and returns the provider's conversation id.
func (c *Client) InitiateCall(ctx context.Context, subject ports.CallSubject) (string, error) {
	systemPrompt, firstMessage := renderPrompts(subject)

	payload := map[string]any{
		"agent_id":               c.agentID,
		"agent_phone_number_id":  c.phoneNumberID,
		"to_number":              subject.CandidatePhone,
		"conversation_initiation_client_data": map[string]any{
			"user_id":                         subject.ApplicationID,
			"conversation_config_override": map[string]any{
				"agent": map[string]any{
					"prompt":        map[string]any{"prompt": systemPrompt},
					"first_message": firstMessage,
				},
			},
		},
	}

	body, err := c.post(ctx, outboundCallPath, payload)
	if err != nil {
		return "", err
	}

	conversationID, ok := extractID(body, conversationIDKeys)
	if !ok {
		return "", fmt.Errorf("voiceagent: outbound-call response carried no conversation id: %s", body)
	}
	return conversationID, nil
}

// InitiateBatch submits subjects (already chunked by the caller, max 50 per call) as a
// single batch-calling request and returns the provider's batch id.
func (c *Client) InitiateBatch(ctx context.Context, subjects []ports.CallSubject) (string, error) {
	recipients := make([]map[string]any, 0, len(subjects))
	for _, subject := range subjects {
		systemPrompt, firstMessage := renderPrompts(subject)
		recipients = append(recipients, map[string]any{
			"phone_number": subject.CandidatePhone,
			"conversation_initiation_client_data": map[string]any{
				"user_id": subject.ApplicationID,
				"conversation_config_override": map[string]any{
					"agent": map[string]any{
						"prompt":        map[string]any{"prompt": systemPrompt},
						"first_message": firstMessage,
					},
				},
			},
		})
	}

	payload := map[string]any{
		"call_name":              fmt.Sprintf("recruitflow batch - %d recipient(s)", len(recipients)),
		"agent_id":               c.agentID,
		"agent_phone_number_id":  c.phoneNumberID,
		"recipients":             recipients,
	}

	body, err := c.post(ctx, batchCallPath, payload)
	if err != nil {
		return "", err
	}

	batchID, ok := extractID(body, []string{"batch_id", "id"})
	if !ok {
		return "", fmt.Errorf("voiceagent: batch-calling response carried no batch id: %s", body)
	}
	return batchID, nil
}

// Poll fetches the current state of a conversation, for the scheduler's reconciliation
// job. The response shape varies across API versions; fields not present are left zero.
func (c *Client) Poll(ctx context.Context, conversationID string) (*ports.CallResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	url := c.baseURL + fmt.Sprintf(conversationPath, conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voiceagent: polling conversation %s: %w", conversationID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("voiceagent: poll returned %d: %s", resp.StatusCode, truncate(data, 500))
	}

	var parsed struct {
		Status          string `json:"status"`
		Transcript      string `json:"transcript_text"`
		Summary         string `json:"call_summary"`
		SummaryTitle    string `json:"call_summary_title"`
		RecordingURL    string `json:"recording_url"`
		DurationSeconds int    `json:"call_duration_secs"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("voiceagent: decoding poll response: %w", err)
	}

	return &ports.CallResult{
		ExternalConversationID: conversationID,
		RawStatus:              parsed.Status,
		Transcript:              parsed.Transcript,
		Summary:                 parsed.Summary,
		SummaryTitle:            parsed.SummaryTitle,
		RecordingURL:            parsed.RecordingURL,
		DurationSeconds:         parsed.DurationSeconds,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (json.RawMessage, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voiceagent: request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("voiceagent: %s returned %d: %s", path, resp.StatusCode, truncate(data, 500))
	}
	return data, nil
}

func renderPrompts(subject ports.CallSubject) (systemPrompt, firstMessage string) {
	title, description := "", ""
	if subject.Position != nil {
		title = subject.Position.Title
		description = subject.Position.Description
	}
	context := map[string]string{
		"candidate_name":       subject.CandidateName,
		"candidate_first_name": subject.CandidateFirst,
		"candidate_email":      subject.CandidateEmail,
		"position_title":       title,
		"position_description": description,
		"form_answers":         textutil.FormatFormAnswers(subject.FormAnswers),
	}

	sp, fm := "", ""
	if subject.Position != nil {
		sp = subject.Position.VoiceAgentSystemPrompt
		fm = subject.Position.VoiceAgentFirstMessage
	}
	return textutil.ApplyPlaceholders(sp, context), textutil.ApplyPlaceholders(fm, context)
}

func extractID(body json.RawMessage, keys []string) (string, bool) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", false
	}
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
			return fmt.Sprintf("%v", v), true
		}
	}
	return "", false
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n])
}
