// Package whatsapp sends outbound WhatsApp text messages over a Whapi-style REST
// API, wrapped behind the messaging module's narrow ports.Gateway interface. There is
// no official Go SDK for Whapi, so the request shape is hand-rolled against its
// documented JSON contract — the same choice made for internal/platform/voiceagent.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/config"
)

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func New(cfg config.MessagingConfig) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.SendTimeout},
		baseURL: strings.TrimSuffix(cfg.WhatsAppBaseURL, "/"),
		token:   cfg.WhatsAppToken,
	}
}

// SendText posts a plain-text message to phone (E.164, with or without leading '+').
// The JID format Whapi expects is digits-only, so a leading '+' is stripped.
func (c *Client) SendText(ctx context.Context, phone, body string) error {
	jid := strings.TrimPrefix(phone, "+")
	payload := map[string]string{
		"to":   jid + "@s.whatsapp.net",
		"body": body,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/text", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send to %s: %w", phone, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp: send to %s returned %d: %s", phone, resp.StatusCode, truncate(data, 500))
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n])
}
