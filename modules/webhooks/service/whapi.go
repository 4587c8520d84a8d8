package service

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	messagingmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	messagingservice "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/service"
	cvsmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	cvsservice "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/service"
	"go.uber.org/zap"
)

// whapiMediaTypes are the message types that may carry a CV attachment.
var whapiMediaTypes = map[string]bool{
	"image": true, "document": true, "audio": true, "video": true, "sticker": true, "file": true,
}

// WhapiEvent is the inbound-message webhook payload shape.
type WhapiEvent struct {
	Messages []WhapiMessage `json:"messages"`
}

type WhapiMessage struct {
	ID       string                 `json:"id"`
	From     string                 `json:"from"`
	Type     string                 `json:"type"`
	Body     string                 `json:"body"`
	FromMe   bool                   `json:"from_me"`
	FromMeAlt bool                  `json:"fromMe"`
	Text     *whapiTextBody         `json:"text"`
	Caption  string                 `json:"caption"`
	Media    map[string]interface{} `json:"media"`
	Document map[string]interface{} `json:"document"`
	Image    map[string]interface{} `json:"image"`
	Audio    map[string]interface{} `json:"audio"`
	Video    map[string]interface{} `json:"video"`
	Sticker  map[string]interface{} `json:"sticker"`
	File     map[string]interface{} `json:"file"`
}

type whapiTextBody struct {
	Body string `json:"body"`
}

func (m *WhapiMessage) isFromMe() bool {
	return m.FromMe || m.FromMeAlt
}

// typeMedia returns the media object nested under the type-specific key, falling back
// to the generic "media" key for forward compatibility.
func (m *WhapiMessage) typeMedia() map[string]interface{} {
	switch strings.ToLower(m.Type) {
	case "document":
		return firstNonEmpty(m.Document, m.Media)
	case "image":
		return firstNonEmpty(m.Image, m.Media)
	case "audio":
		return firstNonEmpty(m.Audio, m.Media)
	case "video":
		return firstNonEmpty(m.Video, m.Media)
	case "sticker":
		return firstNonEmpty(m.Sticker, m.Media)
	case "file":
		return firstNonEmpty(m.File, m.Media)
	default:
		return m.Media
	}
}

func firstNonEmpty(a, b map[string]interface{}) map[string]interface{} {
	if len(a) > 0 {
		return a
	}
	return b
}

func mediaString(media map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := media[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// extractText resolves the plain-text body of a message: a text message's nested body,
// a media caption (top-level or under the type key), falling back to the top-level body.
func (m *WhapiMessage) extractText() string {
	if m.Text != nil && strings.TrimSpace(m.Text.Body) != "" {
		return strings.TrimSpace(m.Text.Body)
	}
	if caption := strings.TrimSpace(m.Caption); caption != "" {
		return caption
	}
	if media := m.typeMedia(); media != nil {
		if caption := mediaString(media, "caption"); caption != "" {
			return caption
		}
	}
	return strings.TrimSpace(m.Body)
}

// WhapiWebhookService validates and dispatches inbound WhatsApp messages.
type WhapiWebhookService struct {
	messaging      *messagingservice.MessagingService
	cvs            *cvsservice.CVService
	http           *http.Client
	webhookSecret  string
	mediaToken     string
	logger         *logger.Logger
}

func NewWhapiWebhookService(messaging *messagingservice.MessagingService, cvs *cvsservice.CVService, webhookSecret, mediaToken string, downloadTimeout time.Duration, log *logger.Logger) *WhapiWebhookService {
	return &WhapiWebhookService{
		messaging:     messaging,
		cvs:           cvs,
		http:          &http.Client{Timeout: downloadTimeout},
		webhookSecret: webhookSecret,
		mediaToken:    mediaToken,
		logger:        log,
	}
}

// ValidateToken checks the X-Whapi-Token header first, falling back to
// "Authorization: Bearer {token}". A blank configured secret disables validation.
func (s *WhapiWebhookService) ValidateToken(whapiTokenHeader, authorizationHeader string) bool {
	if s.webhookSecret == "" {
		return true
	}
	if whapiTokenHeader != "" {
		return hmac.Equal([]byte(whapiTokenHeader), []byte(s.webhookSecret))
	}
	const bearerPrefix = "bearer "
	if len(authorizationHeader) > len(bearerPrefix) && strings.EqualFold(authorizationHeader[:len(bearerPrefix)], bearerPrefix) {
		token := strings.TrimSpace(authorizationHeader[len(bearerPrefix):])
		return hmac.Equal([]byte(token), []byte(s.webhookSecret))
	}
	return false
}

// Parse decodes the raw webhook body into a WhapiEvent.
func (s *WhapiWebhookService) Parse(rawBody []byte) (*WhapiEvent, error) {
	var event WhapiEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Handle processes every message in the payload: text messages and media captions become
// CandidateReply rows, media attachments are downloaded and run through the CV matching
// cascade. Outbound ("from me") echoes are skipped. Per-message failures are logged and
// do not interrupt processing of the remaining messages.
func (s *WhapiWebhookService) Handle(ctx context.Context, event *WhapiEvent) {
	for _, msg := range event.Messages {
		s.handleMessage(ctx, msg)
	}
}

func (s *WhapiWebhookService) handleMessage(ctx context.Context, msg WhapiMessage) {
	if msg.isFromMe() {
		return
	}

	msgType := strings.ToLower(msg.Type)
	sender := msg.From
	if idx := strings.Index(sender, "@"); idx >= 0 {
		sender = sender[:idx]
	}

	if whapiMediaTypes[msgType] {
		s.handleMediaMessage(ctx, msg, msgType, sender)
		return
	}

	if msgType == "text" {
		body := msg.extractText()
		if body == "" {
			s.logger.Debug("whapi inbound empty text", zap.String("sender", sender))
			return
		}
		s.saveReply(ctx, sender, body)
	}
}

func (s *WhapiWebhookService) handleMediaMessage(ctx context.Context, msg WhapiMessage, msgType, sender string) {
	media := msg.typeMedia()
	mediaURL := mediaString(media, "link", "url")
	fileName := mediaString(media, "file_name", "filename", "name")
	if fileName == "" {
		fileName = "attachment." + msgType
	}
	text := msg.extractText()

	if mediaURL == "" {
		s.logger.Warn("whapi media message has no url, skipping", zap.String("type", msgType))
		return
	}

	content, err := s.downloadMedia(ctx, mediaURL)
	if err != nil {
		s.logger.Error("whapi media download failed", zap.String("sender", sender), zap.Error(err))
		return
	}

	_, err = s.cvs.ProcessInbound(ctx, cvsservice.InboundCV{
		Channel:     cvsmodel.ChannelWhatsApp,
		Sender:      sender,
		FileName:    fileName,
		FileContent: content,
		TextBody:    text,
	})
	if err != nil {
		s.logger.Error("whapi cv processing failed", zap.String("sender", sender), zap.Error(err))
	}

	if text != "" {
		s.saveReply(ctx, sender, text)
	}
}

func (s *WhapiWebhookService) saveReply(ctx context.Context, sender, body string) {
	if _, err := s.messaging.SaveCandidateReply(ctx, messagingmodel.ChannelWhatsApp, sender, "", body); err != nil {
		s.logger.Error("failed to save whapi candidate reply", zap.String("sender", sender), zap.Error(err))
	}
}

func (s *WhapiWebhookService) downloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil || parsed.Scheme != "https" {
		return nil, fmt.Errorf("rejected non-https media url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	if s.mediaToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.mediaToken)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("whapi media download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
