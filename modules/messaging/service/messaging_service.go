package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/textutil"
	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	candmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/ports"
	posports "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/ports"
	"go.uber.org/zap"
)

// fallbackBodies covers every (Type, Channel) combination so a missing or inactive
// database template never blocks an outbound send.
var fallbackBodies = map[model.Type]string{
	model.TypeCVRequest: "Hi {first_name}, thanks for the call about {position_title}! Please reply with your CV " +
		"(reference #{application_id}).",
	model.TypeRejection: "Hi {first_name}, thanks for your interest in {position_title}. We're not moving forward " +
		"at this time, but please send your CV (reference #{application_id}) and we'll keep it on file.",
	model.TypeFollowup1: "Hi {first_name}, just a reminder — we're still waiting on your CV for {position_title} " +
		"(reference #{application_id}).",
	model.TypeFollowup2: "Hi {first_name}, following up again about {position_title} (reference #{application_id}) " +
		"— please send your CV when you get a chance.",
	model.TypeOverdue: "Hi {first_name}, we haven't received your CV for {position_title} " +
		"(reference #{application_id}) and are closing this application for now. Feel free to reapply.",
}

var fallbackSubjects = map[model.Type]string{
	model.TypeCVRequest: "Your CV for {position_title}",
	model.TypeRejection: "Your CV for {position_title}",
	model.TypeFollowup1: "Reminder: your CV for {position_title}",
	model.TypeFollowup2: "Second reminder: your CV for {position_title}",
	model.TypeOverdue:   "Closing your application for {position_title}",
}

type MessagingService struct {
	templates ports.MessageTemplateRepository
	messages  ports.MessageRepository
	replies   ports.CandidateReplyRepository
	apps      appports.ApplicationRepository
	appSvc    *appservice.ApplicationService
	candidates candports.CandidateRepository
	positions posports.PositionRepository
	mailer    ports.Mailer
	whatsapp  ports.Gateway
	logger    *logger.Logger
}

func NewMessagingService(
	templates ports.MessageTemplateRepository,
	messages ports.MessageRepository,
	replies ports.CandidateReplyRepository,
	apps appports.ApplicationRepository,
	appSvc *appservice.ApplicationService,
	candidates candports.CandidateRepository,
	positions posports.PositionRepository,
	mailer ports.Mailer,
	whatsapp ports.Gateway,
	log *logger.Logger,
) *MessagingService {
	return &MessagingService{
		templates: templates, messages: messages, replies: replies,
		apps: apps, appSvc: appSvc, candidates: candidates, positions: positions,
		mailer: mailer, whatsapp: whatsapp, logger: log,
	}
}

// SendCVRequest implements evaluations/ports.CVRequestTrigger. Qualified candidates get
// email + WhatsApp and move to awaiting_cv; not-qualified candidates get WhatsApp only
// and move to awaiting_cv_rejected.
func (s *MessagingService) SendCVRequest(ctx context.Context, applicationID string, qualified bool) error {
	msgType := model.TypeCVRequest
	if !qualified {
		msgType = model.TypeRejection
	}

	if err := s.sendWhatsApp(ctx, applicationID, msgType); err != nil {
		s.logger.Error("cv request whatsapp send failed", zap.String("application_id", applicationID), zap.Error(err))
	}
	if qualified {
		if err := s.sendEmail(ctx, applicationID, msgType); err != nil {
			s.logger.Error("cv request email send failed", zap.String("application_id", applicationID), zap.Error(err))
		}
	}

	_, err := s.appSvc.SetAwaitingCV(ctx, applicationID, !qualified)
	return err
}

// SendFollowup sends a qualified-branch nudge (cv_followup_1, cv_followup_2, cv_overdue)
// over both channels without touching Application status — the scheduler drives status
// transitions separately.
func (s *MessagingService) SendFollowup(ctx context.Context, applicationID string, msgType model.Type) error {
	if err := s.sendWhatsApp(ctx, applicationID, msgType); err != nil {
		s.logger.Error("followup whatsapp send failed", zap.String("application_id", applicationID), zap.Error(err))
	}
	if err := s.sendEmail(ctx, applicationID, msgType); err != nil {
		s.logger.Error("followup email send failed", zap.String("application_id", applicationID), zap.Error(err))
	}
	return nil
}

// LastSentAt returns the sent_at of the most recently sent message (status sent) for
// applicationID, or nil if none has gone out yet; failed attempts are ignored. The
// scheduler's follow-up job times each nudge off this instead of the application's own
// updated_at once at least one message has been sent.
func (s *MessagingService) LastSentAt(ctx context.Context, applicationID string) (*time.Time, error) {
	messages, err := s.messages.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, m := range messages {
		if m.Status != model.StatusSent {
			continue
		}
		if latest == nil || m.SentAt.After(*latest) {
			t := m.SentAt
			latest = &t
		}
	}
	return latest, nil
}

func (s *MessagingService) sendWhatsApp(ctx context.Context, applicationID string, msgType model.Type) error {
	app, candidate, position, err := s.loadContext(ctx, applicationID)
	if err != nil {
		return err
	}

	phone := candidate.Phone
	if candidate.WhatsAppNumber != nil && *candidate.WhatsAppNumber != "" {
		phone = *candidate.WhatsAppNumber
	}
	if phone == "" {
		return s.recordFailure(ctx, app.ID, model.ChannelWhatsApp, msgType, "", model.ErrNoRecipient.Error())
	}

	subject, body := s.render(ctx, msgType, model.ChannelWhatsApp, app, candidate, position)
	sendErr := s.whatsapp.SendText(ctx, phone, body)
	return s.record(ctx, app.ID, model.ChannelWhatsApp, msgType, phone, subject, body, sendErr)
}

func (s *MessagingService) sendEmail(ctx context.Context, applicationID string, msgType model.Type) error {
	app, candidate, position, err := s.loadContext(ctx, applicationID)
	if err != nil {
		return err
	}
	if candidate.Email == "" {
		return s.recordFailure(ctx, app.ID, model.ChannelEmail, msgType, "", model.ErrNoRecipient.Error())
	}

	subject, body := s.render(ctx, msgType, model.ChannelEmail, app, candidate, position)
	sendErr := s.mailer.Send(ctx, candidate.Email, subject, body)
	return s.record(ctx, app.ID, model.ChannelEmail, msgType, candidate.Email, subject, body, sendErr)
}

func (s *MessagingService) loadContext(ctx context.Context, applicationID string) (*appmodel.Application, *candmodel.Candidate, string, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, "", err
	}
	candidate, err := s.candidates.GetByID(ctx, app.CandidateID)
	if err != nil {
		return nil, nil, "", err
	}
	position, err := s.positions.GetByID(ctx, app.PositionID)
	if err != nil {
		return nil, nil, "", err
	}
	return app, candidate, position.Title, nil
}

// render resolves (subject, body) for msgType/channel: an active database template
// takes priority, falling back to the hardcoded text above when none is active.
func (s *MessagingService) render(ctx context.Context, msgType model.Type, channel model.Channel, app *appmodel.Application, candidate *candmodel.Candidate, positionTitle string) (subject, body string) {
	placeholders := map[string]string{
		"first_name":     candidate.FirstName,
		"position_title": positionTitle,
		"application_id": strconv.Itoa(app.ReferenceNumber),
	}

	tmpl, err := s.templates.GetActive(ctx, msgType, channel)
	if err == nil && tmpl != nil {
		return textutil.ApplyPlaceholders(tmpl.Subject, placeholders), textutil.ApplyPlaceholders(tmpl.Body, placeholders)
	}

	return textutil.ApplyPlaceholders(fallbackSubjects[msgType], placeholders), textutil.ApplyPlaceholders(fallbackBodies[msgType], placeholders)
}

func (s *MessagingService) record(ctx context.Context, applicationID string, channel model.Channel, msgType model.Type, recipient, subject, body string, sendErr error) error {
	msg := &model.Message{
		ApplicationID: applicationID,
		Channel:       channel,
		Type:          msgType,
		Recipient:     recipient,
		Subject:       subject,
		Body:          body,
		Status:        model.StatusSent,
		SentAt:        time.Now().UTC(),
	}
	if sendErr != nil {
		msg.Status = model.StatusFailed
		errText := sendErr.Error()
		msg.Error = &errText
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return err
	}
	return sendErr
}

func (s *MessagingService) recordFailure(ctx context.Context, applicationID string, channel model.Channel, msgType model.Type, recipient, reason string) error {
	msg := &model.Message{
		ApplicationID: applicationID,
		Channel:       channel,
		Type:          msgType,
		Recipient:     recipient,
		Status:        model.StatusFailed,
		Error:         &reason,
		SentAt:        time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return err
	}
	return model.ErrNoRecipient
}

// SaveCandidateReply resolves sender to a candidate/application (best effort — a
// resolution failure still persists the reply) and records the inbound message.
func (s *MessagingService) SaveCandidateReply(ctx context.Context, channel model.Channel, sender, subject, body string) (*model.CandidateReply, error) {
	var candidateID, applicationID *string

	candidate, err := s.resolveSender(ctx, sender)
	if err == nil && candidate != nil {
		id := candidate.ID
		candidateID = &id

		apps, _, err := s.apps.List(ctx, appports.ListFilter{CandidateID: candidate.ID, Limit: 20})
		if err == nil {
			for _, app := range apps {
				if app.Status != appmodel.StatusClosed {
					appID := app.ID
					applicationID = &appID
					break
				}
			}
		}
	}

	var subjectPtr *string
	if strings.TrimSpace(subject) != "" {
		subjectPtr = &subject
	}

	reply := &model.CandidateReply{
		Channel:       channel,
		Sender:        sender,
		Subject:       subjectPtr,
		Body:          body,
		CandidateID:   candidateID,
		ApplicationID: applicationID,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *MessagingService) resolveSender(ctx context.Context, sender string) (*candmodel.Candidate, error) {
	if strings.Contains(sender, "@") {
		return s.candidates.FindByEmail(ctx, sender)
	}

	pool, err := s.candidates.ListWithAwaitingCVApplications(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range pool {
		if textutil.PhonesMatch(sender, c.Phone) {
			return c, nil
		}
		if c.WhatsAppNumber != nil && textutil.PhonesMatch(sender, *c.WhatsAppNumber) {
			return c, nil
		}
	}
	return nil, candmodel.ErrCandidateNotFound
}
