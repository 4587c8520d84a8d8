package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/logger"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/platform/storage"
	"github.com/alexandruradulescu-neurony/recruitflow/internal/textutil"
	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	appservice "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/service"
	candmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/model"
	candports "github.com/alexandruradulescu-neurony/recruitflow/modules/candidates/ports"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	"github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fuzzyNameThreshold is the minimum SequenceMatcher-style ratio a sender display name
// must strictly exceed against a candidate's full name to count as a match (priorities
// 4 and 5).
const fuzzyNameThreshold = 0.80

// InboundCV is everything the cascade needs about one received attachment.
type InboundCV struct {
	Channel     model.Channel
	Sender      string
	FileName    string
	ContentType string
	FileContent []byte
	TextBody    string
	Subject     string
	RawPayload  []byte
}

// MatchResult reports what the cascade did with one inbound attachment.
type MatchResult struct {
	Matched        bool
	Method         model.MatchMethod
	Confidence     string
	ApplicationIDs []string
	CVUploadIDs    []string
	UnmatchedID    string
}

// CVService orchestrates the six-priority matching cascade.
type CVService struct {
	uploads      ports.CVUploadRepository
	unmatched    ports.UnmatchedInboundRepository
	applications appports.ApplicationRepository
	appService   *appservice.ApplicationService
	candidates   candports.CandidateRepository
	llmClient    ports.LLMClient
	s3Client     *storage.S3Client
	fastModel    string
	logger       *logger.Logger
}

func NewCVService(
	uploads ports.CVUploadRepository,
	unmatched ports.UnmatchedInboundRepository,
	applications appports.ApplicationRepository,
	appService *appservice.ApplicationService,
	candidates candports.CandidateRepository,
	llmClient ports.LLMClient,
	s3Client *storage.S3Client,
	fastModel string,
	log *logger.Logger,
) *CVService {
	return &CVService{
		uploads:      uploads,
		unmatched:    unmatched,
		applications: applications,
		appService:   appService,
		candidates:   candidates,
		llmClient:    llmClient,
		s3Client:     s3Client,
		fastModel:    fastModel,
		logger:       log,
	}
}

// ProcessInbound runs the full six-priority cascade against one inbound attachment,
// storing the file exactly once regardless of which priority eventually matches it.
func (s *CVService) ProcessInbound(ctx context.Context, in InboundCV) (*MatchResult, error) {
	filePath, err := s.storeFile(ctx, in)
	if err != nil {
		return nil, err
	}

	source := channelToSource(in.Channel)

	if candidate, ok := s.tryExactEmail(ctx, in.Sender); ok {
		if result, matched, err := s.applyMatch(ctx, candidate, model.MatchExactEmail, source, in.FileName, filePath); err != nil {
			return nil, err
		} else if matched {
			return result, nil
		}
	}

	awaitingPool, err := s.candidates.ListWithAwaitingCVApplications(ctx)
	if err != nil {
		return nil, err
	}

	if candidate, ok := s.tryExactPhone(in.Sender, awaitingPool); ok {
		if result, matched, err := s.applyMatch(ctx, candidate, model.MatchExactPhone, source, in.FileName, filePath); err != nil {
			return nil, err
		} else if matched {
			return result, nil
		}
	}

	if candidate, ok := s.trySubjectID(ctx, in.Subject, in.TextBody); ok {
		if result, matched, err := s.applyMatch(ctx, candidate, model.MatchSubjectID, source, in.FileName, filePath); err != nil {
			return nil, err
		} else if matched {
			return result, nil
		}
	}

	if candidate, ok := s.tryFuzzyName(in.Sender, awaitingPool); ok {
		if result, matched, err := s.applyMatch(ctx, candidate, model.MatchFuzzyName, source, in.FileName, filePath); err != nil {
			return nil, err
		} else if matched {
			return result, nil
		}
	}

	if candidate, ok := s.tryLLMContent(ctx, in, awaitingPool); ok {
		if result, matched, err := s.applyMatch(ctx, candidate, model.MatchCVContent, source, in.FileName, filePath); err != nil {
			return nil, err
		} else if matched {
			return result, nil
		}
	}

	unmatched := &model.UnmatchedInbound{
		Channel:    in.Channel,
		Sender:     in.Sender,
		FilePath:   &filePath,
		RawPayload: in.RawPayload,
	}
	if in.Subject != "" {
		unmatched.Subject = &in.Subject
	}
	if in.TextBody != "" {
		snippet := capText(in.TextBody, 500)
		unmatched.BodySnippet = &snippet
	}
	if in.FileName != "" {
		unmatched.AttachmentName = &in.FileName
	}
	if err := s.unmatched.Create(ctx, unmatched); err != nil {
		return nil, err
	}
	return &MatchResult{Matched: false, UnmatchedID: unmatched.ID}, nil
}

func (s *CVService) tryExactEmail(ctx context.Context, sender string) (*candmodel.Candidate, bool) {
	addr := extractEmailAddress(sender)
	if addr == "" {
		return nil, false
	}
	candidate, err := s.candidates.FindByEmail(ctx, addr)
	if err != nil {
		return nil, false
	}
	return candidate, true
}

func (s *CVService) tryExactPhone(sender string, pool []*candmodel.Candidate) (*candmodel.Candidate, bool) {
	for _, c := range pool {
		if textutil.PhonesMatch(sender, c.Phone) {
			return c, true
		}
		if c.WhatsAppNumber != nil && textutil.PhonesMatch(sender, *c.WhatsAppNumber) {
			return c, true
		}
	}
	return nil, false
}

func (s *CVService) trySubjectID(ctx context.Context, subject, body string) (*candmodel.Candidate, bool) {
	refID, ok := textutil.ExtractReferenceID(subject)
	if !ok {
		refID, ok = textutil.ExtractReferenceID(body)
	}
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(refID)
	if err != nil {
		return nil, false
	}
	app, err := s.applications.FindByReferenceNumber(ctx, n)
	if err != nil {
		return nil, false
	}
	candidate, err := s.candidates.GetByID(ctx, app.CandidateID)
	if err != nil {
		return nil, false
	}
	return candidate, true
}

func (s *CVService) tryFuzzyName(sender string, pool []*candmodel.Candidate) (*candmodel.Candidate, bool) {
	name, ok := textutil.ExtractDisplayName(sender)
	if !ok || len(name) < 3 {
		return nil, false
	}
	return bestFuzzyMatch(name, pool)
}

func bestFuzzyMatch(name string, pool []*candmodel.Candidate) (*candmodel.Candidate, bool) {
	var best *candmodel.Candidate
	bestRatio := fuzzyNameThreshold
	for _, c := range pool {
		ratio := textutil.SimilarityRatio(name, c.FullName)
		if ratio > bestRatio {
			bestRatio = ratio
			best = c
		}
	}
	return best, best != nil
}

func (s *CVService) tryLLMContent(ctx context.Context, in InboundCV, pool []*candmodel.Candidate) (*candmodel.Candidate, bool) {
	if s.llmClient == nil {
		return nil, false
	}
	text, err := extractText(in.FileName, in.ContentType, in.FileContent)
	if err != nil || text == "" {
		return nil, false
	}
	contact, err := extractContactViaLLM(ctx, s.llmClient, s.fastModel, text)
	if err != nil {
		s.logger.Warn("cv content extraction failed", zap.Error(err))
		return nil, false
	}

	if contact.Email != nil && *contact.Email != "" {
		for _, c := range pool {
			if equalFoldEmail(c.Email, *contact.Email) {
				return c, true
			}
		}
	}
	if contact.Phone != nil && *contact.Phone != "" {
		if c, ok := s.tryExactPhone(*contact.Phone, pool); ok {
			return c, true
		}
	}
	if contact.FirstName != nil || contact.LastName != nil {
		fullName := joinName(contact.FirstName, contact.LastName)
		if fullName != "" {
			return bestFuzzyMatch(fullName, pool)
		}
	}
	return nil, false
}

// applyMatch finds the matched candidate's awaiting-CV applications and, if any
// exist, attaches the file to every one of them. ok=false signals the cascade should
// fall through to the next priority even though a candidate was identified.
func (s *CVService) applyMatch(ctx context.Context, candidate *candmodel.Candidate, method model.MatchMethod, source model.Source, fileName, filePath string) (*MatchResult, bool, error) {
	apps, _, err := s.applications.List(ctx, appports.ListFilter{
		CandidateID: candidate.ID,
		Statuses:    awaitingCVStatusList(),
	})
	if err != nil {
		return nil, false, err
	}
	if len(apps) == 0 {
		return nil, false, nil
	}

	now := time.Now().UTC()
	needsReview := method.NeedsReview()
	uploads := make([]*model.CVUpload, 0, len(apps))
	appIDs := make([]string, 0, len(apps))
	for _, app := range apps {
		m := method
		uploads = append(uploads, &model.CVUpload{
			ApplicationID: app.ID,
			FileName:      fileName,
			FilePath:      filePath,
			Source:        source,
			MatchMethod:   &m,
			NeedsReview:   needsReview,
			ReceivedAt:    now,
		})
		appIDs = append(appIDs, app.ID)
	}
	if err := s.uploads.CreateMany(ctx, uploads); err != nil {
		return nil, false, err
	}

	uploadIDs := make([]string, len(uploads))
	for i, u := range uploads {
		uploadIDs[i] = u.ID
	}

	for _, app := range apps {
		rejected := app.Status == appmodel.StatusAwaitingCVRejected
		if _, err := s.appService.SetCVReceived(ctx, app.ID, rejected, now); err != nil {
			return nil, false, err
		}
	}

	return &MatchResult{
		Matched:        true,
		Method:         method,
		Confidence:     method.Confidence(),
		ApplicationIDs: appIDs,
		CVUploadIDs:    uploadIDs,
	}, true, nil
}

// ResolveManually attaches an UnmatchedInbound to a recruiter-chosen application,
// for the CV Inbox's manual reassignment action (priority 6 fallback).
func (s *CVService) ResolveManually(ctx context.Context, unmatchedID, applicationID string) (*MatchResult, error) {
	inbound, err := s.unmatched.GetByID(ctx, unmatchedID)
	if err != nil {
		return nil, err
	}
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	method := model.MatchManual
	filePath := ""
	if inbound.FilePath != nil {
		filePath = *inbound.FilePath
	}
	fileName := ""
	if inbound.AttachmentName != nil {
		fileName = *inbound.AttachmentName
	}
	upload := &model.CVUpload{
		ApplicationID: app.ID,
		FileName:      fileName,
		FilePath:      filePath,
		Source:        model.SourceManualUpload,
		MatchMethod:   &method,
		NeedsReview:   false,
		ReceivedAt:    now,
	}
	if err := s.uploads.CreateMany(ctx, []*model.CVUpload{upload}); err != nil {
		return nil, err
	}

	rejected := app.Status == appmodel.StatusAwaitingCVRejected
	if _, err := s.appService.SetCVReceived(ctx, app.ID, rejected, now); err != nil {
		return nil, err
	}

	if _, err := s.unmatched.Resolve(ctx, unmatchedID, applicationID); err != nil {
		return nil, err
	}

	return &MatchResult{
		Matched:        true,
		Method:         method,
		Confidence:     method.Confidence(),
		ApplicationIDs: []string{app.ID},
		CVUploadIDs:    []string{upload.ID},
	}, nil
}

// storeFile persists the attachment to object storage exactly once, under a
// cvs/{uuid}/{filename} key, before the cascade runs. Manual uploads with no file
// content (a text-only WhatsApp reply, for instance) store nothing and keep an empty
// path.
func (s *CVService) storeFile(ctx context.Context, in InboundCV) (string, error) {
	if len(in.FileContent) == 0 || s.s3Client == nil {
		return "", nil
	}
	key := "cvs/" + uuid.New().String() + "/" + in.FileName
	if err := s.s3Client.PutObject(ctx, key, in.ContentType, in.FileContent); err != nil {
		return "", err
	}
	return key, nil
}

func channelToSource(c model.Channel) model.Source {
	switch c {
	case model.ChannelWhatsApp:
		return model.SourceWhatsAppMedia
	default:
		return model.SourceEmailAttachment
	}
}

func awaitingCVStatusList() []appmodel.Status {
	out := make([]appmodel.Status, 0, len(appmodel.AwaitingCVStatuses))
	for s := range appmodel.AwaitingCVStatuses {
		out = append(out, s)
	}
	return out
}

func equalFoldEmail(a, b string) bool {
	na, nb := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	return na != "" && na == nb
}

// extractEmailAddress pulls the address out of a `"Name" <addr>` sender header, or
// returns sender unchanged if it carries no angle-bracket part.
func extractEmailAddress(sender string) string {
	start := strings.LastIndex(sender, "<")
	end := strings.LastIndex(sender, ">")
	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(sender)
	}
	return strings.TrimSpace(sender[start+1 : end])
}

func joinName(first, last *string) string {
	parts := make([]string, 0, 2)
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	return strings.Join(parts, " ")
}
