package scheduler

import (
	"context"
	"time"

	appmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/model"
	appports "github.com/alexandruradulescu-neurony/recruitflow/modules/applications/ports"
	callports "github.com/alexandruradulescu-neurony/recruitflow/modules/calls/ports"
	cvsmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/model"
	cvsservice "github.com/alexandruradulescu-neurony/recruitflow/modules/cvs/service"
	msgmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/messaging/model"
	posmodel "github.com/alexandruradulescu-neurony/recruitflow/modules/positions/model"
	"go.uber.org/zap"
)

// followupTransitions maps the status a qualified application currently sits in to the
// message type to send and the status it should advance to, once its follow-up interval
// has elapsed. cv_overdue is the end of the line — checkCVFollowups sends no further
// nudge after it; closeStaleRejected later closes applications left in cv_overdue.
var followupTransitions = map[appmodel.Status]struct {
	messageType msgmodel.Type
	next        appmodel.Status
}{
	appmodel.StatusAwaitingCV:  {msgmodel.TypeFollowup1, appmodel.StatusCVFollowup1},
	appmodel.StatusCVFollowup1: {msgmodel.TypeFollowup2, appmodel.StatusCVFollowup2},
	appmodel.StatusCVFollowup2: {msgmodel.TypeOverdue, appmodel.StatusCVOverdue},
}

// processCallQueue submits CALL_QUEUED applications as one batch and due
// CALLBACK_SCHEDULED applications individually, gated by each position's calling-hour
// window. Both queues advance their applications to CALL_IN_PROGRESS the moment the
// provider accepts the call — the webhook (or the reconciliation job, for stragglers)
// takes it from there.
func (s *Scheduler) processCallQueue(ctx context.Context) {
	hour := s.currentHour()

	queued, _, err := s.apps.List(ctx, appports.ListFilter{Statuses: []appmodel.Status{appmodel.StatusCallQueued}, Limit: 1000})
	if err != nil {
		s.logger.Error("process_call_queue: failed to list queued applications", zap.Error(err))
		return
	}

	var eligible []*appmodel.Application
	for _, app := range queued {
		position, err := s.positions.GetByID(ctx, app.PositionID)
		if err != nil {
			s.logger.Warn("process_call_queue: failed to load position for queued application",
				zap.String("application_id", app.ID), zap.Error(err))
			continue
		}
		if !position.InCallingWindow(hour) {
			continue
		}
		eligible = append(eligible, app)
	}

	queuedCount := 0
	for _, chunk := range chunkApplications(eligible, s.batchChunkSize) {
		subjects, subjectApps := s.buildSubjects(ctx, chunk)
		if len(subjects) == 0 {
			continue
		}
		if _, err := s.calls.InitiateBatch(ctx, subjects); err != nil {
			s.logger.Error("process_call_queue: batch submission failed, failing applications",
				zap.Int("count", len(subjectApps)), zap.Error(err))
			ids := make([]string, len(subjectApps))
			for i, app := range subjectApps {
				ids[i] = app.ID
			}
			if _, failErr := s.apps.BulkFail(ctx, ids, "batch call submission failed"); failErr != nil {
				s.logger.Error("process_call_queue: failed to bulk-fail batch applications", zap.Error(failErr))
			}
			continue
		}
		for _, app := range subjectApps {
			if _, err := s.apps.SetCallInProgress(ctx, app.ID); err != nil {
				s.logger.Warn("process_call_queue: failed to advance queued application to in-progress",
					zap.String("application_id", app.ID), zap.Error(err))
			}
		}
		queuedCount += len(subjectApps)
	}

	callbacks, _, err := s.apps.List(ctx, appports.ListFilter{Statuses: []appmodel.Status{appmodel.StatusCallbackScheduled}, Limit: 1000})
	if err != nil {
		s.logger.Error("process_call_queue: failed to list callback applications", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	callbackCount := 0
	for _, app := range callbacks {
		if app.CallbackScheduledAt == nil || app.CallbackScheduledAt.After(now) {
			continue
		}
		position, err := s.positions.GetByID(ctx, app.PositionID)
		if err != nil {
			s.logger.Warn("process_call_queue: failed to load position for callback application",
				zap.String("application_id", app.ID), zap.Error(err))
			continue
		}
		if !position.InCallingWindow(hour) {
			continue
		}
		subject, ok := s.buildSubject(ctx, app, position)
		if !ok {
			continue
		}
		if _, err := s.calls.InitiateSingle(ctx, subject); err != nil {
			s.logger.Error("process_call_queue: callback call failed", zap.String("application_id", app.ID), zap.Error(err))
			if _, failErr := s.apps.SetCallFailed(ctx, app.ID, strPtr(err.Error())); failErr != nil {
				s.logger.Warn("process_call_queue: failed to fail callback application", zap.Error(failErr))
			}
			continue
		}
		if _, err := s.apps.SetCallInProgress(ctx, app.ID); err != nil {
			s.logger.Warn("process_call_queue: failed to advance callback application to in-progress",
				zap.String("application_id", app.ID), zap.Error(err))
		}
		callbackCount++
	}

	if queuedCount > 0 || callbackCount > 0 {
		s.logger.Info("process_call_queue: submitted calls",
			zap.Int("queued_batch", queuedCount), zap.Int("callback_individual", callbackCount))
	}
}

// buildSubjects joins candidate and position data for a chunk of applications, skipping
// any application whose candidate has no usable phone number (mirroring the provider's
// own per-recipient validation instead of failing the whole chunk for one bad row).
func (s *Scheduler) buildSubjects(ctx context.Context, apps []*appmodel.Application) ([]callports.CallSubject, []*appmodel.Application) {
	subjects := make([]callports.CallSubject, 0, len(apps))
	matched := make([]*appmodel.Application, 0, len(apps))
	for _, app := range apps {
		position, err := s.positions.GetByID(ctx, app.PositionID)
		if err != nil {
			s.logger.Warn("failed to load position for call subject", zap.String("application_id", app.ID), zap.Error(err))
			continue
		}
		subject, ok := s.buildSubject(ctx, app, position)
		if !ok {
			continue
		}
		subjects = append(subjects, subject)
		matched = append(matched, app)
	}
	return subjects, matched
}

func (s *Scheduler) buildSubject(ctx context.Context, app *appmodel.Application, position *posmodel.Position) (callports.CallSubject, bool) {
	candidate, err := s.candidates.GetByID(ctx, app.CandidateID)
	if err != nil {
		s.logger.Warn("failed to load candidate for call subject", zap.String("application_id", app.ID), zap.Error(err))
		return callports.CallSubject{}, false
	}
	if candidate.Phone == "" {
		s.logger.Warn("skipping application, candidate has no phone number", zap.String("application_id", app.ID))
		return callports.CallSubject{}, false
	}
	return callports.CallSubject{
		ApplicationID:  app.ID,
		CandidateName:  candidate.FullName,
		CandidateFirst: candidate.FirstName,
		CandidateEmail: candidate.Email,
		CandidatePhone: candidate.Phone,
		FormAnswers:    candidate.FormAnswers,
		Position:       position,
	}, true
}

func chunkApplications(apps []*appmodel.Application, size int) [][]*appmodel.Application {
	if size <= 0 {
		size = 50
	}
	var chunks [][]*appmodel.Application
	for start := 0; start < len(apps); start += size {
		end := start + size
		if end > len(apps) {
			end = len(apps)
		}
		chunks = append(chunks, apps[start:end])
	}
	return chunks
}

func strPtr(s string) *string { return &s }

// syncStuckCalls polls every call that never received a completion webhook in time and
// applies whatever the provider reports, then triggers evaluation for every call this
// pass discovered had actually completed — the webhook path normally handles that, but
// a reconciled call has no webhook of its own to do it.
func (s *Scheduler) syncStuckCalls(ctx context.Context) {
	completedCallIDs, err := s.calls.ReconcileStuck(ctx, s.cfg.StuckCallThreshold, s.cfg.OrphanThreshold)
	if err != nil {
		s.logger.Error("sync_stuck_calls: reconciliation failed", zap.Error(err))
	}
	for _, callID := range completedCallIDs {
		s.evaluations.TriggerEvaluation(ctx, callID)
	}
}

// checkCVFollowups advances every qualified application still waiting on a CV through
// awaiting_cv → cv_followup_1 → cv_followup_2 → cv_overdue, timed against each
// position's follow-up interval measured from the last message actually sent (or the
// application's own updated_at if none has gone out yet).
func (s *Scheduler) checkCVFollowups(ctx context.Context) {
	qualifiedTrue := true
	statuses := []appmodel.Status{appmodel.StatusAwaitingCV, appmodel.StatusCVFollowup1, appmodel.StatusCVFollowup2}
	apps, _, err := s.apps.List(ctx, appports.ListFilter{Statuses: statuses, Qualified: &qualifiedTrue, Limit: 1000})
	if err != nil {
		s.logger.Error("check_cv_followups: failed to list applications", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	advanced := 0
	for _, app := range apps {
		transition, ok := followupTransitions[app.Status]
		if !ok {
			continue
		}
		position, err := s.positions.GetByID(ctx, app.PositionID)
		if err != nil {
			s.logger.Warn("check_cv_followups: failed to load position", zap.String("application_id", app.ID), zap.Error(err))
			continue
		}

		since := app.UpdatedAt
		if lastSent, err := s.messaging.LastSentAt(ctx, app.ID); err != nil {
			s.logger.Warn("check_cv_followups: failed to load last sent message", zap.String("application_id", app.ID), zap.Error(err))
		} else if lastSent != nil {
			since = *lastSent
		}

		due := since.Add(time.Duration(position.FollowUpIntervalHours) * time.Hour)
		if now.Before(due) {
			continue
		}

		if err := s.messaging.SendFollowup(ctx, app.ID, transition.messageType); err != nil {
			s.logger.Warn("check_cv_followups: follow-up send failed", zap.String("application_id", app.ID), zap.Error(err))
		}
		if _, err := s.apps.SetFollowupStatus(ctx, app.ID, transition.next); err != nil {
			s.logger.Warn("check_cv_followups: failed to advance follow-up status", zap.String("application_id", app.ID), zap.Error(err))
			continue
		}
		advanced++
	}

	if advanced > 0 {
		s.logger.Info("check_cv_followups: advanced applications", zap.Int("count", advanced))
	}
}

// closeStaleRejectedStatuses are the three categories close_stale_rejected considers,
// each compared against its own baseline timestamp: awaiting_cv_rejected and cv_overdue
// have no CV on file yet so updated_at (the time of the transition into that status) is
// the baseline; cv_received_rejected has a CV on file, so cv_received_at is used instead.
var closeStaleRejectedStatuses = []appmodel.Status{
	appmodel.StatusAwaitingCVRejected,
	appmodel.StatusCVReceivedRejected,
	appmodel.StatusCVOverdue,
}

// closeStaleRejected bulk-closes three categories of stalled application once each one's
// own deadline (baseline + position.rejected_cv_timeout_days) has passed: not-qualified
// applications still awaiting a CV, not-qualified applications whose CV arrived but were
// never otherwise resolved, and qualified applications that ran out the follow-up chain
// without ever producing a CV. No message is sent for any of the three — the candidate
// was already told the outcome (rejection) or already nudged through every follow-up
// (overdue) before this job ever runs.
func (s *Scheduler) closeStaleRejected(ctx context.Context) {
	apps, _, err := s.apps.List(ctx, appports.ListFilter{Statuses: closeStaleRejectedStatuses, Limit: 1000})
	if err != nil {
		s.logger.Error("close_stale_rejected: failed to list applications", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	var toClose []string
	for _, app := range apps {
		position, err := s.positions.GetByID(ctx, app.PositionID)
		if err != nil {
			s.logger.Warn("close_stale_rejected: failed to load position", zap.String("application_id", app.ID), zap.Error(err))
			continue
		}

		baseline := app.UpdatedAt
		if app.Status == appmodel.StatusCVReceivedRejected && app.CVReceivedAt != nil {
			baseline = *app.CVReceivedAt
		}

		deadline := baseline.Add(time.Duration(position.RejectedCVTimeoutDays) * 24 * time.Hour)
		if now.After(deadline) {
			toClose = append(toClose, app.ID)
		}
	}
	if len(toClose) == 0 {
		return
	}

	closed, err := s.apps.BulkClose(ctx, toClose, closeStaleRejectedStatuses)
	if err != nil {
		s.logger.Error("close_stale_rejected: bulk close failed", zap.Error(err))
		return
	}
	s.logger.Info("close_stale_rejected: closed stale applications", zap.Int("count", closed))
}

// pollCVInbox scans the monitored mailbox for unread messages carrying attachments,
// routes each attachment through the same matching cascade the WhatsApp webhook feeds,
// persists any message body as a candidate reply, and moves the message to the
// processed label once handled. Gated by a persisted setting an operator can flip at
// runtime — SCHEDULER_MAILBOX_POLL_ENABLED only supplies the value to seed that setting
// with on first boot, it is not re-read on every tick.
func (s *Scheduler) pollCVInbox(ctx context.Context) {
	if !s.settings.MailboxPollEnabled(ctx, s.cfg.MailboxPollEnabled) {
		return
	}

	messages, err := s.mailbox.ListUnread(ctx, s.cfg.MailboxInboxLabel)
	if err != nil {
		s.logger.Error("poll_cv_inbox: failed to list unread mailbox messages", zap.Error(err))
		return
	}

	processed := 0
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			_, err := s.cvs.ProcessInbound(ctx, cvsservice.InboundCV{
				Channel:     cvsmodel.ChannelEmail,
				Sender:      msg.Sender,
				FileName:    att.Name,
				FileContent: att.Data,
				TextBody:    msg.BodySnippet,
				Subject:     msg.Subject,
			})
			if err != nil {
				s.logger.Error("poll_cv_inbox: cv processing failed",
					zap.String("message_id", msg.ID), zap.String("attachment", att.Name), zap.Error(err))
			}
		}

		if msg.BodySnippet != "" {
			if _, err := s.messaging.SaveCandidateReply(ctx, msgmodel.ChannelEmail, msg.Sender, msg.Subject, msg.BodySnippet); err != nil {
				s.logger.Error("poll_cv_inbox: failed to save candidate reply", zap.String("message_id", msg.ID), zap.Error(err))
			}
		}

		if err := s.mailbox.MarkProcessed(ctx, msg.ID, s.cfg.MailboxInboxLabel, s.cfg.MailboxProcessedLabel); err != nil {
			s.logger.Error("poll_cv_inbox: failed to mark message processed", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		processed++
	}

	if processed > 0 {
		s.logger.Info("poll_cv_inbox: processed messages", zap.Int("count", processed))
	}
}
