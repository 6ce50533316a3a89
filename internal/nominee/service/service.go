// Package service coordinates nominee mutations. Reads and staged edits are
// free; anything that changes committed records passes through the step-up
// token gate and lands upstream as a single all-or-nothing batch.
package service

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/audit"
	"folio/internal/mfa"
	"folio/internal/nominee/draft"
	"folio/internal/nominee/metrics"
	"folio/internal/nominee/models"
	"folio/internal/nominee/tracer"
	"folio/internal/nominee/validate"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks NomineeAPI,TokenSource,AuditPublisher

// NomineeAPI is the upstream system of record for nominee declarations.
// Upsert replaces the caller's full nominee set in one request and returns
// the authoritative post-commit records.
type NomineeAPI interface {
	List(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error)
	Upsert(ctx context.Context, userID domain.UserID, token string, batch []*models.Nominee) ([]*models.Nominee, error)
	OptOut(ctx context.Context, userID domain.UserID, token string) error
}

// TokenSource hands out live step-up tokens. The mfa.Manager satisfies this.
type TokenSource interface {
	Token(ctx context.Context, userID domain.UserID, action mfa.Action) (string, bool)
	Consume(ctx context.Context, userID domain.UserID, action mfa.Action)
	Invalidate(ctx context.Context, userID domain.UserID, action mfa.Action)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// ValidationError carries per-field messages for a rejected commit. A
// DraftIndex of -1 means the failure is about the set as a whole rather
// than a single draft.
type ValidationError struct {
	DraftIndex int
	Fields     validate.FieldErrors
}

func (e *ValidationError) Error() string {
	for _, msg := range e.Fields {
		return msg
	}
	return "validation failed"
}

func (e *ValidationError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidInput, e.Error())
}

// Service is the mutation coordinator for a user's nominee declarations.
type Service struct {
	api    NomineeAPI
	tokens TokenSource
	drafts *draft.Store

	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         tracer.Tracer
	auditPublisher AuditPublisher
	now            func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus collectors.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = collectors
	}
}

// WithTracer sets the tracer for commit and opt-out spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithAuditPublisher enables audit trail emission.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a nominee mutation coordinator.
func NewService(api NomineeAPI, tokens TokenSource, drafts *draft.Store, opts ...Option) *Service {
	s := &Service{
		api:    api,
		tokens: tokens,
		drafts: drafts,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh pulls the authoritative committed records from upstream and
// seeds the draft store with them. Pending drafts survive a refresh.
func (s *Service) Refresh(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRefresh,
		tracer.String(tracer.AttrUserID, userID.String()),
	)

	nominees, err := s.api.List(ctx, userID)
	if err != nil {
		span.End(err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to fetch nominees")
	}

	s.drafts.SetCommitted(ctx, userID, nominees)
	span.End(nil)
	return nominees, nil
}

// CommitAll validates the full staged set and pushes it upstream as one
// batch. Order of gates: allocation total first, then per-draft record
// checks, then the token gate. A missing or expired token blocks the commit
// locally; the upstream never sees a request without a live token.
func (s *Service) CommitAll(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCommitAll,
		tracer.String(tracer.AttrUserID, userID.String()),
	)

	committed, pending := s.drafts.Snapshot(ctx, userID)
	span.SetAttributes(tracer.Int64(tracer.AttrDraftCount, int64(len(pending))))

	if len(pending) == 0 {
		err := dErrors.New(dErrors.CodeInvalidInput, "no staged nominee drafts to commit")
		span.End(err)
		return nil, err
	}

	if errs := validate.AllocationTotal(committed, pending); !errs.Valid() {
		span.AddEvent(tracer.EventValidationFailed)
		if s.metrics != nil {
			s.metrics.ValidationFailures.WithLabelValues("allocation_total").Inc()
		}
		err := &ValidationError{DraftIndex: -1, Fields: errs}
		span.End(err)
		return nil, err
	}

	for i, d := range pending {
		self := validate.AtPendingIndex(i)
		self.NomineeID = d.ID
		if errs := validate.Record(d, committed, pending, self); !errs.Valid() {
			span.AddEvent(tracer.EventValidationFailed, tracer.Int64("draft_index", int64(i)))
			if s.metrics != nil {
				s.metrics.ValidationFailures.WithLabelValues("record").Inc()
			}
			err := &ValidationError{DraftIndex: i, Fields: errs}
			span.End(err)
			return nil, err
		}
	}

	token, ok := s.tokens.Token(ctx, userID, mfa.ActionNomineeUpdate)
	if !ok {
		span.SetAttributes(tracer.Bool(tracer.AttrMFAGate, false))
		err := dErrors.New(dErrors.CodeMFARequired, "verification required before committing nominees")
		span.End(err)
		return nil, err
	}

	batch := mergeBatch(committed, pending)
	span.SetAttributes(tracer.Int64(tracer.AttrBatchSize, int64(len(batch))))

	start := s.now()
	updated, err := s.api.Upsert(ctx, userID, token, batch)
	if s.metrics != nil {
		s.metrics.CommitDurationMs.Observe(float64(s.now().Sub(start).Milliseconds()))
	}
	if err != nil {
		return nil, s.rejectCommit(ctx, span, userID, err)
	}

	s.drafts.CompleteCommit(ctx, userID, updated)
	s.tokens.Consume(ctx, userID, mfa.ActionNomineeUpdate)

	s.logger.InfoContext(ctx, "nominees committed",
		"user_id", userID.String(),
		"batch_size", len(batch),
	)
	if s.metrics != nil {
		s.metrics.Commits.WithLabelValues("success").Inc()
		s.metrics.CommitBatchSize.Observe(float64(len(batch)))
	}
	s.emitAudit(ctx, userID, audit.EventNomineesCommitted, audit.OutcomeSuccess, "")
	span.AddEvent(tracer.EventAuditEmitted)
	span.End(nil)

	return updated, nil
}

// rejectCommit handles an upstream Upsert failure. A token rejection
// invalidates local verification so the next attempt starts a fresh cycle.
// Drafts are never touched: nothing was committed, nothing is lost.
func (s *Service) rejectCommit(ctx context.Context, span tracer.Span, userID domain.UserID, err error) error {
	if dErrors.IsMFARejection(err) {
		s.tokens.Invalidate(ctx, userID, mfa.ActionNomineeUpdate)
		span.AddEvent(tracer.EventTokenRejected)
		if s.metrics != nil {
			s.metrics.Commits.WithLabelValues("mfa_rejected").Inc()
		}
		s.emitAudit(ctx, userID, audit.EventCommitRejected, audit.OutcomeFailure, "mfa token rejected")
		span.End(err)
		return err
	}

	s.logger.ErrorContext(ctx, "nominee commit failed",
		"user_id", userID.String(),
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.Commits.WithLabelValues("error").Inc()
	}
	s.emitAudit(ctx, userID, audit.EventCommitRejected, audit.OutcomeFailure, err.Error())
	span.End(err)
	return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to commit nominees")
}

// OptOut records the user's explicit choice not to declare nominees.
// Like CommitAll it is token-gated and clears local state only on success.
func (s *Service) OptOut(ctx context.Context, userID domain.UserID) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanOptOut,
		tracer.String(tracer.AttrUserID, userID.String()),
	)

	token, ok := s.tokens.Token(ctx, userID, mfa.ActionNomineeUpdate)
	if !ok {
		span.SetAttributes(tracer.Bool(tracer.AttrMFAGate, false))
		err := dErrors.New(dErrors.CodeMFARequired, "verification required before opting out")
		span.End(err)
		return err
	}

	if err := s.api.OptOut(ctx, userID, token); err != nil {
		if dErrors.IsMFARejection(err) {
			s.tokens.Invalidate(ctx, userID, mfa.ActionNomineeUpdate)
			span.AddEvent(tracer.EventTokenRejected)
			if s.metrics != nil {
				s.metrics.OptOuts.WithLabelValues("mfa_rejected").Inc()
			}
			span.End(err)
			return err
		}
		if s.metrics != nil {
			s.metrics.OptOuts.WithLabelValues("error").Inc()
		}
		span.End(err)
		return dErrors.Wrap(err, dErrors.CodeUpstream, "failed to opt out of nomination")
	}

	s.drafts.MarkOptedOut(ctx, userID)
	s.tokens.Consume(ctx, userID, mfa.ActionNomineeUpdate)

	s.logger.InfoContext(ctx, "nominee opt-out recorded", "user_id", userID.String())
	if s.metrics != nil {
		s.metrics.OptOuts.WithLabelValues("success").Inc()
	}
	s.emitAudit(ctx, userID, audit.EventNomineeOptOut, audit.OutcomeSuccess, "")
	span.End(nil)

	return nil
}

// mergeBatch builds the full desired nominee set: committed records with
// pending edits applied in place, then brand-new drafts appended.
func mergeBatch(committed []*models.Nominee, pending []*models.Draft) []*models.Nominee {
	edits := make(map[domain.NomineeID]*models.Draft, len(pending))
	for _, d := range pending {
		if !d.ID.IsNil() {
			edits[d.ID] = d
		}
	}

	batch := make([]*models.Nominee, 0, len(committed)+len(pending))
	for _, n := range committed {
		if d, ok := edits[n.ID]; ok {
			edited := d.Nominee
			batch = append(batch, &edited)
			continue
		}
		kept := *n
		batch = append(batch, &kept)
	}
	for _, d := range pending {
		if d.ID.IsNil() {
			added := d.Nominee
			batch = append(batch, &added)
		}
	}
	return batch
}

func (s *Service) emitAudit(ctx context.Context, userID domain.UserID, event audit.AuditEvent, outcome, reason string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		UserID:    userID.String(),
		Action:    string(event),
		Outcome:   outcome,
		Reason:    reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
