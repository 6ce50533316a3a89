// Package draft holds the session-scoped editing state for nominee records:
// the server-confirmed list, the pending (staged, unsaved) drafts, and the
// single record currently being composed. State lives only in memory and is
// destroyed on cancel, on successful commit, or on session end.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"folio/internal/nominee/metrics"
	"folio/internal/nominee/models"
	"folio/internal/nominee/validate"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

const defaultMaxActive = 3

// Store keeps per-user draft sessions. The committed list is read-mostly and
// only the mutation coordinator's success path may replace it.
type Store struct {
	mu        sync.RWMutex
	sessions  map[domain.UserID]*session
	maxActive int
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type session struct {
	committed []*models.Nominee
	pending   []*models.Draft
	current   *models.Draft
	// editIndex points at the pending draft being re-edited, -1 otherwise.
	editIndex int
	// errors is the last per-field validation result for the current draft.
	errors validate.FieldErrors
}

// Option configures the Store.
type Option func(*Store)

// WithMaxActive overrides the active-nominee limit.
func WithMaxActive(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxActive = n
		}
	}
}

// WithClock injects the time source (no hidden time.Now() calls in tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics shares the nominee collectors with the store so draft
// starts, stagings, and stage rejections are counted.
func WithMetrics(collectors *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = collectors
	}
}

// New constructs an empty draft store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions:  make(map[domain.UserID]*session),
		maxActive: defaultMaxActive,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Store) session(userID domain.UserID) *session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{editIndex: -1, errors: validate.FieldErrors{}}
		s.sessions[userID] = sess
	}
	return sess
}

// SetCommitted refreshes the server-confirmed list after a read. Pending
// drafts and the current draft are untouched so an in-flight edit survives a
// background refresh.
func (s *Store) SetCommitted(_ context.Context, userID domain.UserID, nominees []*models.Nominee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).committed = cloneNominees(nominees)
}

// Snapshot returns copies of the committed list and pending drafts for
// validation and commit. Copies keep mutable state from crossing the
// component boundary.
func (s *Store) Snapshot(_ context.Context, userID domain.UserID) ([]*models.Nominee, []*models.Draft) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return cloneNominees(sess.committed), cloneDrafts(sess.pending)
}

// activeUnionCount counts nominees toward the limit: pending drafts plus
// committed active records not superseded by a pending edit.
func (sess *session) activeUnionCount() int {
	edited := make(map[domain.NomineeID]struct{}, len(sess.pending))
	for _, d := range sess.pending {
		if !d.ID.IsNil() {
			edited[d.ID] = struct{}{}
		}
	}
	count := len(sess.pending)
	for _, n := range sess.committed {
		if !n.IsActive() {
			continue
		}
		if _, superseded := edited[n.ID]; superseded {
			continue
		}
		count++
	}
	return count
}

// StartAdd seeds a blank current draft. It rejects before any validator runs
// when the active-nominee limit is already reached.
func (s *Store) StartAdd(_ context.Context, userID domain.UserID) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.activeUnionCount() >= s.maxActive {
		return nil, dErrors.New(dErrors.CodeLimitExceeded,
			fmt.Sprintf("maximum of %d nominees allowed", s.maxActive))
	}
	sess.current = models.NewDraft()
	sess.editIndex = -1
	sess.errors = validate.FieldErrors{}
	if s.metrics != nil {
		s.metrics.DraftsStarted.WithLabelValues("add").Inc()
	}
	return cloneDraft(sess.current), nil
}

// StartEdit seeds the current draft from a committed nominee. Date of birth
// and allocation become immutable on the resulting draft. If an edit of the
// same nominee is already staged, that draft is reopened instead, so staging
// again replaces it rather than duplicating the record.
func (s *Store) StartEdit(_ context.Context, userID domain.UserID, nomineeID domain.NomineeID) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	for i, d := range sess.pending {
		if !d.ID.IsNil() && d.ID == nomineeID {
			sess.current = cloneDraft(d)
			sess.editIndex = i
			sess.errors = validate.FieldErrors{}
			return cloneDraft(sess.current), nil
		}
	}
	for _, n := range sess.committed {
		if n.ID == nomineeID {
			sess.current = models.DraftOf(n, s.now())
			sess.editIndex = -1
			sess.errors = validate.FieldErrors{}
			if s.metrics != nil {
				s.metrics.DraftsStarted.WithLabelValues("edit").Inc()
			}
			return cloneDraft(sess.current), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "nominee not found")
}

// StartEditPending re-opens a staged draft for editing.
func (s *Store) StartEditPending(_ context.Context, userID domain.UserID, index int) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if index < 0 || index >= len(sess.pending) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no pending draft at that position")
	}
	sess.current = cloneDraft(sess.pending[index])
	sess.editIndex = index
	sess.errors = validate.FieldErrors{}
	return cloneDraft(sess.current), nil
}

// UpdateField mutates the current draft and optimistically clears any
// previously-set validation error for that field; the field is re-validated
// on save.
func (s *Store) UpdateField(_ context.Context, userID domain.UserID, field models.Field, value string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.current == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "no draft in progress")
	}
	if err := sess.current.Apply(field, value, s.now()); err != nil {
		return nil, err
	}
	delete(sess.errors, string(field))
	return cloneDraft(sess.current), nil
}

// Current returns the draft being composed and its last validation result.
// Both are copies; the live draft only changes through UpdateField.
func (s *Store) Current(_ context.Context, userID domain.UserID) (*models.Draft, validate.FieldErrors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.current == nil {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "no draft in progress")
	}
	return cloneDraft(sess.current), maps.Clone(sess.errors), nil
}

// StageCurrent runs the per-record validator on the current draft and, on
// success, appends it to the pending list (add) or replaces the draft at its
// index (edit), then clears the current draft. On failure the error map is
// surfaced and retained, and state is left unchanged.
func (s *Store) StageCurrent(_ context.Context, userID domain.UserID) (validate.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if sess.current == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "no draft in progress")
	}

	// A draft editing a committed nominee must be excluded from collision
	// checks against both its pending slot and its committed counterpart.
	self := validate.NoSelf()
	if sess.editIndex >= 0 {
		self = validate.AtPendingIndex(sess.editIndex)
	}
	if !sess.current.ID.IsNil() {
		self.NomineeID = sess.current.ID
	}

	errs := validate.Record(sess.current, sess.committed, sess.pending, self)
	if !errs.Valid() {
		sess.errors = errs
		if s.metrics != nil {
			s.metrics.ValidationFailures.WithLabelValues("stage").Inc()
		}
		return errs, nil
	}

	if sess.editIndex >= 0 {
		sess.pending[sess.editIndex] = sess.current
	} else {
		sess.pending = append(sess.pending, sess.current)
	}
	sess.current = nil
	sess.editIndex = -1
	sess.errors = validate.FieldErrors{}
	if s.metrics != nil {
		s.metrics.DraftsStaged.Inc()
	}
	return errs, nil
}

// RemovePending drops a staged draft unconditionally. Removal can only
// reduce the risk of an invariant violation, so no validation runs here.
func (s *Store) RemovePending(_ context.Context, userID domain.UserID, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	if index < 0 || index >= len(sess.pending) {
		return dErrors.New(dErrors.CodeNotFound, "no pending draft at that position")
	}
	sess.pending = append(sess.pending[:index], sess.pending[index+1:]...)
	if sess.editIndex == index {
		sess.current = nil
		sess.editIndex = -1
		sess.errors = validate.FieldErrors{}
	}
	return nil
}

// CancelDraft discards the record being composed.
func (s *Store) CancelDraft(_ context.Context, userID domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.current = nil
	sess.editIndex = -1
	sess.errors = validate.FieldErrors{}
}

// CompleteCommit installs the server's authoritative records and destroys
// all draft state. Only the mutation coordinator's success path calls this.
func (s *Store) CompleteCommit(_ context.Context, userID domain.UserID, authoritative []*models.Nominee) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.committed = cloneNominees(authoritative)
	sess.pending = nil
	sess.current = nil
	sess.editIndex = -1
	sess.errors = validate.FieldErrors{}
}

// MarkOptedOut flips every committed record to opted-out and destroys draft
// state, mirroring a successful opt-out upstream.
func (s *Store) MarkOptedOut(_ context.Context, userID domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	for _, n := range sess.committed {
		n.OptedOut = true
	}
	sess.pending = nil
	sess.current = nil
	sess.editIndex = -1
	sess.errors = validate.FieldErrors{}
}

// Clear drops all state for a user on logout or session end.
func (s *Store) Clear(_ context.Context, userID domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

func cloneNominees(in []*models.Nominee) []*models.Nominee {
	out := make([]*models.Nominee, 0, len(in))
	for _, n := range in {
		copied := *n
		if n.Guardian != nil {
			guardian := *n.Guardian
			copied.Guardian = &guardian
		}
		out = append(out, &copied)
	}
	return out
}

func cloneDraft(d *models.Draft) *models.Draft {
	copied := *d
	if d.Guardian != nil {
		guardian := *d.Guardian
		copied.Guardian = &guardian
	}
	return &copied
}

func cloneDrafts(in []*models.Draft) []*models.Draft {
	out := make([]*models.Draft, 0, len(in))
	for _, d := range in {
		out = append(out, cloneDraft(d))
	}
	return out
}
