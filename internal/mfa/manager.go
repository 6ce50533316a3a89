package mfa

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"folio/internal/audit"
	"folio/internal/mfa/metrics"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

//go:generate mockgen -source=manager.go -destination=mocks/mocks.go -package=mocks OTPClient,AuditPublisher

// OTPClient is the delivery/verification collaborator behind the manager.
// Start issues (or reissues) a challenge; Verify exchanges a correct code
// for a bearer token.
type OTPClient interface {
	Start(ctx context.Context, action Action, channel Channel) (StartResult, error)
	Verify(ctx context.Context, sessionID domain.MFASessionID, code string) (VerifyResult, error)
}

// StartResult is the outcome of an OTP start call.
type StartResult struct {
	SessionID domain.MFASessionID
	Message   string
}

// VerifyResult is the outcome of a successful OTP verification.
type VerifyResult struct {
	Token   string
	Message string
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

const (
	defaultTokenTTL       = 5 * time.Minute
	defaultResendCooldown = 30 * time.Second
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

type sessionKey struct {
	userID domain.UserID
	action Action
}

// Manager owns all step-up verification state. One session may be live per
// (user, action) pair; the session object is the only holder of the token,
// so clearing the session clears everything at once.
type Manager struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session

	otp            OTPClient
	tokenTTL       time.Duration
	resendCooldown time.Duration
	now            func() time.Time
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

// Option configures the Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(collectors *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = collectors
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Manager) {
		m.auditPublisher = publisher
	}
}

// WithClock injects the time source (no hidden time.Now() calls in tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithTokenTTL configures the bearer token validity window.
// If not set or set to zero/negative, defaults to 5 minutes.
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.tokenTTL = ttl
		}
	}
}

// WithResendCooldown configures the local resend gate.
// If not set or set to zero/negative, defaults to 30 seconds.
func WithResendCooldown(cooldown time.Duration) Option {
	return func(m *Manager) {
		if cooldown > 0 {
			m.resendCooldown = cooldown
		}
	}
}

func NewManager(otp OTPClient, opts ...Option) *Manager {
	m := &Manager{
		sessions:       make(map[sessionKey]*Session),
		otp:            otp,
		tokenTTL:       defaultTokenTTL,
		resendCooldown: defaultResendCooldown,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// StartSession begins a verification exchange for the given action. It
// rejects when a session for the same action is still in flight; a session
// whose token was already issued is replaced (its token is discarded).
func (m *Manager) StartSession(ctx context.Context, userID domain.UserID, action Action, channel Channel) (Session, error) {
	if !action.IsValid() {
		return Session{}, dErrors.New(dErrors.CodeInvalidInput, "unknown MFA action")
	}
	if !channel.IsValid() {
		return Session{}, dErrors.New(dErrors.CodeInvalidInput, "unknown OTP delivery channel")
	}

	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	if existing, ok := m.sessions[key]; ok && existing.InFlight() {
		m.mu.Unlock()
		return Session{}, dErrors.New(dErrors.CodeSessionConflict, "an MFA session for this action is already in progress")
	}
	// Reserve the slot before releasing the lock so two concurrent starts
	// for the same action cannot both reach the delivery service.
	reservation := &Session{
		UserID:    userID,
		Action:    action,
		Channel:   channel,
		State:     StateVerifying,
		StartedAt: m.now(),
	}
	m.sessions[key] = reservation
	m.mu.Unlock()

	result, err := m.otp.Start(ctx, action, channel)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		delete(m.sessions, key)
		return Session{}, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to start MFA session")
	}

	now := m.now()
	session := &Session{
		ID:                result.SessionID,
		UserID:            userID,
		Action:            action,
		Channel:           channel,
		State:             StateStarted,
		StartedAt:         now,
		ResendAvailableAt: now.Add(m.resendCooldown),
	}
	m.sessions[key] = session

	m.logger.InfoContext(ctx, "mfa session started",
		"user_id", userID.String(),
		"action", action.String(),
		"channel", channel.String(),
	)
	if m.metrics != nil {
		m.metrics.SessionsStarted.WithLabelValues(action.String(), channel.String()).Inc()
	}
	m.emitAudit(ctx, userID, audit.EventMFASessionStarted, audit.OutcomeSuccess, "")

	return *session, nil
}

// Resend re-invokes the OTP start collaborator for an awaiting session once
// the cooldown has elapsed. The client tracks whichever session id was most
// recently returned.
func (m *Manager) Resend(ctx context.Context, userID domain.UserID, action Action) (Session, error) {
	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	session, ok := m.sessions[key]
	if !ok || !session.AwaitingCode() {
		m.mu.Unlock()
		return Session{}, dErrors.New(dErrors.CodeNotFound, "no MFA session awaiting verification")
	}
	now := m.now()
	if !session.CanResend(now) {
		remaining := session.ResendRemaining(now)
		m.mu.Unlock()
		return Session{}, dErrors.New(dErrors.CodeResendCooldown,
			"resend available in "+remaining.Round(time.Second).String())
	}
	channel := session.Channel
	session.State = StateVerifying
	m.mu.Unlock()

	result, err := m.otp.Start(ctx, action, channel)

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok = m.sessions[key]
	if !ok {
		// Canceled while the resend was in flight; nothing to update.
		return Session{}, dErrors.New(dErrors.CodeNotFound, "no MFA session awaiting verification")
	}
	if err != nil {
		session.State = StateStarted
		return Session{}, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to resend OTP")
	}

	now = m.now()
	session.ID = result.SessionID
	session.State = StateStarted
	session.FailureReason = ""
	session.ResendAvailableAt = now.Add(m.resendCooldown)

	if m.metrics != nil {
		m.metrics.Resends.WithLabelValues(action.String()).Inc()
	}
	m.emitAudit(ctx, userID, audit.EventMFASessionResent, audit.OutcomeSuccess, "")

	return *session, nil
}

// Verify submits the one-time passcode. Codes that are not exactly 6 digits
// never reach the network. On failure the session stays live so the user can
// retry against the same session id without a fresh send.
func (m *Manager) Verify(ctx context.Context, userID domain.UserID, action Action, code string) (Session, error) {
	if !codePattern.MatchString(code) {
		return Session{}, dErrors.New(dErrors.CodeOTPInvalid, "code must be exactly 6 digits")
	}

	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	session, ok := m.sessions[key]
	if !ok {
		m.mu.Unlock()
		return Session{}, dErrors.New(dErrors.CodeMFARequired, "no MFA session to verify; start one first")
	}
	if !session.AwaitingCode() {
		state := session.State
		m.mu.Unlock()
		if state == StateVerified {
			return Session{}, dErrors.New(dErrors.CodeConflict, "session already verified")
		}
		return Session{}, dErrors.New(dErrors.CodeSessionConflict, "a verification attempt is already in progress")
	}
	sessionID := session.ID
	session.State = StateVerifying
	m.mu.Unlock()

	start := m.now()
	result, err := m.otp.Verify(ctx, sessionID, code)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.VerifyDurationMs.Observe(float64(m.now().Sub(start).Milliseconds()))
	}
	session, ok = m.sessions[key]
	if !ok {
		// Canceled mid-verification; the screen is gone, discard the outcome.
		return Session{}, dErrors.New(dErrors.CodeMFARequired, "MFA session was canceled")
	}
	if session.ID != sessionID {
		// The session was replaced while the verify call was in flight. The
		// outcome belongs to the old session; never attach it to the new one.
		return Session{}, dErrors.New(dErrors.CodeMFARequired, "MFA session was replaced")
	}

	if err != nil {
		session.State = StateFailed
		session.FailureReason = err.Error()
		m.logger.WarnContext(ctx, "otp verification failed",
			"user_id", userID.String(),
			"action", action.String(),
			"error", err,
		)
		if m.metrics != nil {
			m.metrics.VerifyFailures.WithLabelValues(action.String()).Inc()
		}
		m.emitAudit(ctx, userID, audit.EventMFAVerifyFailed, audit.OutcomeFailure, err.Error())
		return Session{}, dErrors.Wrap(err, dErrors.CodeOTPInvalid, "OTP verification failed")
	}

	now := m.now()
	session.State = StateVerified
	session.Token = result.Token
	session.TokenExpiresAt = now.Add(m.tokenTTL)
	session.FailureReason = ""

	m.logger.InfoContext(ctx, "mfa verified",
		"user_id", userID.String(),
		"action", action.String(),
		"token_expires_at", session.TokenExpiresAt,
	)
	if m.metrics != nil {
		m.metrics.VerifySuccesses.WithLabelValues(action.String()).Inc()
	}
	m.emitAudit(ctx, userID, audit.EventMFAVerified, audit.OutcomeSuccess, "")

	return *session, nil
}

// Token returns the live bearer token for the action, if any. An expired
// token clears the whole session as a side effect: callers must treat an
// absent token as "must re-authenticate", never retry with a stale one.
// Repeat calls after expiry keep returning nothing.
func (m *Manager) Token(ctx context.Context, userID domain.UserID, action Action) (string, bool) {
	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[key]
	if !ok || session.State != StateVerified {
		return "", false
	}

	now := m.now()
	if !session.TokenValid(now) {
		delete(m.sessions, key)
		m.logger.InfoContext(ctx, "mfa token expired",
			"user_id", userID.String(),
			"action", action.String(),
		)
		if m.metrics != nil {
			m.metrics.TokensExpired.Inc()
		}
		m.emitAudit(ctx, userID, audit.EventMFATokenExpired, audit.OutcomeFailure, "token validity window elapsed")
		return "", false
	}
	return session.Token, true
}

// Consume discards the session after its token authorized a successful
// mutation. Tokens are single-use even when still inside their window.
func (m *Manager) Consume(ctx context.Context, userID domain.UserID, action Action) {
	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; !ok {
		return
	}
	delete(m.sessions, key)
	if m.metrics != nil {
		m.metrics.TokensConsumed.WithLabelValues(action.String()).Inc()
	}
	m.logger.InfoContext(ctx, "mfa token consumed",
		"user_id", userID.String(),
		"action", action.String(),
	)
}

// Invalidate discards the session after the upstream rejected its token.
// The caller must drive a fresh start-verify cycle before retrying.
func (m *Manager) Invalidate(ctx context.Context, userID domain.UserID, action Action) {
	m.clear(ctx, userID, action)
}

// Cancel discards the session when the verification screen is closed.
// There is no resume: a fresh StartSession is always required afterwards.
func (m *Manager) Cancel(ctx context.Context, userID domain.UserID, action Action) {
	m.clear(ctx, userID, action)
	if m.metrics != nil {
		m.metrics.SessionsCanceled.Inc()
	}
}

func (m *Manager) clear(ctx context.Context, userID domain.UserID, action Action) {
	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	m.logger.InfoContext(ctx, "mfa session cleared",
		"user_id", userID.String(),
		"action", action.String(),
	)
}

// Session returns a copy of the live session for the action, for rendering
// cooldown and state to the client.
func (m *Manager) Session(userID domain.UserID, action Action) (Session, bool) {
	key := sessionKey{userID: userID, action: action}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[key]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

func (m *Manager) emitAudit(ctx context.Context, userID domain.UserID, event audit.AuditEvent, outcome, reason string) {
	if m.auditPublisher == nil {
		return
	}
	err := m.auditPublisher.Emit(ctx, audit.Event{
		UserID:  userID.String(),
		Action:  string(event),
		Outcome: outcome,
		Reason:  reason,
	})
	if err != nil {
		m.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
