// Package mfa manages the lifecycle of step-up verification sessions: the
// OTP challenge, the resend cooldown, and the short-lived authorization
// token a successful verification yields. Tokens are held only in memory and
// authorize exactly one mutation of the action they were issued for.
package mfa

import (
	"time"

	domain "folio/pkg/domain"
)

// Action tags which kind of mutation a verification session authorizes.
// A token issued for one action can never authorize a different mutation.
type Action string

const (
	ActionBuy           Action = "MF_BUY"
	ActionSell          Action = "MF_SELL"
	ActionNomineeUpdate Action = "NOMINEE_UPDATE"
	ActionEmailUpdate   Action = "EMAIL_UPDATE"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionNomineeUpdate, ActionEmailUpdate:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}

// Channel selects how the one-time passcode is delivered.
type Channel string

const (
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
)

func (c Channel) IsValid() bool {
	return c == ChannelSMS || c == ChannelWhatsApp
}

func (c Channel) String() string {
	return string(c)
}

// State represents the lifecycle of a verification session. The idle state
// is the absence of a session.
type State string

const (
	StateStarted   State = "session_started"
	StateVerifying State = "verifying"
	StateVerified  State = "verified"
	StateFailed    State = "failed"
)

// Session is the ephemeral record of one step-up verification exchange.
// Session id, token, and action tag are cleared together, never
// independently, so a token can never outlive the action it was issued for.
type Session struct {
	ID      domain.MFASessionID
	UserID  domain.UserID
	Action  Action
	Channel Channel
	State   State

	StartedAt         time.Time
	ResendAvailableAt time.Time

	// FailureReason carries the server-provided message of the last
	// failed verification attempt.
	FailureReason string

	// Token fields are populated only after a successful verification.
	Token          string
	TokenExpiresAt time.Time
}

// InFlight reports whether the session still expects a verification
// outcome. Failed sessions remain in flight: the OTP input stays live for
// another attempt against the same session id.
func (s *Session) InFlight() bool {
	return s.State == StateStarted || s.State == StateVerifying || s.State == StateFailed
}

// AwaitingCode reports whether a verification attempt may be made now.
func (s *Session) AwaitingCode() bool {
	return s.State == StateStarted || s.State == StateFailed
}

// CanResend reports whether the resend cooldown has elapsed. The countdown
// is a local wall-clock gate; the server remains the source of truth for
// abuse prevention.
func (s *Session) CanResend(now time.Time) bool {
	return !now.Before(s.ResendAvailableAt)
}

// TokenValid reports whether the session holds a still-live bearer token.
func (s *Session) TokenValid(now time.Time) bool {
	return s.State == StateVerified && s.Token != "" && now.Before(s.TokenExpiresAt)
}

// ResendRemaining returns how long until resend becomes available.
func (s *Session) ResendRemaining(now time.Time) time.Duration {
	if s.CanResend(now) {
		return 0
	}
	return s.ResendAvailableAt.Sub(now)
}
