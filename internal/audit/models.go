package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Action    string
	Outcome   string
	Reason    string
}

type AuditEvent string

const (
	EventMFASessionStarted AuditEvent = "mfa_session_started"
	EventMFASessionResent  AuditEvent = "mfa_session_resent"
	EventMFAVerified       AuditEvent = "mfa_verified"
	EventMFAVerifyFailed   AuditEvent = "mfa_verify_failed"
	EventMFATokenExpired   AuditEvent = "mfa_token_expired"
	EventNomineesCommitted AuditEvent = "nominees_committed"
	EventCommitRejected    AuditEvent = "nominee_commit_rejected"
	EventNomineeOptOut     AuditEvent = "nominee_opt_out"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
