package httptransport

// FieldUpdate sets one field of the draft being composed.
type FieldUpdate struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// StartDraftRequest opens a new draft. With a nominee_id it edits that
// committed record; without one it starts a fresh add. Updates, if present,
// are applied to the freshly opened draft in order.
type StartDraftRequest struct {
	NomineeID string        `json:"nominee_id,omitempty"`
	Updates   []FieldUpdate `json:"updates,omitempty" validate:"omitempty,dive"`
}

// UpdateDraftRequest reopens the pending draft at the path index and applies
// field updates in order.
type UpdateDraftRequest struct {
	Updates []FieldUpdate `json:"updates,omitempty" validate:"omitempty,dive"`
}

// MFAStartRequest begins a step-up verification session.
type MFAStartRequest struct {
	Action  string `json:"action" validate:"required,oneof=MF_BUY MF_SELL NOMINEE_UPDATE EMAIL_UPDATE"`
	Channel string `json:"channel" validate:"required,oneof=SMS WHATSAPP"`
}

// MFAResendRequest asks for a fresh OTP on the live session.
type MFAResendRequest struct {
	Action string `json:"action" validate:"required,oneof=MF_BUY MF_SELL NOMINEE_UPDATE EMAIL_UPDATE"`
}

// MFAVerifyRequest submits the one-time passcode. Code length is checked in
// the session manager so a malformed code gets the otp error code rather
// than a generic validation failure.
type MFAVerifyRequest struct {
	Action string `json:"action" validate:"required,oneof=MF_BUY MF_SELL NOMINEE_UPDATE EMAIL_UPDATE"`
	Code   string `json:"code" validate:"required"`
}
