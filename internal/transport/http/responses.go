package httptransport

import (
	"folio/internal/mfa"
	"folio/internal/nominee/models"
	"folio/internal/nominee/validate"
)

// DraftView is a pending or in-progress draft in HTTP responses.
type DraftView struct {
	models.NomineeDTO
	IsMinor        bool `json:"is_minor"`
	EditsCommitted bool `json:"edits_committed"`
}

func toDraftView(d *models.Draft) *DraftView {
	if d == nil {
		return nil
	}
	return &DraftView{
		NomineeDTO:     d.Nominee.ToDTO(),
		IsMinor:        d.IsMinor,
		EditsCommitted: d.EditsCommitted,
	}
}

func toDraftViews(drafts []*models.Draft) []DraftView {
	views := make([]DraftView, 0, len(drafts))
	for _, d := range drafts {
		views = append(views, *toDraftView(d))
	}
	return views
}

// NomineesResponse is the full workflow state for the nominee screen.
type NomineesResponse struct {
	Nominees []models.NomineeDTO  `json:"nominees"`
	Drafts   []DraftView          `json:"drafts"`
	Current  *DraftView           `json:"current,omitempty"`
	Errors   validate.FieldErrors `json:"errors,omitempty"`
}

// DraftResponse is returned after opening or updating a draft.
type DraftResponse struct {
	Draft  *DraftView           `json:"draft"`
	Errors validate.FieldErrors `json:"errors,omitempty"`
}

// StageResponse is returned after attempting to stage the current draft.
type StageResponse struct {
	Staged bool                 `json:"staged"`
	Drafts []DraftView          `json:"drafts"`
	Errors validate.FieldErrors `json:"errors,omitempty"`
}

// CommitResponse is returned after a successful batch commit.
type CommitResponse struct {
	Nominees []models.NomineeDTO `json:"nominees"`
	Message  string              `json:"message,omitempty"`
}

// ValidationFailureResponse reports a commit rejected by validation.
type ValidationFailureResponse struct {
	Error      string               `json:"error"`
	DraftIndex *int                 `json:"draft_index,omitempty"`
	Fields     validate.FieldErrors `json:"fields"`
}

// MFASessionResponse describes the step-up session after start/resend/verify.
type MFASessionResponse struct {
	SessionID             string `json:"mfa_session_id"`
	State                 string `json:"state"`
	ResendAvailableInSecs int64  `json:"resend_available_in_seconds"`
	Message               string `json:"message,omitempty"`
}

func toMFASessionResponse(session mfa.Session, remainingSecs int64, message string) MFASessionResponse {
	return MFASessionResponse{
		SessionID:             string(session.ID),
		State:                 string(session.State),
		ResendAvailableInSecs: remainingSecs,
		Message:               message,
	}
}
