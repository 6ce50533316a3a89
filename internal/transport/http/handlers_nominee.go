package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"folio/internal/nominee/draft"
	"folio/internal/nominee/models"
	"folio/internal/nominee/service"
	"folio/internal/nominee/validate"
	"folio/internal/platform/middleware"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/platform/httputil"
	"folio/pkg/validation"
)

// NomineeService coordinates committed-state mutations.
type NomineeService interface {
	Refresh(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error)
	CommitAll(ctx context.Context, userID domain.UserID) ([]*models.Nominee, error)
	OptOut(ctx context.Context, userID domain.UserID) error
}

// DraftStore holds per-session draft state.
type DraftStore interface {
	Snapshot(ctx context.Context, userID domain.UserID) ([]*models.Nominee, []*models.Draft)
	StartAdd(ctx context.Context, userID domain.UserID) (*models.Draft, error)
	StartEdit(ctx context.Context, userID domain.UserID, nomineeID domain.NomineeID) (*models.Draft, error)
	StartEditPending(ctx context.Context, userID domain.UserID, index int) (*models.Draft, error)
	UpdateField(ctx context.Context, userID domain.UserID, field models.Field, value string) (*models.Draft, error)
	Current(ctx context.Context, userID domain.UserID) (*models.Draft, validate.FieldErrors, error)
	StageCurrent(ctx context.Context, userID domain.UserID) (validate.FieldErrors, error)
	RemovePending(ctx context.Context, userID domain.UserID, index int) error
	CancelDraft(ctx context.Context, userID domain.UserID)
}

var (
	_ NomineeService = (*service.Service)(nil)
	_ DraftStore     = (*draft.Store)(nil)
)

// NomineeHandler handles the nominee workflow endpoints.
type NomineeHandler struct {
	logger   *slog.Logger
	nominees NomineeService
	drafts   DraftStore
}

// NewNomineeHandler creates a nominee Handler.
func NewNomineeHandler(nominees NomineeService, drafts DraftStore, logger *slog.Logger) *NomineeHandler {
	return &NomineeHandler{
		logger:   logger,
		nominees: nominees,
		drafts:   drafts,
	}
}

// Register registers the nominee routes with the chi router.
func (h *NomineeHandler) Register(r chi.Router) {
	r.Get("/nominees", h.handleGetNominees)
	r.Post("/nominees/drafts", h.handleStartDraft)
	r.Delete("/nominees/drafts", h.handleCancelDraft)
	r.Post("/nominees/drafts/commit", h.handleStageDraft)
	r.Post("/nominees/drafts/{index}", h.handleUpdatePendingDraft)
	r.Delete("/nominees/drafts/{index}", h.handleRemoveDraft)
	r.Post("/nominees/commit", h.handleCommit)
	r.Post("/nominees/opt-out", h.handleOptOut)
}

func (h *NomineeHandler) userID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.UserID{}, false
	}
	return userID, true
}

// handleGetNominees returns committed records, pending drafts, and the draft
// being composed, refreshed from upstream.
func (h *NomineeHandler) handleGetNominees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if _, err := h.nominees.Refresh(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "failed to refresh nominees",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	committed, pending := h.drafts.Snapshot(ctx, userID)
	resp := NomineesResponse{
		Nominees: models.ToDTOs(committed),
		Drafts:   toDraftViews(pending),
	}
	if current, errs, err := h.drafts.Current(ctx, userID); err == nil {
		resp.Current = toDraftView(current)
		resp.Errors = errs
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *NomineeHandler) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req StartDraftRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
		if err := validation.Validate(&req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	var err error
	if req.NomineeID != "" {
		_, err = h.drafts.StartEdit(ctx, userID, domain.NomineeID(req.NomineeID))
	} else {
		_, err = h.drafts.StartAdd(ctx, userID)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.applyAndRespond(w, r, userID, req.Updates)
}

func (h *NomineeHandler) handleUpdatePendingDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "draft index must be a number"))
		return
	}

	var req UpdateDraftRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
		if err := validation.Validate(&req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	// Reopening is idempotent when the draft at this index is already the
	// one being composed.
	if _, err := h.drafts.StartEditPending(ctx, userID, index); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.applyAndRespond(w, r, userID, req.Updates)
}

// applyAndRespond applies field updates in request order to the current
// draft and writes back its state. Field parse failures abort the loop; the
// fields applied so far stay applied, matching a form that reports the
// first bad input.
func (h *NomineeHandler) applyAndRespond(w http.ResponseWriter, r *http.Request, userID domain.UserID, updates []FieldUpdate) {
	ctx := r.Context()
	for _, update := range updates {
		if _, err := h.drafts.UpdateField(ctx, userID, models.Field(update.Field), update.Value); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	current, errs, err := h.drafts.Current(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DraftResponse{
		Draft:  toDraftView(current),
		Errors: errs,
	})
}

func (h *NomineeHandler) handleStageDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	errs, err := h.drafts.StageCurrent(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	_, pending := h.drafts.Snapshot(ctx, userID)
	resp := StageResponse{
		Staged: errs.Valid(),
		Drafts: toDraftViews(pending),
		Errors: errs,
	}
	status := http.StatusOK
	if !errs.Valid() {
		status = http.StatusUnprocessableEntity
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *NomineeHandler) handleRemoveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "draft index must be a number"))
		return
	}

	if err := h.drafts.RemovePending(ctx, userID, index); err != nil {
		httputil.WriteError(w, err)
		return
	}

	_, pending := h.drafts.Snapshot(ctx, userID)
	httputil.WriteJSON(w, http.StatusOK, StageResponse{
		Staged: false,
		Drafts: toDraftViews(pending),
	})
}

func (h *NomineeHandler) handleCancelDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	h.drafts.CancelDraft(ctx, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *NomineeHandler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	updated, err := h.nominees.CommitAll(ctx, userID)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			resp := ValidationFailureResponse{
				Error:  string(dErrors.CodeInvalidInput),
				Fields: vErr.Fields,
			}
			if vErr.DraftIndex >= 0 {
				index := vErr.DraftIndex
				resp.DraftIndex = &index
			}
			httputil.WriteJSON(w, http.StatusBadRequest, resp)
			return
		}
		h.logger.WarnContext(ctx, "commit rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CommitResponse{
		Nominees: models.ToDTOs(updated),
		Message:  "Nominees updated",
	})
}

func (h *NomineeHandler) handleOptOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.nominees.OptOut(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Opted out of nomination",
	})
}
