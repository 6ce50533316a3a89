package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/mfa"
	"folio/internal/platform/middleware"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
	"folio/pkg/platform/httputil"
	"folio/pkg/validation"
)

// MFAService is the step-up session manager behind the MFA routes.
type MFAService interface {
	StartSession(ctx context.Context, userID domain.UserID, action mfa.Action, channel mfa.Channel) (mfa.Session, error)
	Resend(ctx context.Context, userID domain.UserID, action mfa.Action) (mfa.Session, error)
	Verify(ctx context.Context, userID domain.UserID, action mfa.Action, code string) (mfa.Session, error)
}

var _ MFAService = (*mfa.Manager)(nil)

// MFAHandler handles step-up verification endpoints.
type MFAHandler struct {
	logger *slog.Logger
	mfa    MFAService
	now    func() time.Time
}

// NewMFAHandler creates an MFA Handler.
func NewMFAHandler(service MFAService, logger *slog.Logger) *MFAHandler {
	return &MFAHandler{
		logger: logger,
		mfa:    service,
		now:    time.Now,
	}
}

// Register registers the MFA routes with the chi router.
func (h *MFAHandler) Register(r chi.Router) {
	r.Post("/mfa/start", h.handleStart)
	r.Post("/mfa/resend", h.handleResend)
	r.Post("/mfa/verify", h.handleVerify)
}

func (h *MFAHandler) userID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
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

func (h *MFAHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req MFAStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.mfa.StartSession(ctx, userID, mfa.Action(req.Action), mfa.Channel(req.Channel))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMFASessionResponse(session,
		int64(session.ResendRemaining(h.now())/time.Second), "OTP sent"))
}

func (h *MFAHandler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req MFAResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.mfa.Resend(ctx, userID, mfa.Action(req.Action))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMFASessionResponse(session,
		int64(session.ResendRemaining(h.now())/time.Second), "OTP re-sent"))
}

func (h *MFAHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, err := h.mfa.Verify(ctx, userID, mfa.Action(req.Action), req.Code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMFASessionResponse(session, 0, "Verification successful"))
}
