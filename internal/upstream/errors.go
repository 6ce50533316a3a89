package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	dErrors "folio/pkg/domain-errors"
)

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// statusError classifies a non-2xx response into a coded domain error. The
// backend signals step-up problems as 403 with an mfa-prefixed code; those
// must map to the MFA codes so callers can distinguish "verify again" from
// a plain permission denial.
func statusError(status int, body []byte) error {
	var envelope errorResponse
	_ = json.Unmarshal(body, &envelope)

	msg := envelope.text()
	if msg == "" {
		msg = fmt.Sprintf("upstream returned status %d", status)
	}

	switch status {
	case http.StatusBadRequest:
		if strings.Contains(envelope.Code, "otp") {
			return dErrors.New(dErrors.CodeOTPInvalid, msg)
		}
		return dErrors.New(dErrors.CodeInvalidInput, msg)
	case http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	case http.StatusForbidden:
		switch {
		case envelope.Code == "mfa_token_expired":
			return dErrors.New(dErrors.CodeMFATokenExpired, msg)
		case strings.HasPrefix(envelope.Code, "mfa"):
			return dErrors.New(dErrors.CodeMFARequired, msg)
		default:
			return dErrors.New(dErrors.CodeForbidden, msg)
		}
	case http.StatusNotFound:
		return dErrors.New(dErrors.CodeNotFound, msg)
	case http.StatusConflict:
		return dErrors.New(dErrors.CodeConflict, msg)
	case http.StatusTooManyRequests:
		return dErrors.New(dErrors.CodeLimitExceeded, msg)
	case http.StatusGatewayTimeout:
		return dErrors.New(dErrors.CodeTimeout, msg)
	default:
		return dErrors.New(dErrors.CodeUpstream, msg)
	}
}
