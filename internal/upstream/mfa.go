package upstream

import (
	"context"
	"net/http"

	"folio/internal/mfa"
	domain "folio/pkg/domain"
)

// MFAClient implements mfa.OTPClient against the backend OTP service.
type MFAClient struct {
	*Client
}

var _ mfa.OTPClient = (*MFAClient)(nil)

// NewMFAClient creates an OTP client on top of the shared backend client.
func NewMFAClient(client *Client) *MFAClient {
	return &MFAClient{Client: client}
}

type mfaStartRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

type mfaStartResponse struct {
	SessionID string `json:"mfaSessionId"`
	Message   string `json:"message"`
}

type mfaVerifyRequest struct {
	SessionID string `json:"mfaSessionId"`
	OTP       string `json:"otp"`
}

type mfaVerifyResponse struct {
	Token   string `json:"mfaToken"`
	Message string `json:"message"`
}

// Start requests OTP delivery and returns the server's session handle.
func (c *MFAClient) Start(ctx context.Context, action mfa.Action, channel mfa.Channel) (mfa.StartResult, error) {
	req := mfaStartRequest{
		Action:  action.String(),
		Channel: channel.String(),
	}
	var resp mfaStartResponse
	if err := c.do(ctx, http.MethodPost, "/auth/mfa/start", nil, req, &resp); err != nil {
		return mfa.StartResult{}, err
	}
	return mfa.StartResult{
		SessionID: domain.MFASessionID(resp.SessionID),
		Message:   resp.Message,
	}, nil
}

// Verify exchanges a passcode for a bearer token.
func (c *MFAClient) Verify(ctx context.Context, sessionID domain.MFASessionID, code string) (mfa.VerifyResult, error) {
	req := mfaVerifyRequest{
		SessionID: string(sessionID),
		OTP:       code,
	}
	var resp mfaVerifyResponse
	if err := c.do(ctx, http.MethodPost, "/auth/mfa/verify", nil, req, &resp); err != nil {
		return mfa.VerifyResult{}, err
	}
	return mfa.VerifyResult{
		Token:   resp.Token,
		Message: resp.Message,
	}, nil
}
