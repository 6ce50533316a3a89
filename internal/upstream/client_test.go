package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/mfa"
	"folio/internal/nominee/models"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second)
}

func TestMFAClient_Start(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/mfa/start", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "NOMINEE_UPDATE", body["action"])
		assert.Equal(t, "SMS", body["channel"])

		json.NewEncoder(w).Encode(map[string]string{
			"mfaSessionId": "sess-42",
			"message":      "OTP sent to registered mobile",
		})
	})

	result, err := NewMFAClient(client).Start(context.Background(), mfa.ActionNomineeUpdate, mfa.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, domain.MFASessionID("sess-42"), result.SessionID)
	assert.Equal(t, "OTP sent to registered mobile", result.Message)
}

func TestMFAClient_Verify(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/mfa/verify", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-42", body["mfaSessionId"])
		assert.Equal(t, "123456", body["otp"])

		json.NewEncoder(w).Encode(map[string]string{"mfaToken": "tok-1"})
	})

	result, err := NewMFAClient(client).Verify(context.Background(), "sess-42", "123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", result.Token)
}

func TestMFAClient_Verify_WrongCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "otp_incorrect",
			"message": "incorrect code",
		})
	})

	_, err := NewMFAClient(client).Verify(context.Background(), "sess-42", "000000")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOTPInvalid))
	assert.Contains(t, err.Error(), "incorrect code")
}

func TestStatusError_MFARejectionTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		wantCode dErrors.Code
	}{
		{"expired token", http.StatusForbidden, "mfa_token_expired", dErrors.CodeMFATokenExpired},
		{"missing token", http.StatusForbidden, "mfa_required", dErrors.CodeMFARequired},
		{"other mfa code", http.StatusForbidden, "mfa_challenge_needed", dErrors.CodeMFARequired},
		{"plain denial", http.StatusForbidden, "account_frozen", dErrors.CodeForbidden},
		{"rate limited", http.StatusTooManyRequests, "", dErrors.CodeLimitExceeded},
		{"outage", http.StatusServiceUnavailable, "", dErrors.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"code": tt.code, "message": "denied"})
			err := statusError(tt.status, body)
			assert.True(t, dErrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestNomineeClient_List(t *testing.T) {
	userID := domain.UserID(uuid.New())
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/nominees", r.URL.Path)
		assert.Equal(t, userID.String(), r.Header.Get("X-User-ID"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{
				"id":                 "n-1",
				"name":               "Asha Rao",
				"relationship":       "SPOUSE",
				"date_of_birth":      "1990-05-10",
				"allocation_percent": 100,
			}},
		})
	})

	nominees, err := NewNomineeClient(client).List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, nominees, 1)
	assert.Equal(t, domain.NomineeID("n-1"), nominees[0].ID)
	assert.Equal(t, models.RelationshipSpouse, nominees[0].Relationship)
	assert.Equal(t, 100, nominees[0].Allocation)
}

func TestNomineeClient_UpsertCarriesToken(t *testing.T) {
	userID := domain.UserID(uuid.New())
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.Header.Get("X-MFA-Token"))

		var req nomineeEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Data, 1)
		assert.Equal(t, "Asha Rao", req.Data[0].Name)

		// Echo back with a server-assigned id.
		req.Data[0].ID = "n-9"
		json.NewEncoder(w).Encode(req)
	})

	batch := []*models.Nominee{{
		Name:         "Asha Rao",
		Relationship: models.RelationshipSpouse,
		DateOfBirth:  time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
		Allocation:   100,
	}}
	updated, err := NewNomineeClient(client).Upsert(context.Background(), userID, "tok-1", batch)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, domain.NomineeID("n-9"), updated[0].ID)
}

func TestNomineeClient_UpsertTokenRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "mfa_token_expired",
			"message": "token no longer valid",
		})
	})

	_, err := NewNomineeClient(client).Upsert(context.Background(),
		domain.UserID(uuid.New()), "tok-stale", nil)
	assert.True(t, dErrors.IsMFARejection(err))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeMFATokenExpired))
}

func TestNomineeClient_OptOut(t *testing.T) {
	userID := domain.UserID(uuid.New())
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/actions/nominee-opt-out", r.URL.Path)
		assert.Equal(t, "tok-1", r.Header.Get("X-MFA-Token"))
		w.WriteHeader(http.StatusOK)
	})

	err := NewNomineeClient(client).OptOut(context.Background(), userID, "tok-1")
	assert.NoError(t, err)
}
