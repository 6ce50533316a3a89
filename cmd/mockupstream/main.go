// Package main runs a fake brokerage backend for local development. It
// implements the OTP and nominee endpoints the folio server calls: any
// 6-digit code ending in an even digit verifies, tokens are single-use,
// and nominee sets are held in memory per user.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"

	"folio/internal/nominee/models"
)

type backend struct {
	mu       sync.Mutex
	tokens   map[string]bool // token -> still valid
	nominees map[string][]models.NomineeDTO
	optedOut map[string]bool
	logger   *slog.Logger
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	b := &backend{
		tokens:   make(map[string]bool),
		nominees: make(map[string][]models.NomineeDTO),
		optedOut: make(map[string]bool),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/mfa/start", b.handleMFAStart)
	mux.HandleFunc("POST /auth/mfa/verify", b.handleMFAVerify)
	mux.HandleFunc("GET /users/nominees", b.handleList)
	mux.HandleFunc("POST /users/nominees", b.handleUpsert)
	mux.HandleFunc("POST /users/actions/nominee-opt-out", b.handleOptOut)

	logger.Info("mock upstream listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func (b *backend) handleMFAStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action  string `json:"action"`
		Channel string `json:"channel"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "bad_request", "message": "invalid body"})
		return
	}
	sessionID := "mock-" + uuid.NewString()
	b.logger.Info("otp issued", "session_id", sessionID, "action", req.Action, "channel", req.Channel)
	writeJSON(w, http.StatusOK, map[string]string{
		"mfaSessionId": sessionID,
		"message":      fmt.Sprintf("OTP sent via %s (any code ending in an even digit verifies)", req.Channel),
	})
}

func (b *backend) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"mfaSessionId"`
		OTP       string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "bad_request", "message": "invalid body"})
		return
	}
	if len(req.OTP) != 6 || req.OTP[5]%2 != 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "otp_incorrect", "message": "incorrect code"})
		return
	}

	token := "tok-" + uuid.NewString()
	b.mu.Lock()
	b.tokens[token] = true
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"mfaToken": token, "message": "verified"})
}

// consumeToken marks a token used. Reuse gets an mfa_token_expired so the
// folio server exercises its forced re-verify path.
func (b *backend) consumeToken(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tokens[token] {
		return false
	}
	b.tokens[token] = false
	return true
}

func (b *backend) requireToken(w http.ResponseWriter, r *http.Request) bool {
	token := r.Header.Get("X-MFA-Token")
	if token == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"code": "mfa_required", "message": "step-up verification required"})
		return false
	}
	if !b.consumeToken(token) {
		writeJSON(w, http.StatusForbidden, map[string]string{"code": "mfa_token_expired", "message": "token no longer valid"})
		return false
	}
	return true
}

func (b *backend) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	b.mu.Lock()
	records := append([]models.NomineeDTO(nil), b.nominees[userID]...)
	b.mu.Unlock()
	if records == nil {
		records = []models.NomineeDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

func (b *backend) handleUpsert(w http.ResponseWriter, r *http.Request) {
	if !b.requireToken(w, r) {
		return
	}
	userID := r.Header.Get("X-User-ID")

	var req struct {
		Data []models.NomineeDTO `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "bad_request", "message": "invalid body"})
		return
	}

	for i := range req.Data {
		if req.Data[i].ID == "" {
			req.Data[i].ID = "nom-" + uuid.NewString()[:8]
		}
	}

	b.mu.Lock()
	b.nominees[userID] = req.Data
	b.optedOut[userID] = false
	b.mu.Unlock()

	b.logger.Info("nominees replaced", "user_id", userID, "count", len(req.Data))
	writeJSON(w, http.StatusOK, map[string]any{"data": req.Data})
}

func (b *backend) handleOptOut(w http.ResponseWriter, r *http.Request) {
	if !b.requireToken(w, r) {
		return
	}
	userID := r.Header.Get("X-User-ID")

	b.mu.Lock()
	records := b.nominees[userID]
	for i := range records {
		records[i].OptedOut = true
	}
	b.optedOut[userID] = true
	b.mu.Unlock()

	b.logger.Info("opt-out recorded", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "opted out"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
