package api

import (
	"errors"
	"net/http"

	"github.com/okian/readiness/internal/auth"
)

type tokenResponse struct {
	Token   string       `json:"token"`
	Session auth.Session `json:"session"`
}

// handleSignUp handles POST /api/signup.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	sess, token, err := s.gate.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, Session: sess})
}

// handleLogin handles POST /api/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var cred auth.Credentials
	if err := decodeJSON(w, r, &cred); err != nil {
		writeServiceError(w, err)
		return
	}
	sess, token, err := s.gate.SignIn(r.Context(), cred)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Session: sess})
}

// handleLogout handles POST /api/logout. Signing out twice is not an error.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.gate.SignOut(r.Context(), token); err != nil && !errors.Is(err, auth.ErrSessionExpired) {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
