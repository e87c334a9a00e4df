package web

import (
	"errors"
	"net/http"

	"github.com/avstrong/afrotour/internal/auth"
)

type authErrorResponse struct {
	Error              string `json:"error"`
	ResendVerification bool   `json:"resendVerification,omitempty"`
}

func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidSession):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrAlreadyRegistered):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrFieldsRequired),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrEmailRequired):
		status = http.StatusBadRequest
	default:
		s.l.LogErrorf("Auth request failed: %v", err.Error())
	}

	s.writeJSON(w, status, authErrorResponse{
		Error:              auth.Message(err),
		ResendVerification: errors.Is(err, auth.ErrEmailNotConfirmed),
	})
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user,omitempty"`
}

func (s *Server) issueSession(w http.ResponseWriter, session *auth.Session) {
	token, err := s.tokens.Issue(session)
	if err != nil {
		s.l.LogErrorf("Could not issue session token: %v", err.Error())
		s.writeError(w, http.StatusInternalServerError, auth.MsgGeneric)

		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: session.User})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req signInRequest

	if !s.readBody(w, r, signInLoader, &req) {
		return
	}

	session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, err)

		return
	}

	s.issueSession(w, session)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var profile auth.Profile

	if !s.readBody(w, r, signUpLoader, &profile) {
		return
	}

	msg, err := s.auth.SignUp(r.Context(), profile)
	if err != nil {
		s.writeAuthError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, messageResponse{Message: msg})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) resendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	var req emailRequest

	if !s.readBody(w, r, emailLoader, &req) {
		return
	}

	if err := s.auth.ResendVerification(r.Context(), req.Email); err != nil {
		s.writeAuthError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: auth.MsgVerificationSent})
}

type restoreRequest struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) restoreSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest

	if !s.readBody(w, r, restoreLoader, &req) {
		return
	}

	session, err := s.auth.Restore(r.Context(), req.AccessToken)
	if err != nil {
		s.writeAuthError(w, err)

		return
	}

	s.issueSession(w, session)
}

// signOutHandler always succeeds for the caller; provider failures are
// only logged since the local session is gone either way.
func (s *Server) signOutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context()); err != nil {
		s.l.LogWarnf("Sign out: %v", err.Error())
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.CurrentUser(r.Context())
	if err != nil {
		s.writeAuthError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
