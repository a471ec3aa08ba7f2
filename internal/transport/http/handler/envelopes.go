package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/social-feed-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SuccessEnvelope struct {
	Success bool `json:"success"`
}

// RegisteredUser is the account summary returned by registration.
type RegisteredUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	PhoneNumber        string `json:"phoneNumber"`
	VerificationSent   bool   `json:"verificationSent"`
	VerificationMethod string `json:"verificationMethod"`
}

type RegisterEnvelope struct {
	Success bool           `json:"success"`
	User    RegisteredUser `json:"user"`
	Message string         `json:"message"`
}

// LoginEnvelope wraps the login response.
type LoginEnvelope struct {
	AccessToken string          `json:"access_token"`
	Session     *domain.Session `json:"session"`
	User        *domain.User    `json:"user"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
}

// PublicUser is what other accounts may see of a user.
type PublicUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Created  time.Time `json:"created"`
}

func toPublicUser(u *domain.User) PublicUser {
	return PublicUser{ID: u.UserID, Username: u.Username, Created: u.CreatedAt}
}

// toSafeSession copies s without the embedded user, which is returned
// alongside it.
func toSafeSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = nil
	return &c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to status codes. The client sees the
// message the service wrapped around the sentinel; anything unrecognised is
// logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, publicMessage(err, domain.ErrBadRequest))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, publicMessage(err, domain.ErrUnauthorized))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, publicMessage(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, publicMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, publicMessage(err, domain.ErrConflict))
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, "failed to send verification code")
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func publicMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
