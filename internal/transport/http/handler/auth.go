package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/social-feed-api/internal/application/auth"
	"github.com/social-feed-api/internal/application/user"
	"github.com/social-feed-api/internal/domain"
	"github.com/social-feed-api/internal/pkg/validate"
)

// AuthHandler serves registration, passcode requests and login.
type AuthHandler struct {
	auth  auth.Service
	users user.Service
}

func NewAuthHandler(authSvc auth.Service, userSvc user.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, users: userSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}

	msg := fmt.Sprintf("Verification code sent to your %s", res.Method)
	if !res.VerificationSent {
		msg = fmt.Sprintf("Account created but failed to send verification code to your %s", res.Method)
	}
	ru := RegisteredUser{
		ID:                 res.User.UserID,
		Username:           res.User.Username,
		VerificationSent:   res.VerificationSent,
		VerificationMethod: string(res.Method),
	}
	if res.User.Email != nil {
		ru.Email = *res.User.Email
	}
	if res.User.PhoneNumber != nil {
		ru.PhoneNumber = *res.User.PhoneNumber
	}
	writeJSON(w, http.StatusCreated, RegisterEnvelope{Success: true, User: ru, Message: msg})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.RequestPasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.auth.RequestPasscode(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessEnvelope{Success: true})
}

// Login answers every rejection with the same 401 body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if errors.Is(err, domain.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		AccessToken: res.AccessToken,
		Session:     toSafeSession(res.Session),
		User:        res.Session.User,
	})
}
