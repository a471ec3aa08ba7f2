package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/social-feed-api/internal/application/user"
	"github.com/social-feed-api/internal/pkg/id"
	"github.com/social-feed-api/internal/transport/http/middleware"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Get returns the full record to its owner and the public profile to
// anyone else.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !id.Valid(userID) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.UserID == u.UserID {
		writeJSON(w, http.StatusOK, u)
		return
	}
	writeJSON(w, http.StatusOK, toPublicUser(u))
}
