package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/dwarforca/storefront/internal/domain/user"
)

type loginRequest struct {
	Username string `json:"username"`
}

// Login activates a session for the given username, creating a blank
// profile on first login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := h.users.Login(r.Context(), req.Username)
	if errors.Is(err, user.ErrEmptyUsername) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, r, http.StatusOK, acct)
}

// GetProfile returns the active session's account.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	acct, err := h.users.Current(r.Context())
	if errors.Is(err, user.ErrNotLoggedIn) {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	writeJSON(w, r, http.StatusOK, acct)
}

// UpdateProfile overwrites the editable fields of the active account.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update user.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := h.users.UpdateProfile(r.Context(), update)
	if errors.Is(err, user.ErrNotLoggedIn) {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "profile update failed")
		return
	}
	writeJSON(w, r, http.StatusOK, acct)
}

// Logout ends the active session. Logging out without a session is fine.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context()); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
