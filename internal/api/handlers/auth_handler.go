package handlers

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/devlink/internal/auth"
	"github.com/isdelr/devlink/internal/models"
	"github.com/isdelr/devlink/internal/services"
)

// AuthHandler handles HTTP requests for registration and sign-in.
type AuthHandler struct {
	service services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.RegisterInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err, "Rejected registration body")
		return
	}

	res, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "Failed to register user")
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", res.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, res)
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload models.LoginInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err, "Rejected login body")
		return
	}

	res, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "Failed authentication attempt")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetMe retrieves the currently authenticated user.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Not authorized"})
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "User from token not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
