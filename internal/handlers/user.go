package handlers

import (
	"encoding/json"
	"net/http"

	"photo-gallery/internal/models"
	"photo-gallery/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles login requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Login handles POST /api/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := h.userService.Verify(ctx, req.Username, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to verify credentials")
		respondError(w, "Server error", http.StatusInternalServerError)
		return
	}

	if !ok {
		log.Info().Str("username", req.Username).Msg("Login rejected")
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	resp := models.LoginResponse{Success: true}
	if h.userService.TokensEnabled() {
		token, err := h.userService.GenerateJWT(req.Username)
		if err != nil {
			log.Error().Err(err).Str("username", req.Username).Msg("Failed to issue token")
			respondError(w, "Server error", http.StatusInternalServerError)
			return
		}
		resp.Token = token
	}

	log.Info().Str("username", req.Username).Msg("Login accepted")
	respondJSON(w, http.StatusOK, resp)
}
