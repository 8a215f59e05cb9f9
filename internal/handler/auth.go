package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"guardian-vault-api/internal/model"
	"guardian-vault-api/internal/repository"
	"guardian-vault-api/internal/service"
	"guardian-vault-api/pkg/apierror"
	"guardian-vault-api/pkg/response"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	tokenService *service.TokenService
	appRepo      repository.AppRepository // Interface, not concrete type
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokenService *service.TokenService, appRepo repository.AppRepository) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		appRepo:      appRepo,
	}
}

// TokenRequest represents the request body for token generation.
type TokenRequest struct {
	APIKey       string `json:"api_key"`
	MembershipID string `json:"membership_id"`
}

// TokenResponse represents the response for token generation.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GenerateToken handles POST /auth/token
func (h *AuthHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.APIKey == "" {
		response.Error(w, apierror.BadRequest("api_key is required"))
		return
	}
	if req.MembershipID == "" {
		response.Error(w, apierror.BadRequest("membership_id is required"))
		return
	}

	membershipID, err := strconv.ParseInt(req.MembershipID, 10, 64)
	if err != nil {
		response.Error(w, apierror.BadRequest("membership_id must be numeric"))
		return
	}

	validation, err := h.appRepo.ValidateAPIKey(r.Context(), req.APIKey)
	if err != nil {
		response.Error(w, apierror.Unauthorized(err.Error()))
		return
	}

	tokenData := model.TokenData{
		AppID:              validation.AppID,
		AppName:            validation.Name,
		BungieMembershipID: membershipID,
	}

	token, err := h.tokenService.GenerateToken(r.Context(), tokenData)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to generate token"))
		return
	}

	response.OK(w, TokenResponse{
		Token:     token,
		ExpiresIn: 3600,
	})
}

// RevokeToken handles POST /auth/revoke
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RevokeToken(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke token"))
		return
	}

	response.OK(w, map[string]string{"status": "revoked"})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RefreshToken(r.Context(), token); err != nil {
		response.Error(w, apierror.Unauthorized("token not found or expired"))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":     "refreshed",
		"expires_in": 3600,
	})
}
