package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/identity"
	mw "github.com/kasuganosora/middleearth/middleware"
	"github.com/kasuganosora/middleearth/model"
)

// AuthHandler handles account REST endpoints.
type AuthHandler struct {
	svc *identity.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *identity.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type authResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func newAuthResponse(res *identity.AuthResult) authResponse {
	return authResponse{User: res.User, Token: res.Token, ExpiresAt: time.Now().Add(res.ExpiresIn)}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterInput
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "user registered", newAuthResponse(res))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "logged in", newAuthResponse(res))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), mw.BearerToken(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "logged out", nil)
}

// ChangePassword handles POST /api/auth/change-password. Every session ends,
// including the one making the request.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req identity.ChangePasswordInput
	if !bind(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), mw.GetUserID(c), req); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "password changed, please log in again", nil)
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	view, err := h.svc.Profile(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// UpdateProfile handles PATCH /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req identity.ProfileInput
	if !bind(c, &req) {
		return
	}
	view, err := h.svc.UpdateProfile(c.Request.Context(), mw.GetUserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "profile updated", view)
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount handles DELETE /api/auth/account.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req deleteAccountRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.DeleteAccount(c.Request.Context(), mw.GetUserID(c), req.Password); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "account deleted", nil)
}
