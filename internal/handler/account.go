package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/user"
)

// Register creates an account and issues a token pair.
func (h *Handler) Register(c *gin.Context) {
	var in user.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	usr, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.issueTokens(c, http.StatusCreated, "user registered successfully", usr)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("email and password are required"))
		return
	}
	usr, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.issueTokens(c, http.StatusOK, "login successful", usr)
}

func (h *Handler) issueTokens(c *gin.Context, status int, message string, usr user.User) {
	tokens, err := auth.Issue(usr.ID, usr.Role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey,
		h.cfg.AccessTTL, h.cfg.RefreshTTL)
	if err != nil {
		fail(c, apperr.Internal("issue tokens", err))
		return
	}
	if err := h.users.SaveRefreshToken(c.Request.Context(), usr.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		fail(c, err)
		return
	}
	respond(c, status, gin.H{
		"message":      message,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresAt":    tokens.AccessExp.Unix(),
		"user":         usr,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a refresh token into a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("refresh token is required"))
		return
	}
	claims, err := auth.Parse(req.RefreshToken, h.cfg.JWTSigningKey, h.cfg.JWTIssuer)
	if err != nil {
		fail(c, apperr.Unauthorized("invalid refresh token"))
		return
	}
	active, err := h.users.RefreshTokenActive(c.Request.Context(), req.RefreshToken, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	if !active {
		fail(c, apperr.Unauthorized("refresh token expired or revoked"))
		return
	}
	usr, err := h.users.ByID(c.Request.Context(), claims.Subject)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.users.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		fail(c, err)
		return
	}
	h.issueTokens(c, http.StatusOK, "token refreshed", usr)
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	usr, err := h.users.ByID(c.Request.Context(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": usr})
}
