package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"campushub/internal/apperr"
	"campushub/internal/auth"
)

// TokenConfig carries what the handler needs to mint tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler exposes directory and auth endpoints.
type Handler struct {
	svc  *Service
	repo *Repository
	cfg  TokenConfig
}

// NewHandler creates the handler.
func NewHandler(svc *Service, repo *Repository, cfg TokenConfig) *Handler {
	return &Handler{svc: svc, repo: repo, cfg: cfg}
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"message": apperr.Message(err)})
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("email and password required"))
		return
	}

	u, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	tokens, err := h.issue(c, u)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// Refresh rotates a refresh token into a new token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("refresh_token required"))
		return
	}

	claims, err := auth.Parse(req.RefreshToken, h.cfg.SigningKey, h.cfg.Issuer)
	if err != nil {
		fail(c, apperr.Unauthorized("invalid refresh token"))
		return
	}
	ok, err := h.repo.RefreshTokenValid(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, apperr.Unauthorized("refresh token revoked or expired"))
		return
	}

	id, _ := strconv.ParseInt(claims.Subject, 10, 64)
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	_ = h.repo.RevokeRefreshToken(c.Request.Context(), req.RefreshToken)
	tokens, err := h.issue(c, u)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

// Me returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Add creates a user (admin only; role fixed at creation).
func (h *Handler) Add(c *gin.Context) {
	var in NewUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.Validation(err.Error()))
		return
	}
	u, err := h.svc.Add(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// List returns users, filtered by ?role= when present.
func (h *Handler) List(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), c.Query("role"))
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []User{}
	}
	c.JSON(http.StatusOK, res)
}

// ListAssistants returns demo/lab assistant accounts for session forms.
func (h *Handler) ListAssistants(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context(), RoleDemo)
	if err != nil {
		fail(c, err)
		return
	}
	if res == nil {
		res = []User{}
	}
	c.JSON(http.StatusOK, res)
}

// Delete removes a user.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, apperr.Validation("invalid user id"))
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *Handler) issue(c *gin.Context, u User) (auth.TokenPair, error) {
	tokens, err := auth.Issue(
		strconv.FormatInt(u.ID, 10), u.Role, h.cfg.Issuer, h.cfg.SigningKey,
		h.cfg.AccessTTL, h.cfg.RefreshTTL,
	)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := h.repo.SaveRefreshToken(c.Request.Context(), u.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		return auth.TokenPair{}, err
	}
	return tokens, nil
}
