package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/repo/postgres"
	"github.com/geocoder89/campushub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const refreshCookieName = "refresh_token"

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

type RefreshTokenStore interface {
	Issue(ctx context.Context, row postgres.RefreshTokenRow) error
	Rotate(ctx context.Context, oldID, presentedHash string, next postgres.RefreshTokenRow, now time.Time) (string, error)
	RevokeOne(ctx context.Context, id string) error
}

type AuthHandler struct {
	users        UserStore
	jwt          *auth.Manager
	sessions     *auth.Sessions
	refreshStore RefreshTokenStore
	cfg          config.Config
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, sessions *auth.Sessions, refreshStore RefreshTokenStore, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:        users,
		jwt:          jwtManager,
		sessions:     sessions,
		refreshStore: refreshStore,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int       `json:"expiresIn"`
	User        user.User `json:"user"`
}

// POST /auth/register. Self-registration always yields a student.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()
	u, err := h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         user.RoleStudent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		RespondDomainError(ctx, err, "Could not create user")
		return
	}

	h.startSession(ctx, cctx, u, http.StatusCreated)
}

// POST /auth/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			RespondDomainError(ctx, err, "Could not log in")
			return
		}
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	if !found.IsActive {
		RespondUnAuthorized(ctx, "account_disabled", "This account has been disabled.")
		return
	}

	if err := h.users.TouchLastLogin(cctx, found.ID); err != nil {
		RespondDomainError(ctx, err, "Could not log in")
		return
	}
	now := time.Now().UTC()
	found.LastLoginAt = &now

	h.startSession(ctx, cctx, found, http.StatusOK)
}

// startSession issues an access token, a refresh cookie and a browser
// session for u.
func (h *AuthHandler) startSession(ctx *gin.Context, cctx context.Context, u user.User, status int) {
	accessToken, err := h.jwt.GenerateAccessToken(u)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefresh, jti, expiresAt, err := h.jwt.GenerateRefreshToken(u)
	if err != nil {
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	err = h.refreshStore.Issue(cctx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    u.ID,
		TokenHash: h.jwt.HashRefreshToken(rawRefresh),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		RespondDomainError(ctx, err, "Could not create session")
		return
	}

	if h.sessions != nil {
		if err := h.sessions.Save(ctx.Writer, ctx.Request, u); err != nil {
			RespondInternal(ctx, "Could not create session")
			return
		}
	}

	h.setRefreshCookie(ctx, rawRefresh, expiresAt)

	ctx.JSON(status, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwt.AccessTTL().Seconds()),
		User:        u,
	})
}

// POST /auth/refresh rotates the refresh token and re-reads the user, so a
// role change is picked up here.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)
	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, claims.UserID)
	if err != nil || !u.IsActive {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	newRaw, newJTI, newExpiresAt, err := h.jwt.GenerateRefreshToken(u)
	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	next := postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    u.ID,
		TokenHash: h.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	_, err = h.refreshStore.Rotate(cctx, claims.JTI, h.jwt.HashRefreshToken(raw), next, time.Now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, postgres.ErrRefreshTokenExpired):
		RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired.")
		return
	case errors.Is(err, postgres.ErrRefreshTokenNotFound), errors.Is(err, postgres.ErrRefreshTokenReused):
		h.clearRefreshCookie(ctx)
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	default:
		RespondDomainError(ctx, err, "Could not refresh session")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(u)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwt.AccessTTL().Seconds()),
		User:        u,
	})
}

// POST /auth/logout always succeeds and clears both cookies.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if raw, err := ctx.Cookie(refreshCookieName); err == nil && raw != "" {
		if claims, err := h.jwt.VerifyRefreshToken(raw); err == nil {
			cctx, cancel := requestCtx(ctx, writeTimeout)
			_ = h.refreshStore.RevokeOne(cctx, claims.JTI)
			cancel()
		}
	}

	if h.sessions != nil {
		_ = h.sessions.Clear(ctx.Writer, ctx.Request)
	}

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// GET /me
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(refreshCookieName, raw, maxAge, "/auth", "", h.cfg.IsProduction(), true)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(refreshCookieName, "", -1, "/auth", "", h.cfg.IsProduction(), true)
}
