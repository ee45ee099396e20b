package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"touristhub-backend/internal/config"
	"touristhub-backend/internal/domain/user"
	"touristhub-backend/internal/http/middlewares"
	"touristhub-backend/internal/observability"
	"touristhub-backend/internal/security"
	"touristhub-backend/internal/session"
	"touristhub-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthUsersRepo interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) (user.User, error)
	UpdatePicture(ctx context.Context, id string, path string) (user.User, error)
}

type AuthHandler struct {
	users    AuthUsersRepo
	sessions session.Store
	pictures storage.PictureStore
	prom     *observability.Prom
	cfg      config.Config
}

func NewAuthHandler(users AuthUsersRepo, sessions session.Store, pictures storage.PictureStore, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		pictures: pictures,
		prom:     prom,
		cfg:      cfg,
	}
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Mobile    *string `json:"mobile"`
	Role      string `json:"role" binding:"required,oneof=Admin Guide Tourist ServiceProvider"`

	Specialization *string  `json:"specialization"`
	Experience     *int     `json:"experience"`
	Nationality    *string  `json:"nationality"`
	Preferences    []string `json:"preferences"`
	BusinessName   *string  `json:"businessName"`
	ServiceType    *string  `json:"serviceType"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	now := time.Now().UTC()

	u, err := h.users.Create(cctx, user.User{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PasswordHash:   hash,
		Mobile:         req.Mobile,
		Role:           req.Role,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Nationality:    req.Nationality,
		Preferences:    req.Preferences,
		BusinessName:   req.BusinessName,
		ServiceType:    req.ServiceType,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	if err := h.startSession(ctx, u.ID); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    u,
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		h.prom.LoginsTotal.WithLabelValues("invalid").Inc()
		RespondUnauthorized(ctx, "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.prom.LoginsTotal.WithLabelValues("invalid").Inc()
		RespondUnauthorized(ctx, "Email or password is incorrect.")
		return
	}

	if !foundUser.IsActive {
		h.prom.LoginsTotal.WithLabelValues("invalid").Inc()
		RespondForbidden(ctx, "Account is deactivated.")
		return
	}

	if err := h.startSession(ctx, foundUser.ID); err != nil {
		h.prom.LoginsTotal.WithLabelValues("error").Inc()
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.prom.LoginsTotal.WithLabelValues("ok").Inc()

	foundUser.PasswordHash = ""

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    foundUser,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(ctx *gin.Context) {
	sid, err := ctx.Cookie(session.CookieName)

	if err == nil && sid != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		// destroy is idempotent; a stale cookie still gets cleared
		if err := h.sessions.Destroy(cctx, sid); err == nil {
			h.prom.SessionsActive.Dec()
		}
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}

type UpdateProfileRequest struct {
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Mobile    *string `json:"mobile"`

	Specialization *string  `json:"specialization"`
	Experience     *int     `json:"experience"`
	Nationality    *string  `json:"nationality"`
	Preferences    []string `json:"preferences"`
	BusinessName   *string  `json:"businessName"`
	ServiceType    *string  `json:"serviceType"`
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	updated, err := h.users.UpdateProfile(cctx, u.ID, user.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Mobile:         req.Mobile,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Nationality:    req.Nationality,
		Preferences:    req.Preferences,
		BusinessName:   req.BusinessName,
		ServiceType:    req.ServiceType,
	})

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    updated,
	})
}

// POST /api/auth/upload-profile-picture
func (h *AuthHandler) UploadProfilePicture(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authenticated")
		return
	}

	fileHeader, err := ctx.FormFile("profilePicture")

	if err != nil {
		RespondBadRequest(ctx, "profilePicture file is required", nil)
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer f.Close()

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	path, err := h.pictures.Save(cctx, fileHeader.Filename, f)

	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			RespondBadRequest(ctx, "Unsupported image type", nil)
			return
		}

		RespondInternal(ctx, "Could not store picture")
		return
	}

	updated, err := h.users.UpdatePicture(cctx, u.ID, path)

	if err != nil {
		RespondInternal(ctx, "Could not update profile picture")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":        true,
		"profilePicture": path,
		"user":           updated,
	})
}

// Session cookie helpers

func (h *AuthHandler) startSession(ctx *gin.Context, userID string) error {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	sid, err := h.sessions.Create(cctx, userID, h.cfg.SessionTTL)

	if err != nil {
		return err
	}

	h.prom.SessionsActive.Inc()
	h.setSessionCookie(ctx, sid)

	return nil
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, sid string) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		session.CookieName,
		sid,
		int(h.cfg.SessionTTL.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		session.CookieName,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
