package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"touristhub-backend/internal/config"
	"touristhub-backend/internal/domain/user"

	"github.com/gin-gonic/gin"
)

type AdminUsersRepo interface {
	CountByRole(ctx context.Context) (user.Stats, error)
	List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error)
	ToggleActive(ctx context.Context, id string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type AdminHandler struct {
	repo AdminUsersRepo
}

func NewAdminHandler(repo AdminUsersRepo) *AdminHandler {
	return &AdminHandler{repo: repo}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	stats, err := h.repo.CountByRole(cctx)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch user statistics")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// GET /api/admin/users?page=1&limit=10&role=Guide&search=smith
func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	page := parseIntDefault(ctx.Query("page"), 1)
	limit := parseIntDefault(ctx.Query("limit"), 10)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := user.ListFilter{
		Role:   ctx.Query("role"),
		Search: ctx.Query("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	users, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Failed to fetch users")
		return
	}

	totalPages := (total + limit - 1) / limit

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalUsers":  total,
			"hasNext":     page < totalPages,
			"hasPrev":     page > 1,
		},
	})
}

// PATCH /api/admin/users/:userId/toggle-status
func (h *AdminHandler) ToggleStatus(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.ToggleActive(cctx, userID)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrAdminProtected):
			RespondForbidden(ctx, "Cannot modify admin user status")
		default:
			RespondInternal(ctx, "Failed to update user status")
		}
		return
	}

	message := "User deactivated successfully"

	if u.IsActive {
		message = "User activated successfully"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"user":    u,
	})
}

// DELETE /api/admin/users/:userId
func (h *AdminHandler) DeleteUser(ctx *gin.Context) {
	userID := ctx.Param("userId")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrAdminProtected):
			RespondForbidden(ctx, "Cannot delete admin users")
		default:
			RespondInternal(ctx, "Failed to delete user")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

func parseIntDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)

	if err != nil {
		return fallback
	}

	return n
}
