package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"touristhub-backend/internal/domain/user"
	"touristhub-backend/internal/http/handlers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Keep Gin quiet during tests
func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of the handlers.AdminUsersRepo interface

type fakeUsersRepo struct {
	countByRoleFn func(ctx context.Context) (user.Stats, error)
	listFn        func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error)
	toggleFn      func(ctx context.Context, id string) (user.User, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) CountByRole(ctx context.Context) (user.Stats, error) {
	if f.countByRoleFn != nil {
		return f.countByRoleFn(ctx)
	}
	return user.Stats{}, nil
}

func (f *fakeUsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeUsersRepo) ToggleActive(ctx context.Context, id string) (user.User, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, h)
	return r
}

func makeUser(role string, createdAt time.Time) user.User {
	return user.User{
		ID:        uuid.NewString(),
		FirstName: "Test",
		LastName:  "User",
		Email:     uuid.NewString() + "@example.com",
		Role:      role,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestStatsHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
		wantStats      *user.Stats
	}{
		{
			name: "aggregates_all_roles",
			repoSetUp: func(f *fakeUsersRepo) {
				f.countByRoleFn = func(ctx context.Context) (user.Stats, error) {
					return user.Stats{Guides: 2, Tourists: 3, ServiceProviders: 1, Admins: 1, Total: 7}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantStats:      &user.Stats{Guides: 2, Tourists: 3, ServiceProviders: 1, Admins: 1, Total: 7},
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeUsersRepo) {
				f.countByRoleFn = func(ctx context.Context) (user.Stats, error) {
					return user.Stats{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewAdminHandler(repo)
			r := setupRouter(http.MethodGet, "/api/admin/stats", h.Stats)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStats != nil {
				var body struct {
					Success bool       `json:"success"`
					Stats   user.Stats `json:"stats"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}

				if !body.Success {
					t.Fatalf("expected success=true")
				}

				if body.Stats != *tt.wantStats {
					t.Fatalf("got stats %+v, want %+v", body.Stats, *tt.wantStats)
				}

				sum := body.Stats.Guides + body.Stats.Tourists + body.Stats.ServiceProviders + body.Stats.Admins

				if body.Stats.Total != sum {
					t.Fatalf("total %d does not equal bucket sum %d", body.Stats.Total, sum)
				}
			}
		})
	}
}

func TestListUsersHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		query          string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
		wantFilter     *user.ListFilter
		wantPagination map[string]interface{}
	}{
		{
			name:  "defaults",
			query: "",
			repoSetUp: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
					return []user.User{makeUser(user.RoleGuide, now)}, 1, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantFilter:     &user.ListFilter{Role: "", Search: "", Limit: 10, Offset: 0},
			wantPagination: map[string]interface{}{
				"currentPage": float64(1),
				"totalPages":  float64(1),
				"totalUsers":  float64(1),
				"hasNext":     false,
				"hasPrev":     false,
			},
		},
		{
			name:  "second_page_with_role_and_search",
			query: "?page=2&limit=5&role=Guide&search=smith",
			repoSetUp: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
					return []user.User{makeUser(user.RoleGuide, now)}, 12, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantFilter:     &user.ListFilter{Role: "Guide", Search: "smith", Limit: 5, Offset: 5},
			wantPagination: map[string]interface{}{
				"currentPage": float64(2),
				"totalPages":  float64(3),
				"totalUsers":  float64(12),
				"hasNext":     true,
				"hasPrev":     true,
			},
		},
		{
			name:  "page_beyond_total",
			query: "?page=9&limit=10",
			repoSetUp: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
					return []user.User{}, 7, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantPagination: map[string]interface{}{
				"currentPage": float64(9),
				"totalPages":  float64(1),
				"totalUsers":  float64(7),
				"hasNext":     false,
				"hasPrev":     true,
			},
		},
		{
			name:  "invalid_params_fall_back_to_defaults",
			query: "?page=abc&limit=-4",
			repoSetUp: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
					return []user.User{}, 0, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantFilter:     &user.ListFilter{Role: "", Search: "", Limit: 10, Offset: 0},
		},
		{
			name:  "repo_error",
			query: "",
			repoSetUp: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
					return nil, 0, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			var gotFilter user.ListFilter

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			// wrap to capture the filter the handler built
			inner := repo.listFn
			repo.listFn = func(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
				gotFilter = filter
				return inner(ctx, filter)
			}

			h := handlers.NewAdminHandler(repo)
			r := setupRouter(http.MethodGet, "/api/admin/users", h.ListUsers)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantFilter != nil {
				if gotFilter != *tt.wantFilter {
					t.Fatalf("got filter %+v, want %+v", gotFilter, *tt.wantFilter)
				}
			}

			if tt.wantPagination != nil {
				var body struct {
					Pagination map[string]interface{} `json:"pagination"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}

				for k, want := range tt.wantPagination {
					if got := body.Pagination[k]; got != want {
						t.Fatalf("pagination[%s] = %v, want %v", k, got, want)
					}
				}
			}
		})
	}
}

func TestToggleStatusHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
		wantMessage    string
	}{
		{
			name: "activates_user",
			repoSetUp: func(f *fakeUsersRepo) {
				f.toggleFn = func(ctx context.Context, id string) (user.User, error) {
					u := makeUser(user.RoleGuide, time.Now().UTC())
					u.IsActive = true
					return u, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantMessage:    "User activated successfully",
		},
		{
			name: "deactivates_user",
			repoSetUp: func(f *fakeUsersRepo) {
				f.toggleFn = func(ctx context.Context, id string) (user.User, error) {
					u := makeUser(user.RoleGuide, time.Now().UTC())
					u.IsActive = false
					return u, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantMessage:    "User deactivated successfully",
		},
		{
			name: "not_found",
			repoSetUp: func(f *fakeUsersRepo) {
				f.toggleFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "admin_target_forbidden",
			repoSetUp: func(f *fakeUsersRepo) {
				f.toggleFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrAdminProtected
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeUsersRepo) {
				f.toggleFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewAdminHandler(repo)
			r := setupRouter(http.MethodPatch, "/api/admin/users/:userId/toggle-status", h.ToggleStatus)

			req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/"+uuid.NewString()+"/toggle-status", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantMessage != "" {
				var body struct {
					Message string `json:"message"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}

				if body.Message != tt.wantMessage {
					t.Fatalf("got message %q, want %q", body.Message, tt.wantMessage)
				}
			}
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "deletes_user",
			repoSetUp: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found_on_absent_id",
			repoSetUp: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "admin_target_forbidden",
			repoSetUp: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return user.ErrAdminProtected
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name: "repo_error",
			repoSetUp: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewAdminHandler(repo)
			r := setupRouter(http.MethodDelete, "/api/admin/users/:userId", h.DeleteUser)

			req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+uuid.NewString(), nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// Deleting an already-absent user twice returns 404 both times, never a 500.
func TestDeleteUserTwiceStays404(t *testing.T) {
	deleted := map[string]bool{}
	id := uuid.NewString()

	repo := &fakeUsersRepo{
		deleteFn: func(ctx context.Context, userID string) error {
			if deleted[userID] {
				return user.ErrNotFound
			}
			deleted[userID] = true
			return nil
		},
	}

	h := handlers.NewAdminHandler(repo)
	r := setupRouter(http.MethodDelete, "/api/admin/users/:userId", h.DeleteUser)

	for i, want := range []int{http.StatusOK, http.StatusNotFound, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/"+id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != want {
			t.Fatalf("call %d: got status %d, want %d", i+1, w.Code, want)
		}
	}
}
