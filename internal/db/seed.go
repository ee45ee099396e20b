package db

import (
	"context"
	"errors"
	"time"

	"touristhub-backend/internal/config"
	"touristhub-backend/internal/domain/user"
	"touristhub-backend/internal/repo/postgres"
	"touristhub-backend/internal/security"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the configured admin account once. No-op when the
// seed credentials are unset or the email already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	exists, err := emailExists(ctx, pool, cfg.AdminEmail)

	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	repo := postgres.NewUsersRepo(pool)

	_, err = repo.Create(ctx, user.User{
		ID:           uuid.NewString(),
		FirstName:    cfg.AdminName,
		LastName:     "",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	return err
}

type sampleUser struct {
	user.User
	password string
}

// EnsureSampleUsers inserts a small fixture set for local development,
// skipping any email that already exists.
func EnsureSampleUsers(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	repo := postgres.NewUsersRepo(pool)
	created := 0

	for _, su := range sampleUsers() {
		exists, err := emailExists(ctx, pool, su.Email)

		if err != nil {
			return created, err
		}

		if exists {
			continue
		}

		hash, err := security.HashPassword(su.password)

		if err != nil {
			return created, err
		}

		now := time.Now().UTC()

		su.User.ID = uuid.NewString()
		su.User.PasswordHash = hash
		su.User.IsActive = true
		su.User.CreatedAt = now
		su.User.UpdatedAt = now

		if _, err := repo.Create(ctx, su.User); err != nil {
			return created, err
		}

		created++
	}

	return created, nil
}

func emailExists(ctx context.Context, pool *pgxpool.Pool, email string) (bool, error) {
	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return true, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	return false, err
}

func sampleUsers() []sampleUser {
	return []sampleUser{
		{
			User: user.User{
				FirstName:      "John",
				LastName:       "Doe",
				Email:          "guide@example.com",
				Role:           user.RoleGuide,
				Specialization: ptr("Mountain Hiking"),
				Experience:     intPtr(5),
			},
			password: "password123",
		},
		{
			User: user.User{
				FirstName:   "Jane",
				LastName:    "Smith",
				Email:       "tourist@example.com",
				Role:        user.RoleTourist,
				Nationality: ptr("USA"),
				Preferences: []string{"Adventure", "Culture"},
			},
			password: "password123",
		},
		{
			User: user.User{
				FirstName:    "Mike",
				LastName:     "Johnson",
				Email:        "provider@example.com",
				Role:         user.RoleServiceProvider,
				BusinessName: ptr("Mike's Travel Services"),
				ServiceType:  ptr("Transportation"),
			},
			password: "password123",
		},
		{
			User: user.User{
				FirstName:      "Sarah",
				LastName:       "Wilson",
				Email:          "guide2@example.com",
				Role:           user.RoleGuide,
				Specialization: ptr("City Tours"),
				Experience:     intPtr(3),
			},
			password: "password123",
		},
		{
			User: user.User{
				FirstName:   "Bob",
				LastName:    "Davis",
				Email:       "tourist2@example.com",
				Role:        user.RoleTourist,
				Nationality: ptr("Canada"),
				Preferences: []string{"Nature", "Photography"},
			},
			password: "password123",
		},
	}
}

func ptr(s string) *string { return &s }
func intPtr(n int) *int    { return &n }
