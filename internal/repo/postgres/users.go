package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"touristhub-backend/internal/domain/user"
	"touristhub-backend/internal/observability"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userColumns is every column except password_hash, which only the login
// path reads.
const userColumns = `id, first_name, last_name, email, mobile, profile_picture, role,
	specialization, experience, nationality, preferences, business_name, service_type,
	is_active, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

// WithMetrics records per-operation latency and error class through prom.
func (r *UsersRepo) WithMetrics(p *observability.Prom) *UsersRepo {
	r.prom = p
	return r
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("create_user", func() error {
		_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, mobile,
			profile_picture, role, specialization, experience, nationality, preferences,
			business_name, service_type, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Mobile,
			u.ProfilePic, u.Role, u.Specialization, u.Experience, u.Nationality, u.Preferences,
			u.BusinessName, u.ServiceType, u.IsActive, u.CreatedAt, u.UpdatedAt,
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("get_user", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// GetByEmail also returns the password hash; it exists for the login path.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("get_user_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`, password_hash FROM users WHERE email = $1`, email,
		).Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.ProfilePic, &u.Role,
			&u.Specialization, &u.Experience, &u.Nationality, &u.Preferences, &u.BusinessName,
			&u.ServiceType, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// List returns one page of users plus the total match count in a single
// query via COUNT(*) OVER(). Newest-created first.
func (r *UsersRepo) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	baseQuery := `SELECT ` + userColumns + `, COUNT(*) OVER() AS total FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Role != "" && filter.Role != "all" {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, filter.Role)
		argsPosition++
	}

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+filter.Search+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// id as tie-breaker keeps pages stable for equal timestamps
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, filter.Limit, filter.Offset)

	output := make([]user.User, 0, filter.Limit)
	total := 0

	err := r.observe("list_users", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User
			var t int

			err = rows.Scan(
				&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.ProfilePic, &u.Role,
				&u.Specialization, &u.Experience, &u.Nationality, &u.Preferences, &u.BusinessName,
				&u.ServiceType, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &t,
			)

			if err != nil {
				return err
			}

			total = t
			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	// page beyond the data returns no rows, so the window total is lost;
	// fall back to a plain count
	if len(output) == 0 {
		total, err = r.count(ctx, filter)

		if err != nil {
			return nil, 0, err
		}
	}

	return output, total, nil
}

func (r *UsersRepo) count(ctx context.Context, filter user.ListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Role != "" && filter.Role != "all" {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, filter.Role)
		argsPosition++
	}

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var total int

	err := r.pool.QueryRow(ctx, query, args...).Scan(&total)

	if err != nil {
		return 0, err
	}

	return total, nil
}

// CountByRole aggregates users into the four known role buckets. Unknown
// roles are excluded from every bucket including total.
func (r *UsersRepo) CountByRole(ctx context.Context) (user.Stats, error) {
	var stats user.Stats

	err := r.observe("count_by_role", func() error {
		rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var role string
			var count int

			if err := rows.Scan(&role, &count); err != nil {
				return err
			}

			switch role {
			case user.RoleGuide:
				stats.Guides = count
			case user.RoleTourist:
				stats.Tourists = count
			case user.RoleServiceProvider:
				stats.ServiceProviders = count
			case user.RoleAdmin:
				stats.Admins = count
			default:
				continue
			}

			stats.Total += count
		}

		return rows.Err()
	})

	if err != nil {
		return user.Stats{}, err
	}

	return stats, nil
}

// ToggleActive flips is_active in a single statement, so two racing toggles
// serialize at the row. Admin rows are refused at the SQL level.
func (r *UsersRepo) ToggleActive(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("toggle_active", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET is_active = NOT is_active,
				updated_at = NOW()
			WHERE id = $1 AND role <> $2
			RETURNING `+userColumns,
			id, user.RoleAdmin))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, r.classifyMissing(ctx, id)
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("delete_user", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM users WHERE id = $1 AND role <> $2`, id, user.RoleAdmin)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return r.classifyMissing(ctx, id)
	}

	return nil
}

// classifyMissing splits "no row touched" into not-found vs protected-admin.
func (r *UsersRepo) classifyMissing(ctx context.Context, id string) error {
	var role string

	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}

		return err
	}

	if role == user.RoleAdmin {
		return user.ErrAdminProtected
	}

	return user.ErrNotFound
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, upd user.ProfileUpdate) (user.User, error) {
	var u user.User

	err := r.observe("update_profile", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET first_name = $2,
				last_name = $3,
				mobile = $4,
				specialization = $5,
				experience = $6,
				nationality = $7,
				preferences = $8,
				business_name = $9,
				service_type = $10,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, upd.FirstName, upd.LastName, upd.Mobile, upd.Specialization, upd.Experience,
			upd.Nationality, upd.Preferences, upd.BusinessName, upd.ServiceType))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) UpdatePicture(ctx context.Context, id string, path string) (user.User, error) {
	var u user.User

	err := r.observe("update_picture", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET profile_picture = $2,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			id, path))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Mobile, &u.ProfilePic, &u.Role,
		&u.Specialization, &u.Experience, &u.Nationality, &u.Preferences, &u.BusinessName,
		&u.ServiceType, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}
