package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"classtrack/internal/apperr"
)

// Repository persists accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, phone_no, password_hash, role, department, semester, reg_no, created_at`

// Insert writes a new account, rejecting duplicate email, phone or
// registration number.
func (r *Repository) Insert(ctx context.Context, usr User) (User, error) {
	if usr.ID == "" {
		usr.ID = uuid.NewString()
	}
	if taken, err := r.exists(ctx, `email = $1`, usr.Email); err != nil {
		return User{}, err
	} else if taken {
		return User{}, apperr.Conflict("user already exists with this email")
	}
	if taken, err := r.exists(ctx, `phone_no = $1`, usr.PhoneNo); err != nil {
		return User{}, err
	} else if taken {
		return User{}, apperr.Conflict("user already exists with this phone number")
	}
	if usr.RegNo != "" {
		if taken, err := r.exists(ctx, `reg_no = $1`, usr.RegNo); err != nil {
			return User{}, err
		} else if taken {
			return User{}, apperr.Conflict("user already exists with this registration number")
		}
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, phone_no, password_hash, role, department, semester, reg_no)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
		RETURNING created_at
	`, usr.ID, usr.Name, usr.Email, usr.PhoneNo, usr.PasswordHash, usr.Role, usr.Department, usr.Semester, usr.RegNo)
	if err := row.Scan(&usr.CreatedAt); err != nil {
		return User{}, classifyInsertErr(err)
	}
	return usr, nil
}

// classifyInsertErr separates the unique-index losing a race the pre-checks
// missed from genuine store failures.
func classifyInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("user already exists")
	}
	return apperr.Internal("insert user", err)
}

func (r *Repository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+where, arg).Scan(&n); err != nil {
		return false, apperr.Internal("check user", err)
	}
	return n > 0, nil
}

// ByEmail returns the account with the given email.
func (r *Repository) ByEmail(ctx context.Context, email string) (User, error) {
	return r.one(ctx, `email = $1`, email)
}

// ByID returns one account.
func (r *Repository) ByID(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `id = $1`, id)
}

func (r *Repository) one(ctx context.Context, where string, arg any) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	usr, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return User{}, apperr.Internal("get user", err)
	}
	return usr, nil
}

// ByRole lists accounts with the given role.
func (r *Repository) ByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name
	`, role)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		usr, err := scanUser(rows.Scan)
		if err != nil {
			return nil, apperr.Internal("scan user", err)
		}
		res = append(res, usr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate users", err)
	}
	return res, nil
}

// StudentsByCohort lists the students of one department+semester.
func (r *Repository) StudentsByCohort(ctx context.Context, department, semester string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = 'student' AND department = $1 AND semester = $2
		ORDER BY name
	`, department, semester)
	if err != nil {
		return nil, apperr.Internal("list cohort students", err)
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		usr, err := scanUser(rows.Scan)
		if err != nil {
			return nil, apperr.Internal("scan user", err)
		}
		res = append(res, usr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate users", err)
	}
	return res, nil
}

func scanUser(scan func(...any) error) (User, error) {
	var usr User
	var department, semester, regNo sql.NullString
	err := scan(&usr.ID, &usr.Name, &usr.Email, &usr.PhoneNo, &usr.PasswordHash,
		&usr.Role, &department, &semester, &regNo, &usr.CreatedAt)
	if err != nil {
		return User{}, err
	}
	usr.Department = department.String
	usr.Semester = semester.String
	usr.RegNo = regNo.String
	return usr, nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	if err != nil {
		return apperr.Internal("save refresh token", err)
	}
	return nil
}

// RefreshTokenActive reports whether token is stored, unexpired and not
// revoked.
func (r *Repository) RefreshTokenActive(ctx context.Context, token string, now time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM refresh_tokens
		WHERE token = $1 AND expires_at > $2 AND NOT revoked
	`, token, now).Scan(&n)
	if err != nil {
		return false, apperr.Internal("check refresh token", err)
	}
	return n > 0, nil
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	if err != nil {
		return apperr.Internal("revoke refresh token", err)
	}
	return nil
}
