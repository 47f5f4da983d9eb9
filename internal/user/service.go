package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"classtrack/internal/apperr"
	"classtrack/internal/subject"
)

// User is an authenticated account. Department, Semester and RegNo are
// required for students and empty for teachers.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNo      string    `json:"phoneNo"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	Semester     string    `json:"semester,omitempty"`
	RegNo        string    `json:"regNo,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PhoneNo    string `json:"phoneNo"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Semester   string `json:"semester"`
	RegNo      string `json:"regNo"`
}

// Service owns account creation and credential checks.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Register validates input, hashes the password and persists the account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Name == "" || in.Email == "" || in.PhoneNo == "" || in.Password == "" {
		return User{}, apperr.Validation("name, email, phone and password are required")
	}
	if in.Role == "" {
		in.Role = "student"
	}
	if in.Role != "student" && in.Role != "teacher" {
		return User{}, apperr.Validation("role must be student or teacher")
	}
	if in.Role == "student" {
		if in.Department == "" || in.Semester == "" || in.RegNo == "" {
			return User{}, apperr.Validation("department, semester and registration number are required for students")
		}
		if !subject.ValidDepartment(in.Department) {
			return User{}, apperr.Validation("unknown department")
		}
		if !subject.ValidSemester(in.Semester) {
			return User{}, apperr.Validation("unknown semester")
		}
	} else {
		// Teachers never carry cohort fields.
		in.Department, in.Semester, in.RegNo = "", "", ""
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperr.Internal("hash password", err)
	}

	return s.repo.Insert(ctx, User{
		Name:         in.Name,
		Email:        in.Email,
		PhoneNo:      in.PhoneNo,
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   in.Department,
		Semester:     in.Semester,
		RegNo:        in.RegNo,
	})
}

// Authenticate checks credentials and returns the account. Both an unknown
// email and a wrong password surface the same message.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, apperr.Validation("email and password are required")
	}
	usr, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return User{}, apperr.Unauthorized("invalid credentials")
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	return usr, nil
}

// ByID returns one account.
func (s *Service) ByID(ctx context.Context, id string) (User, error) {
	return s.repo.ByID(ctx, id)
}

// Students returns every student account, for the roster aggregate.
func (s *Service) Students(ctx context.Context) ([]User, error) {
	return s.repo.ByRole(ctx, "student")
}

// StudentsByCohort returns the students of one department+semester, the
// audience of a cancellation notification.
func (s *Service) StudentsByCohort(ctx context.Context, department, semester string) ([]User, error) {
	return s.repo.StudentsByCohort(ctx, department, semester)
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (s *Service) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	return s.repo.SaveRefreshToken(ctx, userID, token, expiresAt)
}

// RefreshTokenActive reports whether token is stored, unexpired and not
// revoked.
func (s *Service) RefreshTokenActive(ctx context.Context, token string, now time.Time) (bool, error) {
	return s.repo.RefreshTokenActive(ctx, token, now)
}

// RevokeRefreshToken marks a token revoked.
func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	return s.repo.RevokeRefreshToken(ctx, token)
}
