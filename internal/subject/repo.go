package subject

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"classtrack/internal/apperr"
)

// Repository persists subjects in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const subjectColumns = `s.id, s.name, s.code, s.teacher_id, u.name, s.department, s.semester`

// Insert writes a new subject.
func (r *Repository) Insert(ctx context.Context, sub Subject) (Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, name, code, teacher_id, department, semester)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sub.ID, sub.Name, sub.Code, sub.TeacherID, sub.Department, sub.Semester)
	if err != nil {
		return Subject{}, apperr.Internal("insert subject", err)
	}
	return sub, nil
}

// List returns all subjects joined with their teacher's name.
func (r *Repository) List(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subjectColumns+`
		FROM subjects s JOIN users u ON u.id = s.teacher_id
		ORDER BY s.code
	`)
	if err != nil {
		return nil, apperr.Internal("list subjects", err)
	}
	return scanAll(rows)
}

// ByCohort returns the subjects for one department+semester.
func (r *Repository) ByCohort(ctx context.Context, department, semester string) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subjectColumns+`
		FROM subjects s JOIN users u ON u.id = s.teacher_id
		WHERE s.department = $1 AND s.semester = $2
		ORDER BY s.code
	`, department, semester)
	if err != nil {
		return nil, apperr.Internal("list cohort subjects", err)
	}
	return scanAll(rows)
}

// ByID returns a single subject.
func (r *Repository) ByID(ctx context.Context, id string) (Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subjectColumns+`
		FROM subjects s JOIN users u ON u.id = s.teacher_id
		WHERE s.id = $1
	`, id)
	var sub Subject
	err := row.Scan(&sub.ID, &sub.Name, &sub.Code, &sub.TeacherID, &sub.TeacherName, &sub.Department, &sub.Semester)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, apperr.NotFound("subject not found")
	}
	if err != nil {
		return Subject{}, apperr.Internal("get subject", err)
	}
	return sub, nil
}

func scanAll(rows *sql.Rows) ([]Subject, error) {
	defer rows.Close()
	var res []Subject
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Code, &sub.TeacherID, &sub.TeacherName, &sub.Department, &sub.Semester); err != nil {
			return nil, apperr.Internal("scan subject", err)
		}
		res = append(res, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate subjects", err)
	}
	return res, nil
}
