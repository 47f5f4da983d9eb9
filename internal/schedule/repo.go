package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classtrack/internal/apperr"
)

// Repository persists the slot catalog in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const entryQuery = `
	SELECT sl.id, sl.day, sl.start_minute, sl.end_minute, sl.subject_id,
	       s.id, s.name, s.code, s.teacher_id, u.name, s.department, s.semester
	FROM slots sl
	JOIN subjects s ON s.id = sl.subject_id
	JOIN users u ON u.id = s.teacher_id
`

// Insert writes a new slot.
func (r *Repository) Insert(ctx context.Context, slot Slot) (Slot, error) {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO slots (id, day, start_minute, end_minute, subject_id)
		VALUES ($1, $2, $3, $4, $5)
	`, slot.ID, slot.Day, slot.StartMinute, slot.EndMinute, slot.SubjectID)
	if err != nil {
		return Slot{}, apperr.Internal("insert slot", err)
	}
	return slot, nil
}

// Delete removes a slot by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal("delete slot", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("slot not found")
	}
	return nil
}

// ByID returns a single slot with its subject.
func (r *Repository) ByID(ctx context.Context, id string) (Entry, error) {
	entries, err := r.query(ctx, entryQuery+` WHERE sl.id = $1`, id)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, apperr.NotFound("slot not found")
	}
	return entries[0], nil
}

// List returns the whole catalog.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	return r.query(ctx, entryQuery+` ORDER BY sl.day, sl.start_minute`)
}

// ByCohort filters the catalog to one department+semester.
func (r *Repository) ByCohort(ctx context.Context, department, semester string) ([]Entry, error) {
	return r.query(ctx, entryQuery+`
		WHERE s.department = $1 AND s.semester = $2
		ORDER BY sl.day, sl.start_minute
	`, department, semester)
}

// BySubjectIDs returns the slots of the given subjects.
func (r *Repository) BySubjectIDs(ctx context.Context, ids []string) ([]Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return r.query(ctx, entryQuery+`
		WHERE sl.subject_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY sl.day, sl.start_minute
	`, args...)
}

// ByTeacher returns slots whose subject belongs to the teacher.
func (r *Repository) ByTeacher(ctx context.Context, teacherID string) ([]Entry, error) {
	return r.query(ctx, entryQuery+`
		WHERE s.teacher_id = $1
		ORDER BY sl.day, sl.start_minute
	`, teacherID)
}

// ActiveAt returns slots strictly in session at the given minute.
func (r *Repository) ActiveAt(ctx context.Context, day string, minuteOfDay int) ([]Entry, error) {
	return r.query(ctx, entryQuery+`
		WHERE sl.day = $1 AND sl.start_minute < $2 AND sl.end_minute > $2
		ORDER BY sl.start_minute
	`, day, minuteOfDay)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("query slots", err)
	}
	defer rows.Close()
	var res []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.Slot.ID, &e.Day, &e.StartMinute, &e.EndMinute, &e.SubjectID,
			&e.Subject.ID, &e.Subject.Name, &e.Subject.Code, &e.Subject.TeacherID,
			&e.Subject.TeacherName, &e.Subject.Department, &e.Subject.Semester)
		if err != nil {
			return nil, apperr.Internal("scan slot", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate slots", err)
	}
	return res, nil
}
