package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"classtrack/internal/apperr"
	"classtrack/internal/daytime"
)

// Repository persists cancellations and marks in Postgres. Both inserts rely
// on ON CONFLICT DO NOTHING over the composite unique indexes, so concurrent
// duplicate writers lose atomically instead of racing a pre-check.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertCancellation writes a cancellation, failing on a duplicate
// (slot, date).
func (r *Repository) InsertCancellation(ctx context.Context, c Cancellation) (Cancellation, error) {
	c.Date = daytime.DayUTC(c.Date)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cancellations (slot_id, date, reason, cancelled_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slot_id, date) DO NOTHING
	`, c.SlotID, c.Date, c.Reason, c.CancelledByID)
	if err != nil {
		return Cancellation{}, apperr.Internal("insert cancellation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Cancellation{}, apperr.Conflict("class already cancelled for this date")
	}
	return c, nil
}

// InsertMark writes an attendance mark, failing on a duplicate
// (student, slot, date).
func (r *Repository) InsertMark(ctx context.Context, m Mark) (Mark, error) {
	m.Date = daytime.DayUTC(m.Date)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance (student_id, slot_id, subject_id, date, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, slot_id, date) DO NOTHING
		RETURNING marked_at
	`, m.StudentID, m.SlotID, m.SubjectID, m.Date, m.Status)
	if err := row.Scan(&m.MarkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mark{}, apperr.Conflict("attendance already marked")
		}
		return Mark{}, apperr.Internal("insert mark", err)
	}
	return m, nil
}

// CancellationsBetween returns cancellations in the inclusive date range,
// joined with the canceller's name.
func (r *Repository) CancellationsBetween(ctx context.Context, from, to time.Time) ([]Cancellation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.slot_id, c.date, c.reason, c.cancelled_by, u.name
		FROM cancellations c
		JOIN users u ON u.id = c.cancelled_by
		WHERE c.date >= $1 AND c.date <= $2
		ORDER BY c.date
	`, daytime.DayUTC(from), daytime.DayUTC(to))
	if err != nil {
		return nil, apperr.Internal("list cancellations", err)
	}
	defer rows.Close()
	var res []Cancellation
	for rows.Next() {
		var c Cancellation
		if err := rows.Scan(&c.SlotID, &c.Date, &c.Reason, &c.CancelledByID, &c.CancelledByName); err != nil {
			return nil, apperr.Internal("scan cancellation", err)
		}
		c.Date = daytime.DayUTC(c.Date)
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate cancellations", err)
	}
	return res, nil
}

// MarksBetween returns one student's marks in the inclusive date range.
func (r *Repository) MarksBetween(ctx context.Context, studentID string, from, to time.Time) ([]Mark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_id, slot_id, subject_id, date, status, marked_at
		FROM attendance
		WHERE student_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`, studentID, daytime.DayUTC(from), daytime.DayUTC(to))
	if err != nil {
		return nil, apperr.Internal("list marks", err)
	}
	defer rows.Close()
	var res []Mark
	for rows.Next() {
		var m Mark
		if err := rows.Scan(&m.StudentID, &m.SlotID, &m.SubjectID, &m.Date, &m.Status, &m.MarkedAt); err != nil {
			return nil, apperr.Internal("scan mark", err)
		}
		m.Date = daytime.DayUTC(m.Date)
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("iterate marks", err)
	}
	return res, nil
}

// MarkFor returns the mark state for one (student, slot, date).
func (r *Repository) MarkFor(ctx context.Context, studentID, slotID string, date time.Time) (MarkState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT status FROM attendance
		WHERE student_id = $1 AND slot_id = $2 AND date = $3
	`, studentID, slotID, daytime.DayUTC(date))
	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MarkState{Marked: false}, nil
		}
		return MarkState{}, apperr.Internal("get mark", err)
	}
	return MarkState{Marked: true, Status: status}, nil
}

// CountMarks returns the raw number of marks a student has recorded.
func (r *Repository) CountMarks(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance WHERE student_id = $1
	`, studentID).Scan(&n)
	if err != nil {
		return 0, apperr.Internal("count marks", err)
	}
	return n, nil
}
