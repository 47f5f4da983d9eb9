package attendance

import (
	"context"
	"time"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
)

// Cancellation marks one slot occurrence as not held. At most one exists per
// (slot, date).
type Cancellation struct {
	SlotID          string    `json:"slotId"`
	Date            time.Time `json:"date"`
	Reason          string    `json:"reason"`
	CancelledByID   string    `json:"cancelledById"`
	CancelledByName string    `json:"cancelledByName"`
}

// Mark is a student's presence record for one slot occurrence. A student
// marks at most once per occurrence; status defaults to "present" and there
// is no write path for "absent". Absence is the lack of a record.
type Mark struct {
	StudentID string    `json:"studentId"`
	SlotID    string    `json:"slotId"`
	SubjectID string    `json:"subjectId"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	MarkedAt  time.Time `json:"markedAt"`
}

// CancellationEvent is the queue payload emitted after a cancellation write,
// consumed by the notification worker.
type CancellationEvent struct {
	SlotID      string `json:"slotId"`
	Date        string `json:"date"`
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelledBy"`
}

// MarkState answers "has this student marked this occurrence".
type MarkState struct {
	Marked bool   `json:"marked"`
	Status string `json:"status,omitempty"`
}

// Service owns cancellations and attendance marks. Uniqueness is enforced by
// the store's composite indexes, never by check-then-insert.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// RecordCancellation cancels one occurrence. A second cancellation of the
// same (slot, date) fails with a conflict.
func (s *Service) RecordCancellation(ctx context.Context, slotID string, date time.Time, reason, byUserID string) (Cancellation, error) {
	if slotID == "" || date.IsZero() {
		return Cancellation{}, apperr.Validation("slot id and date are required")
	}
	return s.repo.InsertCancellation(ctx, Cancellation{
		SlotID:        slotID,
		Date:          date,
		Reason:        reason,
		CancelledByID: byUserID,
	})
}

// RecordAttendance marks the caller present for one occurrence. Teachers are
// rejected; a duplicate mark fails with a conflict.
func (s *Service) RecordAttendance(ctx context.Context, p auth.Principal, slotID, subjectID string, date time.Time) (Mark, error) {
	if p.Role == auth.RoleTeacher {
		return Mark{}, apperr.Forbidden("teachers cannot mark attendance")
	}
	if slotID == "" || subjectID == "" {
		return Mark{}, apperr.Validation("slot id and subject id are required")
	}
	if date.IsZero() {
		return Mark{}, apperr.Validation("date is required")
	}
	return s.repo.InsertMark(ctx, Mark{
		StudentID: p.UserID,
		SlotID:    slotID,
		SubjectID: subjectID,
		Date:      date,
		Status:    "present",
	})
}

// CancellationsBetween returns cancellations in the inclusive range, with
// canceller names attached.
func (s *Service) CancellationsBetween(ctx context.Context, from, to time.Time) ([]Cancellation, error) {
	return s.repo.CancellationsBetween(ctx, from, to)
}

// MarksBetween returns one student's marks in the inclusive range.
func (s *Service) MarksBetween(ctx context.Context, studentID string, from, to time.Time) ([]Mark, error) {
	return s.repo.MarksBetween(ctx, studentID, from, to)
}

// IsMarked reports whether the student has marked the occurrence.
func (s *Service) IsMarked(ctx context.Context, studentID, slotID string, date time.Time) (MarkState, error) {
	if slotID == "" || date.IsZero() {
		return MarkState{}, apperr.Validation("slot id and date are required")
	}
	return s.repo.MarkFor(ctx, studentID, slotID, date)
}

// CancelledOn returns the cancellations for one calendar day.
func (s *Service) CancelledOn(ctx context.Context, day time.Time) ([]Cancellation, error) {
	return s.repo.CancellationsBetween(ctx, day, day)
}

// CountMarks returns the raw number of marks a student has recorded.
func (s *Service) CountMarks(ctx context.Context, studentID string) (int, error) {
	return s.repo.CountMarks(ctx, studentID)
}
