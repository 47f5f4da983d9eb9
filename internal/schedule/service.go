package schedule

import (
	"context"

	"classtrack/internal/apperr"
	"classtrack/internal/daytime"
	"classtrack/internal/subject"
)

// Slot is one weekly recurring time block. Immutable once referenced by
// cancellations or attendance; deleting a slot does not cascade to those rows.
type Slot struct {
	ID          string `json:"id"`
	Day         string `json:"day"`
	StartMinute int    `json:"startMinute"`
	EndMinute   int    `json:"endMinute"`
	SubjectID   string `json:"subjectId"`
}

// Entry is a slot joined with its subject, the shape every projection reads.
type Entry struct {
	Slot
	Subject subject.Subject `json:"subject"`
}

// FormattedEntry is the display shape of a slot: wall-clock boundaries plus a
// duration label.
type FormattedEntry struct {
	SlotID    string          `json:"slotId"`
	Day       string          `json:"day"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Duration  string          `json:"duration"`
	Subject   subject.Subject `json:"subject"`
}

// Service owns the slot catalog.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates wall-clock input and persists a slot.
func (s *Service) Create(ctx context.Context, day, startTime, endTime, subjectID string) (Slot, error) {
	if day == "" || startTime == "" || endTime == "" || subjectID == "" {
		return Slot{}, apperr.Validation("day, start time, end time and subject are required")
	}
	if !daytime.ValidDay(day) {
		return Slot{}, apperr.Validation("unknown day of week")
	}
	start, err := daytime.Encode(startTime)
	if err != nil {
		return Slot{}, err
	}
	end, err := daytime.Encode(endTime)
	if err != nil {
		return Slot{}, err
	}
	if end <= start {
		return Slot{}, apperr.Validation("end time must be after start time")
	}
	return s.repo.Insert(ctx, Slot{
		Day:         day,
		StartMinute: start,
		EndMinute:   end,
		SubjectID:   subjectID,
	})
}

// Delete removes a slot and returns the updated catalog. Cancellation and
// attendance rows referencing the slot stay behind as orphans.
func (s *Service) Delete(ctx context.Context, id string) ([]Entry, error) {
	if id == "" {
		return nil, apperr.Validation("slot id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// ByID returns a single slot with its subject.
func (s *Service) ByID(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, apperr.Validation("slot id is required")
	}
	return s.repo.ByID(ctx, id)
}

// List returns the whole catalog joined with subjects.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// ForCohort returns the catalog filtered to one department+semester, the
// student schedule view.
func (s *Service) ForCohort(ctx context.Context, department, semester string) ([]Entry, error) {
	if department == "" || semester == "" {
		return nil, apperr.Validation("department and semester are required")
	}
	return s.repo.ByCohort(ctx, department, semester)
}

// BySubjectIDs returns the slots of the given subjects.
func (s *Service) BySubjectIDs(ctx context.Context, ids []string) ([]Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.BySubjectIDs(ctx, ids)
}

// ByTeacher returns the slots whose subject is owned by the teacher.
func (s *Service) ByTeacher(ctx context.Context, teacherID string) ([]Entry, error) {
	return s.repo.ByTeacher(ctx, teacherID)
}

// ActiveAt returns slots strictly in session at the given minute: a slot is
// active only strictly between its boundaries, not at them.
func (s *Service) ActiveAt(ctx context.Context, day string, minuteOfDay int) ([]Entry, error) {
	if !daytime.ValidDay(day) {
		return nil, apperr.Validation("unknown day of week")
	}
	return s.repo.ActiveAt(ctx, day, minuteOfDay)
}

// FormattedForSubject returns a subject's slots as display rows, sorted by
// day then start time.
func (s *Service) FormattedForSubject(ctx context.Context, subjectID string) ([]FormattedEntry, error) {
	if subjectID == "" {
		return nil, apperr.Validation("subject id is required")
	}
	entries, err := s.repo.BySubjectIDs(ctx, []string{subjectID})
	if err != nil {
		return nil, err
	}
	res := make([]FormattedEntry, 0, len(entries))
	for _, e := range entries {
		res = append(res, FormattedEntry{
			SlotID:    e.ID,
			Day:       e.Day,
			StartTime: daytime.Decode(e.StartMinute),
			EndTime:   daytime.Decode(e.EndMinute),
			Duration:  daytime.FormatDuration(e.StartMinute, e.EndMinute),
			Subject:   e.Subject,
		})
	}
	return res, nil
}
