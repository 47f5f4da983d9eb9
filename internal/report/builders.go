package report

import (
	"context"
	"sort"
	"time"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/daytime"
	"classtrack/internal/schedule"
	"classtrack/internal/subject"
	"classtrack/internal/user"
)

// Catalog supplies slot definitions joined with their subjects.
type Catalog interface {
	List(ctx context.Context) ([]schedule.Entry, error)
	BySubjectIDs(ctx context.Context, ids []string) ([]schedule.Entry, error)
	ByTeacher(ctx context.Context, teacherID string) ([]schedule.Entry, error)
}

// Exceptions supplies cancellations and attendance marks.
type Exceptions interface {
	CancellationsBetween(ctx context.Context, from, to time.Time) ([]attendance.Cancellation, error)
	MarksBetween(ctx context.Context, studentID string, from, to time.Time) ([]attendance.Mark, error)
	CountMarks(ctx context.Context, studentID string) (int, error)
}

// Subjects supplies cohort subject lookups.
type Subjects interface {
	ForCohort(ctx context.Context, department, semester string) ([]subject.Subject, error)
}

// Directory supplies account lookups.
type Directory interface {
	ByID(ctx context.Context, id string) (user.User, error)
	Students(ctx context.Context) ([]user.User, error)
}

// Config bounds the report ranges.
type Config struct {
	// TermStart caps how far back history reaches.
	TermStart time.Time
	// HistoryDays is the rolling history window.
	HistoryDays int
	// UpcomingDays is the forward window of the upcoming report.
	UpcomingDays int
	// RosterConcurrency bounds the roster fan-out.
	RosterConcurrency int
}

// Builder computes the three reports. It holds no state across requests;
// every report is a pure function of (now, catalog snapshot, exception query
// results), with now always injected by the caller.
type Builder struct {
	catalog    Catalog
	exceptions Exceptions
	subjects   Subjects
	users      Directory
	cfg        Config
}

// NewBuilder wires a builder.
func NewBuilder(catalog Catalog, exceptions Exceptions, subjects Subjects, users Directory, cfg Config) *Builder {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 30
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = 30
	}
	if cfg.RosterConcurrency <= 0 {
		cfg.RosterConcurrency = 8
	}
	return &Builder{catalog: catalog, exceptions: exceptions, subjects: subjects, users: users, cfg: cfg}
}

// effectiveStart is the later of the term start and the rolling window start.
func (b *Builder) effectiveStart(now time.Time) time.Time {
	windowStart := daytime.DayUTC(now.Add(-time.Duration(b.cfg.HistoryDays) * 24 * time.Hour))
	termStart := daytime.DayUTC(b.cfg.TermStart)
	if termStart.After(windowStart) {
		return termStart
	}
	return windowStart
}

// History returns the caller's past occurrences, newest day first and within
// a day earliest class first. Students only see their cohort's subjects.
func (b *Builder) History(ctx context.Context, now time.Time, userID string) ([]Occurrence, error) {
	reportsBuilt.WithLabelValues("history").Inc()

	usr, err := b.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	slots, err := b.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	slots = filterForRole(slots, usr)

	from := b.effectiveStart(now)
	to := daytime.DayUTC(now)

	cancellations, err := b.exceptions.CancellationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	marks, err := b.exceptions.MarksBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	past := Project(Params{
		From:      from,
		To:        to,
		Direction: Backward,
		Slots:     slots,
		Cancelled: cancelledMap(cancellations),
		Marks:     markMap(marks),
		Include:   IncludePast(now),
	})

	sort.SliceStable(past, func(i, j int) bool {
		if !past[i].day.Equal(past[j].day) {
			return past[i].day.After(past[j].day)
		}
		return past[i].StartMinute < past[j].StartMinute
	})
	return past, nil
}

// Upcoming returns the caller's future occurrences in the forward window,
// soonest first. Attendance is never attached to upcoming occurrences.
func (b *Builder) Upcoming(ctx context.Context, now time.Time, userID string) ([]Occurrence, error) {
	reportsBuilt.WithLabelValues("upcoming").Inc()

	usr, err := b.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	slots, err := b.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	slots = filterForRole(slots, usr)

	from := daytime.DayUTC(now)
	to := from.Add(time.Duration(b.cfg.UpcomingDays) * 24 * time.Hour)

	cancellations, err := b.exceptions.CancellationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	upcoming := Project(Params{
		From:      from,
		To:        to,
		Direction: Forward,
		Slots:     slots,
		Cancelled: cancelledMap(cancellations),
		Include:   IncludeUpcoming(now),
	})

	sort.SliceStable(upcoming, func(i, j int) bool {
		if !upcoming[i].day.Equal(upcoming[j].day) {
			return upcoming[i].day.Before(upcoming[j].day)
		}
		return upcoming[i].StartMinute < upcoming[j].StartMinute
	})
	return upcoming, nil
}

// Totals aggregates scheduled, cancelled and taken occurrence counts over the
// history range. Cancelled is always derived as scheduled minus taken.
type Totals struct {
	TotalScheduled int `json:"totalScheduled"`
	TotalCancelled int `json:"totalCancelled"`
	TotalTaken     int `json:"totalTaken"`
}

// TotalsFor computes the caller's totals.
func (b *Builder) TotalsFor(ctx context.Context, now time.Time, userID string) (Totals, error) {
	usr, err := b.users.ByID(ctx, userID)
	if err != nil {
		return Totals{}, err
	}
	return b.totals(ctx, now, usr)
}

func (b *Builder) totals(ctx context.Context, now time.Time, usr user.User) (Totals, error) {
	reportsBuilt.WithLabelValues("totals").Inc()

	var slots []schedule.Entry
	var err error
	switch usr.Role {
	case auth.RoleStudent:
		subjects, serr := b.subjects.ForCohort(ctx, usr.Department, usr.Semester)
		if serr != nil {
			return Totals{}, serr
		}
		ids := make([]string, 0, len(subjects))
		for _, sub := range subjects {
			ids = append(ids, sub.ID)
		}
		slots, err = b.catalog.BySubjectIDs(ctx, ids)
	case auth.RoleTeacher:
		slots, err = b.catalog.ByTeacher(ctx, usr.ID)
	default:
		return Totals{}, apperr.Forbidden("role not authorized for this report")
	}
	if err != nil {
		return Totals{}, err
	}

	from := b.effectiveStart(now)
	to := daytime.DayUTC(now)
	cancellations, err := b.exceptions.CancellationsBetween(ctx, from, to)
	if err != nil {
		return Totals{}, err
	}
	cancelled := cancelledMap(cancellations)

	var t Totals
	for day := from; !day.After(to); day = day.Add(24 * time.Hour) {
		name := daytime.DayName(day)
		for _, slot := range slots {
			if slot.Day != name {
				continue
			}
			t.TotalScheduled++
			if _, ok := cancelled[daytime.OccurrenceKey(slot.ID, day)]; !ok {
				t.TotalTaken++
			}
		}
	}
	t.TotalCancelled = t.TotalScheduled - t.TotalTaken
	return t, nil
}

func filterForRole(slots []schedule.Entry, usr user.User) []schedule.Entry {
	if usr.Role != auth.RoleStudent {
		return slots
	}
	filtered := slots[:0:0]
	for _, slot := range slots {
		if slot.Subject.Department == usr.Department && slot.Subject.Semester == usr.Semester {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}
