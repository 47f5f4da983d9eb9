package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/daytime"
	"classtrack/internal/schedule"
	"classtrack/internal/subject"
	"classtrack/internal/user"
)

// fakeStore backs a Builder with in-memory data for all four dependencies.
type fakeStore struct {
	slots         []schedule.Entry
	cancellations []attendance.Cancellation
	marks         []attendance.Mark
	users         map[string]user.User
	students      []user.User
	subjects      []subject.Subject

	failCountFor string
}

func (f *fakeStore) List(ctx context.Context) ([]schedule.Entry, error) {
	return f.slots, nil
}

func (f *fakeStore) BySubjectIDs(ctx context.Context, ids []string) ([]schedule.Entry, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var res []schedule.Entry
	for _, s := range f.slots {
		if want[s.SubjectID] {
			res = append(res, s)
		}
	}
	return res, nil
}

func (f *fakeStore) ByTeacher(ctx context.Context, teacherID string) ([]schedule.Entry, error) {
	var res []schedule.Entry
	for _, s := range f.slots {
		if s.Subject.TeacherID == teacherID {
			res = append(res, s)
		}
	}
	return res, nil
}

func (f *fakeStore) CancellationsBetween(ctx context.Context, from, to time.Time) ([]attendance.Cancellation, error) {
	var res []attendance.Cancellation
	for _, c := range f.cancellations {
		if !c.Date.Before(from) && !c.Date.After(to) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (f *fakeStore) MarksBetween(ctx context.Context, studentID string, from, to time.Time) ([]attendance.Mark, error) {
	var res []attendance.Mark
	for _, m := range f.marks {
		if m.StudentID == studentID && !m.Date.Before(from) && !m.Date.After(to) {
			res = append(res, m)
		}
	}
	return res, nil
}

func (f *fakeStore) CountMarks(ctx context.Context, studentID string) (int, error) {
	if studentID == f.failCountFor {
		return 0, errors.New("store offline")
	}
	n := 0
	for _, m := range f.marks {
		if m.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ForCohort(ctx context.Context, department, semester string) ([]subject.Subject, error) {
	var res []subject.Subject
	for _, s := range f.subjects {
		if s.Department == department && s.Semester == semester {
			res = append(res, s)
		}
	}
	return res, nil
}

func (f *fakeStore) ByID(ctx context.Context, id string) (user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return user.User{}, apperr.NotFound("user not found")
}

func (f *fakeStore) Students(ctx context.Context) ([]user.User, error) {
	return f.students, nil
}

var (
	eeSubject = subject.Subject{
		ID: "sub-ee", Name: "Circuits", Code: "EE210",
		TeacherID: "teacher-2", Department: "EE", Semester: "2nd",
	}
	student = user.User{
		ID: "student-1", Name: "Asha", Role: "student",
		Department: "CST", Semester: "3rd", RegNo: "CST-042",
	}
	teacher = user.User{ID: "teacher-1", Name: "Dr. Rao", Role: "teacher"}
)

func newFixture() (*fakeStore, *Builder) {
	store := &fakeStore{
		slots: []schedule.Entry{
			slotOn("slot-mon", "Monday", 540, 600, osSubject), // 09:00-10:00
			slotOn("slot-ee", "Monday", 660, 720, eeSubject),  // other cohort
		},
		users:    map[string]user.User{student.ID: student, teacher.ID: teacher},
		students: []user.User{student},
		subjects: []subject.Subject{osSubject, eeSubject},
	}
	b := NewBuilder(store, store, store, store, Config{
		TermStart:    time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		HistoryDays:  30,
		UpcomingDays: 30,
	})
	return store, b
}

// Tuesday 2025-06-10 10:00; the previous Monday 2025-06-09 is in range.
var tuesdayNow = time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

func TestHistoryEndToEnd(t *testing.T) {
	store, b := newFixture()
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	// Bare catalog: one past occurrence, neither cancelled nor attended.
	past, err := b.History(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "slot-mon", past[0].SlotID)
	assert.Equal(t, "2025-06-09", past[0].Date)
	assert.False(t, past[0].IsCancelled)
	assert.False(t, past[0].IsPresent)

	// Marking attendance flips isPresent on the same occurrence.
	store.marks = append(store.marks, attendance.Mark{
		StudentID: student.ID, SlotID: "slot-mon", SubjectID: osSubject.ID,
		Date: monday, Status: "present",
	})
	past, err = b.History(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.True(t, past[0].IsPresent)
	assert.False(t, past[0].IsCancelled)

	// Cancelling the occurrence sets isCancelled without clearing isPresent.
	store.cancellations = append(store.cancellations, attendance.Cancellation{
		SlotID: "slot-mon", Date: monday, Reason: "holiday",
		CancelledByID: teacher.ID, CancelledByName: teacher.Name,
	})
	past, err = b.History(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.True(t, past[0].IsCancelled)
	assert.Equal(t, "holiday", past[0].Reason)
	assert.Equal(t, "Dr. Rao", past[0].CancelledBy)
	assert.True(t, past[0].IsPresent)
}

func TestHistoryRoleFilter(t *testing.T) {
	_, b := newFixture()

	// The student's cohort is CST/3rd; the EE slot never appears.
	past, err := b.History(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	for _, occ := range past {
		assert.Equal(t, "CST", occ.Subject.Department)
		assert.Equal(t, "3rd", occ.Subject.Semester)
	}

	// Teachers see every subject.
	past, err = b.History(context.Background(), tuesdayNow, teacher.ID)
	require.NoError(t, err)
	depts := map[string]bool{}
	for _, occ := range past {
		depts[occ.Subject.Department] = true
	}
	assert.True(t, depts["CST"])
	assert.True(t, depts["EE"])
}

func TestHistorySortOrder(t *testing.T) {
	store, b := newFixture()
	store.slots = []schedule.Entry{
		slotOn("late", "Monday", 660, 720, osSubject),
		slotOn("early", "Monday", 540, 600, osSubject),
	}

	// Two Mondays in range; extend the window so both qualify.
	now := time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC)
	past, err := b.History(context.Background(), now, student.ID)
	require.NoError(t, err)
	require.Len(t, past, 4)

	// Newest day first; within a day, earliest class first.
	assert.Equal(t, "2025-06-16", past[0].Date)
	assert.Equal(t, "early", past[0].SlotID)
	assert.Equal(t, "2025-06-16", past[1].Date)
	assert.Equal(t, "late", past[1].SlotID)
	assert.Equal(t, "2025-06-09", past[2].Date)
	assert.Equal(t, "early", past[2].SlotID)
}

func TestHistoryEffectiveStartRespectsTermStart(t *testing.T) {
	store, b := newFixture()
	store.slots = []schedule.Entry{slotOn("slot-mon", "Monday", 540, 600, osSubject)}

	// Monday 2025-06-02 is inside the 30-day window but before the term
	// start (2025-06-05), so it never appears.
	past, err := b.History(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	for _, occ := range past {
		assert.NotEqual(t, "2025-06-02", occ.Date)
	}
}

func TestUpcoming(t *testing.T) {
	store, b := newFixture()
	nextMonday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	store.cancellations = []attendance.Cancellation{{
		SlotID: "slot-mon", Date: nextMonday, Reason: "maintenance",
		CancelledByName: teacher.Name,
	}}

	upcoming, err := b.Upcoming(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	require.NotEmpty(t, upcoming)

	// Ascending by date, and attendance is never attached.
	for i := 1; i < len(upcoming); i++ {
		assert.LessOrEqual(t, upcoming[i-1].Date, upcoming[i].Date)
	}
	for _, occ := range upcoming {
		assert.Empty(t, occ.AttendanceStatus)
		assert.False(t, occ.IsPresent)
		if occ.Date == daytime.DateKey(nextMonday) {
			assert.True(t, occ.IsCancelled)
			assert.Equal(t, "maintenance", occ.Reason)
		}
	}
}

func TestTotalsIdentity(t *testing.T) {
	store, b := newFixture()
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	store.cancellations = []attendance.Cancellation{
		{SlotID: "slot-mon", Date: monday},
		// Orphan: no slot with this id exists anymore.
		{SlotID: "slot-gone", Date: monday},
	}

	for _, id := range []string{student.ID, teacher.ID} {
		totals, err := b.TotalsFor(context.Background(), tuesdayNow, id)
		require.NoError(t, err)
		assert.Equal(t, totals.TotalScheduled, totals.TotalCancelled+totals.TotalTaken,
			"identity for %s", id)
	}

	// Student: one Monday in range for the CST cohort slot, cancelled.
	totals, err := b.TotalsFor(context.Background(), tuesdayNow, student.ID)
	require.NoError(t, err)
	assert.Equal(t, Totals{TotalScheduled: 1, TotalCancelled: 1, TotalTaken: 0}, totals)
}

func TestTotalsTeacherScope(t *testing.T) {
	_, b := newFixture()

	// teacher-1 owns only the OS subject; the EE slot belongs to teacher-2.
	totals, err := b.TotalsFor(context.Background(), tuesdayNow, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, Totals{TotalScheduled: 1, TotalCancelled: 0, TotalTaken: 1}, totals)
}

func TestRosterPartialFailureIsolation(t *testing.T) {
	store, b := newFixture()
	broken := user.User{
		ID: "student-2", Name: "Vik", Role: "student",
		Department: "CST", Semester: "3rd", RegNo: "CST-043",
	}
	store.users[broken.ID] = broken
	store.students = append(store.students, broken)
	store.failCountFor = broken.ID

	rows, err := b.Roster(context.Background(), tuesdayNow)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]RosterRow{}
	for _, row := range rows {
		byID[row.StudentID] = row
	}
	assert.Empty(t, byID[student.ID].Error)
	assert.NotEmpty(t, byID[broken.ID].Error)
	assert.Equal(t, Totals{}, byID[broken.ID].Totals)
	assert.Zero(t, byID[broken.ID].MarksRecorded)
}
