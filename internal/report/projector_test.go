package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classtrack/internal/attendance"
	"classtrack/internal/daytime"
	"classtrack/internal/schedule"
	"classtrack/internal/subject"
)

func slotOn(id, day string, start, end int, sub subject.Subject) schedule.Entry {
	return schedule.Entry{
		Slot: schedule.Slot{
			ID:          id,
			Day:         day,
			StartMinute: start,
			EndMinute:   end,
			SubjectID:   sub.ID,
		},
		Subject: sub,
	}
}

var osSubject = subject.Subject{
	ID:         "sub-os",
	Name:       "Operating Systems",
	Code:       "CS301",
	TeacherID:  "teacher-1",
	Department: "CST",
	Semester:   "3rd",
}

func TestProjectOneOccurrencePerMatchingDay(t *testing.T) {
	// Two weeks containing exactly two Mondays.
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday
	to := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)  // Sunday
	slots := []schedule.Entry{slotOn("slot-1", "Monday", 540, 600, osSubject)}

	occs := Project(Params{From: from, To: to, Direction: Forward, Slots: slots})
	require.Len(t, occs, 2)

	seen := map[string]int{}
	for _, o := range occs {
		seen[o.SlotID+"_"+o.Date]++
	}
	assert.Equal(t, 1, seen["slot-1_2025-06-02"])
	assert.Equal(t, 1, seen["slot-1_2025-06-09"])
}

func TestProjectDirection(t *testing.T) {
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Entry{slotOn("slot-1", "Monday", 540, 600, osSubject)}

	forward := Project(Params{From: from, To: to, Direction: Forward, Slots: slots})
	backward := Project(Params{From: from, To: to, Direction: Backward, Slots: slots})
	require.Len(t, forward, 2)
	require.Len(t, backward, 2)
	assert.Equal(t, "2025-06-02", forward[0].Date)
	assert.Equal(t, "2025-06-09", backward[0].Date)
}

func TestProjectEmptyAndInvertedRange(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Entry{slotOn("slot-1", "Monday", 540, 600, osSubject)}

	assert.Len(t, Project(Params{From: day, To: day, Slots: slots}), 1)
	assert.Empty(t, Project(Params{From: day.Add(24 * time.Hour), To: day, Slots: slots}))
}

func TestProjectAnnotations(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Entry{slotOn("slot-1", "Monday", 540, 600, osSubject)}
	cancelled := map[string]attendance.Cancellation{
		daytime.OccurrenceKey("slot-1", day): {
			SlotID: "slot-1", Date: day, Reason: "holiday", CancelledByName: "Dr. Rao",
		},
	}
	marks := map[string]string{
		daytime.OccurrenceKey("slot-1", day): "present",
	}

	occs := Project(Params{From: day, To: day, Slots: slots, Cancelled: cancelled, Marks: marks})
	require.Len(t, occs, 1)

	// Cancellation and attendance are independent flags; both can be set.
	occ := occs[0]
	assert.True(t, occ.IsCancelled)
	assert.Equal(t, "holiday", occ.Reason)
	assert.Equal(t, "Dr. Rao", occ.CancelledBy)
	assert.True(t, occ.IsPresent)
	assert.Equal(t, "present", occ.AttendanceStatus)
}

func TestProjectOrphanedExceptionsIgnored(t *testing.T) {
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	slots := []schedule.Entry{slotOn("slot-1", "Monday", 540, 600, osSubject)}
	cancelled := map[string]attendance.Cancellation{
		daytime.OccurrenceKey("slot-deleted", day): {SlotID: "slot-deleted", Date: day},
	}

	occs := Project(Params{From: day, To: day, Slots: slots, Cancelled: cancelled})
	require.Len(t, occs, 1)
	assert.False(t, occs[0].IsCancelled)
}

func TestInclusionBoundaries(t *testing.T) {
	// Tuesday 2025-06-10, 10:00 UTC.
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	today := daytime.DayUTC(now)

	ended := slotOn("ended", "Tuesday", 540, 600, osSubject)       // 09:00-10:00
	inProgress := slotOn("running", "Tuesday", 540, 630, osSubject) // 09:00-10:30
	future := slotOn("future", "Tuesday", 630, 690, osSubject)      // 10:30-11:30

	past := IncludePast(now)
	upcoming := IncludeUpcoming(now)

	// A class whose end has passed belongs to history only.
	assert.True(t, past(today, ended))
	assert.False(t, upcoming(today, ended))

	// A class that has not started belongs to upcoming only.
	assert.False(t, past(today, future))
	assert.True(t, upcoming(today, future))

	// An in-progress class is shown in neither report.
	assert.False(t, past(today, inProgress))
	assert.False(t, upcoming(today, inProgress))

	// Any earlier day is history regardless of time-of-day.
	yesterday := today.Add(-24 * time.Hour)
	assert.True(t, past(yesterday, future))
	assert.False(t, upcoming(yesterday, future))

	// Any later day is upcoming.
	tomorrow := today.Add(24 * time.Hour)
	assert.False(t, past(tomorrow, ended))
	assert.True(t, upcoming(tomorrow, ended))
}

func TestNoDoubleCountingAtBoundary(t *testing.T) {
	// Every slot of the day lands in at most one of the two reports.
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	today := daytime.DayUTC(now)
	past := IncludePast(now)
	upcoming := IncludeUpcoming(now)

	for start := 0; start < 1380; start += 30 {
		slot := slotOn("s", "Tuesday", start, start+60, osSubject)
		inPast := past(today, slot)
		inUpcoming := upcoming(today, slot)
		assert.False(t, inPast && inUpcoming, "slot %d-%d in both reports", start, start+60)
	}
}
