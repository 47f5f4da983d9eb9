package report

import (
	"time"

	"classtrack/internal/attendance"
	"classtrack/internal/daytime"
	"classtrack/internal/schedule"
	"classtrack/internal/subject"
)

// Occurrence is one concrete calendar-dated instance of a slot, synthesized
// fresh on every report request and never persisted. Its identity key is
// (SlotID, Date); cancellation and attendance are independent annotations,
// so both flags can be true for the same occurrence.
type Occurrence struct {
	SlotID           string          `json:"slotId"`
	Date             string          `json:"date"`
	Day              string          `json:"day"`
	StartMinute      int             `json:"startTime"`
	EndMinute        int             `json:"endTime"`
	Subject          subject.Subject `json:"subject"`
	IsCancelled      bool            `json:"isCancelled"`
	Reason           string          `json:"reason,omitempty"`
	CancelledBy      string          `json:"cancelledBy,omitempty"`
	AttendanceStatus string          `json:"attendanceStatus,omitempty"`
	IsPresent        bool            `json:"isPresent"`

	day time.Time
}

// Direction controls the calendar walk order.
type Direction int

const (
	// Forward walks from the range start to its end.
	Forward Direction = iota
	// Backward walks from the range end to its start.
	Backward
)

// Params feeds one projection run. From and To are inclusive UTC calendar
// days; Cancelled and Marks are keyed with daytime.OccurrenceKey. Include
// decides temporal inclusion for a synthesized occurrence date and its slot.
type Params struct {
	From      time.Time
	To        time.Time
	Direction Direction
	Slots     []schedule.Entry
	Cancelled map[string]attendance.Cancellation
	Marks     map[string]string
	Include   func(day time.Time, slot schedule.Entry) bool
}

// Project expands the slot catalog over the calendar range, annotating each
// occurrence with its cancellation and attendance state. Exception rows whose
// slot no longer exists simply never match a key. Output is ordered by
// construction (day, then slot iteration order); callers re-sort.
func Project(p Params) []Occurrence {
	from := daytime.DayUTC(p.From)
	to := daytime.DayUTC(p.To)
	if to.Before(from) {
		return nil
	}

	day := from
	step := 24 * time.Hour
	if p.Direction == Backward {
		day = to
		step = -24 * time.Hour
	}

	var out []Occurrence
	for !day.Before(from) && !day.After(to) {
		name := daytime.DayName(day)
		for _, slot := range p.Slots {
			if slot.Day != name {
				continue
			}
			if p.Include != nil && !p.Include(day, slot) {
				continue
			}
			key := daytime.OccurrenceKey(slot.ID, day)
			occ := Occurrence{
				SlotID:      slot.ID,
				Date:        daytime.DateKey(day),
				Day:         name,
				StartMinute: slot.StartMinute,
				EndMinute:   slot.EndMinute,
				Subject:     slot.Subject,
				day:         day,
			}
			if c, ok := p.Cancelled[key]; ok {
				occ.IsCancelled = true
				occ.Reason = c.Reason
				occ.CancelledBy = c.CancelledByName
			}
			if status, ok := p.Marks[key]; ok {
				occ.AttendanceStatus = status
				occ.IsPresent = status == "present"
			}
			out = append(out, occ)
		}
		day = day.Add(step)
	}
	return out
}

// IncludePast admits occurrences strictly before now's UTC day, plus today's
// occurrences whose end has already passed. Paired with IncludeUpcoming this
// never double-counts the boundary occurrence.
func IncludePast(now time.Time) func(day time.Time, slot schedule.Entry) bool {
	today := daytime.DayUTC(now)
	return func(day time.Time, slot schedule.Entry) bool {
		if day.Before(today) {
			return true
		}
		return day.Equal(today) && !daytime.AtMinute(day, slot.EndMinute).After(now)
	}
}

// IncludeUpcoming admits occurrences whose start is strictly after now.
func IncludeUpcoming(now time.Time) func(day time.Time, slot schedule.Entry) bool {
	return func(day time.Time, slot schedule.Entry) bool {
		return daytime.AtMinute(day, slot.StartMinute).After(now)
	}
}

func cancelledMap(cancellations []attendance.Cancellation) map[string]attendance.Cancellation {
	m := make(map[string]attendance.Cancellation, len(cancellations))
	for _, c := range cancellations {
		m[daytime.OccurrenceKey(c.SlotID, c.Date)] = c
	}
	return m
}

func markMap(marks []attendance.Mark) map[string]string {
	m := make(map[string]string, len(marks))
	for _, mk := range marks {
		m[daytime.OccurrenceKey(mk.SlotID, mk.Date)] = mk.Status
	}
	return m
}
