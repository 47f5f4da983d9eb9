package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"classtrack/internal/apperr"
)

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)

	tests := []struct {
		name      string
		day       string
		start     string
		end       string
		subjectID string
	}{
		{name: "missing day", day: "", start: "09:00", end: "10:00", subjectID: "sub-1"},
		{name: "missing subject", day: "Monday", start: "09:00", end: "10:00", subjectID: ""},
		{name: "unknown day", day: "Funday", start: "09:00", end: "10:00", subjectID: "sub-1"},
		{name: "bad start time", day: "Monday", start: "9am", end: "10:00", subjectID: "sub-1"},
		{name: "hour out of range", day: "Monday", start: "25:00", end: "26:00", subjectID: "sub-1"},
		{name: "end before start", day: "Monday", start: "10:00", end: "09:00", subjectID: "sub-1"},
		{name: "zero length", day: "Monday", start: "10:00", end: "10:00", subjectID: "sub-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.day, tt.start, tt.end, tt.subjectID)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestForCohortRequiresBothFields(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ForCohort(context.Background(), "CST", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.ForCohort(context.Background(), "", "3rd")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBySubjectIDsEmptyIsNoop(t *testing.T) {
	svc := NewService(nil)
	entries, err := svc.BySubjectIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActiveAtRejectsUnknownDay(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.ActiveAt(context.Background(), "Blursday", 600)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
