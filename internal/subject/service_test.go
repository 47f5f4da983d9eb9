package subject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"classtrack/internal/apperr"
)

func TestValidDepartment(t *testing.T) {
	for _, d := range []string{"CST", "CFS", "EE", "ID", "MTR"} {
		assert.True(t, ValidDepartment(d), d)
	}
	for _, d := range []string{"", "cst", "CS", "MECH"} {
		assert.False(t, ValidDepartment(d), d)
	}
}

func TestValidSemester(t *testing.T) {
	for _, s := range []string{"1st", "2nd", "3rd", "4th", "5th", "6th"} {
		assert.True(t, ValidSemester(s), s)
	}
	for _, s := range []string{"", "7th", "1", "first"} {
		assert.False(t, ValidSemester(s), s)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil)

	tests := []struct {
		name       string
		subName    string
		code       string
		teacherID  string
		department string
		semester   string
	}{
		{name: "missing name", code: "EE-301", teacherID: "t-1", department: "EE", semester: "3rd"},
		{name: "missing code", subName: "Circuits", teacherID: "t-1", department: "EE", semester: "3rd"},
		{name: "missing teacher", subName: "Circuits", code: "EE-301", department: "EE", semester: "3rd"},
		{name: "bad department", subName: "Circuits", code: "EE-301", teacherID: "t-1", department: "XX", semester: "3rd"},
		{name: "bad semester", subName: "Circuits", code: "EE-301", teacherID: "t-1", department: "EE", semester: "9th"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.subName, tt.code, tt.teacherID, tt.department, tt.semester)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}
