package subject

import (
	"context"

	"classtrack/internal/apperr"
)

// Subject is a course taught by one teacher to one department+semester
// cohort. TeacherName is joined from users, never stored.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Department  string `json:"department"`
	Semester    string `json:"semester"`
}

// ValidDepartment reports whether d is one of the five department codes.
func ValidDepartment(d string) bool {
	switch d {
	case "CST", "CFS", "EE", "ID", "MTR":
		return true
	}
	return false
}

// ValidSemester reports whether s is one of the six ordinal labels.
func ValidSemester(s string) bool {
	switch s {
	case "1st", "2nd", "3rd", "4th", "5th", "6th":
		return true
	}
	return false
}

// Service owns subject CRUD.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a subject owned by the calling teacher.
func (s *Service) Create(ctx context.Context, name, code, teacherID, department, semester string) (Subject, error) {
	if name == "" || code == "" || teacherID == "" {
		return Subject{}, apperr.Validation("name, code and teacher are required")
	}
	if !ValidDepartment(department) {
		return Subject{}, apperr.Validation("unknown department")
	}
	if !ValidSemester(semester) {
		return Subject{}, apperr.Validation("unknown semester")
	}
	return s.repo.Insert(ctx, Subject{
		Name:       name,
		Code:       code,
		TeacherID:  teacherID,
		Department: department,
		Semester:   semester,
	})
}

// List returns all subjects with teacher names attached.
func (s *Service) List(ctx context.Context) ([]Subject, error) {
	return s.repo.List(ctx)
}

// ForCohort returns the subjects of one department+semester cohort.
func (s *Service) ForCohort(ctx context.Context, department, semester string) ([]Subject, error) {
	if department == "" || semester == "" {
		return nil, apperr.Validation("department and semester are required")
	}
	return s.repo.ByCohort(ctx, department, semester)
}
