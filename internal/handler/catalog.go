package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/auth"
	"classtrack/internal/daytime"
)

type createSubjectRequest struct {
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code" binding:"required"`
	Department string `json:"department" binding:"required"`
	Semester   string `json:"semester" binding:"required"`
}

// CreateSubject registers a subject owned by the calling teacher.
func (h *Handler) CreateSubject(c *gin.Context) {
	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("name, code, department and semester are required"))
		return
	}
	p, _ := auth.PrincipalFrom(c)
	sub, err := h.subjects.Create(c.Request.Context(), req.Name, req.Code, p.UserID, req.Department, req.Semester)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": "subject created successfully", "subject": sub})
}

// ListSubjects returns all subjects.
func (h *Handler) ListSubjects(c *gin.Context) {
	subs, err := h.subjects.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"subjects": emptyIfNil(subs)})
}

type createSlotRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	SubjectID string `json:"subjectId" binding:"required"`
}

// CreateSlot adds a weekly slot to the catalog.
func (h *Handler) CreateSlot(c *gin.Context) {
	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("day, start time, end time and subject are required"))
		return
	}
	slot, err := h.catalog.Create(c.Request.Context(), req.Day, req.StartTime, req.EndTime, req.SubjectID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": "weekly schedule created successfully", "slot": slot})
}

// ListSlots returns the whole catalog joined with subjects.
func (h *Handler) ListSlots(c *gin.Context) {
	entries, err := h.catalog.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"scheduleClasses": emptyIfNil(entries)})
}

// MySlots returns the catalog filtered to the calling student's cohort.
func (h *Handler) MySlots(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	usr, err := h.users.ByID(c.Request.Context(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	entries, err := h.catalog.ForCohort(c.Request.Context(), usr.Department, usr.Semester)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"scheduleClasses": emptyIfNil(entries)})
}

// SubjectSlots returns a subject's slots in display form.
func (h *Handler) SubjectSlots(c *gin.Context) {
	entries, err := h.catalog.FormattedForSubject(c.Request.Context(), c.Param("subjectId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"schedules": emptyIfNil(entries)})
}

// ActiveSlots returns the slots strictly in session at a wall-clock time.
func (h *Handler) ActiveSlots(c *gin.Context) {
	day := c.Query("day")
	at := c.Query("time")
	if day == "" || at == "" {
		fail(c, apperr.Validation("day and time are required"))
		return
	}
	minute, err := daytime.Encode(at)
	if err != nil {
		fail(c, err)
		return
	}
	entries, err := h.catalog.ActiveAt(c.Request.Context(), day, minute)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"scheduleClasses": emptyIfNil(entries)})
}

// DeleteSlot removes a slot and returns the updated catalog.
func (h *Handler) DeleteSlot(c *gin.Context) {
	entries, err := h.catalog.Delete(c.Request.Context(), c.Param("slotId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message":         "schedule deleted successfully",
		"scheduleClasses": emptyIfNil(entries),
	})
}
