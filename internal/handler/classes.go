package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/daytime"
	"classtrack/internal/queue"
)

// History returns the caller's past occurrences.
func (h *Handler) History(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	past, err := h.reports.History(c.Request.Context(), h.now(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pastClasses": emptyIfNil(past)})
}

// Upcoming returns the caller's future occurrences.
func (h *Handler) Upcoming(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	upcoming, err := h.reports.Upcoming(c.Request.Context(), h.now(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"upcomingClasses": emptyIfNil(upcoming)})
}

// Totals returns the caller's scheduled/cancelled/taken counts.
func (h *Handler) Totals(c *gin.Context) {
	p, _ := auth.PrincipalFrom(c)
	totals, err := h.reports.TotalsFor(c.Request.Context(), h.now(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": totals})
}

// Roster returns per-student aggregates for teachers.
func (h *Handler) Roster(c *gin.Context) {
	rows, err := h.reports.Roster(c.Request.Context(), h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"roster": emptyIfNil(rows)})
}

type cancelRequest struct {
	SlotID string `json:"scheduleSlotId" binding:"required"`
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason"`
}

// Cancel records a cancellation for one occurrence. The write returns only
// the write result; callers wanting the refreshed upcoming list issue a
// second read.
func (h *Handler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("schedule slot id and date are required"))
		return
	}
	date, err := daytime.ParseDate(req.Date)
	if err != nil {
		fail(c, err)
		return
	}
	p, _ := auth.PrincipalFrom(c)
	cancellation, err := h.store.RecordCancellation(c.Request.Context(), req.SlotID, date, req.Reason, p.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	body, _ := json.Marshal(attendance.CancellationEvent{
		SlotID:      cancellation.SlotID,
		Date:        daytime.DateKey(cancellation.Date),
		Reason:      cancellation.Reason,
		CancelledBy: p.UserID,
	})
	if err := h.events.Publish(c.Request.Context(), queue.Message{Type: "class_cancelled", Body: body}); err != nil {
		log.Printf("queue publish failed: %v", err)
	}

	respond(c, http.StatusOK, gin.H{"message": "class cancelled successfully"})
}

// CancelledToday lists the cancellations for the current calendar day.
func (h *Handler) CancelledToday(c *gin.Context) {
	cancellations, err := h.store.CancelledOn(c.Request.Context(), daytime.DayUTC(h.now()))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message": "cancelled classes fetched successfully",
		"data":    emptyIfNil(cancellations),
	})
}

type markAttendanceRequest struct {
	SlotID    string `json:"scheduleSlot" binding:"required"`
	SubjectID string `json:"subjectId" binding:"required"`
	Date      string `json:"date"`
}

// MarkAttendance records the calling student present for one occurrence.
// An omitted date defaults to today.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("schedule slot and subject are required"))
		return
	}
	date := daytime.DayUTC(h.now())
	if req.Date != "" {
		parsed, err := daytime.ParseDate(req.Date)
		if err != nil {
			fail(c, err)
			return
		}
		date = parsed
	}
	p, _ := auth.PrincipalFrom(c)
	mark, err := h.store.RecordAttendance(c.Request.Context(), p, req.SlotID, req.SubjectID, date)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"message": "marked attendance successfully", "attendance": mark})
}

// IsMarked reports whether the calling student has marked one occurrence.
func (h *Handler) IsMarked(c *gin.Context) {
	slotID := c.Query("slotId")
	dateStr := c.Query("date")
	if slotID == "" || dateStr == "" {
		fail(c, apperr.Validation("slotId and date are required"))
		return
	}
	date, err := daytime.ParseDate(dateStr)
	if err != nil {
		fail(c, err)
		return
	}
	p, _ := auth.PrincipalFrom(c)
	state, err := h.store.IsMarked(c.Request.Context(), p.UserID, slotID, date)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": state})
}
