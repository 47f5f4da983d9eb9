package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classtrack/internal/apperr"
	"classtrack/internal/attendance"
	"classtrack/internal/config"
	"classtrack/internal/queue"
	"classtrack/internal/report"
	"classtrack/internal/schedule"
	"classtrack/internal/subject"
	"classtrack/internal/user"
)

// Handler exposes the services over gin.
type Handler struct {
	users    *user.Service
	subjects *subject.Service
	catalog  *schedule.Service
	store    *attendance.Service
	reports  *report.Builder
	events   queue.Queue
	cfg      config.App

	// now is injected so tests can pin the clock.
	now func() time.Time
}

// New wires a handler.
func New(users *user.Service, subjects *subject.Service, catalog *schedule.Service,
	store *attendance.Service, reports *report.Builder, events queue.Queue, cfg config.App) *Handler {
	return &Handler{
		users:    users,
		subjects: subjects,
		catalog:  catalog,
		store:    store,
		reports:  reports,
		events:   events,
		cfg:      cfg,
		now:      time.Now,
	}
}

// respond writes the uniform success envelope with extra payload fields.
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail maps an application error to its transport status. Internal failures
// are logged with full context and surfaced opaquely.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"success": false, "message": apperr.Message(err)})
}

// emptyIfNil keeps reporting endpoints returning [] instead of null when no
// rows match.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
