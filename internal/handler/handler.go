package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aathifpm/Feedback-system-sub000/internal/attendance"
	"github.com/aathifpm/Feedback-system-sub000/internal/auth"
	"github.com/aathifpm/Feedback-system-sub000/internal/config"
	"github.com/aathifpm/Feedback-system-sub000/internal/httpmiddleware"
	"github.com/aathifpm/Feedback-system-sub000/internal/metrics"
	"github.com/aathifpm/Feedback-system-sub000/internal/model"
	"github.com/aathifpm/Feedback-system-sub000/internal/observability"
	"github.com/aathifpm/Feedback-system-sub000/internal/store"
)

// Handler exposes the attendance engine over HTTP. It owns no business
// rules: it parses, delegates, and maps the engine's error taxonomy onto
// status codes.
type Handler struct {
	svc *attendance.Service
	db  *store.DB
	rdb *store.Redis
	cfg config.App
	log *zap.Logger
}

func New(svc *attendance.Service, db *store.DB, rdb *store.Redis, cfg config.App, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, db: db, rdb: rdb, cfg: cfg, log: log}
}

// Healthz probes the DB and redis.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
	defer cancel()

	t0 := time.Now()
	dbHealthy := h.db != nil && h.db.Client.PingContext(ctx) == nil
	if dbHealthy {
		metrics.ObserveDBPing(time.Since(t0))
	}
	redisHealthy := h.rdb.Healthy(ctx)

	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "db": dbHealthy, "redis": redisHealthy})
}

// ScheduleToday lists the actor's events for today, both kinds merged.
func (h *Handler) ScheduleToday(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no actor context"})
		return
	}
	events, err := h.svc.ScheduleToday(c.Request.Context(), actor)
	if err != nil {
		h.internalError(c, err)
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, ev := range events {
		out = append(out, scheduleRow(ev))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func scheduleRow(ev model.Event) gin.H {
	switch e := ev.(type) {
	case model.AcademicMeeting:
		return gin.H{
			"event_variant": model.VariantAcademic,
			"event_id":      e.ID,
			"date":          e.Date.Format("2006-01-02"),
			"start_time":    e.StartTime,
			"end_time":      e.EndTime,
			"subject":       e.Subject,
			"venue":         e.Venue,
			"year":          e.Year,
			"semester":      e.Semester,
			"section":       e.Section,
			"department_id": e.DepartmentID,
		}
	case model.TrainingSession:
		return gin.H{
			"event_variant": model.VariantTraining,
			"event_id":      e.ID,
			"date":          e.Date.Format("2006-01-02"),
			"start_time":    e.StartTime,
			"end_time":      e.EndTime,
			"topic":         e.Topic,
			"venue":         e.Venue,
			"batch_id":      e.BatchID,
			"trainer_name":  e.TrainerName,
			"department_id": e.DepartmentID,
		}
	default:
		return gin.H{"event_variant": ev.Ref().Variant, "event_id": ev.Ref().ID}
	}
}

// Roster renders one projected roster page.
func (h *Handler) Roster(c *gin.Context) {
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	page, err := h.svc.Page(c.Request.Context(), ref, pageRefFromQuery(c))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Summary returns display counts for one event; roster size is recomputed
// on every call.
func (h *Handler) Summary(c *gin.Context) {
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), ref)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MintToken issues an actor token outside production. Credential checks
// belong to the college SSO; this endpoint exists so the front end and tests
// can run without it.
func (h *Handler) MintToken(c *gin.Context) {
	var req struct {
		ActorID      int64  `json:"actor_id" binding:"required"`
		ActorRole    string `json:"actor_role" binding:"required"`
		DepartmentID int64  `json:"department_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, ok := model.ParseRole(req.ActorRole)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_role must be faculty or admin"})
		return
	}
	actor := model.ActorContext{ActorID: req.ActorID, Role: role, DepartmentID: req.DepartmentID}
	token, exp, err := auth.Issue(actor, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"access_token": token, "expires_at": exp.Unix()})
}

// parseEventRef reads the :variant/:id route segments. Writes the 4xx
// response itself when the reference is malformed.
func parseEventRef(c *gin.Context) (model.EventRef, bool) {
	variant, err := model.ParseVariant(c.Param("variant"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.EventRef{}, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event id must be a positive integer"})
		return model.EventRef{}, false
	}
	return model.EventRef{Variant: variant, ID: id}, true
}

func pageRefFromQuery(c *gin.Context) attendance.PageRef {
	p := attendance.PageRef{
		SortKey:    c.Query("sort_key"),
		SortDir:    c.Query("sort_dir"),
		PageNumber: 1,
		PageSize:   attendance.DefaultPageSize,
	}
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.PageNumber = parsed
		}
	}
	if v := c.Query("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			p.PageSize = parsed
		}
	}
	return p
}

// writeEngineError maps the engine's error taxonomy onto status codes.
func (h *Handler) writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
	case errors.Is(err, attendance.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
	default:
		if nm, ok := attendance.AsNotAMember(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":       "student is not on this roster",
				"roll_number": nm.RollNumber,
				"mismatches":  nm.Mismatches,
			})
			return
		}
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	metrics.HandlerErrors.Inc()
	observability.CaptureErr(err)
	h.log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", httpmiddleware.GetRequestID(c)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
