package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aathifpm/Feedback-system-sub000/internal/attendance"
	"github.com/aathifpm/Feedback-system-sub000/internal/auth"
	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// MarkOne records one student's status from a scanned or typed roll number.
func (h *Handler) MarkOne(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no actor context"})
		return
	}
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	var req struct {
		RollNumber string `json:"roll_number" binding:"required"`
		Status     string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.MarkOne(c.Request.Context(), actor, ref, req.RollNumber, req.Status)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// BulkSetDefault overwrites every roster member's record with one status.
func (h *Handler) BulkSetDefault(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no actor context"})
		return
	}
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	var req struct {
		DefaultStatus string `json:"default_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.BulkSetDefault(c.Request.Context(), actor, ref, req.DefaultStatus)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FillMissing materializes the default status for unmarked roster members.
func (h *Handler) FillMissing(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no actor context"})
		return
	}
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	var req struct {
		DefaultStatus string `json:"default_status"`
	}
	// Body is optional; the default default is absent.
	_ = c.ShouldBindJSON(&req)

	result, err := h.svc.FillMissing(c.Request.Context(), actor, ref, model.Status(req.DefaultStatus))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateMany applies per-student overwrites, bounded by scope.
func (h *Handler) UpdateMany(c *gin.Context) {
	actor, ok := auth.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no actor context"})
		return
	}
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	var req struct {
		Marks    map[string]string `json:"marks" binding:"required"`
		Scope    string            `json:"scope" binding:"required"`
		SortKey  string            `json:"sort_key"`
		SortDir  string            `json:"sort_dir"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scope, ok := attendance.ParseScope(req.Scope)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be page or all"})
		return
	}

	marks := make(map[int64]string, len(req.Marks))
	for key, status := range req.Marks {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "marks keys must be student ids"})
			return
		}
		marks[id] = status
	}

	result, err := h.svc.UpdateMany(c.Request.Context(), actor, ref, marks, scope, attendance.PageRef{
		SortKey:    req.SortKey,
		SortDir:    req.SortDir,
		PageNumber: req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
