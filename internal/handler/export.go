package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aathifpm/Feedback-system-sub000/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportRegister streams the event's attendance register as a workbook.
// It is a verbatim dump of the projection, so it always agrees with the page.
func (h *Handler) ExportRegister(c *gin.Context) {
	ref, ok := parseEventRef(c)
	if !ok {
		return
	}
	ev, rows, err := h.svc.Register(c.Request.Context(), ref)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	wb, err := export.BuildRegister(ev, rows)
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer wb.Close()

	c.Header("Content-Disposition", `attachment; filename="`+export.RegisterFilename(ev)+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := wb.Write(c.Writer); err != nil {
		h.log.Warn("register download aborted", zap.Error(err))
	}
}
