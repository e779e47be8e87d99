package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/finvue/finvue/internal/reportrun"
	"github.com/gin-gonic/gin"
)

type triggerReportRunRequest struct {
	// ReferenceTime optionally pins the run to an instant, RFC 3339. Used by
	// operators to replay a missed boundary. Empty means "now".
	ReferenceTime string `json:"reference_time"`
}

// TriggerReportRun starts a synchronous fan-out and returns its summary.
// A fully successful run maps to 200, partial failures to 207 and a run that
// produced nothing but errors to 500.
func (s *Server) TriggerReportRun(c *gin.Context) {
	var req triggerReportRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
			return
		}
	}

	var ref time.Time
	if req.ReferenceTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			AbortWithError(c, newValidationError("reference_time", "invalid_timestamp", "reference_time must be RFC 3339"))
			return
		}
		ref = parsed
	}

	summary, err := s.runner.Trigger(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, reportrun.ErrRunInProgress) {
			AbortWithError(c, ErrConflict)
			return
		}
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	switch {
	case summary.Succeeded:
		status = http.StatusOK
	case summary.HasResults():
		status = http.StatusMultiStatus
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, summary)
}
