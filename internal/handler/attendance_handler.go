package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/middleware"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/response"
)

type attendanceSubmitter interface {
	Submit(ctx context.Context, req model.SubmitAttendanceRequest) (*model.AttendanceRecord, error)
}

// AttendanceHandler handles attendance submissions.
type AttendanceHandler struct {
	attendance attendanceSubmitter
	log        zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendance attendanceSubmitter, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		log:        log.With().Str("component", "attendance_handler").Logger(),
	}
}

// Submit godoc
// POST /api/v1/attendance
// Records the caller's attendance for today's session if every admission
// check passes.
func (h *AttendanceHandler) Submit(c *gin.Context) {
	var req model.SubmitAttendanceRequest
	if !bind(c, &req) {
		return
	}
	if !middleware.RequireSubject(c, req.EUID) {
		return
	}

	record, err := h.attendance.Submit(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}
