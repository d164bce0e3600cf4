package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/response"
)

type studentAttendanceReader interface {
	StudentAttendance(ctx context.Context, euid string) ([]model.SessionEntry, error)
}

type classEnroller interface {
	EnrollInClassByCode(ctx context.Context, euid, code string) error
	StudentClasses(ctx context.Context, euid string) ([]model.StudentClass, error)
}

// StudentHandler serves a student's own attendance and enrollments.
// Routes are guarded by a self policy, so :euid is the caller.
type StudentHandler struct {
	attendance  studentAttendanceReader
	enrollments classEnroller
	log         zerolog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(attendance studentAttendanceReader, enrollments classEnroller, log zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		attendance:  attendance,
		enrollments: enrollments,
		log:         log.With().Str("component", "student_handler").Logger(),
	}
}

// Attendance godoc
// GET /api/v1/students/:euid/attendance
func (h *StudentHandler) Attendance(c *gin.Context) {
	sessions, err := h.attendance.StudentAttendance(c.Request.Context(), c.Param("euid"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Classes godoc
// GET /api/v1/students/:euid/classes
func (h *StudentHandler) Classes(c *gin.Context) {
	classes, err := h.enrollments.StudentClasses(c.Request.Context(), c.Param("euid"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// Enroll godoc
// POST /api/v1/students/:euid/classes
// Enrolls the student in a class by code.
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req model.EnrollInClassRequest
	if !bind(c, &req) {
		return
	}

	euid := c.Param("euid")
	if err := h.enrollments.EnrollInClassByCode(c.Request.Context(), euid, req.Code); err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, model.Enrollment{ClassCode: req.Code, EUID: euid})
}
