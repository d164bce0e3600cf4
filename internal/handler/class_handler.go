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

type classManager interface {
	AddClass(ctx context.Context, req model.CreateClassRequest) (*model.CreateClassResponse, error)
	GetJoinCode(ctx context.Context, professor, code string) (*model.JoinCode, error)
	RotateJoinCode(ctx context.Context, professor, code string) (*model.JoinCode, error)
	Schedule(ctx context.Context, code string) ([]model.SessionEntry, error)
}

type classAttendanceReader interface {
	ClassAttendance(ctx context.Context, professor, code string) ([]model.ClassAttendanceDay, error)
}

// ClassHandler handles class creation, schedules and join codes.
type ClassHandler struct {
	classes    classManager
	attendance classAttendanceReader
	log        zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classes classManager, attendance classAttendanceReader, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classes:    classes,
		attendance: attendance,
		log:        log.With().Str("component", "class_handler").Logger(),
	}
}

// CreateClass godoc
// POST /api/v1/classes
// Creates a class with its weekly schedule and all dated sessions.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.CreateClassRequest
	if !bind(c, &req) {
		return
	}
	if !middleware.RequireSubject(c, req.EUID) {
		return
	}

	created, err := h.classes.AddClass(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// Schedule godoc
// GET /api/v1/classes/:code/schedule
// Lists every session of a class.
func (h *ClassHandler) Schedule(c *gin.Context) {
	code, ok := param(c, "code", "classcode")
	if !ok {
		return
	}

	sessions, err := h.classes.Schedule(c.Request.Context(), code)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Attendance godoc
// GET /api/v1/classes/:code/attendance
// Lists attendees per date. Owner only.
func (h *ClassHandler) Attendance(c *gin.Context) {
	code, ok := param(c, "code", "classcode")
	if !ok {
		return
	}

	days, err := h.attendance.ClassAttendance(c.Request.Context(), middleware.GetClaims(c).Subject, code)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": days})
}

// GetJoinCode godoc
// GET /api/v1/classes/:code/join-code
// Returns the class's current join code. Owner only.
func (h *ClassHandler) GetJoinCode(c *gin.Context) {
	code, ok := param(c, "code", "classcode")
	if !ok {
		return
	}

	joinCode, err := h.classes.GetJoinCode(c.Request.Context(), middleware.GetClaims(c).Subject, code)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, joinCode)
}

// RotateJoinCode godoc
// POST /api/v1/classes/:code/join-code/rotate
// Replaces the class's join code. The old code stops working immediately.
func (h *ClassHandler) RotateJoinCode(c *gin.Context) {
	code, ok := param(c, "code", "classcode")
	if !ok {
		return
	}

	joinCode, err := h.classes.RotateJoinCode(c.Request.Context(), middleware.GetClaims(c).Subject, code)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, joinCode)
}
