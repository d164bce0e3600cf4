package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/response"
)

type professorCatalog interface {
	ProfessorSchedule(ctx context.Context, euid string) ([]model.SessionEntry, error)
	ProfessorClasses(ctx context.Context, euid string) ([]string, error)
}

// ProfessorHandler serves a professor's own classes and schedule.
type ProfessorHandler struct {
	classes professorCatalog
	log     zerolog.Logger
}

// NewProfessorHandler creates a new ProfessorHandler.
func NewProfessorHandler(classes professorCatalog, log zerolog.Logger) *ProfessorHandler {
	return &ProfessorHandler{
		classes: classes,
		log:     log.With().Str("component", "professor_handler").Logger(),
	}
}

// Schedule godoc
// GET /api/v1/professors/:euid/schedule
func (h *ProfessorHandler) Schedule(c *gin.Context) {
	sessions, err := h.classes.ProfessorSchedule(c.Request.Context(), c.Param("euid"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Classes godoc
// GET /api/v1/professors/:euid/classes
func (h *ProfessorHandler) Classes(c *gin.Context) {
	codes, err := h.classes.ProfessorClasses(c.Request.Context(), c.Param("euid"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": codes})
}
