package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/geo"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
	"github.com/uniattend/attendance-backend/internal/schedule"
)

type classStore interface {
	CreateWithSchedule(ctx context.Context, info model.ClassInfo, weekly []model.WeeklySchedule, sessions []model.ClassSession) error
	GetByCode(ctx context.Context, code string) (*model.ClassInfo, error)
	GetSessionForDate(ctx context.Context, code, date string) (*model.ClassSession, error)
	ListSessions(ctx context.Context, code string) ([]model.SessionEntry, error)
	ListSessionsByProfessor(ctx context.Context, euid string) ([]model.SessionEntry, error)
	ListCodesByProfessor(ctx context.Context, euid string) ([]string, error)
	RotateJoinCode(ctx context.Context, code, joinCode string, at time.Time) error
}

// ClassService handles class creation, schedules and join codes.
type ClassService struct {
	classes classStore
	now     func() time.Time
	log     zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classes classStore, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes: classes,
		now:     time.Now,
		log:     log.With().Str("component", "class_service").Logger(),
	}
}

// AddClass creates a class owned by req.EUID together with its weekly
// schedule and every dated session between the start and end dates. The
// whole class is committed atomically.
func (s *ClassService) AddClass(ctx context.Context, req model.CreateClassRequest) (*model.CreateClassResponse, error) {
	loc, err := pointFrom(req.Location)
	if err != nil {
		return nil, err
	}
	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := schedule.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	sessions, err := schedule.Expand(req.Code, start, end, req.Times)
	switch {
	case errors.Is(err, schedule.ErrRangeInversion):
		return nil, ErrInvalidDateRange
	case errors.Is(err, schedule.ErrNoMeetingDays):
		return nil, ErrNoMeetingDays
	case errors.Is(err, schedule.ErrUnknownWeekday):
		return nil, ErrUnknownWeekday
	case errors.Is(err, schedule.ErrInvalidTime):
		return nil, ErrInvalidTime
	case err != nil:
		return nil, fmt.Errorf("expand schedule: %w", err)
	}

	joinCode, err := GenerateJoinCode()
	if err != nil {
		return nil, err
	}

	info := model.ClassInfo{
		Code:              req.Code,
		ProfessorEUID:     req.EUID,
		Lat:               loc.Lat,
		Lon:               loc.Lon,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		JoinCode:          joinCode,
		JoinCodeCreatedAt: s.now(),
	}
	weekly := make([]model.WeeklySchedule, 0, len(req.Times))
	for day, at := range req.Times {
		weekly = append(weekly, model.WeeklySchedule{ClassCode: req.Code, Weekday: day, Time: at})
	}

	if err := s.classes.CreateWithSchedule(ctx, info, weekly, sessions); err != nil {
		if errors.Is(err, repository.ErrClassExists) {
			return nil, ErrClassExists
		}
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.log.Info().
		Str("code", req.Code).
		Str("professor", req.EUID).
		Int("sessions", len(sessions)).
		Msg("Class created")

	return &model.CreateClassResponse{SessionsCreated: len(sessions), JoinCode: joinCode}, nil
}

// GetJoinCode returns a class's current join code to its owner.
func (s *ClassService) GetJoinCode(ctx context.Context, professor, code string) (*model.JoinCode, error) {
	class, err := s.ownedClass(ctx, professor, code)
	if err != nil {
		return nil, err
	}
	return &model.JoinCode{Code: class.JoinCode, CreatedAt: class.JoinCodeCreatedAt}, nil
}

// RotateJoinCode replaces a class's join code. The previous code stops
// working immediately.
func (s *ClassService) RotateJoinCode(ctx context.Context, professor, code string) (*model.JoinCode, error) {
	if _, err := s.ownedClass(ctx, professor, code); err != nil {
		return nil, err
	}

	joinCode, err := GenerateJoinCode()
	if err != nil {
		return nil, err
	}
	at := s.now()
	if err := s.classes.RotateJoinCode(ctx, code, joinCode, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("rotate join code: %w", err)
	}

	s.log.Info().Str("code", code).Msg("Join code rotated")
	return &model.JoinCode{Code: joinCode, CreatedAt: at}, nil
}

// Schedule lists every session of a class.
func (s *ClassService) Schedule(ctx context.Context, code string) ([]model.SessionEntry, error) {
	if _, err := s.lookup(ctx, code); err != nil {
		return nil, err
	}
	return s.classes.ListSessions(ctx, code)
}

// ProfessorSchedule lists the sessions of every class a professor owns.
func (s *ClassService) ProfessorSchedule(ctx context.Context, euid string) ([]model.SessionEntry, error) {
	return s.classes.ListSessionsByProfessor(ctx, euid)
}

// ProfessorClasses lists the codes of the classes a professor owns.
func (s *ClassService) ProfessorClasses(ctx context.Context, euid string) ([]string, error) {
	return s.classes.ListCodesByProfessor(ctx, euid)
}

func (s *ClassService) lookup(ctx context.Context, code string) (*model.ClassInfo, error) {
	return lookupClass(ctx, s.classes, code)
}

func (s *ClassService) ownedClass(ctx context.Context, professor, code string) (*model.ClassInfo, error) {
	class, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if class.ProfessorEUID != professor {
		return nil, ErrNotClassOwner
	}
	return class, nil
}

func lookupClass(ctx context.Context, classes classStore, code string) (*model.ClassInfo, error) {
	class, err := classes.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return class, nil
}

func pointFrom(location []float64) (geo.Point, error) {
	if len(location) != 2 {
		return geo.Point{}, ErrInvalidLocation
	}
	p := geo.Point{Lat: location[0], Lon: location[1]}
	if err := p.Validate(); err != nil {
		return geo.Point{}, ErrInvalidLocation
	}
	return p, nil
}
