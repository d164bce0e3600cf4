package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/geo"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
)

type attendanceStore interface {
	Upsert(ctx context.Context, sessionID int64, euid string, attended int) error
	ListByStudent(ctx context.Context, euid string) ([]model.SessionEntry, error)
	ListByClass(ctx context.Context, code string) ([]model.ClassAttendanceDay, error)
}

// EventPublisher delivers attendance events to live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.AttendanceEvent) error
}

// EventAttendanceMarked is the type of the event published after an admission.
const EventAttendanceMarked = "attendance_marked"

// AttendanceService decides attendance admissions and serves attendance history.
type AttendanceService struct {
	classes   classStore
	records   attendanceStore
	verifier  faceVerifier
	refs      referencePaths
	publisher EventPublisher
	maxFeet   float64
	window    time.Duration
	tolerance float64
	now       func() time.Time
	log       zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService. publisher may be nil.
func NewAttendanceService(
	cfg *config.Config,
	classes classStore,
	records attendanceStore,
	verifier faceVerifier,
	refs referencePaths,
	publisher EventPublisher,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		classes:   classes,
		records:   records,
		verifier:  verifier,
		refs:      refs,
		publisher: publisher,
		maxFeet:   cfg.MaxDistanceFeet,
		window:    time.Duration(cfg.TimeWindowMinutes) * time.Minute,
		tolerance: cfg.FaceTolerance,
		now:       time.Now,
		log:       log.With().Str("component", "attendance_service").Logger(),
	}
}

// Submit runs the admission gates in order: class exists, a session is
// scheduled today, now is within the time window of that session, the
// student is within range of the class location, and the photo matches the
// student's reference image. The first failing gate is returned and nothing
// is written. On success the attendance record is upserted.
//
// "Today" and the session time are evaluated in the server's local time zone.
func (s *AttendanceService) Submit(ctx context.Context, req model.SubmitAttendanceRequest) (*model.AttendanceRecord, error) {
	class, err := lookupClass(ctx, s.classes, req.Code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session, err := s.classes.GetSessionForDate(ctx, req.Code, now.Format(model.DateLayout))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoClassOnDate
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	scheduled, err := session.ScheduledAt(now.Location())
	if err != nil {
		return nil, err
	}
	if delta := now.Sub(scheduled).Abs(); delta > s.window {
		return nil, ErrOutsideTimeRange
	}

	student, err := pointFrom(req.Location)
	if err != nil {
		return nil, err
	}
	if !geo.WithinDistance(student, geo.Point{Lat: class.Lat, Lon: class.Lon}, s.maxFeet) {
		return nil, ErrTooFar
	}

	res, err := s.verifier.VerifyMatch(req.Photo, s.refs.Path(req.EUID), s.tolerance)
	if err != nil {
		return nil, fmt.Errorf("verify face: %w", err)
	}
	if !res.Matched {
		return nil, faceRejection(res.Reason)
	}

	if err := s.records.Upsert(ctx, session.ID, req.EUID, 1); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}

	s.log.Info().
		Str("code", req.Code).
		Str("euid", req.EUID).
		Int64("session_id", session.ID).
		Msg("Attendance recorded")

	s.publish(ctx, model.AttendanceEvent{
		Type:      EventAttendanceMarked,
		ClassCode: req.Code,
		EUID:      req.EUID,
		SessionID: session.ID,
		Date:      session.Date,
		At:        now.Format(time.RFC3339),
	})

	return &model.AttendanceRecord{SessionID: session.ID, EUID: req.EUID, Attended: 1}, nil
}

// StudentAttendance lists the sessions a student attended.
func (s *AttendanceService) StudentAttendance(ctx context.Context, euid string) ([]model.SessionEntry, error) {
	return s.records.ListByStudent(ctx, euid)
}

// ClassAttendance lists attendees per date for a class owned by professor.
func (s *AttendanceService) ClassAttendance(ctx context.Context, professor, code string) ([]model.ClassAttendanceDay, error) {
	class, err := lookupClass(ctx, s.classes, code)
	if err != nil {
		return nil, err
	}
	if class.ProfessorEUID != professor {
		return nil, ErrNotClassOwner
	}
	return s.records.ListByClass(ctx, code)
}

// AuthorizeFeed checks that professor may watch the live feed of a class.
func (s *AttendanceService) AuthorizeFeed(ctx context.Context, professor, code string) error {
	class, err := lookupClass(ctx, s.classes, code)
	if err != nil {
		return err
	}
	if class.ProfessorEUID != professor {
		return ErrNotClassOwner
	}
	return nil
}

func (s *AttendanceService) publish(ctx context.Context, event model.AttendanceEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("code", event.ClassCode).Msg("Publish attendance event failed")
	}
}

// faceRejection turns a verification reason into an admission rejection.
// A missing reference image is a lookup failure; all others are rejections.
func faceRejection(reason biometric.Reason) *Error {
	if reason == biometric.ReasonReferenceNotFound {
		return newError(KindNotFound, string(reason))
	}
	return newError(KindRejected, string(reason))
}
