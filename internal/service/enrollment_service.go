package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
)

type enrollmentStore interface {
	Enroll(ctx context.Context, code, euid string) error
	JoinClass(ctx context.Context, code string, student *model.UserAccount, check repository.JoinCheck, persist func() error) (*model.UserAccount, error)
	ListClassesByStudent(ctx context.Context, euid string) ([]model.StudentClass, error)
}

type referenceWriter interface {
	Save(euid string, jpeg []byte) error
}

// EnrollmentService enrolls students in classes, either with a join code
// (first contact, which also registers the student) or by class code.
type EnrollmentService struct {
	classes     classStore
	enrollments enrollmentStore
	refs        referenceWriter
	tokens      *TokenService
	joinCodeTTL time.Duration
	bcryptCost  int
	now         func() time.Time
	log         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	cfg *config.Config,
	classes classStore,
	enrollments enrollmentStore,
	refs referenceWriter,
	tokens *TokenService,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		classes:     classes,
		enrollments: enrollments,
		refs:        refs,
		tokens:      tokens,
		joinCodeTTL: cfg.JoinCodeTTL,
		bcryptCost:  cfg.BcryptCost,
		now:         time.Now,
		log:         log.With().Str("component", "enrollment_service").Logger(),
	}
}

// EnrollWithJoinCode checks the class join code, registers the student if
// needed, stores the reference photo, enrolls the student and issues a token
// pair. Repeating the call re-enrolls idempotently and replaces the photo.
// The photo is validated before anything is written, and the account,
// enrollment and photo are committed together against the join code current
// at commit time.
func (s *EnrollmentService) EnrollWithJoinCode(ctx context.Context, req model.JoinCodeEnrollRequest) (*model.TokenPair, error) {
	class, err := lookupClass(ctx, s.classes, req.Code)
	if err != nil {
		return nil, err
	}
	if err := s.checkJoinCode(class.JoinCode, class.JoinCodeCreatedAt, req.JoinCode); err != nil {
		return nil, err
	}

	photo, err := base64.StdEncoding.DecodeString(req.Photo)
	if err != nil {
		return nil, ErrInvalidPhoto
	}
	reference, err := biometric.NormalizeJPEG(photo)
	if err != nil {
		s.log.Debug().Err(err).Str("euid", req.EUID).Msg("Rejected enrollment photo")
		return nil, ErrInvalidPhoto
	}

	hash, err := unusablePasswordHash(s.bcryptCost)
	if err != nil {
		return nil, err
	}
	student := &model.UserAccount{EUID: req.EUID, Role: model.RoleStudent, PasswordHash: hash}
	user, err := s.enrollments.JoinClass(ctx, req.Code, student,
		func(joinCode string, createdAt time.Time) error {
			return s.checkJoinCode(joinCode, createdAt, req.JoinCode)
		},
		func() error {
			if err := s.refs.Save(req.EUID, reference); err != nil {
				return fmt.Errorf("save reference image: %w", err)
			}
			return nil
		},
	)
	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return nil, err
	case errors.Is(err, repository.ErrNotStudent):
		return nil, ErrRoleMismatch
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrClassNotFound
	case err != nil:
		return nil, fmt.Errorf("join class: %w", err)
	}

	s.log.Info().Str("code", req.Code).Str("euid", req.EUID).Msg("Student enrolled with join code")
	return s.tokens.IssuePair(ctx, user.EUID, user.Role)
}

func (s *EnrollmentService) checkJoinCode(stored string, createdAt time.Time, submitted string) error {
	if !VerifyJoinCode(stored, submitted) {
		return ErrInvalidJoinCode
	}
	if JoinCodeExpired(createdAt, s.now(), s.joinCodeTTL) {
		return ErrJoinCodeExpired
	}
	return nil
}

// EnrollInClassByCode enrolls a student in a class by its code. Enrolling
// twice fails with ErrAlreadyEnrolled.
func (s *EnrollmentService) EnrollInClassByCode(ctx context.Context, euid, code string) error {
	if _, err := lookupClass(ctx, s.classes, code); err != nil {
		return err
	}

	err := s.enrollments.Enroll(ctx, code, euid)
	switch {
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		return ErrAlreadyEnrolled
	case errors.Is(err, repository.ErrNotFound):
		return ErrClassNotFound
	case err != nil:
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}

// StudentClasses lists the classes a student is enrolled in.
func (s *EnrollmentService) StudentClasses(ctx context.Context, euid string) ([]model.StudentClass, error) {
	return s.enrollments.ListClassesByStudent(ctx, euid)
}
