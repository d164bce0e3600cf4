package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniattend/attendance-backend/internal/database"
	"github.com/uniattend/attendance-backend/internal/model"
)

var (
	// ErrAlreadyEnrolled is returned by Enroll for an existing (class, student) pair.
	ErrAlreadyEnrolled = errors.New("student already enrolled in class")
	// ErrNotStudent is returned by JoinClass when the EUID belongs to a
	// professor account.
	ErrNotStudent = errors.New("account is not a student")
)

// EnrollmentRepository handles class enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Enroll inserts an enrollment and fails with ErrAlreadyEnrolled if it exists.
// An unknown class or student yields ErrNotFound.
func (r *EnrollmentRepository) Enroll(ctx context.Context, code, euid string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (class_code, euid) VALUES ($1, $2)`, code, euid)
	switch {
	case isUniqueViolation(err):
		return ErrAlreadyEnrolled
	case isForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

// JoinCheck inspects a class's current join code inside the enrollment
// transaction. A non-nil error aborts the join and is returned unchanged.
type JoinCheck func(joinCode string, createdAt time.Time) error

// JoinClass registers student when no account exists for its EUID and enrolls
// it in class code, in one transaction. The class row is read FOR SHARE and
// handed to check, so a concurrent join code rotation either commits first
// and is seen by check or waits for this transaction to finish. persist runs
// last, before commit; its error rolls everything back.
//
// The stored account is returned. An existing non-student account yields
// ErrNotStudent, an unknown class ErrNotFound. Joining again is not an error.
func (r *EnrollmentRepository) JoinClass(ctx context.Context, code string, student *model.UserAccount, check JoinCheck, persist func() error) (*model.UserAccount, error) {
	var stored model.UserAccount
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			joinCode  string
			createdAt time.Time
		)
		err := tx.QueryRow(ctx,
			`SELECT join_code, join_code_created_at FROM class_info WHERE code = $1 FOR SHARE`, code,
		).Scan(&joinCode, &createdAt)
		if err != nil {
			return notFound(err)
		}
		if err := check(joinCode, createdAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO users (euid, role, password_hash) VALUES ($1, $2, $3)
			 ON CONFLICT (euid) DO NOTHING`,
			student.EUID, student.Role, student.PasswordHash,
		)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		err = tx.QueryRow(ctx,
			`SELECT euid, role, password_hash, created_at FROM users WHERE euid = $1`, student.EUID,
		).Scan(&stored.EUID, &stored.Role, &stored.PasswordHash, &stored.CreatedAt)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if stored.Role != model.RoleStudent {
			return ErrNotStudent
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO enrollments (class_code, euid) VALUES ($1, $2)
			 ON CONFLICT (class_code, euid) DO NOTHING`, code, student.EUID)
		if err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
		return persist()
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListClassesByStudent retrieves the classes a student is enrolled in.
func (r *EnrollmentRepository) ListClassesByStudent(ctx context.Context, euid string) ([]model.StudentClass, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.code, i.professor_euid,
		        to_char(i.start_date, 'YYYY-MM-DD'), to_char(i.end_date, 'YYYY-MM-DD'),
		        i.lat, i.lon
		 FROM enrollments e
		 JOIN class_info i ON i.code = e.class_code
		 WHERE e.euid = $1
		 ORDER BY i.code`, euid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.StudentClass{}
	for rows.Next() {
		var c model.StudentClass
		if err := rows.Scan(&c.Code, &c.ProfessorEUID, &c.StartDate, &c.EndDate, &c.Lat, &c.Lon); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
