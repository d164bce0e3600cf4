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

// ErrClassExists is returned when a class code is already taken.
var ErrClassExists = errors.New("class already exists")

// ClassRepository handles class, weekly schedule and session data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// CreateWithSchedule inserts a class, its weekly schedule and its generated
// sessions in one transaction. Nothing is persisted if any insert fails.
func (r *ClassRepository) CreateWithSchedule(ctx context.Context, info model.ClassInfo, schedule []model.WeeklySchedule, sessions []model.ClassSession) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO class_info (code, professor_euid, lat, lon, start_date, end_date, join_code, join_code_created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			info.Code, info.ProfessorEUID, info.Lat, info.Lon, info.StartDate, info.EndDate, info.JoinCode, info.JoinCodeCreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrClassExists
			}
			return fmt.Errorf("insert class: %w", err)
		}

		batch := &pgx.Batch{}
		for _, s := range schedule {
			batch.Queue(
				`INSERT INTO class_schedule (class_code, weekday, meeting_time) VALUES ($1, $2, $3)`,
				info.Code, s.Weekday, s.Time,
			)
		}
		for _, s := range sessions {
			batch.Queue(
				`INSERT INTO class_sessions (class_code, session_date, session_time) VALUES ($1, $2, $3)`,
				info.Code, s.Date, s.Time,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert schedule and sessions: %w", err)
		}
		return nil
	})
}

// GetByCode retrieves a class by its code.
func (r *ClassRepository) GetByCode(ctx context.Context, code string) (*model.ClassInfo, error) {
	c := &model.ClassInfo{}
	err := r.pool.QueryRow(ctx,
		`SELECT code, professor_euid, lat, lon,
		        to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
		        join_code, join_code_created_at
		 FROM class_info WHERE code = $1`, code,
	).Scan(&c.Code, &c.ProfessorEUID, &c.Lat, &c.Lon, &c.StartDate, &c.EndDate, &c.JoinCode, &c.JoinCodeCreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// GetSessionForDate retrieves the session of a class held on date ("YYYY-MM-DD").
func (r *ClassRepository) GetSessionForDate(ctx context.Context, code, date string) (*model.ClassSession, error) {
	s := &model.ClassSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, class_code, to_char(session_date, 'YYYY-MM-DD'), to_char(session_time, 'HH24:MI:SS')
		 FROM class_sessions WHERE class_code = $1 AND session_date = $2`, code, date,
	).Scan(&s.ID, &s.ClassCode, &s.Date, &s.Time)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListSessions retrieves every session of a class in chronological order.
func (r *ClassRepository) ListSessions(ctx context.Context, code string) ([]model.SessionEntry, error) {
	return r.listEntries(ctx,
		`SELECT ''::text, to_char(session_date, 'YYYY-MM-DD'), to_char(session_time, 'HH24:MI:SS')
		 FROM class_sessions WHERE class_code = $1
		 ORDER BY session_date, session_time`, code)
}

// ListSessionsByProfessor retrieves the sessions of every class owned by a professor.
func (r *ClassRepository) ListSessionsByProfessor(ctx context.Context, euid string) ([]model.SessionEntry, error) {
	return r.listEntries(ctx,
		`SELECT s.class_code, to_char(s.session_date, 'YYYY-MM-DD'), to_char(s.session_time, 'HH24:MI:SS')
		 FROM class_sessions s
		 JOIN class_info i ON i.code = s.class_code
		 WHERE i.professor_euid = $1
		 ORDER BY s.session_date, s.session_time, s.class_code`, euid)
}

// ListCodesByProfessor retrieves the codes of the classes owned by a professor.
func (r *ClassRepository) ListCodesByProfessor(ctx context.Context, euid string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code FROM class_info WHERE professor_euid = $1 ORDER BY code`, euid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// RotateJoinCode replaces the join code and its timestamp in a single update,
// so the previous code stops validating as soon as the statement commits.
func (r *ClassRepository) RotateJoinCode(ctx context.Context, code, joinCode string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE class_info SET join_code = $2, join_code_created_at = $3 WHERE code = $1`,
		code, joinCode, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ClassRepository) listEntries(ctx context.Context, query string, arg string) ([]model.SessionEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.SessionEntry{}
	for rows.Next() {
		var e model.SessionEntry
		if err := rows.Scan(&e.Code, &e.Date, &e.Time); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
