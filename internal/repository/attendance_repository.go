package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniattend/attendance-backend/internal/model"
)

// AttendanceRepository handles attendance record data access.
type AttendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Upsert records attendance for (session, student). The primary key keeps at
// most one row per pair, so resubmission only updates the attended value.
func (r *AttendanceRepository) Upsert(ctx context.Context, sessionID int64, euid string, attended int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendance (session_id, euid, attended)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, euid) DO UPDATE SET attended = EXCLUDED.attended`,
		sessionID, euid, attended,
	)
	return err
}

// ListByStudent retrieves the sessions a student attended, oldest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, euid string) ([]model.SessionEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.class_code, to_char(s.session_date, 'YYYY-MM-DD'), to_char(s.session_time, 'HH24:MI:SS')
		 FROM attendance a
		 JOIN class_sessions s ON s.id = a.session_id
		 WHERE a.euid = $1 AND a.attended = 1
		 ORDER BY s.session_date, s.session_time`, euid)
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

// ListByClass retrieves, per session date, the students who attended a class.
func (r *AttendanceRepository) ListByClass(ctx context.Context, code string) ([]model.ClassAttendanceDay, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(s.session_date, 'YYYY-MM-DD'), array_agg(a.euid ORDER BY a.euid)
		 FROM class_sessions s
		 JOIN attendance a ON a.session_id = s.id
		 WHERE s.class_code = $1 AND a.attended = 1
		 GROUP BY s.session_date
		 ORDER BY s.session_date`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []model.ClassAttendanceDay{}
	for rows.Next() {
		var d model.ClassAttendanceDay
		if err := rows.Scan(&d.Date, &d.Students); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
