package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"studio/internal/adapters/storage"
	domain "studio/internal/domain/attendance"
)

const selectColumns = "SELECT id, member_id, session_id, trainer_id, check_in_time, class_date FROM attendance"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetBySessionID retrieves the attendance row for a session.
// PRE: sessionID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetBySessionID(ctx context.Context, sessionID string) (domain.Attendance, error) {
	entity, err := scanAttendance(s.db.QueryRowContext(ctx, selectColumns+" WHERE session_id = ?", sessionID))
	if err == sql.ErrNoRows {
		return domain.Attendance{}, fmt.Errorf("attendance not found: %w", err)
	}
	return entity, err
}

// ListByMemberID retrieves a member's attendance, most recent first.
// PRE: memberID is non-empty
// POST: Returns at most filter.Limit rows (1000 when unset)
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID string, filter ListFilter) ([]domain.Attendance, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	return s.query(ctx, selectColumns+" WHERE member_id = ? ORDER BY class_date DESC, check_in_time DESC LIMIT ? OFFSET ?", memberID, limit, filter.Offset)
}

// ListByTrainerAndDateRange retrieves attendance for a trainer's sessions between two dates inclusive.
func (s *SQLiteStore) ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]domain.Attendance, error) {
	return s.query(ctx, selectColumns+" WHERE trainer_id = ? AND class_date >= ? AND class_date <= ? ORDER BY class_date, check_in_time", trainerID, startDate, endDate)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		entity, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row scanner) (domain.Attendance, error) {
	var entity domain.Attendance
	var checkIn string
	if err := row.Scan(&entity.ID, &entity.MemberID, &entity.SessionID, &entity.TrainerID, &checkIn, &entity.ClassDate); err != nil {
		return domain.Attendance{}, err
	}
	t, err := parseStoredTime(checkIn)
	if err != nil {
		return domain.Attendance{}, fmt.Errorf("failed to parse check_in_time: %w", err)
	}
	entity.CheckInTime = t
	return entity, nil
}

// parseStoredTime accepts RFC3339 as written by this package and the
// space-separated forms produced by the sqlite CLI.
func parseStoredTime(value string) (time.Time, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
