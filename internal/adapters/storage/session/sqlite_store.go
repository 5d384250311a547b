package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studio/internal/adapters/storage"
	domainAttendance "studio/internal/domain/attendance"
	domain "studio/internal/domain/session"
)

const selectColumns = "SELECT id, trainer_id, member_id, date, time, notes, attended_at, created_at FROM training_session"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SessionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping sql.ErrNoRows if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanSession(row)
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("session not found: %w", err)
	}
	return entity, err
}

// Create inserts a new Session.
// PRE: entity has been validated and conflict-checked
// POST: Entity is persisted, or domain.ErrSlotUnavailable if (trainer, date, time) is taken
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO training_session (id, trainer_id, member_id, date, time, notes, attended_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entity.ID, entity.TrainerID, entity.MemberID, entity.Date, entity.Time, entity.Notes, nullTime(entity.AttendedAt), entity.CreatedAt.Format(time.RFC3339Nano),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrSlotUnavailable
	}
	return err
}

// CreateBatch inserts sessions in one transaction. Rows whose (trainer, date, time)
// already exists are left out rather than failing the batch.
// PRE: every entity has been validated and conflict-checked
// POST: Returns the sessions actually inserted, in input order; nothing is written on error
func (s *SQLiteStore) CreateBatch(ctx context.Context, entities []domain.Session) ([]domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO training_session (id, trainer_id, member_id, date, time, notes, attended_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT(trainer_id, date, time) DO NOTHING",
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	inserted := make([]domain.Session, 0, len(entities))
	for _, e := range entities {
		res, err := stmt.ExecContext(ctx, e.ID, e.TrainerID, e.MemberID, e.Date, e.Time, e.Notes, nullTime(e.AttendedAt), e.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			inserted = append(inserted, e)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inserted, nil
}

// Update rewrites the date, time and notes of an existing Session.
// PRE: entity has been validated and conflict-checked
// POST: Entity updated; domain.ErrSlotUnavailable if the target slot is taken,
// domain.ErrAlreadyCompleted if it was attended, sql.ErrNoRows if it is gone
func (s *SQLiteStore) Update(ctx context.Context, entity domain.Session) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE training_session SET date = ?, time = ?, notes = ? WHERE id = ? AND attended_at IS NULL",
		entity.Date, entity.Time, entity.Notes, entity.ID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrSlotUnavailable
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var attended sql.NullString
		err := s.db.QueryRowContext(ctx, "SELECT attended_at FROM training_session WHERE id = ?", entity.ID).Scan(&attended)
		if err != nil {
			return fmt.Errorf("session %s: %w", entity.ID, err)
		}
		return domain.ErrAlreadyCompleted
	}
	return nil
}

// Delete removes a Session from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM training_session WHERE id = ?", id)
	return err
}

// ListByTrainerAndDate retrieves a trainer's sessions for one day, ordered by time.
func (s *SQLiteStore) ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]domain.Session, error) {
	return s.querySessions(ctx, selectColumns+" WHERE trainer_id = ? AND date = ? ORDER BY time", trainerID, date)
}

// ListByTrainerAndDateRange retrieves a trainer's sessions between two dates inclusive.
// PRE: startDate <= endDate, both YYYY-MM-DD
// POST: Returns sessions ordered by date then time
func (s *SQLiteStore) ListByTrainerAndDateRange(ctx context.Context, trainerID, startDate, endDate string) ([]domain.Session, error) {
	return s.querySessions(ctx, selectColumns+" WHERE trainer_id = ? AND date >= ? AND date <= ? ORDER BY date, time", trainerID, startDate, endDate)
}

// ListByMemberID retrieves all sessions booked for a member, newest first.
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID string) ([]domain.Session, error) {
	return s.querySessions(ctx, selectColumns+" WHERE member_id = ? ORDER BY date DESC, time DESC", memberID)
}

// MarkAttended records attendance for a session in one transaction: the member
// balance is decremented only while positive, the session is stamped only if
// not yet attended, and an attendance row is written.
// PRE: a has been validated
// POST: All three writes happen or none; returns domain.ErrNoRemainingSessions or
// domain.ErrAlreadyCompleted when the respective guard fails
func (s *SQLiteStore) MarkAttended(ctx context.Context, a domainAttendance.Attendance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	at := a.CheckInTime.Format(time.RFC3339Nano)

	res, err := tx.ExecContext(ctx, "UPDATE training_session SET attended_at = ? WHERE id = ? AND attended_at IS NULL", at, a.SessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyCompleted
	}

	res, err = tx.ExecContext(ctx, "UPDATE member SET remaining_sessions = remaining_sessions - 1 WHERE id = ? AND remaining_sessions > 0", a.MemberID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNoRemainingSessions
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO attendance (id, member_id, session_id, trainer_id, check_in_time, class_date) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.MemberID, a.SessionID, a.TrainerID, at, a.ClassDate,
	); err != nil {
		return err
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.Session, error) {
	var entity domain.Session
	var attendedAt sql.NullString
	var createdAt string
	if err := row.Scan(&entity.ID, &entity.TrainerID, &entity.MemberID, &entity.Date, &entity.Time, &entity.Notes, &attendedAt, &createdAt); err != nil {
		return domain.Session{}, err
	}
	var err error
	if entity.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if attendedAt.Valid {
		if entity.AttendedAt, err = time.Parse(time.RFC3339Nano, attendedAt.String); err != nil {
			return domain.Session{}, fmt.Errorf("failed to parse attended_at: %w", err)
		}
	}
	return entity, nil
}

func (s *SQLiteStore) querySessions(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		entity, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
