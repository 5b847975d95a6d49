package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// Repository persists attendance state in Postgres. Student and event rows
// are read-only from here; attendance_records is the only table written.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadEvent fetches the event behind a (variant, id) reference. Cancelled
// events are not candidates for attendance and read as not found.
func (r *Repository) LoadEvent(ctx context.Context, ref model.EventRef) (model.Event, error) {
	switch ref.Variant {
	case model.VariantAcademic:
		row := r.db.QueryRowContext(ctx, `
			SELECT id, meeting_date, start_time::text, end_time::text, subject, venue,
			       year, semester, section, department_id, faculty_id
			FROM academic_meetings
			WHERE id = $1 AND NOT cancelled
		`, ref.ID)
		var m model.AcademicMeeting
		err := row.Scan(&m.ID, &m.Date, &m.StartTime, &m.EndTime, &m.Subject, &m.Venue,
			&m.Year, &m.Semester, &m.Section, &m.DepartmentID, &m.FacultyID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		if err != nil {
			return nil, err
		}
		return m, nil

	case model.VariantTraining:
		row := r.db.QueryRowContext(ctx, `
			SELECT id, session_date, start_time::text, end_time::text, topic, venue,
			       batch_id, department_id, trainer_name
			FROM training_sessions
			WHERE id = $1 AND NOT cancelled
		`, ref.ID)
		var t model.TrainingSession
		err := row.Scan(&t.ID, &t.Date, &t.StartTime, &t.EndTime, &t.Topic, &t.Venue,
			&t.BatchID, &t.DepartmentID, &t.TrainerName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		if err != nil {
			return nil, err
		}
		return t, nil

	default:
		return nil, ErrEventNotFound
	}
}

// UpsertOne writes one attendance record as a single atomic statement.
// The primary key on (student_id, event_variant, event_id) makes concurrent
// identical calls converge on one row instead of racing a select-then-insert.
func (r *Repository) UpsertOne(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (student_id, event_variant, event_id, status, marked_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (student_id, event_variant, event_id)
		DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = NOW()
		RETURNING updated_at
	`, rec.StudentID, rec.Event.Variant, rec.Event.ID, rec.Status, rec.MarkedBy)
	if err := row.Scan(&rec.UpdatedAt); err != nil {
		return model.AttendanceRecord{}, err
	}
	return rec, nil
}

// InsertIfMissing materializes the default status for one student only when
// no record exists yet. Reports whether a row was actually inserted.
func (r *Repository) InsertIfMissing(ctx context.Context, rec model.AttendanceRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (student_id, event_variant, event_id, status, marked_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (student_id, event_variant, event_id) DO NOTHING
	`, rec.StudentID, rec.Event.Variant, rec.Event.ID, rec.Status, rec.MarkedBy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Record returns the stored record for one (student, event) key, or nil.
func (r *Repository) Record(ctx context.Context, studentID int64, ref model.EventRef) (*model.AttendanceRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, event_variant, event_id, status, marked_by, updated_at
		FROM attendance_records
		WHERE student_id = $1 AND event_variant = $2 AND event_id = $3
	`, studentID, ref.Variant, ref.ID)
	var rec model.AttendanceRecord
	err := row.Scan(&rec.StudentID, &rec.Event.Variant, &rec.Event.ID, &rec.Status, &rec.MarkedBy, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// StatusCounts tallies stored records per status for one event.
func (r *Repository) StatusCounts(ctx context.Context, ref model.EventRef) (model.StatusCounts, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM attendance_records
		WHERE event_variant = $1 AND event_id = $2
		GROUP BY status
	`, ref.Variant, ref.ID)
	if err != nil {
		return model.StatusCounts{}, err
	}
	defer rows.Close()

	var counts model.StatusCounts
	for rows.Next() {
		var status model.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return model.StatusCounts{}, err
		}
		switch status {
		case model.StatusPresent:
			counts.Present = n
		case model.StatusAbsent:
			counts.Absent = n
		case model.StatusLate:
			counts.Late = n
		case model.StatusExcused:
			counts.Excused = n
		}
	}
	return counts, rows.Err()
}
