package attendance

import (
	"context"
	"sort"
	"time"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// ListDay merges both event kinds into one start-time-ordered view for the
// actor: academic meetings the actor teaches (admins see all of them) plus
// training sessions in the actor's department. Cancelled events never appear.
func (r *Repository) ListDay(ctx context.Context, actor model.ActorContext, day time.Time) ([]model.Event, error) {
	var events []model.Event

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, meeting_date, start_time::text, end_time::text, subject, venue,
		       year, semester, section, department_id, faculty_id
		FROM academic_meetings
		WHERE meeting_date = $1 AND NOT cancelled AND ($2 OR faculty_id = $3)
		ORDER BY id
	`, day.Format("2006-01-02"), actor.IsAdmin(), actor.ActorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.AcademicMeeting
		if err := rows.Scan(&m.ID, &m.Date, &m.StartTime, &m.EndTime, &m.Subject, &m.Venue,
			&m.Year, &m.Semester, &m.Section, &m.DepartmentID, &m.FacultyID); err != nil {
			return nil, err
		}
		events = append(events, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trows, err := r.db.QueryContext(ctx, `
		SELECT id, session_date, start_time::text, end_time::text, topic, venue,
		       batch_id, department_id, trainer_name
		FROM training_sessions
		WHERE session_date = $1 AND NOT cancelled AND department_id = $2
		ORDER BY id
	`, day.Format("2006-01-02"), actor.DepartmentID)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var t model.TrainingSession
		if err := trows.Scan(&t.ID, &t.Date, &t.StartTime, &t.EndTime, &t.Topic, &t.Venue,
			&t.BatchID, &t.DepartmentID, &t.TrainerName); err != nil {
			return nil, err
		}
		events = append(events, t)
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}

	// TIME::text is zero-padded HH:MM:SS, so string order is time order.
	// Stable keeps the per-query id order on ties.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartsAt() < events[j].StartsAt()
	})
	return events, nil
}
