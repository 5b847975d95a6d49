package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// rosterPredicate builds the per-variant membership condition over a
// students table aliased "s". Both Resolve and IsMember run this exact
// fragment, so the resolver and the validator cannot drift apart.
// argIdx is the first free positional placeholder.
func rosterPredicate(ev model.Event, argIdx int) (string, []any) {
	switch e := ev.(type) {
	case model.AcademicMeeting:
		clause := fmt.Sprintf(
			"s.department_id = $%d AND s.section = $%d AND s.year_of_study = $%d",
			argIdx, argIdx+1, argIdx+2)
		return clause, []any{e.DepartmentID, e.Section, e.Year}
	case model.TrainingSession:
		clause := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM batch_members bm WHERE bm.student_id = s.id AND bm.batch_id = $%d AND bm.active)",
			argIdx)
		return clause, []any{e.BatchID}
	default:
		// Unreachable while model.Event stays a closed set.
		return "FALSE", nil
	}
}

// Resolve computes the ordered roster for an event. Pure read of current
// state; membership is never cached between calls.
func (r *Repository) Resolve(ctx context.Context, ev model.Event) ([]model.Student, error) {
	pred, args := rosterPredicate(ev, 1)
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.roll_number, s.register_number, s.name, s.department_id,
		       s.section, s.batch_id, s.year_of_study
		FROM students s
		WHERE `+pred+`
		ORDER BY s.roll_number
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.RollNumber, &st.RegisterNumber, &st.Name,
			&st.DepartmentID, &st.Section, &st.BatchID, &st.YearOfStudy); err != nil {
			return nil, err
		}
		roster = append(roster, st)
	}
	return roster, rows.Err()
}

// FindStudentByRoll looks up a student by the human-entered roll number.
func (r *Repository) FindStudentByRoll(ctx context.Context, roll string) (model.Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, roll_number, register_number, name, department_id, section, batch_id, year_of_study
		FROM students
		WHERE roll_number = $1
	`, roll)
	var st model.Student
	err := row.Scan(&st.ID, &st.RollNumber, &st.RegisterNumber, &st.Name,
		&st.DepartmentID, &st.Section, &st.BatchID, &st.YearOfStudy)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, ErrStudentNotFound
	}
	if err != nil {
		return model.Student{}, err
	}
	return st, nil
}

// IsMember reports whether the student belongs to the event's roster, using
// the same predicate Resolve runs.
func (r *Repository) IsMember(ctx context.Context, student model.Student, ev model.Event) (bool, error) {
	pred, predArgs := rosterPredicate(ev, 2)
	args := append([]any{student.ID}, predArgs...)
	var member bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM students s WHERE s.id = $1 AND `+pred+`)`,
		args...).Scan(&member)
	return member, err
}

// membershipMismatches explains a failed membership check in terms of the
// event's defining attributes. Diagnostic only; IsMember stays authoritative.
func (r *Repository) membershipMismatches(ctx context.Context, student model.Student, ev model.Event) []string {
	switch e := ev.(type) {
	case model.AcademicMeeting:
		var out []string
		if student.DepartmentID != e.DepartmentID {
			out = append(out, fmt.Sprintf("department: student is in %d, meeting is for %d",
				student.DepartmentID, e.DepartmentID))
		}
		if student.Section != e.Section {
			out = append(out, fmt.Sprintf("section: student is in %q, meeting is for %q",
				student.Section, e.Section))
		}
		if student.YearOfStudy != e.Year {
			out = append(out, fmt.Sprintf("year: student is in year %d, meeting is for year %d",
				student.YearOfStudy, e.Year))
		}
		return out
	case model.TrainingSession:
		var active bool
		err := r.db.QueryRowContext(ctx, `
			SELECT active FROM batch_members WHERE batch_id = $1 AND student_id = $2
		`, e.BatchID, student.ID).Scan(&active)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return []string{fmt.Sprintf("batch: student is not enrolled in batch %d", e.BatchID)}
		case err == nil && !active:
			return []string{fmt.Sprintf("batch: membership in batch %d is inactive", e.BatchID)}
		}
		return nil
	default:
		return nil
	}
}
