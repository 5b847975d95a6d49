package attendance_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
	"github.com/aathifpm/Feedback-system-sub000/internal/testutil/testdb"
)

func startDB(t *testing.T) *testdb.DBHandle {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h
}

func seedDepartment(t *testing.T, db *sql.DB, name, code string) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`
		INSERT INTO departments (name, code) VALUES ($1, $2) RETURNING id`,
		name, code).Scan(&id); err != nil {
		t.Fatal(err)
	}
	return id
}

func seedStudent(t *testing.T, db *sql.DB, roll, name string, dept int64, section string, year int) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`
		INSERT INTO students (roll_number, register_number, name, department_id, section, year_of_study)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		roll, "R"+roll, name, dept, section, year).Scan(&id); err != nil {
		t.Fatal(err)
	}
	return id
}

func seedMeeting(t *testing.T, db *sql.DB, date, start, end, subject string, year int, section string, dept, faculty int64, cancelled bool) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`
		INSERT INTO academic_meetings (meeting_date, start_time, end_time, subject, year, section, department_id, faculty_id, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		date, start, end, subject, year, section, dept, faculty, cancelled).Scan(&id); err != nil {
		t.Fatal(err)
	}
	return id
}

func seedBatch(t *testing.T, db *sql.DB, name string, dept int64) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`
		INSERT INTO batches (name, department_id) VALUES ($1, $2) RETURNING id`,
		name, dept).Scan(&id); err != nil {
		t.Fatal(err)
	}
	return id
}

func addBatchMember(t *testing.T, db *sql.DB, batch, student int64, active bool) {
	t.Helper()
	if _, err := db.Exec(`
		INSERT INTO batch_members (batch_id, student_id, active) VALUES ($1, $2, $3)`,
		batch, student, active); err != nil {
		t.Fatal(err)
	}
}

func seedSession(t *testing.T, db *sql.DB, date, start, end, topic string, batch, dept int64, cancelled bool) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRow(`
		INSERT INTO training_sessions (session_date, start_time, end_time, topic, batch_id, department_id, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		date, start, end, topic, batch, dept, cancelled).Scan(&id); err != nil {
		t.Fatal(err)
	}
	return id
}

// seedClass seeds a department plus n students in one (year, section) group
// and a meeting over them; returns the meeting ref, student ids and dept id.
func seedClass(t *testing.T, db *sql.DB, n int) (model.EventRef, []int64, int64) {
	t.Helper()
	dept := seedDepartment(t, db, "Computer Science", "CS")
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		roll := fmt.Sprintf("2021CS%03d", i)
		ids = append(ids, seedStudent(t, db, roll, "Student "+roll, dept, "A", 2))
	}
	meetingID := seedMeeting(t, db, "2026-03-02", "09:00", "09:50", "Data Structures", 2, "A", dept, 501, false)
	return model.EventRef{Variant: model.VariantAcademic, ID: meetingID}, ids, dept
}

func countRecords(t *testing.T, db *sql.DB, ref model.EventRef) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM attendance_records WHERE event_variant = $1 AND event_id = $2`,
		ref.Variant, ref.ID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func recordStatus(t *testing.T, db *sql.DB, studentID int64, ref model.EventRef) string {
	t.Helper()
	var status string
	err := db.QueryRow(`
		SELECT status FROM attendance_records
		WHERE student_id = $1 AND event_variant = $2 AND event_id = $3`,
		studentID, ref.Variant, ref.ID).Scan(&status)
	if err != nil {
		t.Fatalf("record for student %d: %v", studentID, err)
	}
	return status
}

func facultyActor(dept int64) model.ActorContext {
	return model.ActorContext{ActorID: 501, Role: model.RoleFaculty, DepartmentID: dept}
}
