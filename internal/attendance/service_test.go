package attendance_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aathifpm/Feedback-system-sub000/internal/attendance"
	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

func TestFillMissingThenPage(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, _, dept := seedClass(t, h.DB, 25)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	result, err := svc.FillMissing(ctx, actor, ref, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.AffectedCount != 25 {
		t.Fatalf("affected_count = %d, want 25", result.AffectedCount)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected row errors: %v", result.Errors)
	}

	page, err := svc.Page(ctx, ref, attendance.PageRef{SortKey: "roll_number", SortDir: "ASC", PageNumber: 1, PageSize: 20})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 25 || len(page.Rows) != 20 {
		t.Fatalf("total=%d rows=%d, want 25/20", page.TotalCount, len(page.Rows))
	}
	for _, row := range page.Rows {
		if row.Status != model.StatusAbsent {
			t.Fatalf("student %d status = %s, want absent", row.StudentID, row.Status)
		}
	}

	// Re-running inserts nothing and reports zero, not an error.
	again, err := svc.FillMissing(ctx, actor, ref, "")
	if err != nil {
		t.Fatal(err)
	}
	if again.AffectedCount != 0 {
		t.Fatalf("second fill affected %d rows", again.AffectedCount)
	}
}

func TestFillMissingNeverTouchesExisting(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, ids, dept := seedClass(t, h.DB, 3)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	if _, err := svc.MarkOne(ctx, actor, ref, "2021CS001", "late"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.FillMissing(ctx, actor, ref, ""); err != nil {
			t.Fatal(err)
		}
	}
	if got := recordStatus(t, h.DB, ids[0], ref); got != "late" {
		t.Fatalf("fill_missing overwrote existing record: %s", got)
	}
	if got := recordStatus(t, h.DB, ids[1], ref); got != "absent" {
		t.Fatalf("missing record not filled: %s", got)
	}
}

func TestMarkOneIdempotent(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, ids, dept := seedClass(t, h.DB, 8)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	first, err := svc.MarkOne(ctx, actor, ref, "2021CS007", "present")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.MarkOne(ctx, actor, ref, "2021CS007", "present")
	if err != nil {
		t.Fatal(err)
	}
	if first.StudentID != ids[6] || second.StudentID != ids[6] {
		t.Fatalf("wrong student: %d / %d, want %d", first.StudentID, second.StudentID, ids[6])
	}
	if countRecords(t, h.DB, ref) != 1 {
		t.Fatalf("expected exactly one record, got %d", countRecords(t, h.DB, ref))
	}
	if got := recordStatus(t, h.DB, ids[6], ref); got != "present" {
		t.Fatalf("status = %s, want present", got)
	}
}

func TestMarkOneRejectsOutsiders(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, _, dept := seedClass(t, h.DB, 2)

	// A student from another department scanning into this meeting.
	otherDept := seedDepartment(t, h.DB, "Mechanical", "ME")
	seedStudent(t, h.DB, "2021ME001", "Outsider", otherDept, "A", 2)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	_, err := svc.MarkOne(ctx, actor, ref, "2021ME001", "present")
	nm, ok := attendance.AsNotAMember(err)
	if !ok {
		t.Fatalf("expected NotAMemberError, got %v", err)
	}
	found := false
	for _, m := range nm.Mismatches {
		if strings.HasPrefix(m, "department:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("department mismatch not surfaced: %v", nm.Mismatches)
	}
	if countRecords(t, h.DB, ref) != 0 {
		t.Fatal("rejected scan must not write a record")
	}

	// Unknown roll is a different failure with different remediation.
	_, err = svc.MarkOne(ctx, actor, ref, "2099XX999", "present")
	if !errors.Is(err, attendance.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}

	// Status outside the enum is rejected before anything else.
	_, err = svc.MarkOne(ctx, actor, ref, "2021CS001", "attending")
	if !errors.Is(err, attendance.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestBulkSetDefaultOverwrites(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, ids, dept := seedClass(t, h.DB, 5)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	if _, err := svc.MarkOne(ctx, actor, ref, "2021CS002", "present"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MarkOne(ctx, actor, ref, "2021CS003", "excused"); err != nil {
		t.Fatal(err)
	}

	result, err := svc.BulkSetDefault(ctx, actor, ref, "absent")
	if err != nil {
		t.Fatal(err)
	}
	if result.AffectedCount != 5 {
		t.Fatalf("affected_count = %d, want 5", result.AffectedCount)
	}
	for _, id := range ids {
		if got := recordStatus(t, h.DB, id, ref); got != "absent" {
			t.Fatalf("student %d status = %s, want absent", id, got)
		}
	}
	if countRecords(t, h.DB, ref) != 5 {
		t.Fatalf("row count = %d, want 5", countRecords(t, h.DB, ref))
	}
}

func TestUpdateManyScopes(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, ids, dept := seedClass(t, h.DB, 6)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	if _, err := svc.BulkSetDefault(ctx, actor, ref, "present"); err != nil {
		t.Fatal(err)
	}

	// Page 1 of size 3 in roll order holds ids[0..2]; ids[4] is off-page.
	page := attendance.PageRef{SortKey: "roll_number", SortDir: "ASC", PageNumber: 1, PageSize: 3}
	result, err := svc.UpdateMany(ctx, actor, ref, map[int64]string{
		ids[1]: "late",
		ids[2]: "excused",
		ids[4]: "late",
	}, attendance.ScopePage, page)
	if err != nil {
		t.Fatal(err)
	}
	if result.AffectedCount != 2 {
		t.Fatalf("affected_count = %d, want 2", result.AffectedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].StudentID != ids[4] {
		t.Fatalf("expected one row error for off-page student, got %v", result.Errors)
	}
	if got := recordStatus(t, h.DB, ids[1], ref); got != "late" {
		t.Fatalf("ids[1] = %s", got)
	}
	if got := recordStatus(t, h.DB, ids[2], ref); got != "excused" {
		t.Fatalf("ids[2] = %s", got)
	}
	// Untouched rows keep their prior state.
	if got := recordStatus(t, h.DB, ids[0], ref); got != "present" {
		t.Fatalf("ids[0] = %s, want present", got)
	}
	if got := recordStatus(t, h.DB, ids[4], ref); got != "present" {
		t.Fatalf("off-page student modified: %s", got)
	}

	// Whole-roster scope reaches the same student; bad statuses are per-row.
	result, err = svc.UpdateMany(ctx, actor, ref, map[int64]string{
		ids[4]: "late",
		ids[5]: "sleeping",
	}, attendance.ScopeAll, attendance.PageRef{})
	if err != nil {
		t.Fatal(err)
	}
	if result.AffectedCount != 1 || len(result.Errors) != 1 {
		t.Fatalf("tally = %d/%v", result.AffectedCount, result.Errors)
	}
	if got := recordStatus(t, h.DB, ids[4], ref); got != "late" {
		t.Fatalf("ids[4] = %s, want late", got)
	}
}

func TestValidatorMatchesResolver(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	repo := attendance.NewRepository(h.DB)

	dept := seedDepartment(t, h.DB, "Computer Science", "CS")
	inYear := seedStudent(t, h.DB, "2021CS001", "In Year", dept, "A", 2)
	wrongSection := seedStudent(t, h.DB, "2021CS002", "Wrong Section", dept, "B", 2)
	wrongYear := seedStudent(t, h.DB, "2022CS003", "Wrong Year", dept, "A", 1)

	batch := seedBatch(t, h.DB, "Placement 2026", dept)
	addBatchMember(t, h.DB, batch, inYear, true)
	addBatchMember(t, h.DB, batch, wrongSection, false) // inactive membership

	meetingID := seedMeeting(t, h.DB, "2026-03-02", "09:00", "09:50", "Algorithms", 2, "A", dept, 501, false)
	sessionID := seedSession(t, h.DB, "2026-03-02", "14:00", "16:00", "Aptitude", batch, dept, false)

	meeting, err := repo.LoadEvent(ctx, model.EventRef{Variant: model.VariantAcademic, ID: meetingID})
	if err != nil {
		t.Fatal(err)
	}
	session, err := repo.LoadEvent(ctx, model.EventRef{Variant: model.VariantTraining, ID: sessionID})
	if err != nil {
		t.Fatal(err)
	}

	all := []int64{inYear, wrongSection, wrongYear}
	for _, ev := range []model.Event{meeting, session} {
		roster, err := repo.Resolve(ctx, ev)
		if err != nil {
			t.Fatal(err)
		}
		resolved := make(map[int64]bool, len(roster))
		for _, st := range roster {
			resolved[st.ID] = true
		}
		for _, id := range all {
			var student model.Student
			row := h.DB.QueryRow(`
				SELECT id, roll_number, register_number, name, department_id, section, batch_id, year_of_study
				FROM students WHERE id = $1`, id)
			if err := row.Scan(&student.ID, &student.RollNumber, &student.RegisterNumber, &student.Name,
				&student.DepartmentID, &student.Section, &student.BatchID, &student.YearOfStudy); err != nil {
				t.Fatal(err)
			}
			member, err := repo.IsMember(ctx, student, ev)
			if err != nil {
				t.Fatal(err)
			}
			if member != resolved[id] {
				t.Fatalf("event %s student %d: is_member=%v but resolver says %v",
					ev.Ref(), id, member, resolved[id])
			}
		}
	}

	// The inactive membership must also be invisible to the resolver.
	roster, err := repo.Resolve(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if len(roster) != 1 || roster[0].ID != inYear {
		t.Fatalf("training roster = %v, want only the active member", roster)
	}
}

func TestSummaryReResolvesRoster(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, _, dept := seedClass(t, h.DB, 4)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	if _, err := svc.MarkOne(ctx, actor, ref, "2021CS001", "present"); err != nil {
		t.Fatal(err)
	}
	summary, err := svc.Summary(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if summary.RosterSize != 4 || summary.Marked != 1 || summary.Unmarked != 3 || summary.Counts.Present != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	// Roster drift: a transfer into the section grows the denominator.
	seedStudent(t, h.DB, "2021CS900", "Transfer", dept, "A", 2)
	summary, err = svc.Summary(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if summary.RosterSize != 5 || summary.Unmarked != 4 {
		t.Fatalf("summary after drift = %+v", summary)
	}
}

func TestEventNotFound(t *testing.T) {
	h := startDB(t)
	ctx := context.Background()
	ref, _, dept := seedClass(t, h.DB, 1)

	repo := attendance.NewRepository(h.DB)
	svc := attendance.NewService(repo, nil)
	actor := facultyActor(dept)

	_, err := svc.MarkOne(ctx, actor, model.EventRef{Variant: model.VariantAcademic, ID: 9999}, "2021CS001", "present")
	if !errors.Is(err, attendance.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}

	// Same id, wrong variant namespace: not comparable, must not resolve.
	_, err = svc.MarkOne(ctx, actor, model.EventRef{Variant: model.VariantTraining, ID: ref.ID}, "2021CS001", "present")
	if !errors.Is(err, attendance.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound across variants, got %v", err)
	}
}
