package model

import "time"

// Role is the actor role supplied by the authentication layer.
type Role string

const (
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string from a token or request.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r == RoleFaculty || r == RoleAdmin
}

// ActorContext is the authenticated identity every engine operation runs
// under. It is built once by the auth middleware and passed down explicitly;
// the engine never mutates it and never checks credentials itself.
type ActorContext struct {
	ActorID      int64 `json:"actor_id"`
	Role         Role  `json:"actor_role"`
	DepartmentID int64 `json:"department_id"`
}

// IsAdmin reports whether the actor bypasses instructor-assignment checks.
func (a ActorContext) IsAdmin() bool { return a.Role == RoleAdmin }

// Student is a roster member. Read-only from the engine's perspective.
type Student struct {
	ID             int64  `json:"id"`
	RollNumber     string `json:"roll_number"`
	RegisterNumber string `json:"register_number"`
	Name           string `json:"name"`
	DepartmentID   int64  `json:"department_id"`
	Section        string `json:"section"`
	BatchID        *int64 `json:"batch_id,omitempty"`
	YearOfStudy    int    `json:"year_of_study"`
}

// AttendanceRecord is the single stored fact per (student, event) pair.
// Absence of a record projects as absent but is not itself stored.
type AttendanceRecord struct {
	StudentID int64     `json:"student_id"`
	Event     EventRef  `json:"event"`
	Status    Status    `json:"status"`
	MarkedBy  int64     `json:"marked_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RosterRow is one projected (student, current status) pair.
type RosterRow struct {
	StudentID      int64  `json:"student_id"`
	RollNumber     string `json:"roll_number"`
	Name           string `json:"name"`
	DepartmentName string `json:"department_name"`
	Status         Status `json:"status"`
}

// RosterPage is the paginated projection returned to the presentation layer.
type RosterPage struct {
	Rows       []RosterRow `json:"rows"`
	TotalCount int         `json:"total_count"`
	PageNumber int         `json:"page_number"`
	PageSize   int         `json:"page_size"`
}

// RowError reports a single student's failure inside a bulk pass.
type RowError struct {
	StudentID int64  `json:"student_id"`
	Reason    string `json:"reason"`
}

// MutationResult is the success/failure tally of any mutating operation.
type MutationResult struct {
	AffectedCount int        `json:"affected_count"`
	Errors        []RowError `json:"errors"`
}

// StatusCounts holds per-status record counts for one event.
type StatusCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
}

// Marked is the number of students with a materialized record.
func (c StatusCounts) Marked() int {
	return c.Present + c.Absent + c.Late + c.Excused
}

// EventSummary carries the display counts for one event. RosterSize is
// re-resolved on every call, never cached, so it tracks roster drift.
type EventSummary struct {
	Event      EventRef     `json:"event"`
	RosterSize int          `json:"roster_size"`
	Marked     int          `json:"marked"`
	Unmarked   int          `json:"unmarked"`
	Counts     StatusCounts `json:"counts"`
}
