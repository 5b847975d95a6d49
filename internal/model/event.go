package model

import (
	"fmt"
	"time"
)

// EventVariant tags which id namespace an event id belongs to. The two
// namespaces are independent, so an id is meaningless without its variant.
type EventVariant string

const (
	VariantAcademic EventVariant = "academic"
	VariantTraining EventVariant = "training"
)

// ParseVariant validates a caller-supplied variant tag.
func ParseVariant(s string) (EventVariant, error) {
	switch EventVariant(s) {
	case VariantAcademic, VariantTraining:
		return EventVariant(s), nil
	default:
		return "", fmt.Errorf("unknown event variant %q", s)
	}
}

// EventRef identifies an event across both variants.
type EventRef struct {
	Variant EventVariant `json:"event_variant"`
	ID      int64        `json:"event_id"`
}

func (r EventRef) String() string {
	return fmt.Sprintf("%s/%d", r.Variant, r.ID)
}

// Event is the closed set of timetabled occurrences attendance is recorded
// against. Engine code dispatches on the concrete type, never on a raw tag.
type Event interface {
	Ref() EventRef
	StartsAt() string
	Day() time.Time
}

// AcademicMeeting is a timetabled class meeting taught by a faculty member.
type AcademicMeeting struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Subject      string    `json:"subject"`
	Venue        string    `json:"venue"`
	Year         int       `json:"year"`
	Semester     int       `json:"semester"`
	Section      string    `json:"section"`
	DepartmentID int64     `json:"department_id"`
	FacultyID    int64     `json:"faculty_id"`
	Cancelled    bool      `json:"-"`
}

func (m AcademicMeeting) Ref() EventRef    { return EventRef{Variant: VariantAcademic, ID: m.ID} }
func (m AcademicMeeting) StartsAt() string { return m.StartTime }
func (m AcademicMeeting) Day() time.Time   { return m.Date }

// TrainingSession is a placement/skill training slot scoped to a batch.
type TrainingSession struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Topic        string    `json:"topic"`
	Venue        string    `json:"venue"`
	BatchID      int64     `json:"batch_id"`
	DepartmentID int64     `json:"department_id"`
	TrainerName  string    `json:"trainer_name"`
	Cancelled    bool      `json:"-"`
}

func (t TrainingSession) Ref() EventRef    { return EventRef{Variant: VariantTraining, ID: t.ID} }
func (t TrainingSession) StartsAt() string { return t.StartTime }
func (t TrainingSession) Day() time.Time   { return t.Date }
