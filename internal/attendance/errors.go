package attendance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// Terminal errors on the single-entry path. Bulk passes never surface these
// as call failures; they accumulate per-row tallies instead.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidStatus   = errors.New("invalid attendance status")
)

// NotAMemberError means the student exists but fails the roster predicate
// for the event. Mismatches carries the event's defining attributes so the
// operator can spot a wrong roll-number scan.
type NotAMemberError struct {
	RollNumber string
	Event      model.EventRef
	Mismatches []string
}

func (e *NotAMemberError) Error() string {
	msg := fmt.Sprintf("student %s is not on the roster for %s", e.RollNumber, e.Event)
	if len(e.Mismatches) > 0 {
		msg += " (" + strings.Join(e.Mismatches, "; ") + ")"
	}
	return msg
}

// AsNotAMember unwraps a NotAMemberError if err carries one.
func AsNotAMember(err error) (*NotAMemberError, bool) {
	var nm *NotAMemberError
	if errors.As(err, &nm) {
		return nm, true
	}
	return nil, false
}
