package model

// Status is the closed attendance state enum.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Valid reports whether the status is a supported value.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// ParseStatus converts a caller-supplied string into a Status.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

// Statuses lists every valid status, in display order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}
}
