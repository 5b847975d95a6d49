package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// BuildRegister renders the projected roster into a one-sheet workbook: the
// same rows the roster page displays, nothing recomputed.
func BuildRegister(ev model.Event, rows []model.RosterRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"Roll Number", "Name", "Department", "Status"}
	for col, h := range header {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	for r, row := range rows {
		values := []string{row.RollNumber, row.Name, row.DepartmentName, string(row.Status)}
		for c, val := range values {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// Header bold + auto-filter on row 1.
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end := colName(len(header)) + "1"
		_ = f.SetCellStyle(sheet, "A1", end, style)
		_ = f.AutoFilter(sheet, "A1:"+end, nil)
	}

	// Width heuristic from header and the first rows.
	for c := 1; c <= len(header); c++ {
		maxim := len(header[c-1])
		for r := 0; r < len(rows) && r < 50; r++ {
			values := []string{rows[r].RollNumber, rows[r].Name, rows[r].DepartmentName, string(rows[r].Status)}
			if l := len(values[c-1]); l > maxim {
				maxim = l
			}
		}
		w := float64(maxim) * 1.1
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}
	return f, nil
}

// RegisterFilename builds a human-readable download name for the event.
func RegisterFilename(ev model.Event) string {
	var title string
	switch e := ev.(type) {
	case model.AcademicMeeting:
		title = fmt.Sprintf("%s year %d sec %s", e.Subject, e.Year, e.Section)
	case model.TrainingSession:
		title = fmt.Sprintf("%s batch %d", e.Topic, e.BatchID)
	default:
		title = ev.Ref().String()
	}
	base := fmt.Sprintf("attendance %s %s.xlsx", cleanName(title), ev.Day().Format("2006-01-02"))
	return sanitizeFileName(base)
}

// colName converts a 1-based column index to its letter form (1 -> A, 27 -> AA).
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "event"
	}
	return s
}
