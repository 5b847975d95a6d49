package attendance

import (
	"context"
	"fmt"
	"strings"

	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// sortColumns is the closed allow-list of projection sort keys. Caller input
// is resolved against this map in application code; the string itself never
// reaches a query fragment.
var sortColumns = map[string]string{
	"roll_number":     "s.roll_number",
	"name":            "s.name",
	"department_name": "d.name",
	"status":          "current_status",
}

// resolveSort maps caller-supplied sort parameters onto the allow-list.
// Unknown keys fall back to roll_number, unknown directions to ASC.
func resolveSort(key, dir string) (string, string) {
	col, ok := sortColumns[key]
	if !ok {
		col = sortColumns["roll_number"]
	}
	d := strings.ToUpper(dir)
	if d != "ASC" && d != "DESC" {
		d = "ASC"
	}
	return col, d
}

// Page projects the roster with each student's current status. Students
// without a record read as absent via the left join; that default is derived
// at read time, not stored. A page number past the end resets to page 1
// instead of rendering a dead-end empty view.
func (r *Repository) Page(ctx context.Context, ev model.Event, sortKey, sortDir string, pageNumber, pageSize int) (model.RosterPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	col, dir := resolveSort(sortKey, sortDir)

	pred, predArgs := rosterPredicate(ev, 1)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students s WHERE `+pred, predArgs...).Scan(&total); err != nil {
		return model.RosterPage{}, err
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageNumber < 1 || (pageCount > 0 && pageNumber > pageCount) {
		pageNumber = 1
	}

	ref := ev.Ref()
	n := len(predArgs)
	query := fmt.Sprintf(`
		SELECT s.id, s.roll_number, s.name, d.name,
		       COALESCE(ar.status, 'absent') AS current_status
		FROM students s
		JOIN departments d ON d.id = s.department_id
		LEFT JOIN attendance_records ar
		  ON ar.student_id = s.id AND ar.event_variant = $%d AND ar.event_id = $%d
		WHERE %s
		ORDER BY %s %s, s.roll_number ASC
		LIMIT $%d OFFSET $%d
	`, n+1, n+2, pred, col, dir, n+3, n+4)
	args := append(predArgs, ref.Variant, ref.ID, pageSize, (pageNumber-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.RosterPage{}, err
	}
	defer rows.Close()

	page := model.RosterPage{
		Rows:       []model.RosterRow{},
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
	for rows.Next() {
		var row model.RosterRow
		if err := rows.Scan(&row.StudentID, &row.RollNumber, &row.Name, &row.DepartmentName, &row.Status); err != nil {
			return model.RosterPage{}, err
		}
		page.Rows = append(page.Rows, row)
	}
	return page, rows.Err()
}
