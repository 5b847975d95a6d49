package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aathifpm/Feedback-system-sub000/internal/metrics"
	"github.com/aathifpm/Feedback-system-sub000/internal/model"
)

// Scope bounds which students an UpdateMany call may touch.
type Scope string

const (
	ScopePage Scope = "page"
	ScopeAll  Scope = "all"
)

// ParseScope validates a caller-supplied scope.
func ParseScope(s string) (Scope, bool) {
	sc := Scope(s)
	return sc, sc == ScopePage || sc == ScopeAll
}

// PageRef carries the projection parameters that define "the current page"
// for page-scoped updates and for rendering.
type PageRef struct {
	SortKey    string
	SortDir    string
	PageNumber int
	PageSize   int
}

// Service is the attendance engine: it reconciles rosters against events and
// owns every write to the attendance record table.
type Service struct {
	repo *Repository
	log  *zap.Logger
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// LoadEvent resolves an event reference.
func (s *Service) LoadEvent(ctx context.Context, ref model.EventRef) (model.Event, error) {
	return s.repo.LoadEvent(ctx, ref)
}

// ScheduleToday lists the actor's attendance-eligible events for today,
// both kinds merged and ordered by start time.
func (s *Service) ScheduleToday(ctx context.Context, actor model.ActorContext) ([]model.Event, error) {
	return s.repo.ListDay(ctx, actor, time.Now())
}

// Page renders the projected roster page for an event.
func (s *Service) Page(ctx context.Context, ref model.EventRef, p PageRef) (model.RosterPage, error) {
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.RosterPage{}, err
	}
	return s.repo.Page(ctx, ev, p.SortKey, p.SortDir, p.PageNumber, p.PageSize)
}

// MarkOne records one student's status from a scanned or typed roll number.
// Membership is validated before the write; a rejected pair never reaches
// the record table.
func (s *Service) MarkOne(ctx context.Context, actor model.ActorContext, ref model.EventRef, roll string, status string) (model.AttendanceRecord, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return model.AttendanceRecord{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	student, err := s.repo.FindStudentByRoll(ctx, roll)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	member, err := s.repo.IsMember(ctx, student, ev)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if !member {
		return model.AttendanceRecord{}, &NotAMemberError{
			RollNumber: student.RollNumber,
			Event:      ref,
			Mismatches: s.repo.membershipMismatches(ctx, student, ev),
		}
	}

	rec, err := s.repo.UpsertOne(ctx, model.AttendanceRecord{
		StudentID: student.ID,
		Event:     ev.Ref(),
		Status:    st,
		MarkedBy:  actor.ActorID,
	})
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	metrics.MarksWritten.WithLabelValues("single").Inc()
	return rec, nil
}

// BulkSetDefault overwrites every roster member's record with one status.
// Intentionally destructive of prior per-student distinctions; a row failure
// is tallied and the pass continues.
func (s *Service) BulkSetDefault(ctx context.Context, actor model.ActorContext, ref model.EventRef, status string) (model.MutationResult, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return model.MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.MutationResult{}, err
	}
	roster, err := s.repo.Resolve(ctx, ev)
	if err != nil {
		return model.MutationResult{}, err
	}

	result := model.MutationResult{Errors: []model.RowError{}}
	for _, student := range roster {
		_, err := s.repo.UpsertOne(ctx, model.AttendanceRecord{
			StudentID: student.ID,
			Event:     ev.Ref(),
			Status:    st,
			MarkedBy:  actor.ActorID,
		})
		if err != nil {
			s.rowFailed(ref, student.ID, err)
			result.Errors = append(result.Errors, model.RowError{StudentID: student.ID, Reason: "write failed"})
			continue
		}
		result.AffectedCount++
		metrics.MarksWritten.WithLabelValues("bulk_default").Inc()
	}
	return result, nil
}

// FillMissing materializes def (absent when empty) for roster members with
// no record yet. Existing records are never touched; the returned count is
// the rows actually inserted, and zero is a valid outcome.
func (s *Service) FillMissing(ctx context.Context, actor model.ActorContext, ref model.EventRef, def model.Status) (model.MutationResult, error) {
	if def == "" {
		def = model.StatusAbsent
	}
	if !def.Valid() {
		return model.MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, def)
	}
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.MutationResult{}, err
	}
	roster, err := s.repo.Resolve(ctx, ev)
	if err != nil {
		return model.MutationResult{}, err
	}

	result := model.MutationResult{Errors: []model.RowError{}}
	for _, student := range roster {
		inserted, err := s.repo.InsertIfMissing(ctx, model.AttendanceRecord{
			StudentID: student.ID,
			Event:     ev.Ref(),
			Status:    def,
			MarkedBy:  actor.ActorID,
		})
		if err != nil {
			s.rowFailed(ref, student.ID, err)
			result.Errors = append(result.Errors, model.RowError{StudentID: student.ID, Reason: "write failed"})
			continue
		}
		if inserted {
			result.AffectedCount++
			metrics.MarksWritten.WithLabelValues("fill_missing").Inc()
		}
	}
	return result, nil
}

// UpdateMany applies per-student overwrites for ids in marks. Scope bounds
// eligibility (the projected page vs the whole roster); the per-row write is
// the same atomic upsert either way. Ineligible ids and bad statuses are
// reported per row, never aborting the rest of the pass.
func (s *Service) UpdateMany(ctx context.Context, actor model.ActorContext, ref model.EventRef, marks map[int64]string, scope Scope, page PageRef) (model.MutationResult, error) {
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.MutationResult{}, err
	}

	eligible := make(map[int64]bool)
	switch scope {
	case ScopePage:
		pg, err := s.repo.Page(ctx, ev, page.SortKey, page.SortDir, page.PageNumber, page.PageSize)
		if err != nil {
			return model.MutationResult{}, err
		}
		for _, row := range pg.Rows {
			eligible[row.StudentID] = true
		}
	default:
		roster, err := s.repo.Resolve(ctx, ev)
		if err != nil {
			return model.MutationResult{}, err
		}
		for _, student := range roster {
			eligible[student.ID] = true
		}
	}

	ids := make([]int64, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := model.MutationResult{Errors: []model.RowError{}}
	for _, id := range ids {
		st, ok := model.ParseStatus(marks[id])
		if !ok {
			result.Errors = append(result.Errors, model.RowError{
				StudentID: id, Reason: fmt.Sprintf("invalid status %q", marks[id]),
			})
			continue
		}
		if !eligible[id] {
			result.Errors = append(result.Errors, model.RowError{
				StudentID: id, Reason: fmt.Sprintf("not eligible in scope %q", scope),
			})
			continue
		}
		_, err := s.repo.UpsertOne(ctx, model.AttendanceRecord{
			StudentID: id,
			Event:     ev.Ref(),
			Status:    st,
			MarkedBy:  actor.ActorID,
		})
		if err != nil {
			s.rowFailed(ref, id, err)
			result.Errors = append(result.Errors, model.RowError{StudentID: id, Reason: "write failed"})
			continue
		}
		result.AffectedCount++
		metrics.MarksWritten.WithLabelValues("update_many").Inc()
	}
	return result, nil
}

// Summary recomputes display counts for an event. Roster size is re-resolved
// on every call so the denominator tracks membership drift.
func (s *Service) Summary(ctx context.Context, ref model.EventRef) (model.EventSummary, error) {
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return model.EventSummary{}, err
	}
	roster, err := s.repo.Resolve(ctx, ev)
	if err != nil {
		return model.EventSummary{}, err
	}
	counts, err := s.repo.StatusCounts(ctx, ref)
	if err != nil {
		return model.EventSummary{}, err
	}
	marked := counts.Marked()
	unmarked := len(roster) - marked
	if unmarked < 0 {
		// Records can outlive roster drift; the summary still reports them.
		unmarked = 0
	}
	return model.EventSummary{
		Event:      ev.Ref(),
		RosterSize: len(roster),
		Marked:     marked,
		Unmarked:   unmarked,
		Counts:     counts,
	}, nil
}

// Register walks the whole projection in roll-number order for export. The
// page loop stops on the reported total so the overflow reset in Page can
// never make it wrap back to page 1.
func (s *Service) Register(ctx context.Context, ref model.EventRef) (model.Event, []model.RosterRow, error) {
	ev, err := s.repo.LoadEvent(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	var rows []model.RosterRow
	for page := 1; ; page++ {
		pg, err := s.repo.Page(ctx, ev, "roll_number", "ASC", page, MaxPageSize)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, pg.Rows...)
		if len(rows) >= pg.TotalCount || len(pg.Rows) == 0 {
			break
		}
	}
	return ev, rows, nil
}

func (s *Service) rowFailed(ref model.EventRef, studentID int64, err error) {
	metrics.RowFailures.Inc()
	s.log.Warn("attendance row write failed",
		zap.String("event", ref.String()),
		zap.Int64("student_id", studentID),
		zap.Error(err))
}
