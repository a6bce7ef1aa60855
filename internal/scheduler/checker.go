package scheduler

import (
	"context"
	"strings"

	"classgrid/backend/internal/model"
)

// Candidate 待校验的排课位置
type Candidate struct {
	BatchID      string
	FacultyID    string
	ClassroomID  string
	TimeSlotID   string
	AcademicYear string
	// ExcludeID 非空时跳过该条目（编辑条目时排除自身）
	ExcludeID string
}

// CandidateOf 以已有条目的位置构造 Candidate
func CandidateOf(e *model.TimetableEntry) Candidate {
	return Candidate{
		BatchID:      e.BatchID,
		FacultyID:    e.FacultyID,
		ClassroomID:  e.ClassroomID,
		TimeSlotID:   e.TimeSlotID,
		AcademicYear: e.AcademicYear,
	}
}

// Clashes 冲突判定：同一学年、同一时段，且班级、教师、教室任一相同
// 排课生成、人工编辑与全量校验共用此判定
func Clashes(e *model.TimetableEntry, c Candidate) bool {
	if c.ExcludeID != "" && e.EntryID == c.ExcludeID {
		return false
	}
	if e.TimeSlotID != c.TimeSlotID || e.AcademicYear != c.AcademicYear {
		return false
	}
	return e.BatchID == c.BatchID || e.FacultyID == c.FacultyID || e.ClassroomID == c.ClassroomID
}

// SharedDimensions 返回两条同时段条目重叠的维度（batch / faculty / classroom）
func SharedDimensions(a *model.TimetableEntry, c Candidate) []string {
	var dims []string
	if a.BatchID == c.BatchID {
		dims = append(dims, "batch")
	}
	if a.FacultyID == c.FacultyID {
		dims = append(dims, "faculty")
	}
	if a.ClassroomID == c.ClassroomID {
		dims = append(dims, "classroom")
	}
	return dims
}

// ConflictReason 生成冲突原因描述，如 "same batch, classroom scheduled in the same time slot"
func ConflictReason(a *model.TimetableEntry, c Candidate) string {
	return "same " + strings.Join(SharedDimensions(a, c), ", ") + " scheduled in the same time slot"
}

// filterClashes 返回 entries 中与候选位置冲突的条目（保持输入顺序）
func filterClashes(entries []model.TimetableEntry, c Candidate) []model.TimetableEntry {
	var out []model.TimetableEntry
	for i := range entries {
		if Clashes(&entries[i], c) {
			out = append(out, entries[i])
		}
	}
	return out
}

// EntryFinder 按（学年, 时段）读取已持久化条目
// repository.TimetableEntryRepository 满足该接口
type EntryFinder interface {
	ListBySlot(ctx context.Context, academicYear, timeSlotID string) ([]model.TimetableEntry, error)
}

// Checker 针对已持久化条目的冲突检查器，只读
type Checker struct {
	finder EntryFinder
}

// NewChecker 创建 Checker
func NewChecker(finder EntryFinder) *Checker {
	return &Checker{finder: finder}
}

// FindConflicts 返回与候选位置冲突的已持久化条目，无冲突时返回空切片
func (c *Checker) FindConflicts(ctx context.Context, cand Candidate) ([]model.TimetableEntry, error) {
	rows, err := c.finder.ListBySlot(ctx, cand.AcademicYear, cand.TimeSlotID)
	if err != nil {
		return nil, err
	}
	return filterClashes(rows, cand), nil
}
