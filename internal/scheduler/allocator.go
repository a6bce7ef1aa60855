package scheduler

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"classgrid/backend/internal/model"
)

// 输入错误：在排课开始前拒绝，不作为排课冲突返回
var (
	ErrInvalidInput        = errors.New("排课输入不合法")
	ErrInvalidAcademicYear = errors.New("学年格式应为 YYYY-YY")
	ErrNoClassrooms        = errors.New("没有可用教室")
	ErrNoTimeSlots         = errors.New("没有可用时间段")
	ErrInvalidCredits      = errors.New("课程学分必须大于 0")
	ErrUnknownSubjectKind  = errors.New("未知课程类型")
)

// ReasonNoAvailableSlot 某节课找不到空闲（时段, 教室）组合时的冲突原因
const ReasonNoAvailableSlot = "no available slot found"

var academicYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidAcademicYear 校验学年格式，如 "2024-25"
func ValidAcademicYear(year string) bool {
	return academicYearPattern.MatchString(year)
}

// Assignment 一条待排的教师-课程-班级分配，每周课时数 = Credits
type Assignment struct {
	AssignmentID string
	BatchID      string
	SubjectID    string
	FacultyID    string
	SubjectKind  string
	Credits      int

	// 展示字段，仅用于冲突报告
	BatchName   string
	SubjectName string
	FacultyName string
}

// AssignmentsFrom 将预加载了 Subject/Batch/Faculty 的分配记录转换为排课输入，保持原顺序
func AssignmentsFrom(links []model.FacultySubject) []Assignment {
	out := make([]Assignment, 0, len(links))
	for _, fs := range links {
		a := Assignment{
			AssignmentID: fs.FacultySubjectID,
			BatchID:      fs.BatchID,
			SubjectID:    fs.SubjectID,
			FacultyID:    fs.FacultyID,
		}
		if fs.Subject != nil {
			a.SubjectKind = fs.Subject.Kind
			a.Credits = fs.Subject.Credits
			a.SubjectName = fs.Subject.Name
		}
		if fs.Batch != nil {
			a.BatchName = fs.Batch.Name
		}
		if fs.Faculty != nil {
			a.FacultyName = fs.Faculty.Name
		}
		out = append(out, a)
	}
	return out
}

// Options 生成选项。Optimization 仅记录日志，不影响排课
type Options struct {
	Optimization string `json:"optimization,omitempty" yaml:"optimization,omitempty"`
}

// Input 一次排课生成的完整输入
// 各集合的顺序即搜索顺序，调用方负责按固定规则排序
type Input struct {
	AcademicYear string
	Assignments  []Assignment
	Classrooms   []model.Classroom
	TimeSlots    []model.TimeSlot
	// Existing 本学年已持久化且不会被本次生成替换的条目
	Existing []model.TimetableEntry
	Options  Options
}

// Validate 校验输入，错误均包装 ErrInvalidInput
func (in *Input) Validate() error {
	if !ValidAcademicYear(in.AcademicYear) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrInvalidAcademicYear, in.AcademicYear)
	}
	if len(usableClassrooms(in.Classrooms)) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoClassrooms)
	}
	if len(usableTimeSlots(in.TimeSlots)) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoTimeSlots)
	}
	for _, a := range in.Assignments {
		if a.Credits < 1 {
			return fmt.Errorf("%w: %w: assignment %s has %d", ErrInvalidInput, ErrInvalidCredits, a.AssignmentID, a.Credits)
		}
		if !IsKnownSubjectKind(a.SubjectKind) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrUnknownSubjectKind, a.SubjectKind)
		}
	}
	return nil
}

// SessionConflict 无法安排的一节课
type SessionConflict struct {
	AssignmentID string `json:"assignment_id" yaml:"assignment_id"`
	Batch        string `json:"batch"         yaml:"batch"`
	Subject      string `json:"subject"       yaml:"subject"`
	Faculty      string `json:"faculty"       yaml:"faculty"`
	SessionIndex int    `json:"session_index" yaml:"session_index"`
	Reason       string `json:"reason"        yaml:"reason"`
}

// Result 生成结果：已安排的草稿条目 + 未能安排的课时
type Result struct {
	Entries   []model.TimetableEntry
	Conflicts []SessionConflict
}

// Allocator 贪心首次适配排课器，无回溯，无全局可变状态
type Allocator struct {
	logger *zap.Logger
}

// NewAllocator 创建 Allocator
func NewAllocator(logger *zap.Logger) *Allocator {
	return &Allocator{logger: logger}
}

// Generate 按固定顺序为每节课寻找第一个无冲突的（时段, 教室）
// 搜索顺序：分配 → 课时序号 → 时段 → 兼容教室，均按输入顺序
// 只有 ctx 取消会中断生成；排不下的课时记入 Conflicts 后继续
func (a *Allocator) Generate(ctx context.Context, in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	slots := usableTimeSlots(in.TimeSlots)
	rooms := usableClassrooms(in.Classrooms)

	a.logger.Info("开始排课",
		zap.String("academic_year", in.AcademicYear),
		zap.Int("assignments", len(in.Assignments)),
		zap.Int("classrooms", len(rooms)),
		zap.Int("time_slots", len(slots)),
		zap.Int("existing_entries", len(in.Existing)),
		zap.String("optimization", in.Options.Optimization),
	)

	persisted := newSlotIndex(in.Existing)
	scheduled := newSlotIndex(nil)

	res := &Result{
		Entries:   []model.TimetableEntry{},
		Conflicts: []SessionConflict{},
	}

	for _, asg := range in.Assignments {
		candidates := roomsFor(asg.SubjectKind, rooms)

		for session := 0; session < asg.Credits; session++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			entry, ok := place(in.AcademicYear, asg, slots, candidates, scheduled, persisted)
			if !ok {
				res.Conflicts = append(res.Conflicts, SessionConflict{
					AssignmentID: asg.AssignmentID,
					Batch:        labelOr(asg.BatchName, asg.BatchID),
					Subject:      labelOr(asg.SubjectName, asg.SubjectID),
					Faculty:      labelOr(asg.FacultyName, asg.FacultyID),
					SessionIndex: session,
					Reason:       ReasonNoAvailableSlot,
				})
				continue
			}
			scheduled.add(entry)
			res.Entries = append(res.Entries, entry)
		}
	}

	a.logger.Info("排课完成",
		zap.String("academic_year", in.AcademicYear),
		zap.Int("entries_created", len(res.Entries)),
		zap.Int("conflicts", len(res.Conflicts)),
	)
	return res, nil
}

// place 返回该课时的第一个可用位置
func place(year string, asg Assignment, slots []model.TimeSlot, rooms []model.Classroom, scheduled, persisted *slotIndex) (model.TimetableEntry, bool) {
	for _, slot := range slots {
		for _, room := range rooms {
			cand := Candidate{
				BatchID:      asg.BatchID,
				FacultyID:    asg.FacultyID,
				ClassroomID:  room.ClassroomID,
				TimeSlotID:   slot.TimeSlotID,
				AcademicYear: year,
			}
			if scheduled.clashes(cand) || persisted.clashes(cand) {
				continue
			}
			return model.TimetableEntry{
				BatchID:      asg.BatchID,
				SubjectID:    asg.SubjectID,
				FacultyID:    asg.FacultyID,
				ClassroomID:  room.ClassroomID,
				TimeSlotID:   slot.TimeSlotID,
				AcademicYear: year,
				Status:       model.EntryStatusDraft,
			}, true
		}
	}
	return model.TimetableEntry{}, false
}

// slotIndex 按时段分组的条目集合
type slotIndex struct {
	bySlot map[string][]model.TimetableEntry
}

func newSlotIndex(entries []model.TimetableEntry) *slotIndex {
	idx := &slotIndex{bySlot: make(map[string][]model.TimetableEntry)}
	for _, e := range entries {
		idx.add(e)
	}
	return idx
}

func (s *slotIndex) add(e model.TimetableEntry) {
	s.bySlot[e.TimeSlotID] = append(s.bySlot[e.TimeSlotID], e)
}

func (s *slotIndex) clashes(c Candidate) bool {
	entries := s.bySlot[c.TimeSlotID]
	for i := range entries {
		if Clashes(&entries[i], c) {
			return true
		}
	}
	return false
}

func usableTimeSlots(slots []model.TimeSlot) []model.TimeSlot {
	out := make([]model.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.IsActive && !s.IsBreak {
			out = append(out, s)
		}
	}
	return out
}

func usableClassrooms(rooms []model.Classroom) []model.Classroom {
	out := make([]model.Classroom, 0, len(rooms))
	for _, r := range rooms {
		if r.IsAvailable {
			out = append(out, r)
		}
	}
	return out
}

func roomsFor(subjectKind string, rooms []model.Classroom) []model.Classroom {
	out := make([]model.Classroom, 0, len(rooms))
	for _, r := range rooms {
		if IsCompatible(subjectKind, r.Kind) {
			out = append(out, r)
		}
	}
	return out
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
