package scheduler

import "classgrid/backend/internal/model"

// ConflictPair 一对互相冲突的条目
type ConflictPair struct {
	Entries [2]model.TimetableEntry `json:"entries"`
	Reason  string                  `json:"reason"`
}

// KindViolation 课程类型与教室类型不兼容的条目
type KindViolation struct {
	Entry         model.TimetableEntry `json:"entry"`
	SubjectKind   string               `json:"subject_kind"`
	ClassroomKind string               `json:"classroom_kind"`
}

// Report 全量校验结果。IsValid 只由冲突对决定
type Report struct {
	IsValid        bool            `json:"is_valid"`
	Conflicts      []ConflictPair  `json:"conflicts"`
	KindViolations []KindViolation `json:"kind_violations,omitempty"`
}

// Validate 对所有同时段条目两两比对，每个冲突对只报告一次
// 条目预加载了 Subject 与 Classroom 时额外做类型兼容性审计
func Validate(entries []model.TimetableEntry) *Report {
	report := &Report{Conflicts: []ConflictPair{}}

	for i := 0; i < len(entries); i++ {
		cand := CandidateOf(&entries[i])
		for j := i + 1; j < len(entries); j++ {
			if !Clashes(&entries[j], cand) {
				continue
			}
			report.Conflicts = append(report.Conflicts, ConflictPair{
				Entries: [2]model.TimetableEntry{entries[i], entries[j]},
				Reason:  ConflictReason(&entries[j], cand),
			})
		}
	}

	for _, e := range entries {
		if e.Subject == nil || e.Classroom == nil {
			continue
		}
		if !IsCompatible(e.Subject.Kind, e.Classroom.Kind) {
			report.KindViolations = append(report.KindViolations, KindViolation{
				Entry:         e,
				SubjectKind:   e.Subject.Kind,
				ClassroomKind: e.Classroom.Kind,
			})
		}
	}

	report.IsValid = len(report.Conflicts) == 0
	return report
}
