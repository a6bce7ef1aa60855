package dto

import "classgrid/backend/internal/scheduler"

// ── 排课生成 ──

// GenerateRequest 生成学年课表请求
type GenerateRequest struct {
	AcademicYear string             `json:"academic_year" binding:"required,academic_year"`
	Options      *scheduler.Options `json:"options"`
}

// GenerateResponse 生成结果
// 有未排课时仍返回 success=true，冲突以数据形式给出
type GenerateResponse struct {
	Success        bool                        `json:"success"`
	EntriesCreated int                         `json:"entries_created"`
	Conflicts      []scheduler.SessionConflict `json:"conflicts"`
	Message        string                      `json:"message"`
}

// ── 校验 / 冲突 ──

// AcademicYearQuery 以学年为唯一参数的查询
type AcademicYearQuery struct {
	AcademicYear string `form:"academic_year" binding:"required,academic_year"`
}

// ConflictPairResponse 一对冲突条目
type ConflictPairResponse struct {
	Entries [2]EntryResponse `json:"entries"`
	Reason  string           `json:"reason"`
}

// KindViolationResponse 课程类型与教室类型不兼容的条目
type KindViolationResponse struct {
	Entry         EntryResponse `json:"entry"`
	SubjectKind   string        `json:"subject_kind"`
	ClassroomKind string        `json:"classroom_kind"`
}

// ValidateResponse 全量校验结果
type ValidateResponse struct {
	IsValid        bool                    `json:"is_valid"`
	Conflicts      []ConflictPairResponse  `json:"conflicts"`
	KindViolations []KindViolationResponse `json:"kind_violations,omitempty"`
}

// ConflictsResponse 冲突列表
type ConflictsResponse struct {
	Conflicts      []ConflictPairResponse `json:"conflicts"`
	TotalConflicts int                    `json:"total_conflicts"`
}

// ── 状态流转 ──

// StatusChangeRequest 批量审核 / 发布请求
type StatusChangeRequest struct {
	AcademicYear string `json:"academic_year" binding:"required,academic_year"`
}

// StatusChangeResponse 批量状态变更结果
type StatusChangeResponse struct {
	AcademicYear string `json:"academic_year"`
	Status       string `json:"status"`
	Updated      int64  `json:"updated"`
}

// ── 课表查询 ──

// TimetableListRequest 课表查询参数
type TimetableListRequest struct {
	AcademicYear string `form:"academic_year" binding:"required,academic_year"`
	BatchID      string `form:"batch_id"      binding:"omitempty,uuid"`
	Status       string `form:"status"        binding:"omitempty,oneof=draft approved published"`
}

// TimetableViewRequest 教师 / 教室视图查询参数
type TimetableViewRequest struct {
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
	Status       string `form:"status"        binding:"omitempty,oneof=draft approved published"`
}

// EntryResponse 课表条目响应（附带展示字段）
type EntryResponse struct {
	ID           string  `json:"id"`
	AcademicYear string  `json:"academic_year"`
	Status       string  `json:"status"`
	Notes        *string `json:"notes,omitempty"`

	BatchID     string `json:"batch_id"`
	BatchName   string `json:"batch_name,omitempty"`
	SubjectID   string `json:"subject_id"`
	SubjectCode string `json:"subject_code,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	FacultyID   string `json:"faculty_id"`
	FacultyName string `json:"faculty_name,omitempty"`
	ClassroomID string `json:"classroom_id"`
	RoomNumber  string `json:"room_number,omitempty"`
	TimeSlotID  string `json:"time_slot_id"`
	DayOfWeek   int    `json:"day_of_week,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

// ── 人工编辑 ──

// CreateEntryRequest 人工创建课表条目
type CreateEntryRequest struct {
	BatchID      string  `json:"batch_id"      binding:"required,uuid"`
	SubjectID    string  `json:"subject_id"    binding:"required,uuid"`
	FacultyID    string  `json:"faculty_id"    binding:"required,uuid"`
	ClassroomID  string  `json:"classroom_id"  binding:"required,uuid"`
	TimeSlotID   string  `json:"time_slot_id"  binding:"required,uuid"`
	AcademicYear string  `json:"academic_year" binding:"required,academic_year"`
	Status       string  `json:"status"        binding:"omitempty,oneof=draft approved published"`
	Notes        *string `json:"notes"         binding:"omitempty,max=500"`
}

// UpdateEntryRequest 人工修改课表条目，未给出的字段保持不变
type UpdateEntryRequest struct {
	BatchID     *string `json:"batch_id"     binding:"omitempty,uuid"`
	SubjectID   *string `json:"subject_id"   binding:"omitempty,uuid"`
	FacultyID   *string `json:"faculty_id"   binding:"omitempty,uuid"`
	ClassroomID *string `json:"classroom_id" binding:"omitempty,uuid"`
	TimeSlotID  *string `json:"time_slot_id" binding:"omitempty,uuid"`
	Status      *string `json:"status"       binding:"omitempty,oneof=draft approved published"`
	Notes       *string `json:"notes"        binding:"omitempty,max=500"`
}

// CheckRequest 冲突检查（只读）
type CheckRequest struct {
	BatchID        string `json:"batch_id"         binding:"required,uuid"`
	FacultyID      string `json:"faculty_id"       binding:"required,uuid"`
	ClassroomID    string `json:"classroom_id"     binding:"required,uuid"`
	TimeSlotID     string `json:"time_slot_id"     binding:"required,uuid"`
	AcademicYear   string `json:"academic_year"    binding:"required,academic_year"`
	ExcludeEntryID string `json:"exclude_entry_id" binding:"omitempty,uuid"`
}

// CheckResponse 冲突检查结果
type CheckResponse struct {
	HasConflicts bool            `json:"has_conflicts"`
	Conflicts    []EntryResponse `json:"conflicts"`
}

// ── 导出 ──

// ExportRequest 导出参数
// term_start / weeks 仅用于 iCalendar 导出
type ExportRequest struct {
	AcademicYear string `form:"academic_year" binding:"required,academic_year"`
	BatchID      string `form:"batch_id"      binding:"omitempty,uuid"`
	Status       string `form:"status"        binding:"omitempty,oneof=draft approved published"`
	TermStart    string `form:"term_start"    binding:"omitempty,datetime=2006-01-02"`
	Weeks        int    `form:"weeks"         binding:"omitempty,min=1,max=30"`
}
