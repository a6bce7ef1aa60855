package dto

// ── 教学分配模块 DTO ──

// CreateAssignmentRequest 创建教师-课程-班级分配请求
type CreateAssignmentRequest struct {
	FacultyID    string `json:"faculty_id"    binding:"required,uuid"`
	SubjectID    string `json:"subject_id"    binding:"required,uuid"`
	BatchID      string `json:"batch_id"      binding:"required,uuid"`
	AcademicYear string `json:"academic_year" binding:"required,academic_year"`
}

// UpdateAssignmentRequest 更新分配请求
type UpdateAssignmentRequest struct {
	FacultyID *string `json:"faculty_id" binding:"omitempty,uuid"`
	IsActive  *bool   `json:"is_active"`
}

// AssignmentListRequest 分配列表查询参数
type AssignmentListRequest struct {
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
	FacultyID    string `form:"faculty_id"    binding:"omitempty,uuid"`
	BatchID      string `form:"batch_id"      binding:"omitempty,uuid"`
}

// AssignmentResponse 分配信息响应
type AssignmentResponse struct {
	ID           string `json:"id"`
	FacultyID    string `json:"faculty_id"`
	FacultyName  string `json:"faculty_name,omitempty"`
	SubjectID    string `json:"subject_id"`
	SubjectCode  string `json:"subject_code,omitempty"`
	SubjectName  string `json:"subject_name,omitempty"`
	Credits      int    `json:"credits,omitempty"`
	BatchID      string `json:"batch_id"`
	BatchName    string `json:"batch_name,omitempty"`
	AcademicYear string `json:"academic_year"`
	IsActive     bool   `json:"is_active"`
}
