package dto

// ── 课程模块 DTO ──

// CreateSubjectRequest 创建课程请求
type CreateSubjectRequest struct {
	Code            string `json:"code"             binding:"required,max=20"`
	Name            string `json:"name"             binding:"required,max=150"`
	Department      string `json:"department"       binding:"required,max=100"`
	Credits         int    `json:"credits"          binding:"required,min=1,max=10"`
	Kind            string `json:"kind"             binding:"required,oneof=theory lab practical"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15,max=300"`
}

// UpdateSubjectRequest 更新课程请求
type UpdateSubjectRequest struct {
	Name            *string `json:"name"             binding:"omitempty,max=150"`
	Department      *string `json:"department"       binding:"omitempty,max=100"`
	Credits         *int    `json:"credits"          binding:"omitempty,min=1,max=10"`
	Kind            *string `json:"kind"             binding:"omitempty,oneof=theory lab practical"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=15,max=300"`
	IsActive        *bool   `json:"is_active"`
}

// SubjectListRequest 课程列表查询参数
type SubjectListRequest struct {
	Department string `form:"department"`
}

// SubjectResponse 课程信息响应
type SubjectResponse struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	Credits         int    `json:"credits"`
	Kind            string `json:"kind"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
}

// SubjectGroupStats 课程分组统计
type SubjectGroupStats struct {
	Group        string  `json:"group"`
	SubjectCount int     `json:"subject_count"`
	AvgCredits   float64 `json:"avg_credits"`
}

// SubjectStatsResponse 有效课程统计
type SubjectStatsResponse struct {
	TotalSubjects int                 `json:"total_subjects"`
	ByDepartment  []SubjectGroupStats `json:"by_department"`
	ByKind        []SubjectGroupStats `json:"by_kind"`
}
