package dto

// ── 班级模块 DTO ──

// CreateBatchRequest 创建班级请求
type CreateBatchRequest struct {
	Name         string `json:"name"          binding:"required,min=1,max=100"`
	Department   string `json:"department"    binding:"required,max=100"`
	Semester     int    `json:"semester"      binding:"required,min=1,max=12"`
	Year         int    `json:"year"          binding:"required,min=1,max=6"`
	StudentCount int    `json:"student_count" binding:"required,min=1"`
	AcademicYear string `json:"academic_year" binding:"required,academic_year"`
}

// UpdateBatchRequest 更新班级请求
type UpdateBatchRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=100"`
	Department   *string `json:"department"    binding:"omitempty,max=100"`
	Semester     *int    `json:"semester"      binding:"omitempty,min=1,max=12"`
	Year         *int    `json:"year"          binding:"omitempty,min=1,max=6"`
	StudentCount *int    `json:"student_count" binding:"omitempty,min=1"`
	IsActive     *bool   `json:"is_active"`
}

// BatchListRequest 班级列表查询参数
type BatchListRequest struct {
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
}

// BatchResponse 班级信息响应
type BatchResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Department   string `json:"department"`
	Semester     int    `json:"semester"`
	Year         int    `json:"year"`
	StudentCount int    `json:"student_count"`
	AcademicYear string `json:"academic_year"`
	IsActive     bool   `json:"is_active"`
}

// BatchGroupStats 班级分组统计
type BatchGroupStats struct {
	Group         string `json:"group"`
	BatchCount    int    `json:"batch_count"`
	TotalStudents int    `json:"total_students"`
}

// BatchStatsResponse 有效班级统计
type BatchStatsResponse struct {
	TotalBatches  int               `json:"total_batches"`
	TotalStudents int               `json:"total_students"`
	ByDepartment  []BatchGroupStats `json:"by_department"`
	ByYear        []BatchGroupStats `json:"by_year"`
}
