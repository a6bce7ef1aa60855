package dto

// ── 时间段模块 DTO ──

// CreateTimeSlotRequest 创建时间段请求
type CreateTimeSlotRequest struct {
	Name      string `json:"name"        binding:"required,min=1,max=50"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=6"`
	StartTime string `json:"start_time"  binding:"required,datetime=15:04"` // "09:00"
	EndTime   string `json:"end_time"    binding:"required,datetime=15:04"` // "09:50"
	IsBreak   bool   `json:"is_break"`
}

// UpdateTimeSlotRequest 更新时间段请求
type UpdateTimeSlotRequest struct {
	Name      *string `json:"name"        binding:"omitempty,min=1,max=50"`
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=1,max=6"`
	StartTime *string `json:"start_time"  binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time"    binding:"omitempty,datetime=15:04"`
	IsBreak   *bool   `json:"is_break"`
	IsActive  *bool   `json:"is_active"`
}

// TimeSlotListRequest 时间段列表查询参数
type TimeSlotListRequest struct {
	DayOfWeek *int `form:"day_of_week" binding:"omitempty,min=1,max=6"`
}

// TimeSlotResponse 时间段信息响应
type TimeSlotResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DayOfWeek       int    `json:"day_of_week"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	IsBreak         bool   `json:"is_break"`
	IsActive        bool   `json:"is_active"`
}

// AvailableTimeSlotRequest 空闲时间段查询参数
type AvailableTimeSlotRequest struct {
	DayOfWeek    int    `form:"day_of_week"   binding:"required,min=1,max=6"`
	AcademicYear string `form:"academic_year" binding:"required,academic_year"`
}

// TimeSlotStatsRequest 时间段统计参数，academic_year 为空时不统计占用
type TimeSlotStatsRequest struct {
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
}

// TimeSlotDayStats 某一天的时间段与占用情况
type TimeSlotDayStats struct {
	DayOfWeek  int `json:"day_of_week"`
	TotalSlots int `json:"total_slots"`
	BreakSlots int `json:"break_slots"`
	UsedSlots  int `json:"used_slots"`
}

// TimeSlotStatsResponse 时间段统计
type TimeSlotStatsResponse struct {
	TotalSlots int                `json:"total_slots"`
	PerDay     []TimeSlotDayStats `json:"per_day"`
}
