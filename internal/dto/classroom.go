package dto

import "gorm.io/datatypes"

// ── 教室模块 DTO ──

// CreateClassroomRequest 创建教室请求
type CreateClassroomRequest struct {
	RoomNumber  string         `json:"room_number" binding:"required,max=20"`
	Building    string         `json:"building"    binding:"required,max=100"`
	Capacity    int            `json:"capacity"    binding:"required,min=1"`
	Kind        string         `json:"kind"        binding:"required,oneof=lecture lab seminar"`
	Equipment   datatypes.JSON `json:"equipment"`
	IsAvailable *bool          `json:"is_available"`
}

// UpdateClassroomRequest 更新教室请求
type UpdateClassroomRequest struct {
	Building    *string        `json:"building"  binding:"omitempty,max=100"`
	Capacity    *int           `json:"capacity"  binding:"omitempty,min=1"`
	Kind        *string        `json:"kind"      binding:"omitempty,oneof=lecture lab seminar"`
	Equipment   datatypes.JSON `json:"equipment"`
	IsAvailable *bool          `json:"is_available"`
}

// ClassroomResponse 教室信息响应，equipment 原样返回
type ClassroomResponse struct {
	ID          string         `json:"id"`
	RoomNumber  string         `json:"room_number"`
	Building    string         `json:"building"`
	Capacity    int            `json:"capacity"`
	Kind        string         `json:"kind"`
	Equipment   datatypes.JSON `json:"equipment,omitempty"`
	IsAvailable bool           `json:"is_available"`
}

// AvailableClassroomRequest 空闲教室查询参数
type AvailableClassroomRequest struct {
	TimeSlotID   string `form:"time_slot_id"  binding:"required,uuid"`
	AcademicYear string `form:"academic_year" binding:"required,academic_year"`
	Kind         string `form:"type"          binding:"omitempty,oneof=lecture lab seminar"`
}

// ClassroomStatsResponse 可用教室统计
type ClassroomStatsResponse struct {
	TotalClassrooms int          `json:"total_classrooms"`
	TotalCapacity   int          `json:"total_capacity"`
	ByKind          []GroupCount `json:"by_kind"`
	ByBuilding      []GroupCount `json:"by_building"`
}
