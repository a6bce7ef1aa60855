package model

// TimeSlot 时间段表，对应 time_slots
type TimeSlot struct {
	TimeSlotID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"time_slot_id"`
	Name            string `gorm:"type:varchar(50);not null"                      json:"name"`
	DayOfWeek       int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 6=周六
	StartTime       string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime         string `gorm:"type:time;not null"                             json:"end_time"`
	DurationMinutes int    `gorm:"type:smallint;not null"                         json:"duration_minutes"`
	IsBreak         bool   `gorm:"not null;default:false"                         json:"is_break"` // 课间休息，永不参与排课
	IsActive        bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (TimeSlot) TableName() string { return "time_slots" }
