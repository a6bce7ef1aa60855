package model

import "gorm.io/datatypes"

// 教室类型
const (
	RoomKindLecture = "lecture"
	RoomKindLab     = "lab"
	RoomKindSeminar = "seminar"
)

// Classroom 教室表，对应 classrooms
type Classroom struct {
	ClassroomID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"classroom_id"`
	RoomNumber  string         `gorm:"type:varchar(20);not null;uniqueIndex"          json:"room_number"`
	Building    string         `gorm:"type:varchar(100);not null"                     json:"building"`
	Capacity    int            `gorm:"not null"                                       json:"capacity"`
	Kind        string         `gorm:"type:varchar(20);not null"                      json:"kind"`                // lecture | lab | seminar
	Equipment   datatypes.JSON `gorm:"type:jsonb"                                     json:"equipment,omitempty"` // 原样透传，排课不解析
	IsAvailable bool           `gorm:"not null;default:true"                          json:"is_available"`
	BaseModel
}

// TableName 指定表名
func (Classroom) TableName() string { return "classrooms" }
