package model

// 课程类型
const (
	SubjectKindTheory    = "theory"
	SubjectKindLab       = "lab"
	SubjectKindPractical = "practical"
)

// Subject 课程表，对应 subjects
type Subject struct {
	SubjectID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code            string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name            string `gorm:"type:varchar(150);not null"                     json:"name"`
	Department      string `gorm:"type:varchar(100);not null"                     json:"department"`
	Credits         int    `gorm:"type:smallint;not null"                         json:"credits"` // 1 学分 = 每周 1 次课
	Kind            string `gorm:"type:varchar(20);not null"                      json:"kind"`    // theory | lab | practical
	DurationMinutes int    `gorm:"type:smallint;not null"                         json:"duration_minutes"`
	IsActive        bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
