package model

// Batch 班级（学生批次）表，对应 batches
type Batch struct {
	BatchID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Department   string `gorm:"type:varchar(100);not null"                     json:"department"`
	Semester     int    `gorm:"type:smallint;not null"                         json:"semester"`
	Year         int    `gorm:"type:smallint;not null"                         json:"year"`
	StudentCount int    `gorm:"not null"                                       json:"student_count"`
	AcademicYear string `gorm:"type:varchar(10);not null"                      json:"academic_year"` // 如 "2024-25"
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Batch) TableName() string { return "batches" }
