package model

// FacultySubject 教师-课程-班级分配表，对应 faculty_subjects
// 每条分配按课程学分产生每周若干次待排课时
type FacultySubject struct {
	FacultySubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"faculty_subject_id"`
	FacultyID        string `gorm:"type:uuid;not null"                             json:"faculty_id"`
	SubjectID        string `gorm:"type:uuid;not null"                             json:"subject_id"`
	BatchID          string `gorm:"type:uuid;not null"                             json:"batch_id"`
	AcademicYear     string `gorm:"type:varchar(10);not null"                      json:"academic_year"`
	IsActive         bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Faculty *User    `gorm:"foreignKey:FacultyID;references:UserID"       json:"faculty,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID"    json:"subject,omitempty"`
	Batch   *Batch   `gorm:"foreignKey:BatchID;references:BatchID"        json:"batch,omitempty"`
}

// TableName 指定表名
func (FacultySubject) TableName() string { return "faculty_subjects" }
