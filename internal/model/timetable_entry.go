package model

// 课表条目状态：draft → approved → published
const (
	EntryStatusDraft     = "draft"
	EntryStatusApproved  = "approved"
	EntryStatusPublished = "published"
)

// TimetableEntry 课表条目，对应 timetable_entries
type TimetableEntry struct {
	EntryID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	BatchID      string  `gorm:"type:uuid;not null"                             json:"batch_id"`
	SubjectID    string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	FacultyID    string  `gorm:"type:uuid;not null"                             json:"faculty_id"`
	ClassroomID  string  `gorm:"type:uuid;not null"                             json:"classroom_id"`
	TimeSlotID   string  `gorm:"type:uuid;not null"                             json:"time_slot_id"`
	AcademicYear string  `gorm:"type:varchar(10);not null"                      json:"academic_year"`
	Status       string  `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | approved | published
	Notes        *string `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel

	// 关联（仅查询展示时预加载）
	Batch     *Batch     `gorm:"foreignKey:BatchID;references:BatchID"         json:"batch,omitempty"`
	Subject   *Subject   `gorm:"foreignKey:SubjectID;references:SubjectID"     json:"subject,omitempty"`
	Faculty   *User      `gorm:"foreignKey:FacultyID;references:UserID"        json:"faculty,omitempty"`
	Classroom *Classroom `gorm:"foreignKey:ClassroomID;references:ClassroomID" json:"classroom,omitempty"`
	TimeSlot  *TimeSlot  `gorm:"foreignKey:TimeSlotID;references:TimeSlotID"   json:"time_slot,omitempty"`
}

// TableName 指定表名
func (TimetableEntry) TableName() string { return "timetable_entries" }

// IsValidEntryStatus 校验状态取值
func IsValidEntryStatus(status string) bool {
	switch status {
	case EntryStatusDraft, EntryStatusApproved, EntryStatusPublished:
		return true
	}
	return false
}
