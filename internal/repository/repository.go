package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Batch          BatchRepository
	Subject        SubjectRepository
	Classroom      ClassroomRepository
	TimeSlot       TimeSlotRepository
	FacultySubject FacultySubjectRepository
	TimetableEntry TimetableEntryRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		Batch:          NewBatchRepo(db),
		Subject:        NewSubjectRepo(db),
		Classroom:      NewClassroomRepo(db),
		TimeSlot:       NewTimeSlotRepo(db),
		FacultySubject: NewFacultySubjectRepo(db),
		TimetableEntry: NewTimetableEntryRepo(db),
	}
}

// deleteByID 按主键硬删除，未命中时返回 gorm.ErrRecordNotFound
func deleteByID(db *gorm.DB, value interface{}, column, id string) error {
	result := db.Where(column+" = ?", id).Delete(value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
