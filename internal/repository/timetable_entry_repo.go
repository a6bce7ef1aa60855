package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classgrid/backend/internal/model"
)

// EntryFilter 课表条目查询条件，空字段不参与过滤
type EntryFilter struct {
	AcademicYear string
	BatchID      string
	FacultyID    string
	ClassroomID  string
	Status       string
}

// TimetableEntryRepository 课表条目数据访问接口
// 列表查询统一按 created_at, entry_id 排序
type TimetableEntryRepository interface {
	GetByID(ctx context.Context, id string) (*model.TimetableEntry, error)
	Create(ctx context.Context, entry *model.TimetableEntry) error
	Update(ctx context.Context, entry *model.TimetableEntry) error
	Delete(ctx context.Context, id string) error

	// ListByYear 学年内全部条目（不预加载关联）
	ListByYear(ctx context.Context, academicYear string) ([]model.TimetableEntry, error)
	// ListBySlot 学年内某时段的条目，供冲突检查器粗筛
	ListBySlot(ctx context.Context, academicYear, timeSlotID string) ([]model.TimetableEntry, error)
	// List 按条件查询，预加载全部关联，用于展示与导出
	List(ctx context.Context, filter EntryFilter) ([]model.TimetableEntry, error)

	InsertMany(ctx context.Context, entries []model.TimetableEntry) error
	DeleteDraftsByYear(ctx context.Context, academicYear string) (int64, error)
	// ReplaceDrafts 单事务内删除学年草稿并写入新条目，任一步失败则整体回滚
	ReplaceDrafts(ctx context.Context, academicYear string, entries []model.TimetableEntry) (int64, error)
	BulkUpdateStatus(ctx context.Context, academicYear, from, to string) (int64, error)
}

type timetableEntryRepo struct {
	db *gorm.DB
}

// NewTimetableEntryRepo 创建 TimetableEntryRepository 实例
func NewTimetableEntryRepo(db *gorm.DB) TimetableEntryRepository {
	return &timetableEntryRepo{db: db}
}

const insertBatchSize = 200

// entryColumns Update 允许写入的列
var entryColumns = []string{
	"batch_id", "subject_id", "faculty_id", "classroom_id", "time_slot_id",
	"academic_year", "status", "notes",
}

func (r *timetableEntryRepo) GetByID(ctx context.Context, id string) (*model.TimetableEntry, error) {
	var entry model.TimetableEntry
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timetableEntryRepo) Create(ctx context.Context, entry *model.TimetableEntry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error
}

func (r *timetableEntryRepo) Update(ctx context.Context, entry *model.TimetableEntry) error {
	result := r.db.WithContext(ctx).
		Model(&model.TimetableEntry{}).
		Where("entry_id = ?", entry.EntryID).
		Select(entryColumns).
		Updates(map[string]interface{}{
			"batch_id":      entry.BatchID,
			"subject_id":    entry.SubjectID,
			"faculty_id":    entry.FacultyID,
			"classroom_id":  entry.ClassroomID,
			"time_slot_id":  entry.TimeSlotID,
			"academic_year": entry.AcademicYear,
			"status":        entry.Status,
			"notes":         entry.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *timetableEntryRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.TimetableEntry{}, "entry_id", id)
}

func (r *timetableEntryRepo) ListByYear(ctx context.Context, academicYear string) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("academic_year = ?", academicYear).
		Order("created_at ASC, entry_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableEntryRepo) ListBySlot(ctx context.Context, academicYear, timeSlotID string) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("academic_year = ? AND time_slot_id = ?", academicYear, timeSlotID).
		Order("created_at ASC, entry_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableEntryRepo) List(ctx context.Context, filter EntryFilter) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	db := r.withRelations(r.db.WithContext(ctx))
	if filter.AcademicYear != "" {
		db = db.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.BatchID != "" {
		db = db.Where("batch_id = ?", filter.BatchID)
	}
	if filter.FacultyID != "" {
		db = db.Where("faculty_id = ?", filter.FacultyID)
	}
	if filter.ClassroomID != "" {
		db = db.Where("classroom_id = ?", filter.ClassroomID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	err := db.Order("created_at ASC, entry_id ASC").Find(&entries).Error
	return entries, err
}

func (r *timetableEntryRepo) InsertMany(ctx context.Context, entries []model.TimetableEntry) error {
	return insertEntries(r.db.WithContext(ctx), entries)
}

func (r *timetableEntryRepo) DeleteDraftsByYear(ctx context.Context, academicYear string) (int64, error) {
	return deleteDrafts(r.db.WithContext(ctx), academicYear)
}

func (r *timetableEntryRepo) ReplaceDrafts(ctx context.Context, academicYear string, entries []model.TimetableEntry) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteDrafts(tx, academicYear)
		if err != nil {
			return err
		}
		removed = n
		return insertEntries(tx, entries)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *timetableEntryRepo) BulkUpdateStatus(ctx context.Context, academicYear, from, to string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TimetableEntry{}).
		Where("academic_year = ? AND status = ?", academicYear, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *timetableEntryRepo) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Batch").
		Preload("Subject").
		Preload("Faculty").
		Preload("Classroom").
		Preload("TimeSlot")
}

func deleteDrafts(db *gorm.DB, academicYear string) (int64, error) {
	result := db.
		Where("academic_year = ? AND status = ?", academicYear, model.EntryStatusDraft).
		Delete(&model.TimetableEntry{})
	return result.RowsAffected, result.Error
}

func insertEntries(db *gorm.DB, entries []model.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stampPlacementOrder(entries, time.Now())
	return db.Omit(clause.Associations).CreateInBatches(&entries, insertBatchSize).Error
}

// stampPlacementOrder 按切片顺序以微秒步长递增 created_at，
// 同批写入的条目按 created_at, entry_id 读回时保持放置顺序
func stampPlacementOrder(entries []model.TimetableEntry, base time.Time) {
	base = base.Truncate(time.Microsecond)
	for i := range entries {
		entries[i].CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		entries[i].UpdatedAt = entries[i].CreatedAt
	}
}
