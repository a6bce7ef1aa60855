package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
	"classgrid/backend/internal/scheduler"
	pkgerrors "classgrid/backend/pkg/errors"
)

// ── 课表模块业务错误 ──

var (
	ErrGenerationInProgress = errors.New("该学年课表正在生成中，请稍后重试")
	ErrEntryNotFound        = errors.New("课表条目不存在")
	ErrEntryConflict        = errors.New("课表条目与已有安排冲突")
	ErrEntryKindMismatch    = errors.New("课程类型与教室类型不兼容")
	ErrEntryBreakSlot       = errors.New("不能在休息时间段排课")
	ErrEntryInvalidStatus   = errors.New("课表条目状态不合法")
	ErrEntryBatchNotFound   = errors.New("班级不存在")
	ErrEntrySubjectNotFound = errors.New("课程不存在")
	ErrEntryFacultyNotFound = errors.New("教师不存在")
	ErrEntryRoomNotFound    = errors.New("教室不存在")
	ErrEntrySlotNotFound    = errors.New("时间段不存在")
)

// EntryConflictError 人工写入被拒绝，携带冲突条目
type EntryConflictError struct {
	Conflicts []dto.EntryResponse
}

func (e *EntryConflictError) Error() string {
	return fmt.Sprintf("%s（%d 条）", ErrEntryConflict.Error(), len(e.Conflicts))
}

// Unwrap 使 errors.Is(err, ErrEntryConflict) 成立
func (e *EntryConflictError) Unwrap() error { return ErrEntryConflict }

// GenerationLock 跨实例互斥锁（*redis.Client 实现）
type GenerationLock interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// TimetableService 课表业务接口：生成、校验、状态流转与人工编辑
type TimetableService interface {
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	Validate(ctx context.Context, academicYear string) (*dto.ValidateResponse, error)
	Conflicts(ctx context.Context, academicYear string) (*dto.ConflictsResponse, error)
	Approve(ctx context.Context, academicYear string) (*dto.StatusChangeResponse, error)
	Publish(ctx context.Context, academicYear string) (*dto.StatusChangeResponse, error)

	List(ctx context.Context, req *dto.TimetableListRequest) ([]dto.EntryResponse, error)
	ListByFaculty(ctx context.Context, facultyID string, req *dto.TimetableViewRequest) ([]dto.EntryResponse, error)
	ListByClassroom(ctx context.Context, classroomID string, req *dto.TimetableViewRequest) ([]dto.EntryResponse, error)

	CreateEntry(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error)
	UpdateEntry(ctx context.Context, id string, req *dto.UpdateEntryRequest) (*dto.EntryResponse, error)
	DeleteEntry(ctx context.Context, id string) error
	Check(ctx context.Context, req *dto.CheckRequest) (*dto.CheckResponse, error)
}

type timetableService struct {
	repo      *repository.Repository
	allocator *scheduler.Allocator
	checker   *scheduler.Checker
	years     *scheduler.YearLocker
	lock      GenerationLock
	lockTTL   time.Duration
	logger    *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
// lock 为 nil 时仅做进程内互斥
func NewTimetableService(repo *repository.Repository, lock GenerationLock, lockTTL time.Duration, logger *zap.Logger) TimetableService {
	return &timetableService{
		repo:      repo,
		allocator: scheduler.NewAllocator(logger),
		checker:   scheduler.NewChecker(repo.TimetableEntry),
		years:     scheduler.NewYearLocker(),
		lock:      lock,
		lockTTL:   lockTTL,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Generate: 生成学年草稿课表
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 学年加锁（进程内 + 可选 Redis）
//  2. 并发加载分配、教室、时间段与已持久化条目
//  3. 贪心排课（草稿条目不作为占用，将被替换）
//  4. 单事务替换该学年全部草稿
//
// 排不下的课时以 conflicts 返回，success 仍为 true；
// 输入错误包装 scheduler.ErrInvalidInput，其余错误均为系统错误。

func (s *timetableService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	year := req.AcademicYear
	if !scheduler.ValidAcademicYear(year) {
		return nil, fmt.Errorf("%w: %w: %q", scheduler.ErrInvalidInput, scheduler.ErrInvalidAcademicYear, year)
	}

	unlock, err := s.lockYear(ctx, year)
	if err != nil {
		return nil, err
	}
	defer unlock()

	in, err := s.loadInput(ctx, year)
	if err != nil {
		return nil, err
	}
	if req.Options != nil {
		in.Options = *req.Options
	}

	res, err := s.allocator.Generate(ctx, in)
	if err != nil {
		if !errors.Is(err, scheduler.ErrInvalidInput) {
			s.logger.Error("排课失败", zap.String("academic_year", year), zap.Error(err))
		}
		return nil, err
	}

	removed, err := s.repo.TimetableEntry.ReplaceDrafts(ctx, year, res.Entries)
	if err != nil {
		s.logger.Error("写入课表草稿失败", zap.String("academic_year", year), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表草稿已替换",
		zap.String("academic_year", year),
		zap.Int64("drafts_removed", removed),
		zap.Int("entries_created", len(res.Entries)),
		zap.Int("conflicts", len(res.Conflicts)),
	)

	return &dto.GenerateResponse{
		Success:        true,
		EntriesCreated: len(res.Entries),
		Conflicts:      res.Conflicts,
		Message:        generateMessage(len(res.Entries), len(res.Conflicts)),
	}, nil
}

// lockYear 先取进程内锁，再取 Redis 锁；Redis 不可用时降级为仅进程内互斥
func (s *timetableService) lockYear(ctx context.Context, year string) (func(), error) {
	release, err := s.years.Lock(ctx, year)
	if err != nil {
		return nil, err
	}
	if s.lock == nil {
		return release, nil
	}

	remote, err := s.lock.Lock(ctx, "timetable:generate:"+year, s.lockTTL)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			release()
			return nil, ErrGenerationInProgress
		}
		s.logger.Warn("获取 Redis 生成锁失败，降级为进程内互斥", zap.String("academic_year", year), zap.Error(err))
		return release, nil
	}

	return func() {
		remote()
		release()
	}, nil
}

// loadInput 并发加载排课输入；各集合的顺序由仓储层 ORDER BY 固定
func (s *timetableService) loadInput(ctx context.Context, year string) (scheduler.Input, error) {
	var (
		batches  []model.Batch
		links    []model.FacultySubject
		rooms    []model.Classroom
		slots    []model.TimeSlot
		existing []model.TimetableEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batches, err = s.repo.Batch.ListActive(gctx, year)
		return wrapLoad("班级", err)
	})
	g.Go(func() error {
		var err error
		links, err = s.repo.FacultySubject.ListActive(gctx, year)
		return wrapLoad("教学分配", err)
	})
	g.Go(func() error {
		var err error
		rooms, err = s.repo.Classroom.ListAvailable(gctx)
		return wrapLoad("教室", err)
	})
	g.Go(func() error {
		var err error
		slots, err = s.repo.TimeSlot.ListActiveNonBreak(gctx)
		return wrapLoad("时间段", err)
	})
	g.Go(func() error {
		var err error
		existing, err = s.repo.TimetableEntry.ListByYear(gctx, year)
		return wrapLoad("课表条目", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("加载排课输入失败", zap.String("academic_year", year), zap.Error(err))
		return scheduler.Input{}, err
	}

	// 只为本学年有效班级排课
	activeBatch := lo.SliceToMap(batches, func(b model.Batch) (string, bool) { return b.BatchID, true })
	links = lo.Filter(links, func(l model.FacultySubject, _ int) bool {
		return activeBatch[l.BatchID]
	})

	// 草稿将被本次结果替换，不占用资源
	kept := lo.Filter(existing, func(e model.TimetableEntry, _ int) bool {
		return e.Status != model.EntryStatusDraft
	})

	return scheduler.Input{
		AcademicYear: year,
		Assignments:  scheduler.AssignmentsFrom(links),
		Classrooms:   rooms,
		TimeSlots:    slots,
		Existing:     kept,
	}, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("加载%s失败: %w", what, err)
	}
	return nil
}

func generateMessage(created, conflicts int) string {
	if conflicts == 0 {
		return fmt.Sprintf("已生成 %d 条课表条目", created)
	}
	return fmt.Sprintf("已生成 %d 条课表条目，%d 节课无法安排", created, conflicts)
}

// ═══════════════════════════════════════════════════════════
// Validate / Conflicts: 全量冲突校验
// ═══════════════════════════════════════════════════════════

func (s *timetableService) Validate(ctx context.Context, academicYear string) (*dto.ValidateResponse, error) {
	report, err := s.validateYear(ctx, academicYear)
	if err != nil {
		return nil, err
	}

	resp := &dto.ValidateResponse{
		IsValid:   report.IsValid,
		Conflicts: toConflictPairResponses(report.Conflicts),
	}
	for _, v := range report.KindViolations {
		resp.KindViolations = append(resp.KindViolations, dto.KindViolationResponse{
			Entry:         toEntryResponse(&v.Entry),
			SubjectKind:   v.SubjectKind,
			ClassroomKind: v.ClassroomKind,
		})
	}
	return resp, nil
}

func (s *timetableService) Conflicts(ctx context.Context, academicYear string) (*dto.ConflictsResponse, error) {
	report, err := s.validateYear(ctx, academicYear)
	if err != nil {
		return nil, err
	}
	return &dto.ConflictsResponse{
		Conflicts:      toConflictPairResponses(report.Conflicts),
		TotalConflicts: len(report.Conflicts),
	}, nil
}

func (s *timetableService) validateYear(ctx context.Context, academicYear string) (*scheduler.Report, error) {
	entries, err := s.repo.TimetableEntry.List(ctx, repository.EntryFilter{AcademicYear: academicYear})
	if err != nil {
		s.logger.Error("查询课表条目失败", zap.String("academic_year", academicYear), zap.Error(err))
		return nil, err
	}
	return scheduler.Validate(entries), nil
}

// ═══════════════════════════════════════════════════════════
// Approve / Publish: 批量状态流转（draft → approved → published）
// ═══════════════════════════════════════════════════════════

func (s *timetableService) Approve(ctx context.Context, academicYear string) (*dto.StatusChangeResponse, error) {
	return s.promote(ctx, academicYear, model.EntryStatusDraft, model.EntryStatusApproved)
}

func (s *timetableService) Publish(ctx context.Context, academicYear string) (*dto.StatusChangeResponse, error) {
	return s.promote(ctx, academicYear, model.EntryStatusApproved, model.EntryStatusPublished)
}

func (s *timetableService) promote(ctx context.Context, academicYear, from, to string) (*dto.StatusChangeResponse, error) {
	n, err := s.repo.TimetableEntry.BulkUpdateStatus(ctx, academicYear, from, to)
	if err != nil {
		s.logger.Error("批量更新课表状态失败",
			zap.String("academic_year", academicYear),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("课表状态已更新",
		zap.String("academic_year", academicYear),
		zap.String("to", to),
		zap.Int64("updated", n),
	)
	return &dto.StatusChangeResponse{AcademicYear: academicYear, Status: to, Updated: n}, nil
}

// ═══════════════════════════════════════════════════════════
// 查询视图
// ═══════════════════════════════════════════════════════════

func (s *timetableService) List(ctx context.Context, req *dto.TimetableListRequest) ([]dto.EntryResponse, error) {
	return s.list(ctx, repository.EntryFilter{
		AcademicYear: req.AcademicYear,
		BatchID:      req.BatchID,
		Status:       req.Status,
	})
}

func (s *timetableService) ListByFaculty(ctx context.Context, facultyID string, req *dto.TimetableViewRequest) ([]dto.EntryResponse, error) {
	return s.list(ctx, repository.EntryFilter{
		AcademicYear: req.AcademicYear,
		FacultyID:    facultyID,
		Status:       req.Status,
	})
}

func (s *timetableService) ListByClassroom(ctx context.Context, classroomID string, req *dto.TimetableViewRequest) ([]dto.EntryResponse, error) {
	return s.list(ctx, repository.EntryFilter{
		AcademicYear: req.AcademicYear,
		ClassroomID:  classroomID,
		Status:       req.Status,
	})
}

func (s *timetableService) list(ctx context.Context, filter repository.EntryFilter) ([]dto.EntryResponse, error) {
	entries, err := s.repo.TimetableEntry.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	return toEntryResponses(entries), nil
}

// ═══════════════════════════════════════════════════════════
// 人工编辑: 写入前重新做冲突检查与类型检查
// ═══════════════════════════════════════════════════════════

func (s *timetableService) CreateEntry(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error) {
	status := req.Status
	if status == "" {
		status = model.EntryStatusDraft
	}
	if !model.IsValidEntryStatus(status) {
		return nil, ErrEntryInvalidStatus
	}

	entry := &model.TimetableEntry{
		BatchID:      req.BatchID,
		SubjectID:    req.SubjectID,
		FacultyID:    req.FacultyID,
		ClassroomID:  req.ClassroomID,
		TimeSlotID:   req.TimeSlotID,
		AcademicYear: req.AcademicYear,
		Status:       status,
		Notes:        req.Notes,
	}

	if err := s.checkEntry(ctx, entry, ""); err != nil {
		return nil, err
	}

	if err := s.repo.TimetableEntry.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEntryConflict
		}
		s.logger.Error("创建课表条目失败", zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, entry.EntryID)
}

func (s *timetableService) UpdateEntry(ctx context.Context, id string, req *dto.UpdateEntryRequest) (*dto.EntryResponse, error) {
	entry, err := s.repo.TimetableEntry.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		s.logger.Error("查询课表条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.BatchID != nil {
		entry.BatchID = *req.BatchID
	}
	if req.SubjectID != nil {
		entry.SubjectID = *req.SubjectID
	}
	if req.FacultyID != nil {
		entry.FacultyID = *req.FacultyID
	}
	if req.ClassroomID != nil {
		entry.ClassroomID = *req.ClassroomID
	}
	if req.TimeSlotID != nil {
		entry.TimeSlotID = *req.TimeSlotID
	}
	if req.Status != nil {
		if !model.IsValidEntryStatus(*req.Status) {
			return nil, ErrEntryInvalidStatus
		}
		entry.Status = *req.Status
	}
	if req.Notes != nil {
		entry.Notes = req.Notes
	}

	if err := s.checkEntry(ctx, entry, id); err != nil {
		return nil, err
	}

	if err := s.repo.TimetableEntry.Update(ctx, entry); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrEntryNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrEntryConflict
		}
		s.logger.Error("更新课表条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *timetableService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.repo.TimetableEntry.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		s.logger.Error("删除课表条目失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *timetableService) Check(ctx context.Context, req *dto.CheckRequest) (*dto.CheckResponse, error) {
	conflicts, err := s.checker.FindConflicts(ctx, scheduler.Candidate{
		BatchID:      req.BatchID,
		FacultyID:    req.FacultyID,
		ClassroomID:  req.ClassroomID,
		TimeSlotID:   req.TimeSlotID,
		AcademicYear: req.AcademicYear,
		ExcludeID:    req.ExcludeEntryID,
	})
	if err != nil {
		s.logger.Error("冲突检查失败", zap.Error(err))
		return nil, err
	}
	return &dto.CheckResponse{
		HasConflicts: len(conflicts) > 0,
		Conflicts:    toEntryResponses(conflicts),
	}, nil
}

// checkEntry 校验引用存在、时间段可排课、类型兼容，最后做冲突检查
func (s *timetableService) checkEntry(ctx context.Context, entry *model.TimetableEntry, excludeID string) error {
	var (
		subject *model.Subject
		room    *model.Classroom
		slot    *model.TimeSlot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repo.Batch.GetByID(gctx, entry.BatchID)
		return notFoundAs(err, ErrEntryBatchNotFound)
	})
	g.Go(func() error {
		_, err := s.repo.User.GetByID(gctx, entry.FacultyID)
		return notFoundAs(err, ErrEntryFacultyNotFound)
	})
	g.Go(func() error {
		var err error
		subject, err = s.repo.Subject.GetByID(gctx, entry.SubjectID)
		return notFoundAs(err, ErrEntrySubjectNotFound)
	})
	g.Go(func() error {
		var err error
		room, err = s.repo.Classroom.GetByID(gctx, entry.ClassroomID)
		return notFoundAs(err, ErrEntryRoomNotFound)
	})
	g.Go(func() error {
		var err error
		slot, err = s.repo.TimeSlot.GetByID(gctx, entry.TimeSlotID)
		return notFoundAs(err, ErrEntrySlotNotFound)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if slot.IsBreak {
		return ErrEntryBreakSlot
	}
	if !scheduler.IsCompatible(subject.Kind, room.Kind) {
		return fmt.Errorf("%w: %s 课程不能安排在 %s 教室", ErrEntryKindMismatch, subject.Kind, room.Kind)
	}

	cand := scheduler.CandidateOf(entry)
	cand.ExcludeID = excludeID
	conflicts, err := s.checker.FindConflicts(ctx, cand)
	if err != nil {
		s.logger.Error("冲突检查失败", zap.Error(err))
		return err
	}
	if len(conflicts) > 0 {
		return &EntryConflictError{Conflicts: toEntryResponses(conflicts)}
	}
	return nil
}

func (s *timetableService) reload(ctx context.Context, id string) (*dto.EntryResponse, error) {
	entry, err := s.repo.TimetableEntry.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("重新加载课表条目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toEntryResponse(entry)
	return &resp, nil
}

// notFoundAs 将 gorm.ErrRecordNotFound 转换为业务错误
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// ── 响应转换 ──

func toEntryResponse(e *model.TimetableEntry) dto.EntryResponse {
	resp := dto.EntryResponse{
		ID:           e.EntryID,
		AcademicYear: e.AcademicYear,
		Status:       e.Status,
		Notes:        e.Notes,
		BatchID:      e.BatchID,
		SubjectID:    e.SubjectID,
		FacultyID:    e.FacultyID,
		ClassroomID:  e.ClassroomID,
		TimeSlotID:   e.TimeSlotID,
	}
	if e.Batch != nil {
		resp.BatchName = e.Batch.Name
	}
	if e.Subject != nil {
		resp.SubjectCode = e.Subject.Code
		resp.SubjectName = e.Subject.Name
	}
	if e.Faculty != nil {
		resp.FacultyName = e.Faculty.Name
	}
	if e.Classroom != nil {
		resp.RoomNumber = e.Classroom.RoomNumber
	}
	if e.TimeSlot != nil {
		resp.DayOfWeek = e.TimeSlot.DayOfWeek
		resp.StartTime = e.TimeSlot.StartTime
		resp.EndTime = e.TimeSlot.EndTime
	}
	return resp
}

func toEntryResponses(entries []model.TimetableEntry) []dto.EntryResponse {
	return lo.Map(entries, func(e model.TimetableEntry, _ int) dto.EntryResponse {
		return toEntryResponse(&e)
	})
}

func toConflictPairResponses(pairs []scheduler.ConflictPair) []dto.ConflictPairResponse {
	return lo.Map(pairs, func(p scheduler.ConflictPair, _ int) dto.ConflictPairResponse {
		return dto.ConflictPairResponse{
			Entries: [2]dto.EntryResponse{toEntryResponse(&p.Entries[0]), toEntryResponse(&p.Entries[1])},
			Reason:  p.Reason,
		}
	})
}
