package service

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
	"classgrid/backend/internal/scheduler"
)

// ── 教室模块业务错误 ──

var (
	ErrClassroomNotFound = errors.New("教室不存在")
	ErrRoomNumberExists  = errors.New("教室编号已存在")
)

// ClassroomService 教室业务接口
type ClassroomService interface {
	Create(ctx context.Context, req *dto.CreateClassroomRequest) (*dto.ClassroomResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClassroomResponse, error)
	List(ctx context.Context) ([]dto.ClassroomResponse, error)
	ListAvailableFor(ctx context.Context, req *dto.AvailableClassroomRequest) ([]dto.ClassroomResponse, error)
	Stats(ctx context.Context) (*dto.ClassroomStatsResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassroomRequest) (*dto.ClassroomResponse, error)
	Delete(ctx context.Context, id string) error
}

type classroomService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassroomService 创建 ClassroomService 实例
func NewClassroomService(repo *repository.Repository, logger *zap.Logger) ClassroomService {
	return &classroomService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classroomService) Create(ctx context.Context, req *dto.CreateClassroomRequest) (*dto.ClassroomResponse, error) {
	if _, err := s.repo.Classroom.GetByRoomNumber(ctx, req.RoomNumber); err == nil {
		return nil, ErrRoomNumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教室编号失败", zap.String("room_number", req.RoomNumber), zap.Error(err))
		return nil, err
	}

	room := &model.Classroom{
		RoomNumber:  req.RoomNumber,
		Building:    req.Building,
		Capacity:    req.Capacity,
		Kind:        req.Kind,
		Equipment:   req.Equipment,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Classroom.Create(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoomNumberExists
		}
		s.logger.Error("创建教室失败", zap.Error(err))
		return nil, err
	}

	return toClassroomResponse(room), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classroomService) GetByID(ctx context.Context, id string) (*dto.ClassroomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClassroomResponse(room), nil
}

// ────────────────────── List ──────────────────────

func (s *classroomService) List(ctx context.Context) ([]dto.ClassroomResponse, error) {
	rooms, err := s.repo.Classroom.List(ctx)
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassroomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toClassroomResponse(&rooms[i]))
	}
	return result, nil
}

// ────────────────────── ListAvailableFor ──────────────────────
//
// 某学年某时间段内未被任何条目占用的可用教室，可按类型过滤

func (s *classroomService) ListAvailableFor(ctx context.Context, req *dto.AvailableClassroomRequest) ([]dto.ClassroomResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("time_slot_id", req.TimeSlotID), zap.Error(err))
		return nil, err
	}
	// 休息或停用时段不可排课
	if slot.IsBreak || !slot.IsActive {
		return []dto.ClassroomResponse{}, nil
	}

	rooms, err := s.repo.Classroom.ListAvailable(ctx)
	if err != nil {
		s.logger.Error("列出可用教室失败", zap.Error(err))
		return nil, err
	}
	occupied, err := s.repo.TimetableEntry.ListBySlot(ctx, req.AcademicYear, req.TimeSlotID)
	if err != nil {
		s.logger.Error("查询时段条目失败", zap.String("time_slot_id", req.TimeSlotID), zap.Error(err))
		return nil, err
	}

	free := lo.Filter(rooms, func(r model.Classroom, _ int) bool {
		if req.Kind != "" && r.Kind != req.Kind {
			return false
		}
		c := scheduler.Candidate{ClassroomID: r.ClassroomID, TimeSlotID: req.TimeSlotID, AcademicYear: req.AcademicYear}
		return !lo.ContainsBy(occupied, func(e model.TimetableEntry) bool { return scheduler.Clashes(&e, c) })
	})
	return lo.Map(free, func(r model.Classroom, _ int) dto.ClassroomResponse { return *toClassroomResponse(&r) }), nil
}

// ────────────────────── Stats ──────────────────────

func (s *classroomService) Stats(ctx context.Context) (*dto.ClassroomStatsResponse, error) {
	rooms, err := s.repo.Classroom.ListAvailable(ctx)
	if err != nil {
		s.logger.Error("统计教室失败", zap.Error(err))
		return nil, err
	}
	return &dto.ClassroomStatsResponse{
		TotalClassrooms: len(rooms),
		TotalCapacity:   lo.SumBy(rooms, func(r model.Classroom) int { return r.Capacity }),
		ByKind:          countGroups(rooms, func(r model.Classroom) string { return r.Kind }),
		ByBuilding:      countGroups(rooms, func(r model.Classroom) string { return r.Building }),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *classroomService) Update(ctx context.Context, id string, req *dto.UpdateClassroomRequest) (*dto.ClassroomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Building != nil {
		room.Building = *req.Building
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Kind != nil {
		room.Kind = *req.Kind
	}
	if req.Equipment != nil {
		room.Equipment = req.Equipment
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Classroom.Update(ctx, room); err != nil {
		s.logger.Error("更新教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toClassroomResponse(room), nil
}

// ────────────────────── Delete ──────────────────────

func (s *classroomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Classroom.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassroomNotFound
		}
		s.logger.Error("删除教室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *classroomService) get(ctx context.Context, id string) (*model.Classroom, error) {
	room, err := s.repo.Classroom.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return room, nil
}

func toClassroomResponse(r *model.Classroom) *dto.ClassroomResponse {
	return &dto.ClassroomResponse{
		ID:          r.ClassroomID,
		RoomNumber:  r.RoomNumber,
		Building:    r.Building,
		Capacity:    r.Capacity,
		Kind:        r.Kind,
		Equipment:   r.Equipment,
		IsAvailable: r.IsAvailable,
	}
}
