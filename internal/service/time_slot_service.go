package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
)

// ── 时间段模块业务错误 ──

var (
	ErrTimeSlotNotFound    = errors.New("时间段不存在")
	ErrTimeSlotExists      = errors.New("同一天同一开始时间的时间段已存在")
	ErrTimeSlotInvalidSpan = errors.New("结束时间必须晚于开始时间")
)

// TimeSlotService 时间段业务接口
type TimeSlotService interface {
	Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error)
	ListAvailable(ctx context.Context, req *dto.AvailableTimeSlotRequest) ([]dto.TimeSlotResponse, error)
	Stats(ctx context.Context, req *dto.TimeSlotStatsRequest) (*dto.TimeSlotStatsResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	minutes, err := spanMinutes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	slot := &model.TimeSlot{
		Name:            req.Name,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: minutes,
		IsBreak:         req.IsBreak,
		IsActive:        true,
	}

	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTimeSlotExists
		}
		s.logger.Error("创建时间段失败", zap.Error(err))
		return nil, err
	}

	return toTimeSlotResponse(slot), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimeSlotResponse(slot), nil
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx, req.DayOfWeek)
	if err != nil {
		s.logger.Error("列出时间段失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toTimeSlotResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── ListAvailable ──────────────────────
//
// 某天的可排课时间段中，该学年尚无任何条目占用的部分

func (s *timeSlotService) ListAvailable(ctx context.Context, req *dto.AvailableTimeSlotRequest) ([]dto.TimeSlotResponse, error) {
	day := req.DayOfWeek
	slots, err := s.repo.TimeSlot.List(ctx, &day)
	if err != nil {
		s.logger.Error("列出时间段失败", zap.Int("day_of_week", day), zap.Error(err))
		return nil, err
	}
	used, err := s.usedSlotIDs(ctx, req.AcademicYear)
	if err != nil {
		return nil, err
	}

	free := lo.Filter(slots, func(ts model.TimeSlot, _ int) bool {
		return ts.IsActive && !ts.IsBreak && !used[ts.TimeSlotID]
	})
	return lo.Map(free, func(ts model.TimeSlot, _ int) dto.TimeSlotResponse { return *toTimeSlotResponse(&ts) }), nil
}

// ────────────────────── Stats ──────────────────────

func (s *timeSlotService) Stats(ctx context.Context, req *dto.TimeSlotStatsRequest) (*dto.TimeSlotStatsResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx, nil)
	if err != nil {
		s.logger.Error("统计时间段失败", zap.Error(err))
		return nil, err
	}
	slots = lo.Filter(slots, func(ts model.TimeSlot, _ int) bool { return ts.IsActive })

	used := map[string]bool{}
	if req.AcademicYear != "" {
		if used, err = s.usedSlotIDs(ctx, req.AcademicYear); err != nil {
			return nil, err
		}
	}

	byDay := lo.GroupBy(slots, func(ts model.TimeSlot) int { return ts.DayOfWeek })
	days := lo.Keys(byDay)
	sort.Ints(days)

	return &dto.TimeSlotStatsResponse{
		TotalSlots: len(slots),
		PerDay: lo.Map(days, func(d int, _ int) dto.TimeSlotDayStats {
			group := byDay[d]
			return dto.TimeSlotDayStats{
				DayOfWeek:  d,
				TotalSlots: len(group),
				BreakSlots: lo.CountBy(group, func(ts model.TimeSlot) bool { return ts.IsBreak }),
				UsedSlots:  lo.CountBy(group, func(ts model.TimeSlot) bool { return used[ts.TimeSlotID] }),
			}
		}),
	}, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	slot, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		slot.Name = *req.Name
	}
	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.IsBreak != nil {
		slot.IsBreak = *req.IsBreak
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	minutes, err := spanMinutes(slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, err
	}
	slot.DurationMinutes = minutes

	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTimeSlotExists
		}
		s.logger.Error("更新时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toTimeSlotResponse(slot), nil
}

// ────────────────────── Delete ──────────────────────

func (s *timeSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.TimeSlot.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeSlotNotFound
		}
		s.logger.Error("删除时间段失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// usedSlotIDs 学年内已有条目（任意状态）占用的时间段
func (s *timeSlotService) usedSlotIDs(ctx context.Context, academicYear string) (map[string]bool, error) {
	entries, err := s.repo.TimetableEntry.ListByYear(ctx, academicYear)
	if err != nil {
		s.logger.Error("查询学年条目失败", zap.String("academic_year", academicYear), zap.Error(err))
		return nil, err
	}
	return lo.SliceToMap(entries, func(e model.TimetableEntry) (string, bool) { return e.TimeSlotID, true }), nil
}

func (s *timeSlotService) get(ctx context.Context, id string) (*model.TimeSlot, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("查询时间段失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

// parseClock 解析 "15:04:05"（数据库 TIME 列）或 "15:04"（请求体）
func parseClock(v string) (time.Time, error) {
	t, err := time.Parse("15:04:05", v)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04", v)
}

// spanMinutes 计算时间段时长（分钟），要求 end > start
func spanMinutes(start, end string) (int, error) {
	st, err := parseClock(start)
	if err != nil {
		return 0, ErrTimeSlotInvalidSpan
	}
	et, err := parseClock(end)
	if err != nil {
		return 0, ErrTimeSlotInvalidSpan
	}
	if !et.After(st) {
		return 0, ErrTimeSlotInvalidSpan
	}
	return int(et.Sub(st) / time.Minute), nil
}

func toTimeSlotResponse(slot *model.TimeSlot) *dto.TimeSlotResponse {
	return &dto.TimeSlotResponse{
		ID:              slot.TimeSlotID,
		Name:            slot.Name,
		DayOfWeek:       slot.DayOfWeek,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		DurationMinutes: slot.DurationMinutes,
		IsBreak:         slot.IsBreak,
		IsActive:        slot.IsActive,
	}
}
