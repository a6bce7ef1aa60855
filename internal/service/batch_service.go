package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
)

// ── 班级模块业务错误 ──

var (
	ErrBatchNotFound = errors.New("班级不存在")
	ErrBatchExists   = errors.New("同一院系同一学年已存在同名班级")
)

// BatchService 班级业务接口
type BatchService interface {
	Create(ctx context.Context, req *dto.CreateBatchRequest) (*dto.BatchResponse, error)
	GetByID(ctx context.Context, id string) (*dto.BatchResponse, error)
	List(ctx context.Context, req *dto.BatchListRequest) ([]dto.BatchResponse, error)
	Stats(ctx context.Context, req *dto.BatchListRequest) (*dto.BatchStatsResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateBatchRequest) (*dto.BatchResponse, error)
	Delete(ctx context.Context, id string) error
}

type batchService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewBatchService 创建 BatchService 实例
func NewBatchService(repo *repository.Repository, logger *zap.Logger) BatchService {
	return &batchService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *batchService) Create(ctx context.Context, req *dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	batch := &model.Batch{
		Name:         req.Name,
		Department:   req.Department,
		Semester:     req.Semester,
		Year:         req.Year,
		StudentCount: req.StudentCount,
		AcademicYear: req.AcademicYear,
		IsActive:     true,
	}

	if err := s.repo.Batch.Create(ctx, batch); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBatchExists
		}
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return toBatchResponse(batch), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *batchService) GetByID(ctx context.Context, id string) (*dto.BatchResponse, error) {
	batch, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// ────────────────────── List ──────────────────────

func (s *batchService) List(ctx context.Context, req *dto.BatchListRequest) ([]dto.BatchResponse, error) {
	batches, err := s.repo.Batch.List(ctx, req.AcademicYear)
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		result = append(result, *toBatchResponse(&batches[i]))
	}
	return result, nil
}

// ────────────────────── Stats ──────────────────────

func (s *batchService) Stats(ctx context.Context, req *dto.BatchListRequest) (*dto.BatchStatsResponse, error) {
	all, err := s.repo.Batch.List(ctx, req.AcademicYear)
	if err != nil {
		s.logger.Error("统计班级失败", zap.Error(err))
		return nil, err
	}
	active := lo.Filter(all, func(b model.Batch, _ int) bool { return b.IsActive })

	return &dto.BatchStatsResponse{
		TotalBatches:  len(active),
		TotalStudents: lo.SumBy(active, func(b model.Batch) int { return b.StudentCount }),
		ByDepartment:  batchGroups(active, func(b model.Batch) string { return b.Department }),
		ByYear:        batchGroups(active, func(b model.Batch) string { return strconv.Itoa(b.Year) }),
	}, nil
}

func batchGroups(batches []model.Batch, key func(model.Batch) string) []dto.BatchGroupStats {
	keys, groups := groupSorted(batches, key)
	return lo.Map(keys, func(k string, _ int) dto.BatchGroupStats {
		return dto.BatchGroupStats{
			Group:         k,
			BatchCount:    len(groups[k]),
			TotalStudents: lo.SumBy(groups[k], func(b model.Batch) int { return b.StudentCount }),
		}
	})
}

// ────────────────────── Update ──────────────────────

func (s *batchService) Update(ctx context.Context, id string, req *dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	batch, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		batch.Name = *req.Name
	}
	if req.Department != nil {
		batch.Department = *req.Department
	}
	if req.Semester != nil {
		batch.Semester = *req.Semester
	}
	if req.Year != nil {
		batch.Year = *req.Year
	}
	if req.StudentCount != nil {
		batch.StudentCount = *req.StudentCount
	}
	if req.IsActive != nil {
		batch.IsActive = *req.IsActive
	}

	if err := s.repo.Batch.Update(ctx, batch); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBatchExists
		}
		s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toBatchResponse(batch), nil
}

// ────────────────────── Delete ──────────────────────

func (s *batchService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Batch.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBatchNotFound
		}
		s.logger.Error("删除班级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *batchService) get(ctx context.Context, id string) (*model.Batch, error) {
	batch, err := s.repo.Batch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return batch, nil
}

func toBatchResponse(b *model.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:           b.BatchID,
		Name:         b.Name,
		Department:   b.Department,
		Semester:     b.Semester,
		Year:         b.Year,
		StudentCount: b.StudentCount,
		AcademicYear: b.AcademicYear,
		IsActive:     b.IsActive,
	}
}
