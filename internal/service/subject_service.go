package service

import (
	"context"
	"errors"
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/model"
	"classgrid/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrSubjectNotFound   = errors.New("课程不存在")
	ErrSubjectCodeExists = errors.New("课程代码已存在")
)

// SubjectService 课程业务接口
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error)
	Stats(ctx context.Context) (*dto.SubjectStatsResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	// 课程代码唯一
	if _, err := s.repo.Subject.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrSubjectCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程代码失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	subject := &model.Subject{
		Code:            req.Code,
		Name:            req.Name,
		Department:      req.Department,
		Credits:         req.Credits,
		Kind:            req.Kind,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubjectCodeExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *subjectService) GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx, req.Department)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── Stats ──────────────────────

func (s *subjectService) Stats(ctx context.Context) (*dto.SubjectStatsResponse, error) {
	all, err := s.repo.Subject.List(ctx, "")
	if err != nil {
		s.logger.Error("统计课程失败", zap.Error(err))
		return nil, err
	}
	active := lo.Filter(all, func(sub model.Subject, _ int) bool { return sub.IsActive })

	return &dto.SubjectStatsResponse{
		TotalSubjects: len(active),
		ByDepartment:  subjectGroups(active, func(sub model.Subject) string { return sub.Department }),
		ByKind:        subjectGroups(active, func(sub model.Subject) string { return sub.Kind }),
	}, nil
}

func subjectGroups(subjects []model.Subject, key func(model.Subject) string) []dto.SubjectGroupStats {
	keys, groups := groupSorted(subjects, key)
	return lo.Map(keys, func(k string, _ int) dto.SubjectGroupStats {
		g := groups[k]
		credits := lo.SumBy(g, func(sub model.Subject) int { return sub.Credits })
		return dto.SubjectGroupStats{
			Group:        k,
			SubjectCount: len(g),
			AvgCredits:   math.Round(float64(credits)/float64(len(g))*100) / 100,
		}
	})
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Department != nil {
		subject.Department = *req.Department
	}
	if req.Credits != nil {
		subject.Credits = *req.Credits
	}
	if req.Kind != nil {
		subject.Kind = *req.Kind
	}
	if req.DurationMinutes != nil {
		subject.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

func (s *subjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Subject.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *subjectService) get(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

func toSubjectResponse(sub *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:              sub.SubjectID,
		Code:            sub.Code,
		Name:            sub.Name,
		Department:      sub.Department,
		Credits:         sub.Credits,
		Kind:            sub.Kind,
		DurationMinutes: sub.DurationMinutes,
		IsActive:        sub.IsActive,
	}
}
