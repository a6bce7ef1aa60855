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
)

// ── 教学分配模块业务错误 ──

var (
	ErrAssignmentNotFound     = errors.New("教学分配不存在")
	ErrAssignmentExists       = errors.New("该教师已在本学年为该班级讲授此课程")
	ErrAssignmentNotFaculty   = errors.New("指定用户不是教师")
	ErrAssignmentYearMismatch = errors.New("班级学年与分配学年不一致")
)

// AssignmentService 教学分配业务接口
type AssignmentService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if err := s.checkFaculty(ctx, req.FacultyID); err != nil {
		return nil, err
	}
	if _, err := s.repo.Subject.GetByID(ctx, req.SubjectID); err != nil {
		return nil, notFoundAs(err, ErrSubjectNotFound)
	}
	batch, err := s.repo.Batch.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, notFoundAs(err, ErrBatchNotFound)
	}
	if batch.AcademicYear != req.AcademicYear {
		return nil, ErrAssignmentYearMismatch
	}

	link := &model.FacultySubject{
		FacultyID:    req.FacultyID,
		SubjectID:    req.SubjectID,
		BatchID:      req.BatchID,
		AcademicYear: req.AcademicYear,
		IsActive:     true,
	}
	if err := s.repo.FacultySubject.Create(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssignmentExists
		}
		s.logger.Error("创建教学分配失败", zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, link.FacultySubjectID)
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	link, err := s.repo.FacultySubject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询教学分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toAssignmentResponse(link)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *assignmentService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	links, err := s.repo.FacultySubject.List(ctx, repository.FacultySubjectFilter{
		AcademicYear: req.AcademicYear,
		FacultyID:    req.FacultyID,
		BatchID:      req.BatchID,
	})
	if err != nil {
		s.logger.Error("列出教学分配失败", zap.Error(err))
		return nil, err
	}

	return lo.Map(links, func(l model.FacultySubject, _ int) dto.AssignmentResponse {
		return toAssignmentResponse(&l)
	}), nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error) {
	link, err := s.repo.FacultySubject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询教学分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FacultyID != nil && *req.FacultyID != link.FacultyID {
		if err := s.checkFaculty(ctx, *req.FacultyID); err != nil {
			return nil, err
		}
		link.FacultyID = *req.FacultyID
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}

	if err := s.repo.FacultySubject.Update(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssignmentExists
		}
		s.logger.Error("更新教学分配失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.FacultySubject.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("删除教学分配失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *assignmentService) checkFaculty(ctx context.Context, userID string) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	if user.Role != model.RoleFaculty {
		return ErrAssignmentNotFaculty
	}
	return nil
}

func toAssignmentResponse(l *model.FacultySubject) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:           l.FacultySubjectID,
		FacultyID:    l.FacultyID,
		SubjectID:    l.SubjectID,
		BatchID:      l.BatchID,
		AcademicYear: l.AcademicYear,
		IsActive:     l.IsActive,
	}
	if l.Faculty != nil {
		resp.FacultyName = l.Faculty.Name
	}
	if l.Subject != nil {
		resp.SubjectCode = l.Subject.Code
		resp.SubjectName = l.Subject.Name
		resp.Credits = l.Subject.Credits
	}
	if l.Batch != nil {
		resp.BatchName = l.Batch.Name
	}
	return resp
}
