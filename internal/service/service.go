package service

import (
	"go.uber.org/zap"

	"classgrid/backend/config"
	"classgrid/backend/internal/repository"
	"classgrid/backend/pkg/jwt"
	"classgrid/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Timetable  TimetableService
	Export     ExportService
	Batch      BatchService
	Subject    SubjectService
	Classroom  ClassroomService
	TimeSlot   TimeSlotService
	Assignment AssignmentService
}

// NewService 创建 Service 聚合
// rdb 可为 nil：此时不启用 Token 黑名单与跨实例生成锁
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var (
		blacklist TokenBlacklist
		genLock   GenerationLock
	)
	if rdb != nil {
		blacklist = rdb
		if cfg.Scheduler.UseRedisLock {
			genLock = rdb
		}
	}

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		User:       NewUserService(repo, logger),
		Timetable:  NewTimetableService(repo, genLock, cfg.Scheduler.LockTTL, logger),
		Export:     NewExportService(repo, logger),
		Batch:      NewBatchService(repo, logger),
		Subject:    NewSubjectService(repo, logger),
		Classroom:  NewClassroomService(repo, logger),
		TimeSlot:   NewTimeSlotService(repo, logger),
		Assignment: NewAssignmentService(repo, logger),
	}
}
