package handler

import "classgrid/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Timetable  *TimetableHandler
	Export     *ExportHandler
	Batch      *BatchHandler
	Subject    *SubjectHandler
	Classroom  *ClassroomHandler
	TimeSlot   *TimeSlotHandler
	Assignment *AssignmentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Timetable:  NewTimetableHandler(svc.Timetable),
		Export:     NewExportHandler(svc.Export),
		Batch:      NewBatchHandler(svc.Batch),
		Subject:    NewSubjectHandler(svc.Subject),
		Classroom:  NewClassroomHandler(svc.Classroom),
		TimeSlot:   NewTimeSlotHandler(svc.TimeSlot),
		Assignment: NewAssignmentHandler(svc.Assignment),
	}
}
