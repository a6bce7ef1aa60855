package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/response"
)

// ClassroomHandler 教室模块 HTTP 处理器
type ClassroomHandler struct {
	classroomSvc service.ClassroomService
}

// NewClassroomHandler 创建 ClassroomHandler
func NewClassroomHandler(classroomSvc service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classroomSvc: classroomSvc}
}

// ListClassrooms 教室列表
// GET /api/v1/classrooms
func (h *ClassroomHandler) ListClassrooms(c *gin.Context) {
	rooms, err := h.classroomSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// ListAvailableClassrooms 某学年某时间段的空闲教室
// GET /api/v1/classrooms/available?time_slot_id=...&academic_year=2024-25&type=lab
func (h *ClassroomHandler) ListAvailableClassrooms(c *gin.Context) {
	var req dto.AvailableClassroomRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rooms, err := h.classroomSvc.ListAvailableFor(c.Request.Context(), &req)
	if err != nil {
		h.handleClassroomError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rooms})
}

// ClassroomStats 可用教室统计
// GET /api/v1/classrooms/stats
func (h *ClassroomHandler) ClassroomStats(c *gin.Context) {
	stats, err := h.classroomSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// GetClassroom 教室详情
// GET /api/v1/classrooms/:id
func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	room, err := h.classroomSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClassroomError(c, err)
		return
	}

	response.OK(c, room)
}

// CreateClassroom 创建教室
// POST /api/v1/classrooms
func (h *ClassroomHandler) CreateClassroom(c *gin.Context) {
	var req dto.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.classroomSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleClassroomError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateClassroom 更新教室
// PUT /api/v1/classrooms/:id
func (h *ClassroomHandler) UpdateClassroom(c *gin.Context) {
	var req dto.UpdateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.classroomSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleClassroomError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteClassroom 删除教室
// DELETE /api/v1/classrooms/:id
func (h *ClassroomHandler) DeleteClassroom(c *gin.Context) {
	if err := h.classroomSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleClassroomError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ClassroomHandler) handleClassroomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassroomNotFound):
		response.NotFound(c, 24001, "教室不存在")
	case errors.Is(err, service.ErrRoomNumberExists):
		response.Conflict(c, 24002, "教室编号已存在")
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, 25001, "时间段不存在")
	default:
		response.InternalError(c)
	}
}
