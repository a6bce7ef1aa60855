package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/response"
)

// TimeSlotHandler 时间段模块 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// ListTimeSlots 获取时间段列表
// GET /api/v1/time-slots?day_of_week=1
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	var req dto.TimeSlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.timeSlotSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// ListAvailableTimeSlots 某天该学年尚未占用的可排课时间段
// GET /api/v1/time-slots/available?day_of_week=1&academic_year=2024-25
func (h *TimeSlotHandler) ListAvailableTimeSlots(c *gin.Context) {
	var req dto.AvailableTimeSlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.timeSlotSvc.ListAvailable(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// TimeSlotStats 时间段统计，带 academic_year 时统计占用
// GET /api/v1/time-slots/stats?academic_year=2024-25
func (h *TimeSlotHandler) TimeSlotStats(c *gin.Context) {
	var req dto.TimeSlotStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stats, err := h.timeSlotSvc.Stats(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// GetTimeSlot 获取时间段详情
// GET /api/v1/time-slots/:id
func (h *TimeSlotHandler) GetTimeSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "时间段ID不能为空")
		return
	}

	slot, err := h.timeSlotSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// CreateTimeSlot 创建时间段
// POST /api/v1/time-slots
func (h *TimeSlotHandler) CreateTimeSlot(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.timeSlotSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// UpdateTimeSlot 更新时间段
// PUT /api/v1/time-slots/:id
func (h *TimeSlotHandler) UpdateTimeSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "时间段ID不能为空")
		return
	}

	var req dto.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.timeSlotSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteTimeSlot 删除时间段
// DELETE /api/v1/time-slots/:id
func (h *TimeSlotHandler) DeleteTimeSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "时间段ID不能为空")
		return
	}

	if err := h.timeSlotSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleTimeSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTimeSlotError 统一处理时间段模块业务错误
func (h *TimeSlotHandler) handleTimeSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, 25001, "时间段不存在")
	case errors.Is(err, service.ErrTimeSlotExists):
		response.Conflict(c, 25002, "同一天同一开始时间的时间段已存在")
	case errors.Is(err, service.ErrTimeSlotInvalidSpan):
		response.BadRequest(c, 25003, "结束时间必须晚于开始时间")
	default:
		response.InternalError(c)
	}
}
