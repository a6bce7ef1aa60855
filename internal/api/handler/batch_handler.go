package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/response"
)

// BatchHandler 班级模块 HTTP 处理器
type BatchHandler struct {
	batchSvc service.BatchService
}

// NewBatchHandler 创建 BatchHandler
func NewBatchHandler(batchSvc service.BatchService) *BatchHandler {
	return &BatchHandler{batchSvc: batchSvc}
}

// ListBatches 班级列表
// GET /api/v1/batches?academic_year=2024-25
func (h *BatchHandler) ListBatches(c *gin.Context) {
	var req dto.BatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	batches, err := h.batchSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": batches})
}

// BatchStats 有效班级统计
// GET /api/v1/batches/stats?academic_year=2024-25
func (h *BatchHandler) BatchStats(c *gin.Context) {
	var req dto.BatchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	stats, err := h.batchSvc.Stats(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// GetBatch 班级详情
// GET /api/v1/batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.batchSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// CreateBatch 创建班级
// POST /api/v1/batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	batch, err := h.batchSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.Created(c, batch)
}

// UpdateBatch 更新班级
// PUT /api/v1/batches/:id
func (h *BatchHandler) UpdateBatch(c *gin.Context) {
	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	batch, err := h.batchSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, batch)
}

// DeleteBatch 删除班级
// DELETE /api/v1/batches/:id
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	if err := h.batchSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleBatchError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *BatchHandler) handleBatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBatchNotFound):
		response.NotFound(c, 22001, "班级不存在")
	case errors.Is(err, service.ErrBatchExists):
		response.Conflict(c, 22002, "同一院系同一学年已存在同名班级")
	default:
		response.InternalError(c)
	}
}
