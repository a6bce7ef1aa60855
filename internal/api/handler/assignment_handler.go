package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/response"
)

// AssignmentHandler 教学分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments 教学分配列表
// GET /api/v1/assignments?academic_year=2024-25&faculty_id=xxx
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.assignmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetAssignment 教学分配详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	a, err := h.assignmentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// CreateAssignment 创建教学分配
// POST /api/v1/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// UpdateAssignment 更新教学分配（仅启用状态）
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	a, err := h.assignmentSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// DeleteAssignment 删除教学分配
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	if err := h.assignmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 26001, "教学分配不存在")
	case errors.Is(err, service.ErrAssignmentExists):
		response.Conflict(c, 26002, "该教师已在本学年为该班级讲授此课程")
	case errors.Is(err, service.ErrAssignmentNotFaculty):
		response.BadRequest(c, 26003, "指定用户不是教师")
	case errors.Is(err, service.ErrAssignmentYearMismatch):
		response.BadRequest(c, 26004, "班级学年与分配学年不一致")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrBatchNotFound):
		response.BadRequest(c, 26005, err.Error())
	default:
		response.InternalError(c)
	}
}
