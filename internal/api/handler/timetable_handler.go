package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classgrid/backend/internal/dto"
	"classgrid/backend/internal/scheduler"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// Generate 生成学年课表
// POST /api/v1/timetable/generate
//
// 无法安排的课节以 conflicts 数据返回，仍为 200。
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// Validate 校验学年课表
// GET /api/v1/timetable/validate?academic_year=2024-25
func (h *TimetableHandler) Validate(c *gin.Context) {
	var q dto.AcademicYearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Validate(c.Request.Context(), q.AcademicYear)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// Conflicts 列出学年课表中的冲突对
// GET /api/v1/timetable/conflicts?academic_year=2024-25
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	var q dto.AcademicYearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Conflicts(c.Request.Context(), q.AcademicYear)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// Approve 审核学年草稿
// PUT /api/v1/timetable/approve
func (h *TimetableHandler) Approve(c *gin.Context) {
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Approve(c.Request.Context(), req.AcademicYear)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// Publish 发布学年已审核课表
// PUT /api/v1/timetable/publish
func (h *TimetableHandler) Publish(c *gin.Context) {
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Publish(c.Request.Context(), req.AcademicYear)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// List 按学年 / 班级查询课表
// GET /api/v1/timetable?academic_year=2024-25&batch_id=xxx
func (h *TimetableHandler) List(c *gin.Context) {
	var req dto.TimetableListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entries, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListByFaculty 教师视图
// GET /api/v1/timetable/faculty/:id
//
// 教师只能查看自己的课表。
func (h *TimetableHandler) ListByFaculty(c *gin.Context) {
	facultyID := c.Param("id")

	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	if role != "admin" {
		userID, ok := MustGetUserID(c)
		if !ok {
			return
		}
		if userID != facultyID {
			response.Forbidden(c, 10003, "无权查看其他教师课表")
			return
		}
	}

	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entries, err := h.svc.ListByFaculty(c.Request.Context(), facultyID, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ListByClassroom 教室视图
// GET /api/v1/timetable/classroom/:id
func (h *TimetableHandler) ListByClassroom(c *gin.Context) {
	var req dto.TimetableViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entries, err := h.svc.ListByClassroom(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// CreateEntry 人工新增课表条目
// POST /api/v1/timetable/entries
func (h *TimetableHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry, err := h.svc.CreateEntry(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.Created(c, entry)
}

// UpdateEntry 人工修改课表条目
// PUT /api/v1/timetable/entries/:id
func (h *TimetableHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	entry, err := h.svc.UpdateEntry(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, entry)
}

// DeleteEntry 删除课表条目
// DELETE /api/v1/timetable/entries/:id
func (h *TimetableHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, nil)
}

// Check 只读冲突检查
// POST /api/v1/timetable/check
func (h *TimetableHandler) Check(c *gin.Context) {
	var req dto.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.svc.Check(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

func bindFailed(c *gin.Context, err error) {
	response.BadRequest(c, 20005, "参数校验失败: "+err.Error())
}

// handleTimetableError 统一处理课表模块业务错误
func handleTimetableError(c *gin.Context, err error) {
	var conflictErr *service.EntryConflictError
	switch {
	// ── 输入错误 ──
	case errors.Is(err, scheduler.ErrInvalidAcademicYear):
		response.BadRequest(c, 20001, "学年格式应为 YYYY-YY")
	case errors.Is(err, scheduler.ErrNoClassrooms):
		response.BadRequest(c, 20002, "没有可用教室")
	case errors.Is(err, scheduler.ErrNoTimeSlots):
		response.BadRequest(c, 20003, "没有可用时间段")
	case errors.Is(err, scheduler.ErrInvalidCredits), errors.Is(err, scheduler.ErrUnknownSubjectKind):
		response.BadRequest(c, 20004, err.Error())

	// ── 条目 ──
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 21001, "课表条目不存在")
	case errors.Is(err, service.ErrEntryKindMismatch):
		response.BadRequest(c, 21002, err.Error())
	case errors.As(err, &conflictErr):
		response.ErrorWithDetails(c, http.StatusConflict, 21003, "课表条目与已有安排冲突", conflictErr.Conflicts)
	case errors.Is(err, service.ErrGenerationInProgress):
		response.Conflict(c, 21004, "该学年课表正在生成中，请稍后重试")
	case errors.Is(err, service.ErrEntryBreakSlot):
		response.BadRequest(c, 21005, "不能在休息时间段排课")
	case errors.Is(err, service.ErrEntryInvalidStatus):
		response.BadRequest(c, 21007, "课表条目状态不合法")
	case errors.Is(err, service.ErrEntryBatchNotFound),
		errors.Is(err, service.ErrEntrySubjectNotFound),
		errors.Is(err, service.ErrEntryFacultyNotFound),
		errors.Is(err, service.ErrEntryRoomNotFound),
		errors.Is(err, service.ErrEntrySlotNotFound):
		response.BadRequest(c, 21006, err.Error())
	default:
		response.InternalError(c)
	}
}
