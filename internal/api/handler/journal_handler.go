package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/service"
	"classtrack/backend/pkg/response"
)

// JournalHandler 教学日志模块 HTTP 处理器
type JournalHandler struct {
	journalSvc service.JournalService
}

// NewJournalHandler 创建 JournalHandler
func NewJournalHandler(journalSvc service.JournalService) *JournalHandler {
	return &JournalHandler{journalSvc: journalSvc}
}

// CreateJournal 创建教学日志（教师）
// POST /api/v1/journals
func (h *JournalHandler) CreateJournal(c *gin.Context) {
	teacherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	journal, err := h.journalSvc.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.Created(c, journal)
}

// GetJournal 查询教学日志详情
// GET /api/v1/journals/:id
func (h *JournalHandler) GetJournal(c *gin.Context) {
	id := c.Param("id")

	journal, err := h.journalSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OK(c, journal)
}

// ListJournals 教学日志列表（按班级/教师/日期范围过滤）
// GET /api/v1/journals
func (h *JournalHandler) ListJournals(c *gin.Context) {
	var req dto.JournalListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	journals, total, err := h.journalSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OKPage(c, journals, total, req.GetPage(), req.GetPageSize())
}

// UpdateJournal 更新教学日志（作者或管理员）
// PUT /api/v1/journals/:id
func (h *JournalHandler) UpdateJournal(c *gin.Context) {
	id := c.Param("id")

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	journal, err := h.journalSvc.Update(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OK(c, journal)
}

// DeleteJournal 删除教学日志（作者或管理员）
// DELETE /api/v1/journals/:id
func (h *JournalHandler) DeleteJournal(c *gin.Context) {
	id := c.Param("id")

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.journalSvc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		h.handleJournalError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleJournalError 统一处理教学日志模块业务错误
func (h *JournalHandler) handleJournalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJournalNotFound):
		response.NotFound(c, 18001, "教学日志不存在")
	case errors.Is(err, service.ErrJournalInvalidDate):
		response.BadRequest(c, 18002, "日期格式无效")
	case errors.Is(err, service.ErrJournalForbidden):
		response.Forbidden(c, 18003, "只能操作自己的教学日志")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 18004, "班级不存在")
	default:
		response.InternalError(c)
	}
}
