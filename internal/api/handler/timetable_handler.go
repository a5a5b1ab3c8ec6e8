package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/service"
	"classtrack/backend/pkg/response"
)

// TimetableHandler 课程表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// ImportICS 导入 ICS 课表（multipart 文件上传，field="file"）
// POST /api/v1/timetables/import
func (h *TimetableHandler) ImportICS(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 21005, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	result, err := h.timetableSvc.ImportICS(c.Request.Context(), file, &req, callerID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, result)
}

// ListTimetable 查询班级课程表
// GET /api/v1/timetables
func (h *TimetableHandler) ListTimetable(c *gin.Context) {
	var req dto.TimetableListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, err := h.timetableSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ClearTimetable 清空班级指定学期课表（管理员）
// DELETE /api/v1/timetables
func (h *TimetableHandler) ClearTimetable(c *gin.Context) {
	classID := c.Query("class_id")
	if classID == "" {
		response.BadRequest(c, 10001, "class_id不能为空")
		return
	}
	termID := c.Query("term_id")

	if err := h.timetableSvc.Clear(c.Request.Context(), classID, termID); err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTimetableError 统一处理课程表模块业务错误
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableParseFail):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21001, "ICS 课表解析失败", err.Error())
	case errors.Is(err, service.ErrTimetableEmpty):
		response.BadRequest(c, 21002, "ICS 文件中无有效课程")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 21003, "班级不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 21004, "学期不存在")
	case errors.Is(err, service.ErrTermNoActive):
		response.BadRequest(c, 21006, "当前无活动学期")
	default:
		response.InternalError(c)
	}
}
