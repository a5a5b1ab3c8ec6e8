package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/service"
	pkgerrors "classtrack/backend/pkg/errors"
	"classtrack/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Check 打卡：当日首次调用签到，第二次签退，第三次起报错
// POST /api/v1/attendance/check
func (h *AttendanceHandler) Check(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// body 可为空（method 缺省由设置决定），非空时必须通过校验
	var req dto.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.Check(c.Request.Context(), userID, req.Method)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// SetStatus 手工标注考勤状态（教师/管理员）
// PUT /api/v1/attendance/status
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	record, err := h.attendanceSvc.SetStatus(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// ListDaily 当日考勤名册（教师/管理员）
// GET /api/v1/attendance/daily
func (h *AttendanceHandler) ListDaily(c *gin.Context) {
	var req dto.DailyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, err := h.attendanceSvc.ListDaily(c.Request.Context(), &req)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// handleAttendanceError 统一处理考勤模块业务错误
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendancePersonNotFound):
		response.NotFound(c, 15001, "用户不存在")
	case errors.Is(err, service.ErrAttendanceCheckedOut):
		response.Error(c, http.StatusConflict, 15002, "今日考勤已完成")
	case errors.Is(err, service.ErrAttendanceNoSetting):
		response.BadRequest(c, 15003, "考勤设置缺失，无法计算迟到")
	case errors.Is(err, service.ErrAttendanceInvalidDate):
		response.BadRequest(c, 15004, "日期格式无效")
	case errors.Is(err, service.ErrAttendanceInvalidStatus):
		response.BadRequest(c, 15005, "考勤状态无效")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 15006, "班级不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, 15007, "记录已被其他操作修改，请刷新后重试")
	case errors.Is(err, pkgerrors.ErrDuplicateRecord):
		response.Error(c, http.StatusConflict, 15008, "该日考勤记录已存在")
	default:
		response.InternalError(c)
	}
}
