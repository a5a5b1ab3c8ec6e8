package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classtrack/backend/internal/dto"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 月度考勤报表导出接口
//
// 设计说明：
//   - 导出复用 ReportService 的聚合口径，不另写统计逻辑，保证报表页面
//     与导出文件数字一致
//   - 未指定班级时按班级分组导出全校汇总，指定班级时按学生分组导出明细
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMonthlyExcel 导出月度考勤汇总为 Excel (.xlsx)
	ExportMonthlyExcel(ctx context.Context, req *dto.MonthlyExportRequest) (*bytes.Buffer, string, error)
	// ExportMonthlyPDF 导出月度考勤汇总为 PDF
	ExportMonthlyPDF(ctx context.Context, req *dto.MonthlyExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	reportSvc ReportService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(reportSvc ReportService, logger *zap.Logger) ExportService {
	return &exportService{reportSvc: reportSvc, logger: logger}
}

// aggregate 取月度聚合：自然月首日到末日的闭区间
func (s *exportService) aggregate(ctx context.Context, req *dto.MonthlyExportRequest) (*dto.ReportResponse, error) {
	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	rangeReq := &dto.ReportRangeRequest{
		StartDate: first.Format("2006-01-02"),
		EndDate:   last.Format("2006-01-02"),
		ClassID:   req.ClassID,
	}
	if req.ClassID != "" {
		return s.reportSvc.AggregateByStudent(ctx, rangeReq)
	}
	return s.reportSvc.AggregateByClass(ctx, rangeReq)
}

// ═══════════════════════════════════════════════════════════
// ExportMonthlyExcel — 导出月度汇总为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "考勤汇总"
//   - 标题行：年月 + 分组维度
//   - 表头: | 分组 | 出勤 | 病假 | 事假 | 旷课 | 合计 | 出勤率 | 平均迟到(分) |
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMonthlyExcel(ctx context.Context, req *dto.MonthlyExportRequest) (*bytes.Buffer, string, error) {
	report, err := s.aggregate(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤汇总"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "H", 12)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	groupLabel := "按班级"
	if report.GroupBy == "student" {
		groupLabel = "按学生"
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d年%d月 考勤汇总（%s）", req.Year, req.Month, groupLabel))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"分组", "出勤", "病假", "事假", "旷课", "合计", "出勤率", "平均迟到(分)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "H2", headerStyle)

	// 数据行
	row := 3
	for _, g := range report.Groups {
		label := g.GroupLabel
		if label == "" {
			label = g.GroupID
		}
		f.SetCellValue(sheetName, cell("A", row), label)
		f.SetCellValue(sheetName, cell("B", row), g.PresentCount)
		f.SetCellValue(sheetName, cell("C", row), g.SickCount)
		f.SetCellValue(sheetName, cell("D", row), g.ExcusedCount)
		f.SetCellValue(sheetName, cell("E", row), g.AbsentCount)
		f.SetCellValue(sheetName, cell("F", row), g.TotalCount)
		f.SetCellValue(sheetName, cell("G", row), fmt.Sprintf("%d%%", g.Rate))
		f.SetCellValue(sheetName, cell("H", row), g.AvgLateMinutes)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤汇总_%04d-%02d.xlsx", req.Year, req.Month)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportMonthlyPDF — 导出月度汇总为 PDF
// ═══════════════════════════════════════════════════════════
//
// 表结构与 Excel 版一致；核心字体仅覆盖 Latin-1，分组标签中的非
// Latin 字符经 cp1252 转写后呈现，表头使用 ASCII 文案

func (s *exportService) ExportMonthlyPDF(ctx context.Context, req *dto.MonthlyExportRequest) (*bytes.Buffer, string, error) {
	report, err := s.aggregate(ctx, req)
	if err != nil {
		return nil, "", err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// 标题
	pdf.SetFont("Helvetica", "B", 14)
	title := fmt.Sprintf("Attendance Summary %04d-%02d (by %s)", req.Year, req.Month, report.GroupBy)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// 表头
	headers := []string{"Group", "Present", "Sick", "Excused", "Absent", "Total", "Rate", "Avg Late (min)"}
	widths := []float64{80, 25, 25, 25, 25, 25, 25, 35}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// 数据行
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, g := range report.Groups {
		label := g.GroupLabel
		if label == "" {
			label = g.GroupID
		}
		pdf.CellFormat(widths[0], 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", g.PresentCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", g.SickCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", g.ExcusedCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%d", g.AbsentCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, fmt.Sprintf("%d", g.TotalCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 7, fmt.Sprintf("%d%%", g.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[7], 7, fmt.Sprintf("%d", g.AvgLateMinutes), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("写入 PDF 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("attendance_summary_%04d-%02d.pdf", req.Year, req.Month)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
