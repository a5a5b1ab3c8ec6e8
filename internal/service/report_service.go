package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"classtrack/backend/config"
	"classtrack/backend/internal/dto"
	"classtrack/backend/internal/model"
	"classtrack/backend/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrReportInvalidRange = errors.New("起始日期不能晚于结束日期")
	ErrReportInvalidDate  = errors.New("日期格式无效")
)

// ReportService 考勤聚合报表接口
//
// 聚合口径：
//   - 四种状态计数互斥，合计为组内记录总数；
//   - 出勤率 = present/total × 100，四舍五入取整，total 为 0 时记 0；
//   - 平均迟到 = 出勤且迟到分钟 > 0 的记录均值，四舍五入取整，无样本记 0；
//   - 输出顺序确定：班级按年级升序、班级 ID 升序，学生按姓名升序、用户 ID 升序。
//     同一数据集两次聚合必须产出完全一致的结果。
type ReportService interface {
	// AggregateByClass 按班级聚合闭区间 [start, end] 内的考勤
	AggregateByClass(ctx context.Context, req *dto.ReportRangeRequest) (*dto.ReportResponse, error)
	// AggregateByStudent 按学生聚合；req.ClassID 非空时仅统计该班
	AggregateByStudent(ctx context.Context, req *dto.ReportRangeRequest) (*dto.ReportResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		loc = time.Local
	}
	return &reportService{repo: repo, loc: loc, logger: logger}
}

// bucket 单组计数累加器
type bucket struct {
	groupID    string
	groupLabel string
	grade      int
	present    int
	sick       int
	excused    int
	absent     int
	lateSum    int
	lateCount  int
}

func (s *reportService) AggregateByClass(ctx context.Context, req *dto.ReportRangeRequest) (*dto.ReportResponse, error) {
	start, end, err := s.parseRange(req)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListByDateRange(ctx, start, end, nil)
	if err != nil {
		s.logger.Error("查询考勤区间失败", zap.Error(err))
		return nil, fmt.Errorf("查询考勤区间失败: %w", err)
	}

	buckets := make(map[string]*bucket)
	for i := range records {
		rec := &records[i]
		// 无班级归属的记录不参与班级维度统计
		if rec.User == nil || rec.User.Class == nil {
			continue
		}
		cls := rec.User.Class
		b, ok := buckets[cls.ClassID]
		if !ok {
			b = &bucket{groupID: cls.ClassID, groupLabel: cls.Name, grade: cls.Grade}
			buckets[cls.ClassID] = b
		}
		b.add(rec)
	}

	groups := finishBuckets(buckets, func(a, b *bucket) bool {
		if a.grade != b.grade {
			return a.grade < b.grade
		}
		return a.groupID < b.groupID
	})

	return &dto.ReportResponse{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		GroupBy:   "class",
		Groups:    groups,
	}, nil
}

func (s *reportService) AggregateByStudent(ctx context.Context, req *dto.ReportRangeRequest) (*dto.ReportResponse, error) {
	start, end, err := s.parseRange(req)
	if err != nil {
		return nil, err
	}

	var classID *string
	if req.ClassID != "" {
		classID = &req.ClassID
	}

	records, err := s.repo.Attendance.ListByDateRange(ctx, start, end, classID)
	if err != nil {
		s.logger.Error("查询考勤区间失败", zap.Error(err))
		return nil, fmt.Errorf("查询考勤区间失败: %w", err)
	}

	buckets := make(map[string]*bucket)
	for i := range records {
		rec := &records[i]
		b, ok := buckets[rec.UserID]
		if !ok {
			b = &bucket{groupID: rec.UserID}
			if rec.User != nil {
				b.groupLabel = rec.User.Name
			}
			buckets[rec.UserID] = b
		}
		b.add(rec)
	}

	groups := finishBuckets(buckets, func(a, b *bucket) bool {
		if a.groupLabel != b.groupLabel {
			return a.groupLabel < b.groupLabel
		}
		return a.groupID < b.groupID
	})

	return &dto.ReportResponse{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		GroupBy:   "student",
		Groups:    groups,
	}, nil
}

func (s *reportService) parseRange(req *dto.ReportRangeRequest) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", req.StartDate, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrReportInvalidDate
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrReportInvalidDate
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, ErrReportInvalidRange
	}
	return start, end, nil
}

func (b *bucket) add(rec *model.AttendanceRecord) {
	switch rec.Status {
	case model.StatusPresent:
		b.present++
		if rec.LateMinutes > 0 {
			b.lateSum += rec.LateMinutes
			b.lateCount++
		}
	case model.StatusSick:
		b.sick++
	case model.StatusExcused:
		b.excused++
	case model.StatusAbsent:
		b.absent++
	}
}

// finishBuckets 结算计数并按给定序稳定输出
func finishBuckets(buckets map[string]*bucket, less func(a, b *bucket) bool) []dto.AttendanceAggregate {
	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	groups := make([]dto.AttendanceAggregate, 0, len(ordered))
	for _, b := range ordered {
		total := b.present + b.sick + b.excused + b.absent
		agg := dto.AttendanceAggregate{
			GroupID:      b.groupID,
			GroupLabel:   b.groupLabel,
			Grade:        b.grade,
			PresentCount: b.present,
			SickCount:    b.sick,
			ExcusedCount: b.excused,
			AbsentCount:  b.absent,
			TotalCount:   total,
		}
		if total > 0 {
			agg.Rate = roundHalfUp(float64(b.present) * 100 / float64(total))
		}
		if b.lateCount > 0 {
			agg.AvgLateMinutes = roundHalfUp(float64(b.lateSum) / float64(b.lateCount))
		}
		groups = append(groups, agg)
	}
	return groups
}

// roundHalfUp 四舍五入取整（0.5 进位）
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
