package clock

import "time"

// Clock 时间来源抽象
// 考勤的"今天"、迟到分钟等全部经由 Clock 取当前时间，便于在测试中冻结时钟
type Clock interface {
	Now() time.Time
}

// System 系统时钟
type System struct{}

// Now 返回当前系统时间
func (System) Now() time.Time { return time.Now() }

// Fixed 固定时钟，测试用
type Fixed struct {
	T time.Time
}

// Now 返回固定时间
func (f Fixed) Now() time.Time { return f.T }
