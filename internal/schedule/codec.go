package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// 计划频率，与前端表单一一对应
const (
	FrequencyDisabled = "disabled"
	FrequencyDaily    = "daily"
	FrequencyWeekly   = "weekly"
	FrequencyMonthly  = "monthly"
)

// CronDisabled 禁用计划的哨兵值
const CronDisabled = "disabled"

// 时间解析失败时的默认备份时间
const defaultHour = 2
const defaultMinute = 0

// Descriptor 界面侧的计划描述，与cron表达式互转
type Descriptor struct {
	Frequency  string `json:"frequency"`
	Time       string `json:"time,omitempty"`         // HH:MM
	Weekday    string `json:"weekday,omitempty"`      // 0-6，仅weekly
	DayOfMonth string `json:"day_of_month,omitempty"` // 1-31，仅monthly
}

// IsDisabled 判断cron表达式是否为禁用状态
func IsDisabled(cronStr string) bool {
	return cronStr == "" || cronStr == CronDisabled
}

// parseTime 解析HH:MM，无效输入回落到02:00（宽松默认策略，不报错）
func parseTime(timeStr string) (hour, minute int) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return defaultHour, defaultMinute
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return defaultHour, defaultMinute
	}
	return h, m
}

// Encode 根据计划描述生成cron表达式
// 无效的weekday回落到0（周日），无效的day_of_month回落到1号。
func Encode(d *Descriptor) string {
	if d == nil || d.Frequency == "" || d.Frequency == FrequencyDisabled {
		return CronDisabled
	}

	hour, minute := parseTime(d.Time)

	switch d.Frequency {
	case FrequencyDaily:
		return fmt.Sprintf("%d %d * * *", minute, hour)
	case FrequencyWeekly:
		weekday := 0
		if w, err := strconv.Atoi(d.Weekday); err == nil && w >= 0 && w <= 6 {
			weekday = w
		}
		return fmt.Sprintf("%d %d * * %d", minute, hour, weekday)
	case FrequencyMonthly:
		dayOfMonth := 1
		if dom, err := strconv.Atoi(d.DayOfMonth); err == nil && dom >= 1 && dom <= 31 {
			dayOfMonth = dom
		}
		return fmt.Sprintf("%d %d %d * *", minute, hour, dayOfMonth)
	}

	return CronDisabled
}

// Decode 解析cron表达式为界面描述
// 只接受5段表达式；无法识别的形态（日和周同时受限、月份受限等）
// 一律降级为disabled，不报错。
func Decode(cronStr string) *Descriptor {
	if IsDisabled(cronStr) {
		return &Descriptor{Frequency: FrequencyDisabled}
	}

	parts := strings.Fields(cronStr)
	if len(parts) != 5 {
		return &Descriptor{Frequency: FrequencyDisabled} // 格式不正确
	}

	minuteStr, hourStr, dayOfMonth, month, dayOfWeek := parts[0], parts[1], parts[2], parts[3], parts[4]

	minute, err1 := strconv.Atoi(minuteStr)
	hour, err2 := strconv.Atoi(hourStr)
	if err1 != nil || err2 != nil {
		return &Descriptor{Frequency: FrequencyDisabled}
	}
	timeVal := fmt.Sprintf("%02d:%02d", hour, minute)

	if month != "*" {
		return &Descriptor{Frequency: FrequencyDisabled}
	}

	// 判断频率
	if dayOfMonth == "*" && dayOfWeek != "*" {
		return &Descriptor{
			Frequency: FrequencyWeekly,
			Time:      timeVal,
			Weekday:   dayOfWeek,
		}
	}
	if dayOfMonth != "*" && dayOfWeek == "*" {
		return &Descriptor{
			Frequency:  FrequencyMonthly,
			Time:       timeVal,
			DayOfMonth: dayOfMonth,
		}
	}
	if dayOfMonth == "*" && dayOfWeek == "*" {
		return &Descriptor{
			Frequency: FrequencyDaily,
			Time:      timeVal,
		}
	}

	return &Descriptor{Frequency: FrequencyDisabled} // 无法识别的格式
}

var weekdayNames = map[string]string{
	"0": "日", "1": "一", "2": "二", "3": "三",
	"4": "四", "5": "五", "6": "六",
}

// Humanize 将cron表达式转换为人类可读的计划描述
func Humanize(cronStr string) string {
	if IsDisabled(cronStr) {
		return "从不 (仅手动)"
	}

	parts := strings.Fields(cronStr)
	if len(parts) != 5 {
		return "无效计划"
	}

	minuteStr, hourStr, dayOfMonth, _, dayOfWeek := parts[0], parts[1], parts[2], parts[3], parts[4]
	minute, err1 := strconv.Atoi(minuteStr)
	hour, err2 := strconv.Atoi(hourStr)
	if err1 != nil || err2 != nil {
		return "无效计划"
	}
	timeStr := fmt.Sprintf("%02d:%02d", hour, minute)

	if dayOfMonth == "*" && dayOfWeek != "*" {
		return fmt.Sprintf("每周%s %s", weekdayNames[dayOfWeek], timeStr)
	}
	if dayOfMonth != "*" && dayOfWeek == "*" {
		return fmt.Sprintf("每月%s号 %s", dayOfMonth, timeStr)
	}
	if dayOfMonth == "*" && dayOfWeek == "*" {
		return fmt.Sprintf("每天 %s", timeStr)
	}

	return "自定义计划"
}
