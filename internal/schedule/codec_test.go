package schedule

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		desc     *Descriptor
		expected string
	}{
		{
			name:     "每天备份",
			desc:     &Descriptor{Frequency: FrequencyDaily, Time: "02:00"},
			expected: "0 2 * * *",
		},
		{
			name:     "每周二备份",
			desc:     &Descriptor{Frequency: FrequencyWeekly, Time: "03:30", Weekday: "2"},
			expected: "30 3 * * 2",
		},
		{
			name:     "每月15号备份",
			desc:     &Descriptor{Frequency: FrequencyMonthly, Time: "23:59", DayOfMonth: "15"},
			expected: "59 23 15 * *",
		},
		{
			name:     "禁用",
			desc:     &Descriptor{Frequency: FrequencyDisabled},
			expected: CronDisabled,
		},
		{
			name:     "空描述",
			desc:     nil,
			expected: CronDisabled,
		},
		{
			name:     "未知频率",
			desc:     &Descriptor{Frequency: "hourly", Time: "02:00"},
			expected: CronDisabled,
		},
		{
			name:     "无效时间回落到02:00",
			desc:     &Descriptor{Frequency: FrequencyDaily, Time: "25:99"},
			expected: "0 2 * * *",
		},
		{
			name:     "时间为空回落到02:00",
			desc:     &Descriptor{Frequency: FrequencyDaily},
			expected: "0 2 * * *",
		},
		{
			name:     "无效weekday回落到周日",
			desc:     &Descriptor{Frequency: FrequencyWeekly, Time: "02:00", Weekday: "9"},
			expected: "0 2 * * 0",
		},
		{
			name:     "无效day_of_month回落到1号",
			desc:     &Descriptor{Frequency: FrequencyMonthly, Time: "02:00", DayOfMonth: "32"},
			expected: "0 2 1 * *",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.desc)
			if got != tt.expected {
				t.Errorf("期望 %q，实际 %q", tt.expected, got)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		cronStr  string
		expected Descriptor
	}{
		{
			name:     "每天",
			cronStr:  "0 2 * * *",
			expected: Descriptor{Frequency: FrequencyDaily, Time: "02:00"},
		},
		{
			name:     "每周",
			cronStr:  "30 3 * * 2",
			expected: Descriptor{Frequency: FrequencyWeekly, Time: "03:30", Weekday: "2"},
		},
		{
			name:     "每月",
			cronStr:  "59 23 15 * *",
			expected: Descriptor{Frequency: FrequencyMonthly, Time: "23:59", DayOfMonth: "15"},
		},
		{
			name:     "禁用哨兵值",
			cronStr:  CronDisabled,
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
		{
			name:     "空字符串",
			cronStr:  "",
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
		{
			name:     "段数不对",
			cronStr:  "0 2 * *",
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
		{
			name:     "分钟不是数字",
			cronStr:  "*/5 2 * * *",
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
		{
			name:     "月份受限无法识别",
			cronStr:  "0 2 * 6 *",
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
		{
			name:     "日和周同时受限无法识别",
			cronStr:  "0 2 15 * 2",
			expected: Descriptor{Frequency: FrequencyDisabled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.cronStr)
			if *got != tt.expected {
				t.Errorf("期望 %+v，实际 %+v", tt.expected, *got)
			}
		})
	}
}

// 编码后再解码应还原出等价的描述
func TestEncodeDecodeRoundTrip(t *testing.T) {
	descs := []*Descriptor{
		{Frequency: FrequencyDaily, Time: "02:00"},
		{Frequency: FrequencyDaily, Time: "23:05"},
		{Frequency: FrequencyWeekly, Time: "03:30", Weekday: "2"},
		{Frequency: FrequencyWeekly, Time: "00:00", Weekday: "0"},
		{Frequency: FrequencyMonthly, Time: "12:15", DayOfMonth: "1"},
		{Frequency: FrequencyMonthly, Time: "04:45", DayOfMonth: "31"},
		{Frequency: FrequencyDisabled},
	}

	for _, d := range descs {
		cronStr := Encode(d)
		got := Decode(cronStr)
		if got.Frequency != d.Frequency {
			t.Errorf("%+v: 频率不一致，编码为 %q 后解码得到 %+v", d, cronStr, got)
			continue
		}
		if d.Frequency == FrequencyDisabled {
			continue
		}
		if got.Time != d.Time {
			t.Errorf("%+v: 时间不一致，解码得到 %q", d, got.Time)
		}
		if got.Weekday != d.Weekday {
			t.Errorf("%+v: weekday不一致，解码得到 %q", d, got.Weekday)
		}
		if got.DayOfMonth != d.DayOfMonth {
			t.Errorf("%+v: day_of_month不一致，解码得到 %q", d, got.DayOfMonth)
		}
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		cronStr  string
		expected string
	}{
		{"0 2 * * *", "每天 02:00"},
		{"30 3 * * 2", "每周二 03:30"},
		{"59 23 15 * *", "每月15号 23:59"},
		{CronDisabled, "从不 (仅手动)"},
		{"", "从不 (仅手动)"},
		{"bad cron", "无效计划"},
		{"x 2 * * *", "无效计划"},
		{"0 2 15 * 2", "自定义计划"},
	}

	for _, tt := range tests {
		got := Humanize(tt.cronStr)
		if got != tt.expected {
			t.Errorf("Humanize(%q): 期望 %q，实际 %q", tt.cronStr, tt.expected, got)
		}
	}
}
