package helpers

import (
	"testing"
	"time"
)

func TestGetNextTimeByCronStr(t *testing.T) {
	times := GetNextTimeByCronStr("0 2 * * *", 3)
	if len(times) != 3 {
		t.Fatalf("期望3个执行时间，实际 %d 个", len(times))
	}
	for i, tm := range times {
		if tm.Hour() != 2 || tm.Minute() != 0 {
			t.Errorf("第%d个执行时间错误: %v", i+1, tm)
		}
		if !tm.After(time.Now().Add(-time.Minute)) {
			t.Errorf("执行时间不应在过去: %v", tm)
		}
	}
	// 相邻两次执行间隔24小时
	if times[1].Sub(times[0]) != 24*time.Hour {
		t.Errorf("每日计划的执行间隔应为24小时，实际 %v", times[1].Sub(times[0]))
	}
}

func TestGetNextTimeByCronStrInvalid(t *testing.T) {
	if times := GetNextTimeByCronStr("not a cron", 3); len(times) != 0 {
		t.Errorf("无效表达式应返回空切片，实际 %v", times)
	}
	if times := GetNextTimeByCronStr("disabled", 3); len(times) != 0 {
		t.Errorf("disabled哨兵值应返回空切片，实际 %v", times)
	}
}

func TestIsValidCronStr(t *testing.T) {
	valid := []string{"0 2 * * *", "30 3 * * 2", "59 23 15 * *"}
	for _, s := range valid {
		if !IsValidCronStr(s) {
			t.Errorf("%q 应为有效表达式", s)
		}
	}
	invalid := []string{"", "disabled", "0 2 * *", "61 2 * * *"}
	for _, s := range invalid {
		if IsValidCronStr(s) {
			t.Errorf("%q 应为无效表达式", s)
		}
	}
}

func TestIsValidBackupDbType(t *testing.T) {
	if !IsValidBackupDbType("postgresql") || !IsValidBackupDbType("mysql") {
		t.Error("postgresql和mysql应为支持的类型")
	}
	for _, s := range []string{"oracle", "POSTGRESQL", "", "postgres"} {
		if IsValidBackupDbType(s) {
			t.Errorf("%q 不应为支持的类型", s)
		}
	}
}
