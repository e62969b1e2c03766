package backupjob

import (
	"DB-Backup-Web/internal/backuplock"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestLockStore(t *testing.T) *backuplock.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := gdb.AutoMigrate(&backuplock.BackupLock{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	return backuplock.NewStore(gdb, nil)
}

func countOne(string) int64 { return 1 }

func TestTriggerInvalidDbType(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/bin/true", "", countOne)

	result := trigger.TriggerManual("oracle", "")
	if result.Status != StatusError {
		t.Errorf("期望状态 %s，实际 %s", StatusError, result.Status)
	}
}

// 没有配置连接时不启动，也不留下锁
func TestTriggerUnconfigured(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/bin/true", "", func(string) int64 { return 0 })

	result := trigger.TriggerManual("postgresql", "")
	if result.Status != StatusUnconfigured {
		t.Fatalf("期望状态 %s，实际 %s", StatusUnconfigured, result.Status)
	}
	if result.Message != "未启动 (未配置)" {
		t.Errorf("期望消息 %q，实际 %q", "未启动 (未配置)", result.Message)
	}
	if locks.IsLocked("postgresql") {
		t.Error("未配置时不应获取锁")
	}
}

func TestTriggerStarted(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/bin/true", "", countOne)

	var histStatus string
	trigger.AppendHistory = func(dbType, triggerLabel, status, message string) {
		histStatus = status
		if dbType != "postgresql" {
			t.Errorf("历史记录类型错误: %q", dbType)
		}
		if triggerLabel != "手动" {
			t.Errorf("期望触发方式 手动，实际 %q", triggerLabel)
		}
	}

	result := trigger.TriggerManual("postgresql", "")
	if result.Status != StatusStarted {
		t.Fatalf("期望状态 %s，实际 %s: %s", StatusStarted, result.Status, result.Message)
	}
	if !locks.IsLocked("postgresql") {
		t.Error("备份启动后锁应被持有")
	}
	if histStatus != "started" {
		t.Errorf("期望历史状态 started，实际 %q", histStatus)
	}
}

// 锁被持有时触发应返回冲突及锁信息
func TestTriggerConflict(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/bin/true", "", countOne)

	if !locks.Acquire("postgresql", "auto") {
		t.Fatal("预置锁失败")
	}

	result := trigger.TriggerManual("postgresql", "")
	if result.Status != StatusConflict {
		t.Fatalf("期望状态 %s，实际 %s", StatusConflict, result.Status)
	}
	if result.LockedBy != "auto" {
		t.Errorf("期望锁持有者 auto，实际 %q", result.LockedBy)
	}
	if result.LockedAt == 0 {
		t.Error("冲突结果应携带锁定时间")
	}
}

// 脚本启动失败时必须立即归还锁
func TestTriggerSpawnFailureReleasesLock(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/nonexistent/backup.sh", "", countOne)

	var histStatus string
	trigger.AppendHistory = func(_, _, status, _ string) {
		histStatus = status
	}

	result := trigger.TriggerManual("postgresql", "")
	if result.Status != StatusError {
		t.Fatalf("期望状态 %s，实际 %s", StatusError, result.Status)
	}
	if locks.IsLocked("postgresql") {
		t.Error("启动失败后锁应被释放")
	}
	if histStatus != "failed" {
		t.Errorf("期望历史状态 failed，实际 %q", histStatus)
	}

	// 释放后应能立即重新触发
	trigger2 := NewTrigger(locks, "/bin/true", "", countOne)
	if got := trigger2.TriggerManual("postgresql", ""); got.Status != StatusStarted {
		t.Errorf("释放后重新触发失败: %s %s", got.Status, got.Message)
	}
}

func TestTriggerAutoLabel(t *testing.T) {
	locks := newTestLockStore(t)
	trigger := NewTrigger(locks, "/bin/true", "", countOne)

	done := make(chan string, 1)
	trigger.AppendHistory = func(_, triggerLabel, _, _ string) {
		done <- triggerLabel
	}

	result := trigger.TriggerAuto("mysql")
	if result.Status != StatusStarted {
		t.Fatalf("期望状态 %s，实际 %s", StatusStarted, result.Status)
	}
	select {
	case label := <-done:
		if label != "自动" {
			t.Errorf("期望触发方式 自动，实际 %q", label)
		}
	case <-time.After(time.Second):
		t.Fatal("等待历史记录回调超时")
	}
}
