package backupjob

import (
	"DB-Backup-Web/internal/backuplock"
	"DB-Backup-Web/internal/helpers"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

type TriggerStatus string

const (
	StatusStarted      TriggerStatus = "started"      // 备份进程已启动
	StatusConflict     TriggerStatus = "conflict"     // 同类型备份正在进行
	StatusUnconfigured TriggerStatus = "unconfigured" // 没有配置数据库连接
	StatusError        TriggerStatus = "error"        // 启动失败
)

// TriggerResult 触发备份的结构化结果
type TriggerResult struct {
	Status   TriggerStatus `json:"status"`
	Message  string        `json:"message"`
	LockedAt int64         `json:"locked_at,omitempty"` // conflict时携带，用于展示锁龄
	LockedBy string        `json:"locked_by,omitempty"`
}

// Trigger 备份任务触发器
// 触发方先同步获取锁再启动脚本，脚本通过 --lock-held 得知锁已持有，
// 只负责结束时释放（包括失败路径）。
type Trigger struct {
	locks      *backuplock.Store
	scriptPath string
	cronLog    string
	// 注入的连接计数，避免触发器直接依赖配置存储
	CountConnections func(dbType string) int64
	// 可选的历史记录回调
	AppendHistory func(dbType, trigger, status, message string)
}

func NewTrigger(locks *backuplock.Store, scriptPath, cronLog string, countConnections func(dbType string) int64) *Trigger {
	return &Trigger{
		locks:            locks,
		scriptPath:       scriptPath,
		cronLog:          cronLog,
		CountConnections: countConnections,
	}
}

// TriggerManual 手动触发一次备份，立即返回，不等待备份完成
func (t *Trigger) TriggerManual(dbType string, targetId string) TriggerResult {
	return t.run(dbType, "manual", "手动", targetId)
}

// TriggerAuto 以自动标识触发备份，供进程内调度或补偿使用
func (t *Trigger) TriggerAuto(dbType string) TriggerResult {
	return t.run(dbType, "auto", "自动", "")
}

func (t *Trigger) run(dbType, lockId, triggerLabel, targetId string) TriggerResult {
	if !helpers.IsValidBackupDbType(dbType) {
		return TriggerResult{Status: StatusError, Message: fmt.Sprintf("不支持的数据库类型: %s", dbType)}
	}

	// 没有配置任何连接时不启动也不取锁
	if t.CountConnections != nil && t.CountConnections(dbType) == 0 {
		return TriggerResult{Status: StatusUnconfigured, Message: "未启动 (未配置)"}
	}

	// 同步取锁，杜绝两次触发都通过检查后同时启动的竞态
	if !t.locks.Acquire(dbType, lockId) {
		result := TriggerResult{Status: StatusConflict, Message: "已有同类型备份正在进行"}
		if info := t.locks.GetLockInfo(dbType); info != nil {
			result.LockedAt = info.LockedAt
			result.LockedBy = info.LockedBy
		}
		return result
	}

	if err := t.spawn(dbType, triggerLabel, targetId); err != nil {
		// 启动失败时锁必须立即归还
		t.locks.Release(dbType)
		if helpers.AppLogger != nil {
			helpers.AppLogger.Errorf("启动备份脚本失败: %v", err)
		}
		if t.AppendHistory != nil {
			t.AppendHistory(dbType, triggerLabel, "failed", fmt.Sprintf("启动备份脚本失败: %v", err))
		}
		return TriggerResult{Status: StatusError, Message: fmt.Sprintf("启动备份脚本失败: %v", err)}
	}

	if helpers.AppLogger != nil {
		helpers.AppLogger.Infof("备份已启动: 类型=%s, 触发方式=%s", dbType, triggerLabel)
	}
	// 启动事件同步写入cron日志，实时日志页能看到触发记录
	if helpers.CronLogger != nil {
		helpers.CronLogger.Infof("%s触发%s备份", triggerLabel, dbType)
	}
	if t.AppendHistory != nil {
		t.AppendHistory(dbType, triggerLabel, "started", "备份任务已启动")
	}
	return TriggerResult{Status: StatusStarted, Message: "启动"}
}

// spawn 以独立会话启动备份脚本，脚本生命周期与请求无关
func (t *Trigger) spawn(dbType, triggerLabel, targetId string) error {
	args := []string{dbType, triggerLabel, targetId, "--lock-held"}
	cmd := exec.Command(t.scriptPath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	// 脚本输出与cron触发的运行走同一份日志
	if t.cronLog != "" {
		if logFile, err := os.OpenFile(t.cronLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			cmd.Stdout = logFile
			cmd.Stderr = logFile
			defer logFile.Close()
		}
	}

	if err := cmd.Start(); err != nil {
		return err
	}
	// 后台回收，避免僵尸进程
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
