package crontab

import (
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/schedule"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// crontab文件的固定前导行
const preamble = "SHELL=/bin/bash\n" +
	"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin\n"

// Materializer 根据持久化的备份计划重建系统crontab
// 每次都整体重新生成，不做增量修改，保证文件内容只由当前计划集决定。
type Materializer struct {
	store      *schedule.Store
	cronFile   string // 生成的crontab源文件路径
	scriptPath string // 外部备份脚本入口
	cronLog    string // 脚本输出追加到的日志路径
	installCmd func(cronFile string) error
}

func NewMaterializer(store *schedule.Store, cronFile, scriptPath, cronLog string) *Materializer {
	return &Materializer{
		store:      store,
		cronFile:   cronFile,
		scriptPath: scriptPath,
		cronLog:    cronLog,
		installCmd: installWithCrontab,
	}
}

// SetInstallCmd 替换crontab安装命令，测试用
func (m *Materializer) SetInstallCmd(fn func(cronFile string) error) {
	m.installCmd = fn
}

func installWithCrontab(cronFile string) error {
	out, err := exec.Command("crontab", cronFile).CombinedOutput()
	if err != nil {
		return fmt.Errorf("crontab安装失败: %v, 输出: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Render 生成crontab文件内容
// 遍历顺序固定为helpers.AllBackupDbTypes，同样的计划集总是产出逐字节相同的内容。
func (m *Materializer) Render() (string, error) {
	schedules, err := m.store.GetAll()
	if err != nil {
		return "", fmt.Errorf("读取备份计划失败: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(preamble)
	for _, dbType := range helpers.AllBackupDbTypes {
		row := schedules[string(dbType)]
		if row == nil || row.Enabled != 1 || schedule.IsDisabled(row.CronExpression) {
			continue
		}
		// 行格式: <表达式> root <脚本> <类型> 自动 "" >> <日志> 2>&1
		sb.WriteString(fmt.Sprintf("%s root %s %s 自动 \"\" >> %s 2>&1\n",
			row.CronExpression, m.scriptPath, dbType, m.cronLog))
	}
	return sb.String(), nil
}

// Materialize 重新生成并安装crontab
// 写文件或安装失败只记录日志并返回错误，已保存的计划不会被回滚，
// 调用方负责在合适的时机重试（启动时会再次调用以对齐状态）。
func (m *Materializer) Materialize() error {
	content, err := m.Render()
	if err != nil {
		logError("生成crontab内容失败: %v", err)
		return err
	}

	if err := os.WriteFile(m.cronFile, []byte(content), 0644); err != nil {
		logError("写入crontab文件失败: %v", err)
		return err
	}
	// WriteFile受umask影响，显式确保0644
	if err := os.Chmod(m.cronFile, 0644); err != nil {
		logError("设置crontab文件权限失败: %v", err)
		return err
	}

	if err := m.installCmd(m.cronFile); err != nil {
		logError("应用crontab失败: %v", err)
		return err
	}

	if helpers.AppLogger != nil {
		helpers.AppLogger.Info("Crontab已更新")
	}
	return nil
}

func logError(format string, args ...interface{}) {
	if helpers.AppLogger != nil {
		helpers.AppLogger.Errorf(format, args...)
	}
}
