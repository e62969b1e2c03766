package controllers

import (
	"DB-Backup-Web/internal/backupjob"
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/models"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// BackupNow 触发一次手动备份
// @Summary 手动备份
// @Description 立即触发指定类型数据库的备份，同类型备份进行中时返回冲突
// @Tags 备份管理
// @Accept json
// @Produce json
// @Param db_type path string true "数据库类型 postgresql/mysql"
// @Param target_id query string false "只备份指定连接"
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /backup/now/:db_type [post]
// @Security JwtAuth
func BackupNow(c *gin.Context) {
	dbType := c.Param("db_type")
	if !helpers.IsValidBackupDbType(dbType) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: fmt.Sprintf("不支持的数据库类型: %s", dbType), Data: nil})
		return
	}
	targetId := c.Query("target_id")

	result := BackupTrigger.TriggerManual(dbType, targetId)
	switch result.Status {
	case backupjob.StatusStarted:
		c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "备份已启动", Data: result})
	case backupjob.StatusConflict:
		// 锁冲突不是错误，返回409供前端展示锁定时间
		c.JSON(http.StatusConflict, APIResponse[any]{Code: Conflict, Message: lockConflictMessage(result), Data: result})
	case backupjob.StatusUnconfigured:
		c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: result.Message, Data: result})
	default:
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: result.Message, Data: result})
	}
}

func lockConflictMessage(result backupjob.TriggerResult) string {
	if result.LockedAt > 0 {
		return fmt.Sprintf("已有同类型备份正在进行（锁定于 %s）",
			time.Unix(result.LockedAt, 0).Format("15:04:05"))
	}
	return result.Message
}

// LockStatus 获取所有备份锁的状态
// @Summary 备份锁状态
// @Description 返回所有类型备份锁的当前状态，过期的锁标记为未锁定
// @Tags 备份管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /backup/locks [get]
// @Security JwtAuth
func LockStatus(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "获取锁状态成功", Data: Locks.GetAllLocks()})
}

// BackupHistoryList 获取备份历史
// @Summary 备份历史
// @Description 返回最近的备份历史记录，按时间倒序
// @Tags 备份管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /backup/history [get]
// @Security JwtAuth
func BackupHistoryList(c *gin.Context) {
	records, err := models.GetBackupHistory(helpers.GlobalConfig.Backup.HistoryRows)
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "查询备份历史失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "查询备份历史成功", Data: records})
}

// BackupFileInfo 备份文件信息
type BackupFileInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	CreatedAt  string `json:"created_at"`
	DeleteTime string `json:"delete_time"` // 按保留天数计算的预期删除时间
}

// ListBackupFiles 获取备份文件列表
// @Summary 备份文件列表
// @Description 返回最近一周的备份文件，附带按保留策略计算的删除时间
// @Tags 备份管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /backup/files [get]
// @Security JwtAuth
func ListBackupFiles(c *gin.Context) {
	backupDir := helpers.GlobalConfig.Backup.Dir
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "读取备份目录失败: " + err.Error(), Data: nil})
		return
	}

	retentionDays := retentionDaysForDisplay()
	oneWeekAgo := time.Now().AddDate(0, 0, -7)

	files := make([]BackupFileInfo, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".gz") && !strings.HasSuffix(name, ".tar.gz") {
			continue
		}
		info, ierr := entry.Info()
		if ierr != nil {
			continue
		}
		// 只显示最近一周的备份
		if info.ModTime().Before(oneWeekAgo) {
			continue
		}
		files = append(files, BackupFileInfo{
			Name:       name,
			Size:       info.Size(),
			CreatedAt:  info.ModTime().Format("2006-01-02 15:04:05"),
			DeleteTime: info.ModTime().AddDate(0, 0, retentionDays).Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt > files[j].CreatedAt
	})

	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "查询备份文件成功", Data: files})
}

// 展示用的保留天数，取所有计划中的最大值，没有计划时为7
func retentionDaysForDisplay() int {
	retentionDays := 7
	if schedules, err := Schedules.GetAll(); err == nil {
		for _, row := range schedules {
			if row.RetentionDays > retentionDays {
				retentionDays = row.RetentionDays
			}
		}
	}
	return retentionDays
}

// safeBackupFileName 防止路径遍历，只允许备份目录下的直接文件名
func safeBackupFileName(filename string) bool {
	return filename != "" && !strings.Contains(filename, "..") &&
		!strings.ContainsAny(filename, "/\\")
}

// DownloadBackup 下载备份文件
// @Summary 下载备份文件
// @Description 下载指定的备份文件
// @Tags 备份管理
// @Produce octet-stream
// @Param filename path string true "备份文件名"
// @Success 200 {file} file
// @Router /backup/download/:filename [get]
// @Security JwtAuth
func DownloadBackup(c *gin.Context) {
	filename := c.Param("filename")
	if !safeBackupFileName(filename) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "非法请求", Data: nil})
		return
	}
	fullPath := filepath.Join(helpers.GlobalConfig.Backup.Dir, filename)
	if !helpers.PathExists(fullPath) {
		c.JSON(http.StatusNotFound, APIResponse[any]{Code: NotFound, Message: "备份文件不存在", Data: nil})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.File(fullPath)
}

// DeleteBackup 删除备份文件
// @Summary 删除备份文件
// @Description 删除指定的备份文件，文件不存在时也返回成功
// @Tags 备份管理
// @Accept json
// @Produce json
// @Param filename path string true "备份文件名"
// @Success 200 {object} object
// @Router /backup/files/:filename [delete]
// @Security JwtAuth
func DeleteBackup(c *gin.Context) {
	filename := c.Param("filename")
	if !safeBackupFileName(filename) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "非法请求", Data: nil})
		return
	}
	fullPath := filepath.Join(helpers.GlobalConfig.Backup.Dir, filename)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "删除备份文件失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "删除备份文件成功", Data: nil})
}

// GetDetailLogContent 获取单次备份的详细日志内容
// @Summary 查看备份详细日志
// @Description 返回指定详细日志文件的文本内容
// @Tags 备份管理
// @Accept json
// @Produce json
// @Param filename path string true "日志文件名"
// @Success 200 {object} object
// @Router /backup/log/:filename [get]
// @Security JwtAuth
func GetDetailLogContent(c *gin.Context) {
	filename := c.Param("filename")
	if !safeBackupFileName(filename) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "非法请求", Data: nil})
		return
	}
	fullPath := filepath.Join(helpers.GlobalConfig.Backup.DetailDir, filename)
	content, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, APIResponse[any]{Code: NotFound, Message: "日志文件不存在", Data: nil})
			return
		}
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "读取日志文件失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "读取日志成功", Data: map[string]string{"content": string(content)}})
}

// DownloadDetailLog 下载单次备份的详细日志
// @Summary 下载备份详细日志
// @Description 下载指定的详细日志文件
// @Tags 备份管理
// @Produce octet-stream
// @Param filename path string true "日志文件名"
// @Success 200 {file} file
// @Router /backup/log/:filename/download [get]
// @Security JwtAuth
func DownloadDetailLog(c *gin.Context) {
	filename := c.Param("filename")
	if !safeBackupFileName(filename) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "非法请求", Data: nil})
		return
	}
	fullPath := filepath.Join(helpers.GlobalConfig.Backup.DetailDir, filename)
	if !helpers.PathExists(fullPath) {
		c.JSON(http.StatusNotFound, APIResponse[any]{Code: NotFound, Message: "日志文件不存在", Data: nil})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/octet-stream")
	c.File(fullPath)
}
