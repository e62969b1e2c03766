package controllers

import (
	"DB-Backup-Web/internal/helpers"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

var serverStartTime = time.Now()

// SystemStatus 获取系统运行状态
// @Summary 系统状态
// @Description 返回备份目录磁盘占用、内存使用和服务运行时长
// @Tags 系统管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /system/status [get]
// @Security JwtAuth
func SystemStatus(c *gin.Context) {
	data := make(map[string]interface{})
	data["uptime_seconds"] = int64(time.Since(serverStartTime).Seconds())
	data["server_time"] = time.Now().Format("2006-01-02 15:04:05")

	if usage, err := disk.Usage(helpers.GlobalConfig.Backup.Dir); err == nil {
		data["disk"] = map[string]interface{}{
			"path":         usage.Path,
			"total":        usage.Total,
			"used":         usage.Used,
			"free":         usage.Free,
			"used_percent": usage.UsedPercent,
		}
	} else {
		helpers.AppLogger.Errorf("SystemStatus: 获取磁盘信息失败: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		data["memory"] = map[string]interface{}{
			"total":        vm.Total,
			"used":         vm.Used,
			"available":    vm.Available,
			"used_percent": vm.UsedPercent,
		}
	} else {
		helpers.AppLogger.Errorf("SystemStatus: 获取内存信息失败: %v", err)
	}

	if info, err := host.Info(); err == nil {
		data["host"] = map[string]interface{}{
			"hostname": info.Hostname,
			"os":       info.OS,
			"platform": info.Platform,
		}
	}

	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "获取系统状态成功", Data: data})
}
