package controllers

import (
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/schedule"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ScheduleView 单个类型的计划设置，含界面描述与下次执行时间
type ScheduleView struct {
	DbType         string               `json:"db_type"`
	Schedule       *schedule.Descriptor `json:"schedule"`
	CronExpression string               `json:"cron_expression"`
	RetentionDays  int                  `json:"retention_days"`
	Description    string               `json:"description"`
	NextRuns       []string             `json:"next_runs"`
}

func buildScheduleView(dbType string, row *schedule.BackupSchedule) *ScheduleView {
	view := &ScheduleView{
		DbType:         dbType,
		Schedule:       &schedule.Descriptor{Frequency: schedule.FrequencyDisabled},
		CronExpression: schedule.CronDisabled,
		RetentionDays:  7,
		Description:    schedule.Humanize(schedule.CronDisabled),
		NextRuns:       []string{},
	}
	if row == nil {
		return view
	}
	view.Schedule = schedule.Decode(row.CronExpression)
	view.CronExpression = row.CronExpression
	view.RetentionDays = row.RetentionDays
	view.Description = schedule.Humanize(row.CronExpression)
	if row.Enabled == 1 && !schedule.IsDisabled(row.CronExpression) {
		for _, t := range helpers.GetNextTimeByCronStr(row.CronExpression, 3) {
			view.NextRuns = append(view.NextRuns, t.Format("2006-01-02 15:04:05"))
		}
	}
	return view
}

// GetScheduleSettings 获取所有类型的备份计划设置
// @Summary 获取备份计划
// @Description 返回每种数据库类型的计划设置、可读描述与接下来的执行时间
// @Tags 计划管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /schedule/settings [get]
// @Security JwtAuth
func GetScheduleSettings(c *gin.Context) {
	rows, err := Schedules.GetAll()
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "查询备份计划失败: " + err.Error(), Data: nil})
		return
	}
	views := make(map[string]*ScheduleView, len(helpers.AllBackupDbTypes))
	for _, dbType := range helpers.AllBackupDbTypes {
		views[string(dbType)] = buildScheduleView(string(dbType), rows[string(dbType)])
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "查询备份计划成功", Data: views})
}

// SaveScheduleSettings 保存备份计划并重新生成crontab
// @Summary 保存备份计划
// @Description 保存指定类型的备份计划，成功后立即重写cron文件；cron安装失败不回滚计划
// @Tags 计划管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /schedule/settings/:db_type [post]
// @Security JwtAuth
func SaveScheduleSettings(c *gin.Context) {
	dbType := c.Param("db_type")
	if !helpers.IsValidBackupDbType(dbType) {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: fmt.Sprintf("不支持的数据库类型: %s", dbType), Data: nil})
		return
	}
	var req struct {
		Frequency     string `json:"frequency" form:"frequency" binding:"required"`
		Time          string `json:"time" form:"time"`
		Weekday       string `json:"weekday" form:"weekday"`
		DayOfMonth    string `json:"day_of_month" form:"day_of_month"`
		RetentionDays int    `json:"retention_days" form:"retention_days"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "请求参数错误", Data: nil})
		return
	}
	if req.RetentionDays <= 0 {
		req.RetentionDays = 7
	}

	cronStr := schedule.Encode(&schedule.Descriptor{
		Frequency:  req.Frequency,
		Time:       req.Time,
		Weekday:    req.Weekday,
		DayOfMonth: req.DayOfMonth,
	})
	if err := Schedules.Save(dbType, req.Frequency, cronStr, req.RetentionDays); err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "保存备份计划失败: " + err.Error(), Data: nil})
		return
	}

	// 计划已落库，cron安装失败只提示，下次保存或重启时会重试
	if err := CronTab.Materialize(); err != nil {
		helpers.AppLogger.Errorf("SaveScheduleSettings: 计划已保存但cron更新失败: %v", err)
		row, _ := Schedules.Get(dbType)
		c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "计划已保存，但定时任务更新失败: " + err.Error(), Data: buildScheduleView(dbType, row)})
		return
	}

	row, _ := Schedules.Get(dbType)
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "备份计划保存成功", Data: buildScheduleView(dbType, row)})
}
