package main

import (
	"DB-Backup-Web/internal/backupjob"
	"DB-Backup-Web/internal/backuplock"
	"DB-Backup-Web/internal/controllers"
	"DB-Backup-Web/internal/crontab"
	"DB-Backup-Web/internal/db"
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/models"
	"DB-Backup-Web/internal/schedule"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func main() {
	helpers.ConfigDir = os.Getenv("CONFIG_DIR")
	if helpers.ConfigDir == "" {
		helpers.ConfigDir = "/config"
	}
	helpers.IsRelease = os.Getenv("GIN_MODE") == "release"
	if err := helpers.EnsureDir(helpers.ConfigDir); err != nil {
		fmt.Printf("创建配置目录失败: %v\n", err)
		os.Exit(1)
	}
	if err := helpers.InitConfig(); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 命令行模式供外部备份脚本调用，不启动Web服务，日志只进文件不进控制台
	cliMode := len(os.Args) > 1
	helpers.AppLogger = helpers.NewLogger(helpers.GlobalConfig.Log.File, !cliMode, true)
	helpers.CronLogger = helpers.NewLogger(helpers.GlobalConfig.Log.CronLog, false, false)
	defer helpers.CloseLogger()

	if err := db.InitDb(); err != nil {
		helpers.AppLogger.Fatalf("初始化数据库失败: %v", err)
	}
	if err := db.Db.AutoMigrate(
		&models.User{},
		&models.DatabaseConnection{},
		&models.BackupHistory{},
		&models.NotificationConfig{},
		&models.EmailNotificationConfig{},
		&models.WechatNotificationConfig{},
		&backuplock.BackupLock{},
		&schedule.BackupSchedule{},
	); err != nil {
		helpers.AppLogger.Fatalf("数据库迁移失败: %v", err)
	}

	if cliMode {
		os.Exit(runCli(os.Args[1:]))
	}
	runServer()
}

// runCli 处理备份脚本的命令行调用，返回进程退出码
// 子命令:
//
//	lockctl acquire|release|check <db_type> [locked_by]
//	getdbs <db_type>
//	history add <db_type> <trigger> <status> <message> [log_file]
//	retention <db_type>
func runCli(args []string) int {
	// 命令行进程生命周期极短，不初始化内存缓存
	locks := backuplock.NewStore(db.Db, nil)
	schedules := schedule.NewStore(db.Db)

	switch args[0] {
	case "lockctl":
		if len(args) < 3 {
			fmt.Println("用法: lockctl acquire|release|check <db_type> [locked_by]")
			return 2
		}
		action, dbType := args[1], args[2]
		if !helpers.IsValidBackupDbType(dbType) {
			fmt.Printf("不支持的数据库类型: %s\n", dbType)
			return 2
		}
		switch action {
		case "acquire":
			lockedBy := "script"
			if len(args) > 3 {
				lockedBy = args[3]
			}
			if locks.Acquire(dbType, lockedBy) {
				fmt.Println("acquired")
				return 0
			}
			fmt.Println("locked")
			return 1
		case "release":
			if locks.Release(dbType) {
				fmt.Println("released")
				return 0
			}
			return 1
		case "check":
			if locks.IsLocked(dbType) {
				fmt.Println("locked")
				return 1
			}
			fmt.Println("unlocked")
			return 0
		}
		fmt.Printf("未知的lockctl操作: %s\n", action)
		return 2

	case "getdbs":
		if len(args) < 2 {
			fmt.Println("用法: getdbs <db_type>")
			return 2
		}
		out, err := models.ExportConnectionsForShell(args[1])
		if err != nil {
			fmt.Printf("导出连接失败: %v\n", err)
			return 1
		}
		if out != "" {
			fmt.Println(out)
		}
		return 0

	case "history":
		if len(args) < 6 || args[1] != "add" {
			fmt.Println("用法: history add <db_type> <trigger> <status> <message> [log_file]")
			return 2
		}
		logFile := ""
		if len(args) > 6 {
			logFile = args[6]
		}
		if err := models.AppendBackupHistory(args[2], args[3], args[4], args[5], logFile); err != nil {
			fmt.Printf("写入历史记录失败: %v\n", err)
			return 1
		}
		return 0

	case "retention":
		if len(args) < 2 {
			fmt.Println("用法: retention <db_type>")
			return 2
		}
		days := 7
		if row, err := schedules.Get(args[1]); err == nil && row != nil {
			days = row.RetentionDays
		}
		fmt.Println(days)
		return 0
	}

	fmt.Printf("未知的命令: %s\n", strings.Join(args, " "))
	return 2
}

func runServer() {
	db.InitCache()

	if err := models.EnsureDefaultUser(); err != nil {
		helpers.AppLogger.Fatalf("初始化默认用户失败: %v", err)
	}
	if err := models.EnsureNotificationDefaults(); err != nil {
		helpers.AppLogger.Fatalf("初始化通知配置失败: %v", err)
	}

	locks := backuplock.NewStore(db.Db, &db.Cache)
	// 上一次进程异常退出可能留下过期锁，启动时清理一次，再补齐缺失的锁记录
	locks.SweepExpired()
	lockTypes := make([]string, 0, len(helpers.AllBackupDbTypes))
	for _, dbType := range helpers.AllBackupDbTypes {
		lockTypes = append(lockTypes, string(dbType))
	}
	locks.Seed(lockTypes)

	schedules := schedule.NewStore(db.Db)
	cronTab := crontab.NewMaterializer(schedules,
		helpers.GlobalConfig.Backup.CronFile,
		helpers.GlobalConfig.Backup.ScriptPath,
		helpers.GlobalConfig.Log.CronLog)
	// 启动时按当前计划对齐crontab，容器重建后cron状态才是最新的
	if err := cronTab.Materialize(); err != nil {
		helpers.AppLogger.Errorf("启动时更新crontab失败: %v", err)
	}

	trigger := backupjob.NewTrigger(locks,
		helpers.GlobalConfig.Backup.ScriptPath,
		helpers.GlobalConfig.Log.CronLog,
		models.CountDatabaseConnections)
	trigger.AppendHistory = func(dbType, triggerLabel, status, message string) {
		if err := models.AppendBackupHistory(dbType, triggerLabel, status, message, ""); err != nil {
			helpers.AppLogger.Errorf("写入备份历史失败: %v", err)
		}
	}

	controllers.Setup(locks, schedules, cronTab, trigger)

	if helpers.IsRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	registerRoutes(router)

	helpers.AppLogger.Infof("DB-Backup-Web v%s 启动，监听 %s", helpers.Version, helpers.GlobalConfig.HttpHost)
	if err := router.Run(helpers.GlobalConfig.HttpHost); err != nil {
		helpers.AppLogger.Fatalf("启动HTTP服务失败: %v", err)
	}
}

func registerRoutes(router *gin.Engine) {
	router.POST("/api/login", controllers.LoginAction)

	api := router.Group("/api", controllers.JWTAuthMiddleware())
	{
		api.GET("/user/info", controllers.GetUserInfo)
		api.POST("/user/change", controllers.ChangePassword)

		api.GET("/database/connections", controllers.ListConnections)
		api.POST("/database/connections", controllers.AddConnection)
		api.PUT("/database/connections/:id", controllers.UpdateConnection)
		api.DELETE("/database/connections/:id", controllers.DeleteConnection)

		api.POST("/backup/now/:db_type", controllers.BackupNow)
		api.GET("/backup/locks", controllers.LockStatus)
		api.GET("/backup/history", controllers.BackupHistoryList)
		api.GET("/backup/files", controllers.ListBackupFiles)
		api.GET("/backup/download/:filename", controllers.DownloadBackup)
		api.DELETE("/backup/files/:filename", controllers.DeleteBackup)
		api.GET("/backup/log/:filename", controllers.GetDetailLogContent)
		api.GET("/backup/log/:filename/download", controllers.DownloadDetailLog)

		api.GET("/schedule/settings", controllers.GetScheduleSettings)
		api.POST("/schedule/settings/:db_type", controllers.SaveScheduleSettings)

		api.GET("/notification/settings", controllers.GetNotificationSettings)
		api.POST("/notification/settings", controllers.SaveNotificationSettings)

		api.GET("/system/status", controllers.SystemStatus)
		api.GET("/logs/cron", controllers.GetCronLogTail)
	}

	// websocket自带token校验成本高，沿用HTTP中间件
	router.GET("/ws/logs/cron", controllers.JWTAuthMiddleware(), controllers.CronLogWebSocket)
}
