package controllers

import (
	"DB-Backup-Web/internal/backupjob"
	"DB-Backup-Web/internal/backuplock"
	"DB-Backup-Web/internal/crontab"
	"DB-Backup-Web/internal/helpers"
	"DB-Backup-Web/internal/models"
	"DB-Backup-Web/internal/schedule"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type APIResponseCode int

const (
	Success      APIResponseCode = 200
	BadRequest   APIResponseCode = 400
	Unauthorized APIResponseCode = 401
	NotFound     APIResponseCode = 404
	Conflict     APIResponseCode = 409
)

type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// LoginUser JWT载荷
type LoginUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// 核心组件在进程启动时构造后注入，控制器不自行创建存储
var (
	Locks         *backuplock.Store
	Schedules     *schedule.Store
	CronTab       *crontab.Materializer
	BackupTrigger *backupjob.Trigger
)

// Setup 注入核心组件
func Setup(locks *backuplock.Store, schedules *schedule.Store, cronTab *crontab.Materializer, trigger *backupjob.Trigger) {
	Locks = locks
	Schedules = schedules
	CronTab = cronTab
	BackupTrigger = trigger
}

// JWTAuthMiddleware 校验Authorization头中的JWT Token
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, APIResponse[any]{Code: Unauthorized, Message: "未登录", Data: nil})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &LoginUser{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(helpers.GlobalConfig.JwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, APIResponse[any]{Code: Unauthorized, Message: "登录已失效，请重新登录", Data: nil})
			c.Abort()
			return
		}
		if LoginedUser == nil || LoginedUser.ID != claims.ID {
			LoginedUser = models.GetUserById(claims.ID)
		}
		if LoginedUser == nil {
			c.JSON(http.StatusUnauthorized, APIResponse[any]{Code: Unauthorized, Message: "用户不存在", Data: nil})
			c.Abort()
			return
		}
		c.Next()
	}
}
