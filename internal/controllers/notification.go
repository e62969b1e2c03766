package controllers

import (
	"DB-Backup-Web/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNotificationSettings 获取通知配置
// @Summary 获取通知配置
// @Description 返回全局开关、邮件、企业微信三组通知配置，不回传密码和密钥
// @Tags 通知管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /notification/settings [get]
// @Security JwtAuth
func GetNotificationSettings(c *gin.Context) {
	config, err := models.GetNotificationConfig()
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "查询通知配置失败: " + err.Error(), Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "查询通知配置成功", Data: config})
}

type emailSettingsRequest struct {
	Enabled     bool     `json:"enabled" form:"enabled"`
	SmtpServer  string   `json:"smtp_server" form:"smtp_server"`
	SmtpPort    int      `json:"smtp_port" form:"smtp_port"`
	UseTls      bool     `json:"use_tls" form:"use_tls"`
	Username    string   `json:"username" form:"username"`
	Password    string   `json:"password" form:"password"` // 为空时保留原密码
	FromAddress string   `json:"from_address" form:"from_address"`
	Recipients  []string `json:"recipients" form:"recipients"`
}

type wechatSettingsRequest struct {
	Enabled    bool   `json:"enabled" form:"enabled"`
	CorpId     string `json:"corp_id" form:"corp_id"`
	CorpSecret string `json:"corp_secret" form:"corp_secret"` // 为空时保留原密钥
	AgentId    string `json:"agent_id" form:"agent_id"`
	ToUsers    string `json:"to_users" form:"to_users"`
}

// SaveNotificationSettings 保存通知配置
// @Summary 保存通知配置
// @Description 保存全局开关及可选的邮件、企业微信配置，密码字段留空表示不修改
// @Tags 通知管理
// @Accept json
// @Produce json
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /notification/settings [post]
// @Security JwtAuth
func SaveNotificationSettings(c *gin.Context) {
	var req struct {
		Enabled   bool                   `json:"enabled" form:"enabled"`
		OnSuccess bool                   `json:"on_success" form:"on_success"`
		OnFailure bool                   `json:"on_failure" form:"on_failure"`
		Email     *emailSettingsRequest  `json:"email"`
		Wechat    *wechatSettingsRequest `json:"wechat"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse[any]{Code: BadRequest, Message: "请求参数错误", Data: nil})
		return
	}

	if err := models.SaveGlobalNotificationConfig(req.Enabled, req.OnSuccess, req.OnFailure); err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "保存通知配置失败: " + err.Error(), Data: nil})
		return
	}
	if req.Email != nil {
		if req.Email.SmtpPort <= 0 {
			req.Email.SmtpPort = 587
		}
		if err := models.SaveEmailNotificationConfig(req.Email.Enabled, req.Email.SmtpServer, req.Email.SmtpPort,
			req.Email.UseTls, req.Email.Username, req.Email.Password, req.Email.FromAddress, req.Email.Recipients); err != nil {
			c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "保存邮件配置失败: " + err.Error(), Data: nil})
			return
		}
	}
	if req.Wechat != nil {
		if err := models.SaveWechatNotificationConfig(req.Wechat.Enabled, req.Wechat.CorpId,
			req.Wechat.CorpSecret, req.Wechat.AgentId, req.Wechat.ToUsers); err != nil {
			c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "保存企业微信配置失败: " + err.Error(), Data: nil})
			return
		}
	}

	config, err := models.GetNotificationConfig()
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "保存通知配置成功", Data: nil})
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "保存通知配置成功", Data: config})
}
