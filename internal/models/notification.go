package models

import (
	"DB-Backup-Web/internal/db"
	"strings"

	"gorm.io/gorm"
)

// NotificationConfig 通知总开关配置，单行记录
type NotificationConfig struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	Enabled   int   `json:"enabled" gorm:"default:0"`
	OnSuccess int   `json:"on_success" gorm:"default:1"`
	OnFailure int   `json:"on_failure" gorm:"default:1"`
	UpdatedAt int64 `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*NotificationConfig) TableName() string {
	return "notification_config"
}

// EmailNotificationConfig 邮件通知配置，单行记录；实际发送由外部备份脚本完成
type EmailNotificationConfig struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Enabled     int    `json:"enabled" gorm:"default:0"`
	SmtpServer  string `json:"smtp_server"`
	SmtpPort    int    `json:"smtp_port" gorm:"default:587"`
	UseTls      int    `json:"use_tls" gorm:"default:1"`
	Username    string `json:"username"`
	Password    string `json:"-"`
	FromAddress string `json:"from_address"`
	Recipients  string `json:"recipients"` // 逗号分隔
	UpdatedAt   int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*EmailNotificationConfig) TableName() string {
	return "email_notification_config"
}

// WechatNotificationConfig 企业微信通知配置，单行记录
type WechatNotificationConfig struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Enabled    int    `json:"enabled" gorm:"default:0"`
	CorpId     string `json:"corp_id"`
	CorpSecret string `json:"-"`
	AgentId    string `json:"agent_id"`
	ToUsers    string `json:"to_users" gorm:"default:@all"`
	UpdatedAt  int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*WechatNotificationConfig) TableName() string {
	return "wechat_notification_config"
}

// EnsureNotificationDefaults 初始化默认通知配置记录（如果不存在）
func EnsureNotificationDefaults() error {
	var count int64
	if err := db.Db.Model(&NotificationConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Db.Create(&NotificationConfig{Enabled: 0, OnSuccess: 1, OnFailure: 1}).Error; err != nil {
			return err
		}
	}
	count = 0
	if err := db.Db.Model(&EmailNotificationConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Db.Create(&EmailNotificationConfig{Enabled: 0, SmtpPort: 587, UseTls: 1}).Error; err != nil {
			return err
		}
	}
	count = 0
	if err := db.Db.Model(&WechatNotificationConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Db.Create(&WechatNotificationConfig{Enabled: 0, ToUsers: "@all"}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetNotificationConfig 获取三组通知配置的聚合视图
func GetNotificationConfig() (map[string]interface{}, error) {
	main := &NotificationConfig{}
	if err := db.Db.Order("id DESC").First(main).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	email := &EmailNotificationConfig{}
	if err := db.Db.Order("id DESC").First(email).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	wechat := &WechatNotificationConfig{}
	if err := db.Db.Order("id DESC").First(wechat).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	recipients := []string{}
	if email.Recipients != "" {
		recipients = strings.Split(email.Recipients, ",")
	}

	return map[string]interface{}{
		"enabled":    main.Enabled == 1,
		"on_success": main.OnSuccess == 1,
		"on_failure": main.OnFailure == 1,
		"email": map[string]interface{}{
			"enabled":      email.Enabled == 1,
			"smtp_server":  email.SmtpServer,
			"smtp_port":    email.SmtpPort,
			"use_tls":      email.UseTls == 1,
			"username":     email.Username,
			"from_address": email.FromAddress,
			"recipients":   recipients,
		},
		"wechat": map[string]interface{}{
			"enabled":  wechat.Enabled == 1,
			"corp_id":  wechat.CorpId,
			"agent_id": wechat.AgentId,
			"to_users": wechat.ToUsers,
		},
	}, nil
}

// SaveGlobalNotificationConfig 保存全局通知开关
func SaveGlobalNotificationConfig(enabled, onSuccess, onFailure bool) error {
	updateData := map[string]interface{}{
		"enabled":    boolToInt(enabled),
		"on_success": boolToInt(onSuccess),
		"on_failure": boolToInt(onFailure),
	}
	return db.Db.Model(&NotificationConfig{}).Where("id = ?", 1).Updates(updateData).Error
}

// SaveEmailNotificationConfig 保存邮件通知配置
func SaveEmailNotificationConfig(enabled bool, smtpServer string, smtpPort int, useTls bool, username, password, fromAddress string, recipients []string) error {
	updateData := map[string]interface{}{
		"enabled":      boolToInt(enabled),
		"smtp_server":  smtpServer,
		"smtp_port":    smtpPort,
		"use_tls":      boolToInt(useTls),
		"username":     username,
		"from_address": fromAddress,
		"recipients":   strings.Join(recipients, ","),
	}
	if password != "" {
		updateData["password"] = password
	}
	return db.Db.Model(&EmailNotificationConfig{}).Where("id = ?", 1).Updates(updateData).Error
}

// SaveWechatNotificationConfig 保存企业微信通知配置
func SaveWechatNotificationConfig(enabled bool, corpId, corpSecret, agentId, toUsers string) error {
	if toUsers == "" {
		toUsers = "@all"
	}
	updateData := map[string]interface{}{
		"enabled":  boolToInt(enabled),
		"corp_id":  corpId,
		"agent_id": agentId,
		"to_users": toUsers,
	}
	if corpSecret != "" {
		updateData["corp_secret"] = corpSecret
	}
	return db.Db.Model(&WechatNotificationConfig{}).Where("id = ?", 1).Updates(updateData).Error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
