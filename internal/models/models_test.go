package models

import (
	"DB-Backup-Web/internal/db"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDb(t *testing.T) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := gdb.AutoMigrate(&User{}, &DatabaseConnection{}, &BackupHistory{},
		&NotificationConfig{}, &EmailNotificationConfig{}, &WechatNotificationConfig{}); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	db.Db = gdb
}

func TestEnsureDefaultUserAndLogin(t *testing.T) {
	setupTestDb(t)

	if err := EnsureDefaultUser(); err != nil {
		t.Fatalf("创建默认用户失败: %v", err)
	}
	// 重复调用不应新建用户
	if err := EnsureDefaultUser(); err != nil {
		t.Fatalf("二次调用失败: %v", err)
	}
	var count int64
	db.Db.Model(&User{}).Count(&count)
	if count != 1 {
		t.Fatalf("期望1个用户，实际 %d 个", count)
	}

	user, err := CheckLogin("admin", "admin")
	if err != nil || user == nil {
		t.Fatalf("默认账号登录失败: %v", err)
	}
	if _, err := CheckLogin("admin", "wrong"); err == nil {
		t.Error("错误密码不应通过校验")
	}
	if _, err := CheckLogin("nobody", "admin"); err == nil {
		t.Error("不存在的用户不应通过校验")
	}
}

func TestBackupHistoryOrdering(t *testing.T) {
	setupTestDb(t)

	for _, msg := range []string{"第一条", "第二条", "第三条"} {
		if err := AppendBackupHistory("postgresql", "手动", "success", msg, ""); err != nil {
			t.Fatalf("写入历史记录失败: %v", err)
		}
	}

	records, err := GetBackupHistory(2)
	if err != nil {
		t.Fatalf("查询历史记录失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("期望2条记录，实际 %d 条", len(records))
	}
	// 同秒写入时按id倒序，最新的在前
	if records[0].Message != "第三条" || records[1].Message != "第二条" {
		t.Errorf("历史记录顺序错误: %q, %q", records[0].Message, records[1].Message)
	}
}

func TestDatabaseConnectionCrud(t *testing.T) {
	setupTestDb(t)

	id, err := AddDatabaseConnection("postgresql", "localhost", "5432", "postgres", "secret", "appdb")
	if err != nil {
		t.Fatalf("添加连接失败: %v", err)
	}
	if id == "" {
		t.Fatal("添加连接应返回ID")
	}
	if CountDatabaseConnections("postgresql") != 1 {
		t.Error("postgresql连接数应为1")
	}
	if CountDatabaseConnections("mysql") != 0 {
		t.Error("mysql连接数应为0")
	}

	if err := UpdateDatabaseConnection(id, "postgresql", "db.internal", "5432", "postgres", "secret2", "appdb"); err != nil {
		t.Fatalf("更新连接失败: %v", err)
	}
	conns, err := GetDatabaseConnections("postgresql")
	if err != nil || len(conns) != 1 {
		t.Fatalf("查询连接失败: %v", err)
	}
	if conns[0].Host != "db.internal" {
		t.Errorf("期望host db.internal，实际 %q", conns[0].Host)
	}

	out, err := ExportConnectionsForShell("postgresql")
	if err != nil {
		t.Fatalf("导出连接失败: %v", err)
	}
	expected := "db.internal;5432;postgres;secret2;appdb;" + id
	if out != expected {
		t.Errorf("期望导出 %q，实际 %q", expected, out)
	}

	if err := DeleteDatabaseConnection(id); err != nil {
		t.Fatalf("删除连接失败: %v", err)
	}
	if CountDatabaseConnections("postgresql") != 0 {
		t.Error("删除后连接数应为0")
	}
}

func TestNotificationConfigDefaultsAndSave(t *testing.T) {
	setupTestDb(t)

	if err := EnsureNotificationDefaults(); err != nil {
		t.Fatalf("初始化通知配置失败: %v", err)
	}

	config, err := GetNotificationConfig()
	if err != nil {
		t.Fatalf("查询通知配置失败: %v", err)
	}
	if config["enabled"] != false {
		t.Error("默认通知总开关应为关闭")
	}

	if err := SaveEmailNotificationConfig(true, "smtp.example.com", 465, true,
		"bot", "topsecret", "bot@example.com", []string{"ops@example.com"}); err != nil {
		t.Fatalf("保存邮件配置失败: %v", err)
	}
	// 密码留空时保留原值
	if err := SaveEmailNotificationConfig(true, "smtp.example.com", 465, true,
		"bot", "", "bot@example.com", []string{"ops@example.com"}); err != nil {
		t.Fatalf("二次保存邮件配置失败: %v", err)
	}
	email := &EmailNotificationConfig{}
	if err := db.Db.First(email).Error; err != nil {
		t.Fatalf("查询邮件配置失败: %v", err)
	}
	if email.Password != "topsecret" {
		t.Errorf("留空保存后密码应保留原值，实际 %q", email.Password)
	}
	if email.SmtpServer != "smtp.example.com" || email.SmtpPort != 465 {
		t.Errorf("邮件配置保存错误: %+v", email)
	}
}
