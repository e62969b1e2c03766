package models

import (
	"DB-Backup-Web/internal/db"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DatabaseConnection 备份目标数据库的连接配置
type DatabaseConnection struct {
	ID        string `json:"id" gorm:"primaryKey"` // uuid
	DbType    string `json:"db_type" gorm:"index"` // postgresql / mysql
	Host      string `json:"host"`
	Port      string `json:"port"`
	User      string `json:"user"`
	Password  string `json:"-"`
	DbName    string `json:"db_name"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*DatabaseConnection) TableName() string {
	return "database_connections"
}

// AddDatabaseConnection 添加数据库连接，返回生成的ID
func AddDatabaseConnection(dbType, host, port, user, password, dbName string) (string, error) {
	conn := &DatabaseConnection{
		ID:       uuid.NewString(),
		DbType:   dbType,
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DbName:   dbName,
	}
	if err := db.Db.Create(conn).Error; err != nil {
		return "", err
	}
	return conn.ID, nil
}

// UpdateDatabaseConnection 更新数据库连接
func UpdateDatabaseConnection(id, dbType, host, port, user, password, dbName string) error {
	updateData := map[string]interface{}{
		"db_type":  dbType,
		"host":     host,
		"port":     port,
		"user":     user,
		"password": password,
		"db_name":  dbName,
	}
	return db.Db.Model(&DatabaseConnection{}).Where("id = ?", id).Updates(updateData).Error
}

// DeleteDatabaseConnection 删除数据库连接
func DeleteDatabaseConnection(id string) error {
	return db.Db.Where("id = ?", id).Delete(&DatabaseConnection{}).Error
}

// GetDatabaseConnections 按类型获取连接列表，dbType为空时返回全部
func GetDatabaseConnections(dbType string) ([]*DatabaseConnection, error) {
	var conns []*DatabaseConnection
	query := db.Db.Model(&DatabaseConnection{}).Order("created_at DESC")
	if dbType != "" {
		query = query.Where("db_type = ?", dbType)
	}
	if err := query.Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// CountDatabaseConnections 指定类型的连接数量
func CountDatabaseConnections(dbType string) int64 {
	var count int64
	db.Db.Model(&DatabaseConnection{}).Where("db_type = ?", dbType).Count(&count)
	return count
}

// ExportConnectionsForShell 为备份脚本导出连接列表
// 输出格式每行: host;port;user;password;db_name;id
func ExportConnectionsForShell(dbType string) (string, error) {
	conns, err := GetDatabaseConnections(dbType)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(conns))
	for _, conn := range conns {
		lines = append(lines, fmt.Sprintf("%s;%s;%s;%s;%s;%s",
			conn.Host, conn.Port, conn.User, conn.Password, conn.DbName, conn.ID))
	}
	return strings.Join(lines, "\n"), nil
}
