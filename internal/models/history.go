package models

import (
	"DB-Backup-Web/internal/db"
)

// BackupHistory 备份历史记录，追加写入，由Web端和外部备份脚本共同产生
type BackupHistory struct {
	BaseModel
	DbType   string `json:"db_type" gorm:"index"` // postgresql / mysql
	Trigger  string `json:"trigger"`              // 手动 / 自动
	Status   string `json:"status"`               // success / failed / started
	Message  string `json:"message"`
	LogFile  string `json:"log_file"` // 详细日志文件名，可为空
	TargetId string `json:"target_id"`
}

func (*BackupHistory) TableName() string {
	return "backup_history"
}

// AppendBackupHistory 追加一条历史记录
func AppendBackupHistory(dbType, trigger, status, message, logFile string) error {
	record := &BackupHistory{
		DbType:  dbType,
		Trigger: trigger,
		Status:  status,
		Message: message,
		LogFile: logFile,
	}
	return db.Db.Create(record).Error
}

// GetBackupHistory 获取最近limit条历史记录，按时间倒序
func GetBackupHistory(limit int) ([]*BackupHistory, error) {
	var records []*BackupHistory
	err := db.Db.Model(&BackupHistory{}).Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
