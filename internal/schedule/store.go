package schedule

import (
	"DB-Backup-Web/internal/helpers"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackupSchedule 持久化的备份计划，每种数据库类型一行
type BackupSchedule struct {
	DbType         string `json:"db_type" gorm:"primaryKey"`
	ScheduleType   string `json:"schedule_type"`                   // disabled/daily/weekly/monthly
	CronExpression string `json:"cron_expression"`                 // 5段表达式或disabled
	RetentionDays  int    `json:"retention_days" gorm:"default:7"` // 备份保留天数
	Enabled        int    `json:"enabled" gorm:"default:1"`
	CreatedAt      int64  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*BackupSchedule) TableName() string {
	return "backup_schedules"
}

// Store 备份计划存储
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// Save 保存备份计划，整行替换（upsert），不支持部分更新
func (s *Store) Save(dbType, scheduleType, cronExpression string, retentionDays int) error {
	row := &BackupSchedule{
		DbType:         dbType,
		ScheduleType:   scheduleType,
		CronExpression: cronExpression,
		RetentionDays:  retentionDays,
		Enabled:        1,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "db_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"schedule_type", "cron_expression", "retention_days", "enabled", "updated_at"}),
	}).Create(row).Error
	if err != nil && helpers.AppLogger != nil {
		helpers.AppLogger.Errorf("保存备份计划失败: %v", err)
	}
	return err
}

// Get 获取指定类型的备份计划，不存在时返回nil
func (s *Store) Get(dbType string) (*BackupSchedule, error) {
	row := &BackupSchedule{}
	err := s.db.Where("db_type = ?", dbType).First(row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

// GetAll 获取所有备份计划，键为数据库类型，供crontab生成使用
func (s *Store) GetAll() (map[string]*BackupSchedule, error) {
	var rows []*BackupSchedule
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*BackupSchedule, len(rows))
	for _, row := range rows {
		result[row.DbType] = row
	}
	return result, nil
}
