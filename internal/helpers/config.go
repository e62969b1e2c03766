package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

var Version = "1.2.0"
var ReleaseDate = "2026-08-20"

type DbEngine string

const (
	DbEngineSqlite   DbEngine = "sqlite"
	DbEnginePostgres DbEngine = "postgres"
	DbEngineUnset    DbEngine = ""
)

// BackupDbType 备份目标数据库类型，目前支持 postgresql 和 mysql
type BackupDbType string

const (
	BackupDbTypePostgres BackupDbType = "postgresql"
	BackupDbTypeMysql    BackupDbType = "mysql"
)

// AllBackupDbTypes 所有支持的备份目标类型，顺序固定（crontab 生成依赖此顺序）
var AllBackupDbTypes = []BackupDbType{BackupDbTypePostgres, BackupDbTypeMysql}

// IsValidBackupDbType 检查是否为支持的备份目标类型
func IsValidBackupDbType(dbType string) bool {
	for _, t := range AllBackupDbTypes {
		if string(t) == dbType {
			return true
		}
	}
	return false
}

type configLog struct {
	File    string `yaml:"file"`    // 应用日志文件名
	CronLog string `yaml:"cronLog"` // 定时任务与备份脚本的输出日志路径
}

type PostgresConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"sslMode"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
}

type configDb struct {
	Engine         DbEngine       `yaml:"engine"`         // 使用的数据库引擎，可选值：sqlite, postgres
	SqliteFile     string         `yaml:"sqliteFile"`     // SQLite数据库文件路径
	PostgresConfig PostgresConfig `yaml:"postgresConfig"` // 外部PostgreSQL数据库配置
}

type configBackup struct {
	Dir         string `yaml:"dir"`         // 备份文件存储目录
	ScriptPath  string `yaml:"scriptPath"`  // 外部备份脚本入口
	CronFile    string `yaml:"cronFile"`    // 生成的crontab源文件路径
	DetailDir   string `yaml:"detailDir"`   // 单次备份的详细日志目录
	HistoryRows int    `yaml:"historyRows"` // 历史记录接口返回的最大条数
}

type Config struct {
	Log       configLog    `yaml:"log"`
	Db        configDb     `yaml:"db"`
	Backup    configBackup `yaml:"backup"`
	CacheSize int          `yaml:"cacheSize"` // 内存缓存大小，单位字节
	JwtSecret string       `yaml:"jwtSecret"`
	HttpHost  string       `yaml:"httpHost"` // HTTP监听地址
}

var GlobalConfig Config
var RootDir string
var ConfigDir string
var IsRelease bool

// 配置缺省值，保持与容器内约定路径一致
func applyDefaults(cfg *Config) {
	if cfg.Log.File == "" {
		cfg.Log.File = "app.log"
	}
	if cfg.Log.CronLog == "" {
		cfg.Log.CronLog = "/var/log/cron.log"
	}
	if cfg.Db.Engine == DbEngineUnset {
		cfg.Db.Engine = DbEngineSqlite
	}
	if cfg.Db.SqliteFile == "" {
		cfg.Db.SqliteFile = filepath.Join(ConfigDir, "users.db")
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "/backups"
	}
	if cfg.Backup.ScriptPath == "" {
		cfg.Backup.ScriptPath = "/usr/local/bin/backup.sh"
	}
	if cfg.Backup.CronFile == "" {
		cfg.Backup.CronFile = "/etc/cron.d/backup-cron"
	}
	if cfg.Backup.DetailDir == "" {
		cfg.Backup.DetailDir = filepath.Join(cfg.Backup.Dir, "logs", "details")
	}
	if cfg.Backup.HistoryRows <= 0 {
		cfg.Backup.HistoryRows = 30
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10 * 1024 * 1024
	}
	if cfg.HttpHost == "" {
		cfg.HttpHost = "0.0.0.0:5001"
	}
}

func InitConfig() error {
	configPath := filepath.Join(ConfigDir, "config.yaml")
	// 从配置文件加载，文件不存在时全部走缺省值
	if err := loadYaml(configPath, &GlobalConfig); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}
	applyDefaults(&GlobalConfig)
	return nil
}

func loadYaml(configPath string, cfg interface{}) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	return nil
}
