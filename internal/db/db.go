package db

import (
	"DB-Backup-Web/internal/helpers"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Db *gorm.DB

// 获取一个SQLite数据库连接
func InitSqlite3(dbFile string) *gorm.DB {
	sqliteDb, err := gorm.Open(sqlite.Open(dbFile+"?cache=shared&_journal_mode=WAL&busy_timeout=30000&synchronous=NORMAL&foreign_keys=ON&cache_size=-100000"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect database: %v", err))
	}
	return sqliteDb
}

// 连接外部PostgreSQL数据库作为配置存储
func ConnectPostgres(dbConfig *helpers.PostgresConfig) error {
	// 配置Logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // 慢SQL阈值
			LogLevel:                  logger.Warn,            // 日志级别
			IgnoreRecordNotFoundError: true,                   // 忽略ErrRecordNotFound（记录未找到）错误
			Colorful:                  true,
		},
	)

	sslMode := dbConfig.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Password, dbConfig.Database, sslMode)
	sqlDB, cerr := sql.Open("postgres", connStr)
	if cerr != nil {
		helpers.AppLogger.Errorf("连接数据库失败: %v", cerr)
		return cerr
	}
	// 配置连接池
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(60 * time.Minute) // 连接最多使用60分钟
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)  // 空闲超过1分钟则关闭
	var err error
	Db, err = gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("failed to connect database: %v", err))
	}
	// 设置全局Logger
	Db.Logger = newLogger
	helpers.AppLogger.Info("成功初始化数据库组件")

	return nil
}

// InitDb 根据配置选择数据库引擎并初始化全局连接
func InitDb() error {
	if helpers.GlobalConfig.Db.Engine == helpers.DbEnginePostgres {
		return ConnectPostgres(&helpers.GlobalConfig.Db.PostgresConfig)
	}
	Db = InitSqlite3(helpers.GlobalConfig.Db.SqliteFile)
	return nil
}

// IsPostgres 判断当前配置存储是否为PostgreSQL
func IsPostgres() bool {
	return helpers.GlobalConfig.Db.Engine == helpers.DbEnginePostgres
}
