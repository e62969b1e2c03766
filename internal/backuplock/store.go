package backuplock

import (
	"DB-Backup-Web/internal/db"
	"DB-Backup-Web/internal/helpers"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockTTL 锁的有效期，超过该时长的锁视为持有者已死亡，可被覆盖
const LockTTL = 2 * time.Hour

const cacheExpire = 60 // 锁状态缓存60秒

// BackupLock 备份互斥锁记录，每种数据库类型一行
type BackupLock struct {
	DbType    string `json:"db_type" gorm:"primaryKey"`
	IsLocked  int    `json:"is_locked" gorm:"default:0"`
	LockedAt  int64  `json:"locked_at"` // unix秒，0表示从未锁定
	LockedBy  string `json:"locked_by"` // 锁持有者标识，如 manual / auto
	UpdatedAt int64  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (*BackupLock) TableName() string {
	return "backup_locks"
}

// LockView 带过期标记的锁状态，用于前端展示
type LockView struct {
	BackupLock
	Expired bool `json:"expired"`
}

// Store 备份锁存储。所有写操作直达数据库，缓存只加速读取，
// 绝不作为Acquire的判断依据。
type Store struct {
	db    *gorm.DB
	cache *db.CacheGlobal
}

func NewStore(gdb *gorm.DB, cache *db.CacheGlobal) *Store {
	return &Store{db: gdb, cache: cache}
}

func logErrorf(format string, args ...interface{}) {
	if helpers.AppLogger != nil {
		helpers.AppLogger.Errorf(format, args...)
	}
}

func cacheKey(dbType string) string {
	return "backup_lock:" + dbType
}

// Acquire 尝试获取指定类型的备份锁
// 已存在且未过期的锁会导致失败；过期的锁被原地覆盖（upsert）。
// 通过单条带条件的UPDATE保证与并发Acquire互斥，不做应用层的先读后写。
func (s *Store) Acquire(dbType string, lockId string) bool {
	now := time.Now().Unix()
	staleCutoff := now - int64(LockTTL.Seconds())

	// 锁空闲或已过期时才会命中该UPDATE
	res := s.db.Model(&BackupLock{}).
		Where("db_type = ? AND (is_locked = 0 OR locked_at <= ?)", dbType, staleCutoff).
		Updates(map[string]interface{}{
			"is_locked": 1,
			"locked_at": now,
			"locked_by": lockId,
		})
	if res.Error != nil {
		logErrorf("获取备份锁时出错: %v", res.Error)
		return false
	}
	if res.RowsAffected > 0 {
		s.cachePut(&BackupLock{DbType: dbType, IsLocked: 1, LockedAt: now, LockedBy: lockId})
		return true
	}

	// 行可能尚未创建，首次获取时惰性插入；冲突说明别人持有锁
	res = s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&BackupLock{
		DbType:   dbType,
		IsLocked: 1,
		LockedAt: now,
		LockedBy: lockId,
	})
	if res.Error != nil {
		logErrorf("获取备份锁时出错: %v", res.Error)
		return false
	}
	if res.RowsAffected > 0 {
		s.cachePut(&BackupLock{DbType: dbType, IsLocked: 1, LockedAt: now, LockedBy: lockId})
		return true
	}
	return false
}

// Release 释放备份锁，幂等：释放未持有的锁也返回成功
func (s *Store) Release(dbType string) bool {
	res := s.db.Model(&BackupLock{}).
		Where("db_type = ?", dbType).
		Updates(map[string]interface{}{
			"is_locked": 0,
			"locked_at": 0,
			"locked_by": "",
		})
	if res.Error != nil {
		logErrorf("释放备份锁时出错: %v", res.Error)
		return false
	}
	s.cacheDel(dbType)
	return true
}

// IsLocked 检查备份是否被锁定。只读，过期的锁在这里不被清理，
// 清理发生在下一次Acquire时。
func (s *Store) IsLocked(dbType string) bool {
	// 先检查内存缓存
	if lock := s.cacheGet(dbType); lock != nil {
		if lock.IsLocked == 1 && lock.LockedAt > 0 {
			if time.Since(time.Unix(lock.LockedAt, 0)) < LockTTL {
				return true
			}
			// 缓存中的锁已过期，删除缓存项后查库
			s.cacheDel(dbType)
		}
	}

	lock := &BackupLock{}
	err := s.db.Where("db_type = ?", dbType).First(lock).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logErrorf("检查备份锁时出错: %v", err)
		}
		return false
	}
	if lock.IsLocked == 1 && lock.LockedAt > 0 {
		if time.Since(time.Unix(lock.LockedAt, 0)) < LockTTL {
			s.cachePut(lock)
			return true
		}
	}
	return false
}

// GetLockInfo 获取锁的原始快照，不存在时返回nil
func (s *Store) GetLockInfo(dbType string) *BackupLock {
	lock := &BackupLock{}
	err := s.db.Where("db_type = ?", dbType).First(lock).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logErrorf("获取备份锁信息时出错: %v", err)
		}
		return nil
	}
	return lock
}

// GetAllLocks 获取所有锁的状态，过期的锁标记为未锁定
func (s *Store) GetAllLocks() map[string]*LockView {
	var locks []*BackupLock
	if err := s.db.Find(&locks).Error; err != nil {
		logErrorf("获取所有备份锁时出错: %v", err)
		return map[string]*LockView{}
	}
	result := make(map[string]*LockView, len(locks))
	for _, lock := range locks {
		view := &LockView{BackupLock: *lock}
		if lock.IsLocked == 1 && lock.LockedAt > 0 &&
			time.Since(time.Unix(lock.LockedAt, 0)) >= LockTTL {
			view.IsLocked = 0
			view.Expired = true
		}
		result[lock.DbType] = view
	}
	return result
}

// Seed 为每种备份类型补齐未锁定的锁记录，已存在的行不受影响
// 保证锁状态接口总能返回全部类型。
func (s *Store) Seed(dbTypes []string) {
	for _, dbType := range dbTypes {
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&BackupLock{
			DbType:   dbType,
			IsLocked: 0,
		})
		if res.Error != nil {
			logErrorf("初始化备份锁记录失败: %v", res.Error)
		}
	}
}

// SweepExpired 清理锁定时间早于TTL的锁记录，在进程启动时调用一次
func (s *Store) SweepExpired() {
	staleCutoff := time.Now().Unix() - int64(LockTTL.Seconds())
	res := s.db.Where("locked_at > 0 AND locked_at <= ?", staleCutoff).Delete(&BackupLock{})
	if res.Error != nil {
		logErrorf("清理过期备份锁失败: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 && helpers.AppLogger != nil {
		helpers.AppLogger.Infof("已清理%d个过期备份锁", res.RowsAffected)
	}
}

func (s *Store) cachePut(lock *BackupLock) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(lock)
	if err != nil {
		return
	}
	s.cache.Set(cacheKey(lock.DbType), data, cacheExpire)
}

func (s *Store) cacheGet(dbType string) *BackupLock {
	if s.cache == nil {
		return nil
	}
	data := s.cache.Get(cacheKey(dbType))
	if data == nil {
		return nil
	}
	lock := &BackupLock{}
	if err := json.Unmarshal(data, lock); err != nil {
		return nil
	}
	return lock
}

func (s *Store) cacheDel(dbType string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(cacheKey(dbType))
}
