package models

import (
	"DB-Backup-Web/internal/db"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 管理面板的登录用户
type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex"`
	Password string `json:"-"` // bcrypt哈希
}

func (*User) TableName() string {
	return "users"
}

// CheckLogin 校验用户名和密码，成功返回用户
func CheckLogin(username, password string) (*User, error) {
	user := &User{}
	err := db.Db.Model(&User{}).Where("username = ?", username).First(user).Error
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("密码错误")
	}
	return user, nil
}

// ChangeUsernameAndPassword 修改用户名，密码非空时一并修改
func (u *User) ChangeUsernameAndPassword(username, newPassword string) (bool, error) {
	changed := false
	u.Username = username
	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}
		u.Password = string(hash)
		changed = true
	}
	if err := db.Db.Save(u).Error; err != nil {
		return false, err
	}
	return changed, nil
}

// EnsureDefaultUser 首次启动时创建默认管理员账号 admin/admin
func EnsureDefaultUser() error {
	var count int64
	if err := db.Db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &User{Username: "admin", Password: string(hash)}
	if err := db.Db.Create(user).Error; err != nil {
		// 并发启动时可能已被创建
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

func GetUserById(id uint) *User {
	if id == 0 {
		return nil
	}
	user := &User{}
	err := db.Db.Model(&User{}).Where("id = ?", id).First(user).Error
	if err != nil {
		return nil
	}
	return user
}
