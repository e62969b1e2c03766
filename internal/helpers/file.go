package helpers

import (
	"crypto/md5"
	"encoding/hex"
	"os"
)

// PathExists 检查文件或目录是否存在
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MD5Hash 计算字符串的MD5值，用于缓存键等场景
func MD5Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EnsureDir 确保目录存在
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
