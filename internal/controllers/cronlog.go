package controllers

import (
	"DB-Backup-Web/internal/helpers"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CronLogEntry cron日志条目
type CronLogEntry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// 备份脚本输出格式：[2026-08-31 02:00:01] [INFO] 开始备份 postgresql
var cronLogPattern = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\] \[(\w+)\] (.+)$`)

// parseCronLogLine 解析备份脚本日志行，无法识别的行按info原样透传
func parseCronLogLine(line string) CronLogEntry {
	entry := CronLogEntry{
		Level:     "info",
		Message:   line,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	matches := cronLogPattern.FindStringSubmatch(line)
	if len(matches) == 4 {
		entry.Timestamp = matches[1]
		switch strings.ToLower(matches[2]) {
		case "warn", "warning":
			entry.Level = "warn"
		case "error", "err":
			entry.Level = "error"
		case "debug":
			entry.Level = "debug"
		default:
			entry.Level = "info"
		}
		entry.Message = matches[3]
	}
	return entry
}

// tailLines 读取文件末尾最多limit行
func tailLines(path string, limit int) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, nil
}

// GetCronLogTail 获取cron日志末尾内容
// @Summary 查看cron日志
// @Description 返回cron执行日志的末尾若干行，默认200行
// @Tags 日志管理
// @Accept json
// @Produce json
// @Param limit query int false "返回行数"
// @Success 200 {object} object
// @Failure 200 {object} object
// @Router /logs/cron [get]
// @Security JwtAuth
func GetCronLogTail(c *gin.Context) {
	limit := 200
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 2000 {
		limit = v
	}
	logPath := helpers.GlobalConfig.Log.CronLog
	if !helpers.PathExists(logPath) {
		c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "日志文件尚未生成", Data: []CronLogEntry{}})
		return
	}
	lines, err := tailLines(logPath, limit)
	if err != nil {
		c.JSON(http.StatusOK, APIResponse[any]{Code: BadRequest, Message: "读取日志失败: " + err.Error(), Data: nil})
		return
	}
	entries := make([]CronLogEntry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		entries = append(entries, parseCronLogLine(line))
	}
	c.JSON(http.StatusOK, APIResponse[any]{Code: Success, Message: "读取日志成功", Data: entries})
}

func writeWsError(conn *websocket.Conn, format string, args ...interface{}) {
	entry := CronLogEntry{
		Level:     "error",
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	if werr := conn.WriteJSON(entry); werr != nil {
		helpers.AppLogger.Errorf("发送错误消息失败: %v", werr)
	}
}

// CronLogWebSocket 通过websocket实时跟踪cron日志
// 连接建立后从文件当前末尾开始推送新写入的行，历史内容走HTTP接口。
func CronLogWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		helpers.AppLogger.Errorf("升级WebSocket连接失败: %v", err)
		return
	}
	defer conn.Close()

	logPath := helpers.GlobalConfig.Log.CronLog
	if _, serr := os.Stat(logPath); os.IsNotExist(serr) {
		writeWsError(conn, "错误: 日志文件不存在: %s", logPath)
		return
	}

	file, err := os.Open(logPath)
	if err != nil {
		writeWsError(conn, "错误: 打开日志文件失败: %v", err)
		return
	}
	defer file.Close()

	// 只推送新内容
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		writeWsError(conn, "错误: 定位文件末尾失败: %v", err)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		writeWsError(conn, "错误: 创建文件监听器失败: %v", err)
		return
	}
	defer watcher.Close()
	if err := watcher.Add(logPath); err != nil {
		writeWsError(conn, "错误: 添加文件到监听器失败: %v", err)
		return
	}

	entry := CronLogEntry{
		Level:     "info",
		Message:   fmt.Sprintf("开始监控日志文件: %s", logPath),
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	if werr := conn.WriteJSON(entry); werr != nil {
		return
	}

	closed := make(chan struct{})
	defer close(closed)

	// 客户端消息只用于探测断连
	go func() {
		for {
			if _, _, rerr := conn.ReadMessage(); rerr != nil {
				return
			}
		}
	}()

	// 读取协程：轮询文件新内容并逐行推送
	go func() {
		buffer := make([]byte, 4096)
		var leftover []byte
		for {
			select {
			case <-closed:
				return
			default:
				n, rerr := file.Read(buffer)
				if rerr != nil {
					if rerr != io.EOF {
						writeWsError(conn, "错误: 读取日志文件失败: %v", rerr)
						return
					}
					time.Sleep(100 * time.Millisecond)
					continue
				}
				if n == 0 {
					continue
				}
				content := append(leftover, buffer[:n]...)
				lines := strings.Split(string(content), "\n")
				// 最后一段可能是不完整行，留到下一轮
				leftover = []byte(lines[len(lines)-1])
				lines = lines[:len(lines)-1]
				for _, line := range lines {
					if line == "" {
						continue
					}
					if werr := conn.WriteJSON(parseCronLogLine(line)); werr != nil {
						return
					}
				}
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			writeWsError(conn, "错误: 文件监控失败: %v", werr)
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
