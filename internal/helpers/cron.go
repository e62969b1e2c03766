package helpers

import (
	"time"

	"github.com/robfig/cron/v3"
)

// 标准5段cron解析器（分 时 日 月 周）
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// GetNextTimeByCronStr 计算cron表达式接下来count次的执行时间，表达式无效时返回空切片
func GetNextTimeByCronStr(cronStr string, count int) []time.Time {
	schedule, err := cronParser.Parse(cronStr)
	if err != nil {
		return nil
	}
	times := make([]time.Time, 0, count)
	next := time.Now()
	for i := 0; i < count; i++ {
		next = schedule.Next(next)
		if next.IsZero() {
			break
		}
		times = append(times, next)
	}
	return times
}

// IsValidCronStr 检查cron表达式是否可以被标准5段解析器接受
func IsValidCronStr(cronStr string) bool {
	_, err := cronParser.Parse(cronStr)
	return err == nil
}
