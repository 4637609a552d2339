package model

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CronExpression is a validated 5-field cron schedule.
type CronExpression string

// ParseCronExpression validates a 5-field cron string
// (minute hour day-of-month month day-of-week).
func ParseCronExpression(s string) (CronExpression, error) {
	if _, err := cronParser.Parse(s); err != nil {
		return "", fmt.Errorf("invalid cron expression %q: %w", s, err)
	}
	return CronExpression(s), nil
}

func (c CronExpression) String() string {
	return string(c)
}
