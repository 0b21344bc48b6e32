package log

import (
	"strings"

	"github.com/astaxie/beego/logs"
)

const defaultLogLevel = logs.LevelDebug

var levelMap = map[string]int{
	"emergency":     logs.LevelEmergency,
	"alert":         logs.LevelAlert,
	"critical":      logs.LevelCritical,
	"error":         logs.LevelError,
	"warn":          logs.LevelWarning,
	"warning":       logs.LevelWarning,
	"notice":        logs.LevelNotice,
	"info":          logs.LevelInformational,
	"informational": logs.LevelInformational,
	"debug":         logs.LevelDebug,
	"trace":         logs.LevelDebug,
}

// GetLevel maps a level name to its beego level, defaulting to debug.
func GetLevel(level string) int {
	level = strings.ToLower(level)
	ele, ok := levelMap[level]
	if !ok {
		return defaultLogLevel
	}
	return ele
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	_, ok := levelMap[strings.ToLower(level)]
	return ok
}
