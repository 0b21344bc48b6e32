package log

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/astaxie/beego/logs"
)

const errModuleNotFound = "module not found"

// ConsoleFileName selects the console adapter instead of a log file.
const ConsoleFileName = "-"

// DefaultModules is the set of modules logged when no explicit module list
// is configured.
var DefaultModules = []string{"main", "conf", "wire", "connmgr", "peer", "crawler"}

var mapModule = make(map[string]struct{})

type logConfig struct {
	Filename string `json:"filename,omitempty"`
	Level    int    `json:"level"`
	Daily    bool   `json:"daily,omitempty"`
	Color    bool   `json:"color,omitempty"`
}

func init() {
	logs.EnableFuncCallDepth(true)
	logs.SetLogFuncCallDepth(4)
	SetModules(nil)
}

// Init installs a file logger from a beego JSON adapter configuration.
func Init(configuration string) {
	logs.Reset()
	logs.SetLogger(logs.AdapterFile, configuration)
}

// InitLogger configures the process-wide logger. An empty or "-" fileName
// logs to the console.
func InitLogger(fileName, strLevel string, modules []string) error {
	level, ok := levelMap[strings.ToLower(strLevel)]
	if !ok {
		return fmt.Errorf("mismatch the logLevel %s", strLevel)
	}
	SetModules(modules)

	adapter := logs.AdapterFile
	cfg := logConfig{Filename: fileName, Level: level}
	if fileName == "" || fileName == ConsoleFileName {
		adapter = logs.AdapterConsole
		cfg = logConfig{Level: level}
	}
	configuration, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	logs.Reset()
	return logs.SetLogger(adapter, string(configuration))
}

// SetModules replaces the module filter used by Print. A nil or empty list
// enables DefaultModules.
func SetModules(modules []string) {
	if len(modules) == 0 {
		modules = DefaultModules
	}
	m := make(map[string]struct{}, len(modules))
	for _, module := range modules {
		m[strings.ToLower(module)] = struct{}{}
	}
	mapModule = m
}

// Print logs format at level if module is enabled.
func Print(module string, level string, format string, reason ...interface{}) {
	if _, ok := mapModule[module]; !ok {
		if !knownModule(module) {
			logs.Error("%s: %s", errModuleNotFound, module)
		}
		return
	}
	switch strings.ToLower(level) {
	case "emergency":
		logs.Emergency(format, reason...)
	case "alert":
		logs.Alert(format, reason...)
	case "critical":
		logs.Critical(format, reason...)
	case "error":
		logs.Error(format, reason...)
	case "warn", "warning":
		logs.Warn(format, reason...)
	case "notice":
		logs.Notice(format, reason...)
	case "info", "informational":
		logs.Info(format, reason...)
	case "debug", "trace":
		logs.Debug(format, reason...)
	default:
		logs.Error("unknown log level %s for module %s", level, module)
	}
}

func knownModule(module string) bool {
	for _, m := range DefaultModules {
		if m == module {
			return true
		}
	}
	return false
}

// IsIncludeModule reports whether module passes the filter.
func IsIncludeModule(module string) bool {
	_, ok := mapModule[module]
	return ok
}

func Emergency(f interface{}, v ...interface{}) {
	logs.Emergency(f, v...)
}

func Alert(f interface{}, v ...interface{}) {
	logs.Alert(f, v...)
}

func Critical(f interface{}, v ...interface{}) {
	logs.Critical(f, v...)
}

func Error(f interface{}, v ...interface{}) {
	logs.Error(f, v...)
}

func Warn(f interface{}, v ...interface{}) {
	logs.Warn(f, v...)
}

func Notice(f interface{}, v ...interface{}) {
	logs.Notice(f, v...)
}

func Info(f interface{}, v ...interface{}) {
	logs.Info(f, v...)
}

func Debug(f interface{}, v ...interface{}) {
	logs.Debug(f, v...)
}
