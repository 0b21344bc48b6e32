package log

import (
	"testing"

	"github.com/astaxie/beego/logs"
)

func TestGetLevel(t *testing.T) {
	for _, levelStr := range level {
		num := GetLevel(levelStr)
		if num < 0 || num > 7 {
			t.Fatalf("get log level failed: %d\n", num)
		}
		if !ValidLevel(levelStr) {
			t.Errorf("level %s should be valid", levelStr)
		}
	}

	num := GetLevel("default")
	if num != logs.LevelDebug {
		t.Errorf("defaultLogLevel set failed: %d\n", num)
	}
	if ValidLevel("default") {
		t.Errorf("level default should not be valid")
	}
	if GetLevel("WARN") != logs.LevelWarning {
		t.Errorf("level lookup should be case insensitive")
	}
}
