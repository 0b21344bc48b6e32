//go:build !windows && !plan9

package limits

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetLimits(t *testing.T) {
	if err := SetLimits(); err == nil {
		var fileno unix.Rlimit
		err := unix.Getrlimit(unix.RLIMIT_NOFILE, &fileno)
		if err != nil {
			t.Fatalf("Getrlimit failed :%v\n", err)
		}
		if fileno.Cur < fileLimitMin {
			t.Fatalf("current limit should be at least %d\n", fileLimitMin)
		}
	}
}
