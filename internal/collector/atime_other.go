//go:build !linux

package collector

import (
	"os"
	"time"
)

func accessTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}
