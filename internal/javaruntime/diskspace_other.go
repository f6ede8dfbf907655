//go:build !unix && !windows

package javaruntime

import "errors"

func availableDiskSpace(string) (int64, error) {
	return 0, errors.New("disk space query not supported on this platform")
}
