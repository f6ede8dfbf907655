package main

import (
	"errors"

	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// Exit codes for different error types
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitPanic       = 101
	ExitDownload    = 102
	ExitRuntime     = 103
	ExitSpawn       = 104
	ExitInvalidArgs = 105
	ExitIOError     = 106
	ExitEarlyCrash  = 107
)

// errUsage marks bad flags and configuration.
var errUsage = errors.New("invalid arguments")

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		return ExitInvalidArgs
	case errors.Is(err, lerrors.ErrEarlyCrash):
		return ExitEarlyCrash
	case errors.Is(err, lerrors.ErrProcessSpawn):
		return ExitSpawn
	case errors.Is(err, lerrors.ErrRuntimeNotFound), errors.Is(err, lerrors.ErrRuntimeProvisioning):
		return ExitRuntime
	case errors.Is(err, lerrors.ErrFilesystem):
		return ExitIOError
	case errors.Is(err, lerrors.ErrNetwork),
		errors.Is(err, lerrors.ErrHTTPStatus),
		errors.Is(err, lerrors.ErrParse),
		errors.Is(err, lerrors.ErrChecksumMismatch),
		errors.Is(err, lerrors.ErrVersionNotFound):
		return ExitDownload
	default:
		return ExitFailure
	}
}
