package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// LevelEnv overrides the log level when no flag is given.
	LevelEnv = "HEGEMONIA_LOG_LEVEL"
	// PathEnv appends log output to a file instead of stderr.
	PathEnv = "HEGEMONIA_LOG_PATH"
)

// Prefix marks every non-JSON log line. Windows consoles without a UTF-8
// code page mangle the emoji, so they get a plain tag.
func Prefix() string {
	if runtime.GOOS == "windows" {
		return "[HL] "
	}
	return "⛏️ "
}

// ParseLevel splits a level spec into the hclog level and the output format.
// "json" alone means JSON at info, "json:debug" JSON at debug.
func ParseLevel(spec string) (hclog.Level, bool) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	jsonFormat := false
	if strings.HasPrefix(spec, "json") {
		jsonFormat = true
		if _, lvl, ok := strings.Cut(spec, ":"); ok && lvl != "" {
			spec = lvl
		} else {
			spec = "info"
		}
	}
	level := hclog.LevelFromString(spec)
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	return level, jsonFormat
}

// NewLogger creates a new hclog logger with standard settings. A nil output
// selects HEGEMONIA_LOG_PATH when set, stderr otherwise.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	lvl, jsonFormat := ParseLevel(level)

	if output == nil {
		output = os.Stderr
		if logPath := os.Getenv(PathEnv); logPath != "" {
			if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				output = file
			}
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter(Prefix(), output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// GetLogLevel returns the level spec from the flag value, then the
// environment, then fallback.
func GetLogLevel(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if level := os.Getenv(LevelEnv); level != "" {
		return level
	}
	return fallback
}
