package launch

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

const (
	redacted = "***"
	// captureTail bounds how much of each captured stream goes into the log.
	captureTail = 64 << 10
)

// sensitiveFlags are game arguments whose value never reaches the log.
var sensitiveFlags = map[string]bool{
	"--accessToken": true,
	"--clientId":    true,
	"--xuid":        true,
}

// RedactArgs returns a copy of args with the values of sensitive flags
// replaced.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if sensitiveFlags[out[i]] {
			out[i+1] = redacted
			i++
		}
	}
	return out
}

// CommandLine renders argv as a single shell-quoted line.
func CommandLine(argv []string) string {
	words := make([]string, len(argv))
	for i, a := range argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = strconv.Quote(a)
		}
		words[i] = q
	}
	return strings.Join(words, " ")
}

// launchLog accumulates the diagnostic log of one attempt. Each write
// rewrites the whole file.
type launchLog struct {
	path   string
	header string
}

func newLaunchLog(path string, s Spec, argv []string, now time.Time) *launchLog {
	server := "none"
	if s.Server != "" {
		server = s.Server
		if s.Port > 0 {
			server += ":" + strconv.Itoa(s.Port)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Launch attempt at: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "Username: %s\n", s.Username)
	fmt.Fprintf(&b, "UUID: %s\n", s.PlayerUUID())
	fmt.Fprintf(&b, "Server: %s\n", server)
	fmt.Fprintf(&b, "Game directory: %s\n", s.GameDir)
	fmt.Fprintf(&b, "Java: %s (%s)\n", s.Java, s.RuntimeVersion)
	fmt.Fprintf(&b, "\nFull command:\n%s\n", CommandLine(RedactArgs(argv)))
	return &launchLog{path: path, header: b.String()}
}

func (l *launchLog) write(sections ...string) error {
	content := l.header
	for _, s := range sections {
		content += "\n" + s
	}
	return os.WriteFile(l.path, []byte(content), 0644)
}

// tail returns at most the last captureTail bytes of a capture file.
func tail(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	if info, err := f.Stat(); err == nil && info.Size() > captureTail {
		if _, err := f.Seek(-captureTail, io.SeekEnd); err != nil {
			return ""
		}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(data)
}
