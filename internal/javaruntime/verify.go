package javaruntime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/hegemonia/launcher/internal/platform"
)

// DefaultVerifyTimeout bounds a single "-version" probe.
const DefaultVerifyTimeout = 10 * time.Second

var (
	errNoVersion = errors.New("output carries no version marker")
	errThirtyTwo = errors.New("32-bit runtime")
	errTooOld    = errors.New("runtime major version too old")
)

// Version is what a runtime reports about itself.
type Version struct {
	Raw   string // the quoted version, e.g. "17.0.13" or "1.8.0_392"
	Major int
}

// Verifier decides whether an executable is a usable runtime.
type Verifier interface {
	Verify(ctx context.Context, path string) (*Version, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, path string) (*Version, error)

func (f VerifierFunc) Verify(ctx context.Context, path string) (*Version, error) {
	return f(ctx, path)
}

// CommandVerifier runs "<path> -version" and inspects the combined output.
type CommandVerifier struct {
	MinMajor int
	Timeout  time.Duration
}

func (v CommandVerifier) Verify(ctx context.Context, path string) (*Version, error) {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-version")
	cmd.Stdout = &out
	cmd.Stderr = &out
	platform.HideConsole(cmd)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s -version: %w", path, err)
	}
	return ParseVersionOutput(out.String(), v.MinMajor)
}

var versionPattern = regexp.MustCompile(`version "([^"]+)"`)

// ParseVersionOutput extracts the version from "-version" output. It fails
// when there is no version marker, when the build is 32-bit, or when the
// major version is below minMajor.
func ParseVersionOutput(output string, minMajor int) (*Version, error) {
	if strings.Contains(output, "32-Bit") || strings.Contains(output, "32-bit") {
		return nil, errThirtyTwo
	}
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, errNoVersion
	}

	raw := m[1]
	canonical, err := canonicalVersion(raw)
	if err != nil {
		return nil, err
	}
	major, _ := strconv.Atoi(strings.TrimPrefix(semver.Major(canonical), "v"))

	if minMajor > 0 && semver.Compare(canonical, fmt.Sprintf("v%d", minMajor)) < 0 {
		return nil, fmt.Errorf("%w: %s < %d", errTooOld, raw, minMajor)
	}
	return &Version{Raw: raw, Major: major}, nil
}

// canonicalVersion maps a runtime version string to semver. Legacy
// "1.x.y_z" strings report x as the major version.
func canonicalVersion(raw string) (string, error) {
	v := raw
	if i := strings.IndexAny(v, "+-_ "); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) > 1 && parts[0] == "1" {
		parts = parts[1:]
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	canonical := "v" + strings.Join(parts, ".")
	if !semver.IsValid(canonical) {
		return "", fmt.Errorf("unrecognised version %q", raw)
	}
	return canonical, nil
}
