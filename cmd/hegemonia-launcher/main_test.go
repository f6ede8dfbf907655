package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hegemonia/launcher/internal/progress"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{fmt.Errorf("%w: bad flag", errUsage), ExitInvalidArgs},
		{fmt.Errorf("%w (exit code 1)", lerrors.ErrEarlyCrash), ExitEarlyCrash},
		{fmt.Errorf("%w: no such file", lerrors.ErrProcessSpawn), ExitSpawn},
		{lerrors.ErrRuntimeNotFound, ExitRuntime},
		{fmt.Errorf("%w: disk full", lerrors.ErrRuntimeProvisioning), ExitRuntime},
		{fmt.Errorf("downloading client jar: %w", lerrors.ErrHTTPStatus), ExitDownload},
		{lerrors.ErrVersionNotFound, ExitDownload},
		{lerrors.ErrChecksumMismatch, ExitDownload},
		{lerrors.ErrFilesystem, ExitIOError},
		{fmt.Errorf("something else"), ExitFailure},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCode(tt.err))
		})
	}
}

func TestRendererPlainOutput(t *testing.T) {
	var out bytes.Buffer
	r := &renderer{out: &out}

	r.Report(progress.Event{Stage: progress.StageManifest, Message: "Resolving version 1.20.4"})
	r.Report(progress.Event{Stage: progress.StageAssets, Message: "Downloading assets", Current: 1, Total: 3})
	r.Report(progress.Event{Stage: progress.StageAssets, Message: "Downloading assets", Current: 2, Total: 3})
	r.Report(progress.Event{Stage: progress.StageWarning, Message: "1 assets could not be downloaded"})
	r.Report(progress.Event{Stage: progress.StageDone, Message: "Game started (PID: 7)"})
	r.Close()

	assert.Equal(t, strings.Join([]string{
		"[manifest] Resolving version 1.20.4",
		"[assets] Downloading assets (1/3)",
		"⚠️  1 assets could not be downloaded",
		"✅ Game started (PID: 7)",
		"",
	}, "\n"), out.String())
}

func TestRendererLiveOutput(t *testing.T) {
	var out bytes.Buffer
	r := &renderer{out: &out, live: true, width: 20}

	r.Report(progress.Event{Stage: progress.StageLibraries, Message: "Downloading libraries", Current: 1, Total: 40})
	r.Report(progress.Event{Stage: progress.StageError, Message: "boom"})
	r.Close()

	assert.Equal(t, "\r\033[K[libraries] Downloa\r\033[K❌ boom\n", out.String())
}

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr, nil)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout.String(), "hegemonia-launcher "+version)
	assert.Contains(t, stdout.String(), "Minecraft 1.20.4, Fabric 0.16.9, Java 17")
}

func TestStatusCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"status", "--game-dir", t.TempDir(), "--log-level", "error"}, &stdout, &stderr, nil)
	require.Equal(t, ExitOK, code, stderr.String())

	var status map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &status))
	assert.Equal(t, false, status["minecraft_installed"])
	assert.Equal(t, float64(0), status["mod_count"])
	assert.Equal(t, true, status["needs_update"])
}

func TestLaunchRequiresUsername(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"launch", "--game-dir", t.TempDir()}, &stdout, &stderr, nil)
	assert.Equal(t, ExitInvalidArgs, code)
	assert.Contains(t, stderr.String(), "--username is required")
	assert.Empty(t, stdout.String())
}

func TestUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"status", "--bogus"}, &stdout, &stderr, nil)
	assert.Equal(t, ExitInvalidArgs, code)
}

func TestInvalidConfiguration(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"status", "--game-dir", t.TempDir(), "--validation", "paranoid"}, &stdout, &stderr, nil)
	assert.Equal(t, ExitInvalidArgs, code)
}
