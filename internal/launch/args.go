// Package launch builds the JVM command line for the game and starts it.
package launch

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"mvdan.cc/sh/v3/shell"

	"github.com/hegemonia/launcher/internal/platform"
)

// DefaultUserType is sent for offline and server-authenticated accounts.
const DefaultUserType = "legacy"

// defaultMinHeapMB caps the initial heap.
const defaultMinHeapMB = 512

// Spec is everything needed to start one game session.
type Spec struct {
	Java           string // verified runtime executable
	RuntimeVersion string

	MemoryMB  int
	MinHeapMB int    // upper bound for -Xms; 0 means 512
	JVMArgs   string // shell-style words inserted after the heap flags

	NativesDir string
	Classpath  []string
	MainClass  string

	Username    string
	UUID        string // empty derives the offline UUID from Username
	AccessToken string // empty is sent as "0"
	UserType    string // empty means legacy

	VersionName string // e.g. fabric-loader-0.16.9-1.20.4
	GameDir     string
	AssetsDir   string
	AssetIndex  string

	Server string
	Port   int
}

// PlayerUUID returns the UUID passed to the game.
func (s Spec) PlayerUUID() string {
	if s.UUID != "" {
		return s.UUID
	}
	return OfflineUUID(s.Username).String()
}

func (s Spec) token() string {
	if s.AccessToken == "" {
		return "0"
	}
	return s.AccessToken
}

// OfflineUUID derives the name-based (version 3) UUID servers in offline
// mode assign to a player name.
func OfflineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.UUID(sum)
}

// BuildArgs returns the JVM arguments, without the executable, in the order
// heap, extra JVM args, native path, classpath, main class, game arguments.
func BuildArgs(s Spec, profile platform.Profile) ([]string, error) {
	if s.MemoryMB <= 0 {
		return nil, fmt.Errorf("invalid memory size: %d MB", s.MemoryMB)
	}
	if s.MainClass == "" {
		return nil, fmt.Errorf("missing main class")
	}
	if s.UUID != "" {
		if _, err := uuid.Parse(s.UUID); err != nil {
			return nil, fmt.Errorf("invalid player uuid %q: %w", s.UUID, err)
		}
	}

	minHeap := s.MinHeapMB
	if minHeap <= 0 {
		minHeap = defaultMinHeapMB
	}

	args := []string{
		fmt.Sprintf("-Xmx%dM", s.MemoryMB),
		fmt.Sprintf("-Xms%dM", min(minHeap, s.MemoryMB)),
	}

	if strings.TrimSpace(s.JVMArgs) != "" {
		extra, err := shell.Fields(s.JVMArgs, nil)
		if err != nil {
			return nil, fmt.Errorf("parsing JVM arguments: %w", err)
		}
		args = append(args, extra...)
	}

	args = append(args,
		"-Djava.library.path="+s.NativesDir,
		"-cp", strings.Join(s.Classpath, profile.PathListSeparator()),
		s.MainClass,
	)

	userType := s.UserType
	if userType == "" {
		userType = DefaultUserType
	}
	args = append(args,
		"--username", s.Username,
		"--version", s.VersionName,
		"--gameDir", s.GameDir,
		"--assetsDir", s.AssetsDir,
		"--assetIndex", s.AssetIndex,
		"--uuid", s.PlayerUUID(),
		"--accessToken", s.token(),
		"--userType", userType,
		"--versionType", "release",
	)

	if s.Server != "" {
		args = append(args, "--server", s.Server)
		if s.Port > 0 {
			args = append(args, "--port", strconv.Itoa(s.Port))
		}
	}
	return args, nil
}

// MergeClasspath concatenates classpath groups in order, keeping the first
// occurrence of each entry.
func MergeClasspath(groups ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range groups {
		for _, entry := range group {
			if entry == "" || seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}
	return out
}
