// Package platform gathers every OS dependent decision of the launcher into a
// single Profile value selected once at startup.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Env is the slice of the host environment a profile consults.
type Env struct {
	Getenv func(string) string
	Home   string
}

// HostEnv returns the environment of the running process.
func HostEnv() Env {
	home, _ := os.UserHomeDir()
	return Env{Getenv: os.Getenv, Home: home}
}

func (e Env) get(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

// Profile describes one operating system as the launcher sees it.
type Profile interface {
	// Name is the OS name used by library rules ("windows", "osx", "linux").
	Name() string
	// Arch is the runtime vendor's architecture name ("x64", "aarch64", "x86").
	Arch() string
	// ArchBits substitutes ${arch} in native classifiers ("64" or "32").
	ArchBits() string
	PathListSeparator() string
	// JavaBinary is the file name of the runtime executable.
	JavaBinary() string

	DefaultGameDir(env Env) string
	// VendorRuntimes lists executables managed by the official game launcher.
	VendorRuntimes(env Env) []string
	// CommonRuntimes lists well known JDK/JRE installs for a major version.
	CommonRuntimes(env Env, major int) []string
	// RuntimeExecutables lists executable locations relative to an unpacked
	// runtime root.
	RuntimeExecutables() []string
	// IsShim reports executables that only forward to an installer prompt.
	IsShim(path string) bool

	// RuntimeArchiveExt is "zip" or "tar.gz".
	RuntimeArchiveExt() string
	RuntimeDownloadURL(major int) string
}

// ForOS builds the profile for a GOOS/GOARCH pair.
func ForOS(goos, goarch string) (Profile, error) {
	base := base{goarch: goarch}
	switch goos {
	case "windows":
		return Windows{base}, nil
	case "darwin":
		return MacOS{base}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return Linux{base}, nil
	default:
		return nil, fmt.Errorf("❌ unsupported operating system: %s", goos)
	}
}

// Current returns the profile of the running host. Unknown Unix flavours are
// treated as Linux.
func Current() Profile {
	p, err := ForOS(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return Linux{base{goarch: runtime.GOARCH}}
	}
	return p
}

// All returns one profile per supported OS for the given architecture.
func All(goarch string) []Profile {
	b := base{goarch: goarch}
	return []Profile{Windows{b}, MacOS{b}, Linux{b}}
}

type base struct {
	goarch string
}

func (b base) Arch() string {
	switch b.goarch {
	case "amd64":
		return "x64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	case "arm":
		return "arm"
	default:
		return b.goarch
	}
}

func (b base) ArchBits() string {
	switch b.goarch {
	case "386", "arm":
		return "32"
	default:
		return "64"
	}
}

const adoptiumAPI = "https://api.adoptium.net/v3/binary/latest/%d/ga/%s/%s/jre/hotspot/normal/eclipse"
