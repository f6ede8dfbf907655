package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string, home string) Env {
	return Env{
		Getenv: func(k string) string { return vars[k] },
		Home:   home,
	}
}

func TestForOS(t *testing.T) {
	tests := []struct {
		goos, goarch string
		name, arch   string
		sep, ext     string
	}{
		{"windows", "amd64", "windows", "x64", ";", "zip"},
		{"darwin", "arm64", "osx", "aarch64", ":", "tar.gz"},
		{"linux", "amd64", "linux", "x64", ":", "tar.gz"},
		{"freebsd", "386", "linux", "x86", ":", "tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			p, err := ForOS(tt.goos, tt.goarch)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name())
			assert.Equal(t, tt.arch, p.Arch())
			assert.Equal(t, tt.sep, p.PathListSeparator())
			assert.Equal(t, tt.ext, p.RuntimeArchiveExt())
		})
	}

	_, err := ForOS("plan9", "amd64")
	assert.Error(t, err)
}

func TestArchBits(t *testing.T) {
	assert.Equal(t, "64", Linux{base{goarch: "amd64"}}.ArchBits())
	assert.Equal(t, "64", Linux{base{goarch: "arm64"}}.ArchBits())
	assert.Equal(t, "32", Windows{base{goarch: "386"}}.ArchBits())
}

func TestDefaultGameDir(t *testing.T) {
	env := fakeEnv(map[string]string{"APPDATA": `C:\Users\steve\AppData\Roaming`}, "/home/steve")

	assert.Equal(t, `C:\Users\steve\AppData\Roaming\.hegemonia`, Windows{}.DefaultGameDir(env))
	assert.Equal(t, `C:\Users\steve\AppData\Roaming\.hegemonia`,
		Windows{}.DefaultGameDir(fakeEnv(nil, `C:\Users\steve`)))
	assert.Equal(t, "/home/steve/Library/Application Support/hegemonia", MacOS{}.DefaultGameDir(env))
	assert.Equal(t, "/home/steve/.hegemonia", Linux{}.DefaultGameDir(env))
}

func TestVendorRuntimes(t *testing.T) {
	env := fakeEnv(map[string]string{"LOCALAPPDATA": `C:\Users\steve\AppData\Local`}, "/home/steve")

	win := Windows{base{goarch: "amd64"}}.VendorRuntimes(env)
	require.NotEmpty(t, win)
	assert.Equal(t,
		`C:\Users\steve\AppData\Local\Packages\Microsoft.4297127D64EC6_8wekyb3d8bbwe\LocalCache\Local\runtime\java-runtime-gamma\windows-x64\java-runtime-gamma\bin\javaw.exe`,
		win[0])

	mac := MacOS{base{goarch: "arm64"}}.VendorRuntimes(env)
	require.Len(t, mac, 1)
	assert.Contains(t, mac[0], "mac-os-arm64")

	assert.Empty(t, Windows{}.VendorRuntimes(fakeEnv(nil, "")))
}

func TestCommonRuntimesUseMajorVersion(t *testing.T) {
	env := fakeEnv(nil, "/home/steve")
	for _, p := range All("amd64") {
		candidates := p.CommonRuntimes(env, 17)
		require.NotEmpty(t, candidates, p.Name())
		for _, c := range candidates {
			assert.Contains(t, c, "17", "%s candidate %s", p.Name(), c)
			assert.True(t, strings.HasSuffix(c, p.JavaBinary()), "%s candidate %s", p.Name(), c)
		}
	}
}

func TestIsShim(t *testing.T) {
	assert.True(t, MacOS{}.IsShim("/usr/bin/java"))
	assert.False(t, MacOS{}.IsShim("/opt/homebrew/opt/openjdk@17/bin/java"))
	assert.True(t, Windows{}.IsShim(`C:\Program Files\Common Files\Oracle\Java\javapath\java.exe`))
	assert.False(t, Windows{}.IsShim(`C:\Program Files\Eclipse Adoptium\jdk-17\bin\java.exe`))
	assert.False(t, Linux{}.IsShim("/usr/bin/java"))
}

func TestRuntimeDownloadURL(t *testing.T) {
	assert.Equal(t,
		"https://api.adoptium.net/v3/binary/latest/17/ga/windows/x64/jre/hotspot/normal/eclipse",
		Windows{base{goarch: "amd64"}}.RuntimeDownloadURL(17))
	assert.Equal(t,
		"https://api.adoptium.net/v3/binary/latest/17/ga/mac/aarch64/jre/hotspot/normal/eclipse",
		MacOS{base{goarch: "arm64"}}.RuntimeDownloadURL(17))
	assert.Equal(t,
		"https://api.adoptium.net/v3/binary/latest/21/ga/linux/x64/jre/hotspot/normal/eclipse",
		Linux{base{goarch: "amd64"}}.RuntimeDownloadURL(21))
}
