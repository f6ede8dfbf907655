package launch

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hegemonia/launcher/internal/platform"
)

func baseSpec() Spec {
	return Spec{
		Java:        "/opt/java/bin/java",
		MemoryMB:    4096,
		NativesDir:  "/game/natives",
		Classpath:   []string{"/game/libraries/a.jar", "/game/libraries/b.jar", "/game/versions/1.20.4/1.20.4.jar"},
		MainClass:   "net.fabricmc.loader.impl.launch.knot.KnotClient",
		Username:    "Steve",
		UUID:        "069a79f4-44e9-4726-a5be-fca90e38aaf5",
		AccessToken: "tok",
		VersionName: "fabric-loader-0.16.9-1.20.4",
		GameDir:     "/game",
		AssetsDir:   "/game/assets",
		AssetIndex:  "12",
	}
}

func mustProfile(t *testing.T, goos string) platform.Profile {
	t.Helper()
	p, err := platform.ForOS(goos, "amd64")
	require.NoError(t, err)
	return p
}

func TestBuildArgsOrder(t *testing.T) {
	s := baseSpec()
	s.Server = "play.hegemonia.net"
	s.Port = 25565

	args, err := BuildArgs(s, mustProfile(t, "linux"))
	require.NoError(t, err)

	want := []string{
		"-Xmx4096M", "-Xms512M",
		"-Djava.library.path=/game/natives",
		"-cp", "/game/libraries/a.jar:/game/libraries/b.jar:/game/versions/1.20.4/1.20.4.jar",
		"net.fabricmc.loader.impl.launch.knot.KnotClient",
		"--username", "Steve",
		"--version", "fabric-loader-0.16.9-1.20.4",
		"--gameDir", "/game",
		"--assetsDir", "/game/assets",
		"--assetIndex", "12",
		"--uuid", "069a79f4-44e9-4726-a5be-fca90e38aaf5",
		"--accessToken", "tok",
		"--userType", "legacy",
		"--versionType", "release",
		"--server", "play.hegemonia.net",
		"--port", "25565",
	}
	assert.Equal(t, want, args)
}

func TestBuildArgsClasspathSeparator(t *testing.T) {
	tests := []struct {
		goos string
		sep  string
	}{
		{"windows", ";"},
		{"darwin", ":"},
		{"linux", ":"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			args, err := BuildArgs(baseSpec(), mustProfile(t, tt.goos))
			require.NoError(t, err)
			i := indexOf(args, "-cp")
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, strings.Join(baseSpec().Classpath, tt.sep), args[i+1])
		})
	}
}

func TestBuildArgsHeapAndJVMArgs(t *testing.T) {
	s := baseSpec()
	s.MemoryMB = 256
	s.JVMArgs = `-XX:+UseG1GC -Dhegemonia.motd="hello world"`

	args, err := BuildArgs(s, mustProfile(t, "linux"))
	require.NoError(t, err)
	assert.Equal(t, []string{"-Xmx256M", "-Xms256M", "-XX:+UseG1GC", "-Dhegemonia.motd=hello world"}, args[:4])

	s.JVMArgs = `-Dbroken="unterminated`
	_, err = BuildArgs(s, mustProfile(t, "linux"))
	assert.Error(t, err)
}

func TestBuildArgsDefaults(t *testing.T) {
	s := baseSpec()
	s.UUID = ""
	s.AccessToken = ""

	args, err := BuildArgs(s, mustProfile(t, "linux"))
	require.NoError(t, err)

	assert.Equal(t, "0", args[indexOf(args, "--accessToken")+1])
	assert.Equal(t, OfflineUUID("Steve").String(), args[indexOf(args, "--uuid")+1])
	assert.Equal(t, -1, indexOf(args, "--server"))

	s.Server = "localhost"
	args, err = BuildArgs(s, mustProfile(t, "linux"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", args[indexOf(args, "--server")+1])
	assert.Equal(t, -1, indexOf(args, "--port"))
}

func TestBuildArgsRejectsBadInput(t *testing.T) {
	s := baseSpec()
	s.MemoryMB = 0
	_, err := BuildArgs(s, mustProfile(t, "linux"))
	assert.Error(t, err)

	s = baseSpec()
	s.MainClass = ""
	_, err = BuildArgs(s, mustProfile(t, "linux"))
	assert.Error(t, err)

	s = baseSpec()
	s.UUID = "not-a-uuid"
	_, err = BuildArgs(s, mustProfile(t, "linux"))
	assert.Error(t, err)
}

func TestOfflineUUID(t *testing.T) {
	a := OfflineUUID("Steve")
	assert.Equal(t, a, OfflineUUID("Steve"))
	assert.NotEqual(t, a, OfflineUUID("Alex"))
	assert.Equal(t, uuid.Version(3), a.Version())
	assert.Equal(t, uuid.RFC4122, a.Variant())
}

func TestMergeClasspath(t *testing.T) {
	got := MergeClasspath(
		[]string{"a.jar", "b.jar"},
		[]string{"c.jar", "a.jar", ""},
		[]string{"client.jar", "b.jar"},
	)
	assert.Equal(t, []string{"a.jar", "b.jar", "c.jar", "client.jar"}, got)
}

func TestRedactArgs(t *testing.T) {
	args := []string{"--username", "Steve", "--accessToken", "secret", "--userType", "msa"}
	got := RedactArgs(args)
	assert.Equal(t, []string{"--username", "Steve", "--accessToken", "***", "--userType", "msa"}, got)
	assert.Equal(t, "secret", args[3], "input must not be modified")

	assert.Equal(t, []string{"--accessToken"}, RedactArgs([]string{"--accessToken"}))
}

func TestCommandLineQuotes(t *testing.T) {
	line := CommandLine([]string{"/opt/My Java/bin/java", "-cp", "a.jar:b.jar"})
	assert.True(t, strings.HasPrefix(line, "'/opt/My Java/bin/java' -cp "), line)
	assert.Contains(t, line, "a.jar:b.jar")
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}
