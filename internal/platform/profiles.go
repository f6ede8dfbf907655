package platform

import (
	"fmt"
	"path"
	"strings"
)

// Windows is the Microsoft Windows profile.
type Windows struct{ base }

func (Windows) Name() string              { return "windows" }
func (Windows) PathListSeparator() string { return ";" }
func (Windows) JavaBinary() string        { return "java.exe" }
func (Windows) RuntimeArchiveExt() string { return "zip" }

func winJoin(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		if e == "" {
			continue
		}
		if i > 0 {
			e = strings.Trim(e, `\/`)
		} else {
			e = strings.TrimRight(e, `\/`)
		}
		parts = append(parts, e)
	}
	return strings.Join(parts, `\`)
}

func (w Windows) DefaultGameDir(env Env) string {
	if appData := env.get("APPDATA"); appData != "" {
		return winJoin(appData, ".hegemonia")
	}
	return winJoin(env.Home, "AppData", "Roaming", ".hegemonia")
}

func (w Windows) VendorRuntimes(env Env) []string {
	var out []string
	if local := env.get("LOCALAPPDATA"); local != "" {
		out = append(out, winJoin(local,
			`Packages\Microsoft.4297127D64EC6_8wekyb3d8bbwe\LocalCache\Local\runtime`,
			`java-runtime-gamma\windows-x64\java-runtime-gamma\bin\javaw.exe`))
	}
	if pf86 := env.get("ProgramFiles(x86)"); pf86 != "" {
		out = append(out, winJoin(pf86,
			`Minecraft Launcher\runtime\java-runtime-gamma\windows-x64\java-runtime-gamma\bin\javaw.exe`))
	}
	return out
}

func (w Windows) CommonRuntimes(env Env, major int) []string {
	pf := env.get("ProgramFiles")
	if pf == "" {
		pf = `C:\Program Files`
	}
	v := fmt.Sprint(major)
	dirs := []string{
		`Eclipse Adoptium\jdk-` + v + `.0.13.11-hotspot`,
		`Eclipse Adoptium\jdk-` + v + `.0.12.7-hotspot`,
		`Eclipse Adoptium\jdk-` + v + `.0.11.9-hotspot`,
		`Eclipse Adoptium\jdk-` + v,
		`Eclipse Adoptium\jre-` + v,
		`Java\jdk-` + v,
		`Microsoft\jdk-` + v + `.0.13.11-hotspot`,
		`Microsoft\jdk-` + v,
		`Java\jre-` + v,
		`Zulu\zulu-` + v,
		`Amazon Corretto\jdk` + v,
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, winJoin(pf, d, `bin\java.exe`))
	}
	return out
}

func (Windows) RuntimeExecutables() []string {
	return []string{"bin/java.exe"}
}

func (Windows) IsShim(p string) bool {
	lower := strings.ToLower(strings.ReplaceAll(p, "/", `\`))
	return strings.Contains(lower, `common files\oracle\java\javapath`) ||
		strings.Contains(lower, `\windowsapps\`)
}

func (w Windows) RuntimeDownloadURL(major int) string {
	return fmt.Sprintf(adoptiumAPI, major, "windows", w.Arch())
}

// MacOS is the Apple macOS profile.
type MacOS struct{ base }

func (MacOS) Name() string              { return "osx" }
func (MacOS) PathListSeparator() string { return ":" }
func (MacOS) JavaBinary() string        { return "java" }
func (MacOS) RuntimeArchiveExt() string { return "tar.gz" }

func (MacOS) DefaultGameDir(env Env) string {
	return path.Join(env.Home, "Library", "Application Support", "hegemonia")
}

func (m MacOS) VendorRuntimes(env Env) []string {
	root := path.Join(env.Home, "Library", "Application Support", "minecraft", "runtime", "java-runtime-gamma")
	platformDir := "mac-os"
	if m.goarch == "arm64" {
		platformDir = "mac-os-arm64"
	}
	return []string{
		path.Join(root, platformDir, "java-runtime-gamma", "jre.bundle", "Contents", "Home", "bin", "java"),
	}
}

func (MacOS) CommonRuntimes(env Env, major int) []string {
	v := fmt.Sprint(major)
	vms := "/Library/Java/JavaVirtualMachines"
	return []string{
		path.Join(vms, "temurin-"+v+".jdk", "Contents", "Home", "bin", "java"),
		path.Join(vms, "temurin-"+v+".jre", "Contents", "Home", "bin", "java"),
		path.Join(vms, "microsoft-"+v+".jdk", "Contents", "Home", "bin", "java"),
		path.Join(vms, "zulu-"+v+".jdk", "Contents", "Home", "bin", "java"),
		path.Join(vms, "amazon-corretto-"+v+".jdk", "Contents", "Home", "bin", "java"),
		path.Join(vms, "jdk-"+v+".jdk", "Contents", "Home", "bin", "java"),
		"/opt/homebrew/opt/openjdk@" + v + "/bin/java",
		"/usr/local/opt/openjdk@" + v + "/bin/java",
	}
}

func (MacOS) RuntimeExecutables() []string {
	return []string{"Contents/Home/bin/java", "bin/java"}
}

func (MacOS) IsShim(p string) bool {
	return p == "/usr/bin/java"
}

func (m MacOS) RuntimeDownloadURL(major int) string {
	return fmt.Sprintf(adoptiumAPI, major, "mac", m.Arch())
}

// Linux is the Linux (and other Unix) profile.
type Linux struct{ base }

func (Linux) Name() string              { return "linux" }
func (Linux) PathListSeparator() string { return ":" }
func (Linux) JavaBinary() string        { return "java" }
func (Linux) RuntimeArchiveExt() string { return "tar.gz" }

func (Linux) DefaultGameDir(env Env) string {
	return path.Join(env.Home, ".hegemonia")
}

func (Linux) VendorRuntimes(env Env) []string {
	return []string{
		path.Join(env.Home, ".minecraft", "runtime", "java-runtime-gamma", "linux", "java-runtime-gamma", "bin", "java"),
	}
}

func (l Linux) CommonRuntimes(env Env, major int) []string {
	v := fmt.Sprint(major)
	jvm := "/usr/lib/jvm"
	return []string{
		path.Join(jvm, "temurin-"+v+"-jdk-"+debArch(l.goarch), "bin", "java"),
		path.Join(jvm, "temurin-"+v+"-jre-"+debArch(l.goarch), "bin", "java"),
		path.Join(jvm, "java-"+v+"-openjdk-"+debArch(l.goarch), "bin", "java"),
		path.Join(jvm, "java-"+v+"-openjdk", "bin", "java"),
		path.Join(jvm, "jre-"+v+"-openjdk", "bin", "java"),
		path.Join(jvm, "java-"+v, "bin", "java"),
		path.Join(jvm, "zulu"+v, "bin", "java"),
		path.Join(jvm, "msopenjdk-"+v+"-"+debArch(l.goarch), "bin", "java"),
	}
}

func debArch(goarch string) string {
	if goarch == "386" {
		return "i386"
	}
	return goarch
}

func (Linux) RuntimeExecutables() []string {
	return []string{"bin/java"}
}

func (Linux) IsShim(string) bool { return false }

func (l Linux) RuntimeDownloadURL(major int) string {
	return fmt.Sprintf(adoptiumAPI, major, "linux", l.Arch())
}
