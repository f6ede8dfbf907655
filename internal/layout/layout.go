// Package layout names every file and directory the launcher owns under the
// game directory.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	VersionsDir      = "versions"
	LibrariesDir     = "libraries"
	NativesDir       = "natives"
	AssetsDir        = "assets"
	AssetIndexesDir  = "indexes"
	AssetObjectsDir  = "objects"
	ModsDir          = "mods"
	ResourcePacksDir = "resourcepacks"
	RuntimeDir       = "runtime"
	LogsDir          = "logs"

	LaunchLogFile     = "launch.log"
	InstallRecordFile = "version.json"
	StdoutCaptureFile = "launcher-stdout.log"
	StderrCaptureFile = "launcher-stderr.log"
)

// Layout resolves paths inside one game directory. Nothing is created until
// Ensure is called; all paths are derived from manifest data.
type Layout struct {
	root string
}

// New returns the layout rooted at gameDir.
func New(gameDir string) *Layout {
	return &Layout{root: filepath.Clean(gameDir)}
}

// ==================== Root ====================

// Root returns the game directory.
func (l *Layout) Root() string {
	return l.root
}

// ==================== Version files ====================

// Versions returns the directory holding client jars.
func (l *Layout) Versions() string {
	return filepath.Join(l.root, VersionsDir)
}

// ClientJar returns versions/<id>.jar.
func (l *Layout) ClientJar(versionID string) string {
	return filepath.Join(l.Versions(), versionID+".jar")
}

// ==================== Libraries ====================

// Libraries returns the library repository root.
func (l *Layout) Libraries() string {
	return filepath.Join(l.root, LibrariesDir)
}

// Library returns the local path of a repository relative library path.
func (l *Layout) Library(relPath string) string {
	return filepath.Join(l.Libraries(), filepath.FromSlash(relPath))
}

// Natives returns the flat directory native libraries are extracted into.
func (l *Layout) Natives() string {
	return filepath.Join(l.root, NativesDir)
}

// ==================== Assets ====================

// Assets returns the asset store root passed to the game.
func (l *Layout) Assets() string {
	return filepath.Join(l.root, AssetsDir)
}

// AssetIndex returns assets/indexes/<id>.json.
func (l *Layout) AssetIndex(id string) string {
	return filepath.Join(l.Assets(), AssetIndexesDir, id+".json")
}

// AssetObject returns assets/objects/<hh>/<hash>.
func (l *Layout) AssetObject(hash string) string {
	prefix := hash
	if len(hash) >= 2 {
		prefix = hash[:2]
	}
	return filepath.Join(l.Assets(), AssetObjectsDir, prefix, hash)
}

// ==================== Content ====================

// Mods returns the mod directory scanned by the loader.
func (l *Layout) Mods() string {
	return filepath.Join(l.root, ModsDir)
}

// ResourcePacks returns the resource pack directory.
func (l *Layout) ResourcePacks() string {
	return filepath.Join(l.root, ResourcePacksDir)
}

// InstallRecord returns the modpack install record.
func (l *Layout) InstallRecord() string {
	return filepath.Join(l.root, InstallRecordFile)
}

// ==================== Runtime ====================

// Runtime returns the directory provisioned runtimes are unpacked into.
func (l *Layout) Runtime() string {
	return filepath.Join(l.root, RuntimeDir)
}

// ==================== Logs ====================

// LaunchLog returns the diagnostic log rewritten on every launch attempt.
func (l *Layout) LaunchLog() string {
	return filepath.Join(l.root, LaunchLogFile)
}

// Logs returns the directory for captured process output.
func (l *Layout) Logs() string {
	return filepath.Join(l.root, LogsDir)
}

// StdoutCapture returns the file the game's standard output goes to.
func (l *Layout) StdoutCapture() string {
	return filepath.Join(l.Logs(), StdoutCaptureFile)
}

// StderrCapture returns the file the game's standard error goes to.
func (l *Layout) StderrCapture() string {
	return filepath.Join(l.Logs(), StderrCaptureFile)
}

// ==================== Creation ====================

// Ensure creates the fixed directories that exist before any download. It is
// safe to call repeatedly and never removes anything.
func (l *Layout) Ensure() error {
	dirs := []string{
		l.root,
		l.Versions(),
		l.Libraries(),
		l.Natives(),
		filepath.Join(l.Assets(), AssetIndexesDir),
		filepath.Join(l.Assets(), AssetObjectsDir),
		l.Mods(),
		l.ResourcePacks(),
		l.Runtime(),
		l.Logs(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CountFiles returns the number of regular files in dir with the given
// extension. A missing directory counts as zero.
func CountFiles(dir, ext string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ext {
			n++
		}
	}
	return n
}
