package archive

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"
)

var nativeSuffixes = []string{".dll", ".so", ".dylib"}

// IsNativeLibrary reports whether an archive entry is a platform shared
// library.
func IsNativeLibrary(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range nativeSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// ExtractNatives copies the shared libraries inside a library jar into outDir
// at their relative paths, ignoring every other entry. A failing entry is
// logged and skipped. It returns the number of files written.
func ExtractNatives(archivePath, outDir string, logger hclog.Logger) (int, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening natives archive %s: %w", archivePath, err)
	}
	defer func() { _ = zr.Close() }()

	written := 0
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !IsNativeLibrary(entry.Name) {
			continue
		}

		target, err := securePath(outDir, entry.Name)
		if err != nil {
			logger.Warn("⚠️ skipping native entry", "archive", archivePath, "entry", entry.Name, "error", err)
			continue
		}
		if err := copyZipEntry(entry, target, 0755); err != nil {
			logger.Warn("⚠️ failed to extract native", "archive", archivePath, "entry", entry.Name, "error", err)
			continue
		}
		written++
	}

	logger.Debug("🧩 natives extracted", "archive", archivePath, "count", written)
	return written, nil
}
