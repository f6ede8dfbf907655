package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Format is an archive container plus its compression.
type Format struct {
	Container string // "zip" or "tar"
	Codec     string // codec name for tar, empty for zip
}

var (
	FormatZip    = Format{Container: "zip"}
	FormatTar    = Format{Container: "tar", Codec: CodecNone}
	FormatTarGz  = Format{Container: "tar", Codec: CodecGzip}
	FormatTarBz2 = Format{Container: "tar", Codec: CodecBzip2}
)

func (f Format) String() string {
	if f.Container == "zip" {
		return "zip"
	}
	if f.Codec == CodecNone || f.Codec == "" {
		return "tar"
	}
	return "tar." + f.Codec
}

// FormatFromName picks the format from a file name or bare extension such as
// "runtime.tar.gz", "tgz" or "zip".
func FormatFromName(name string) (Format, error) {
	lower := strings.ToLower(name)
	switch {
	case lower == "zip" || strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".jar"):
		return FormatZip, nil
	case lower == "tar.gz" || lower == "tgz" || strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz, nil
	case lower == "tar.bz2" || lower == "tbz2" || strings.HasSuffix(lower, ".tar.bz2") || strings.HasSuffix(lower, ".tbz2"):
		return FormatTarBz2, nil
	case lower == "tar" || strings.HasSuffix(lower, ".tar"):
		return FormatTar, nil
	default:
		return Format{}, fmt.Errorf("unsupported archive format: %s", name)
	}
}

// maxEntryBytes caps a single extracted file.
const maxEntryBytes = 1 << 30

// Extract unpacks the whole archive at archivePath into destDir, keeping file
// modes and symlinks. Entries that would land outside destDir are rejected.
func Extract(archivePath, destDir string, format Format, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	logger.Debug("📦 extracting archive", "archive", archivePath, "format", format.String(), "dest", destDir)

	switch format.Container {
	case "zip":
		return extractZip(archivePath, destDir, logger)
	case "tar":
		codec, err := Get(format.Codec)
		if err != nil {
			return err
		}
		f, err := os.Open(archivePath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer func() { _ = f.Close() }()

		r, err := codec.Decompress(f)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()
		return extractTar(r, destDir, logger)
	default:
		return fmt.Errorf("unsupported archive container: %q", format.Container)
	}
}

// securePath joins name onto destDir and rejects results outside destDir.
func securePath(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("absolute path in archive: %s", name)
	}
	target := filepath.Join(destDir, clean)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes destination: %s", name)
	}
	return target, nil
}

// writeFile copies r into path with the given mode, creating parents.
func writeFile(path string, mode os.FileMode, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	n, err := io.Copy(out, io.LimitReader(r, maxEntryBytes+1))
	if err != nil {
		return err
	}
	if n > maxEntryBytes {
		return fmt.Errorf("entry exceeds %d bytes", int64(maxEntryBytes))
	}
	return nil
}
