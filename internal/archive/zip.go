package archive

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"
)

// extractZip unpacks every entry of a zip archive into destDir.
func extractZip(archivePath, destDir string, logger hclog.Logger) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer func() { _ = zr.Close() }()

	count := 0
	for _, entry := range zr.File {
		target, err := securePath(destDir, entry.Name)
		if err != nil {
			return err
		}

		mode := entry.Mode()
		switch {
		case entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/"):
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", entry.Name, err)
			}

		case mode&os.ModeSymlink != 0:
			linkname, err := readZipEntry(entry)
			if err != nil {
				return fmt.Errorf("reading link %s: %w", entry.Name, err)
			}
			if err := extractSymlink(destDir, target, linkname); err != nil {
				return fmt.Errorf("linking %s: %w", entry.Name, err)
			}

		default:
			perm := mode.Perm()
			if perm == 0 {
				perm = 0644
			}
			if err := copyZipEntry(entry, target, perm); err != nil {
				return fmt.Errorf("extracting %s: %w", entry.Name, err)
			}
			count++
		}
	}

	logger.Debug("✅ zip extracted", "files", count, "dest", destDir)
	return nil
}

func copyZipEntry(entry *zip.File, target string, perm os.FileMode) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return writeFile(target, perm, rc)
}

func readZipEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
