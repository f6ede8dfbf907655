package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// extractTar unpacks a decompressed tar stream into destDir.
func extractTar(r io.Reader, destDir string, logger hclog.Logger) error {
	tr := tar.NewReader(r)
	count := 0

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", header.Name, err)
			}

		case tar.TypeReg:
			if header.Size < 0 || header.Size > maxEntryBytes {
				return fmt.Errorf("invalid file size for %s: %d", header.Name, header.Size)
			}
			mode := os.FileMode(header.Mode).Perm()
			if mode == 0 {
				mode = 0644
			}
			if err := writeFile(target, mode, tr); err != nil {
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
			count++

		case tar.TypeSymlink:
			if err := extractSymlink(destDir, target, header.Linkname); err != nil {
				return fmt.Errorf("linking %s: %w", header.Name, err)
			}

		case tar.TypeLink:
			source, err := securePath(destDir, header.Linkname)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Link(source, target); err != nil {
				return fmt.Errorf("hard linking %s: %w", header.Name, err)
			}

		default:
			logger.Trace("skipping tar entry", "name", header.Name, "type", string(header.Typeflag))
		}
	}

	logger.Debug("✅ tar extracted", "files", count, "dest", destDir)
	return nil
}

// extractSymlink creates target -> linkname, refusing links that resolve
// outside destDir.
func extractSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(destDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("symlink target escapes destination: %s", linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	_ = os.Remove(target)
	return os.Symlink(linkname, target)
}
