// Package modpack installs the server's mod set and resource pack from its
// CDN and reports what is installed.
package modpack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hegemonia/launcher/internal/layout"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// placeholderChecksum marks manifest entries published without a hash.
const placeholderChecksum = "placeholder"

// Manifest is the modpack description served by the CDN.
type Manifest struct {
	Version          string        `json:"version"`
	MinecraftVersion string        `json:"minecraft_version"`
	FabricVersion    string        `json:"fabric_version"`
	Mods             []Mod         `json:"mods"`
	ResourcePack     *ResourcePack `json:"resource_pack,omitempty"`
}

// Mod is one jar of the pack.
type Mod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	FileName string `json:"file_name"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
	Required bool   `json:"required"`
}

// ResourcePack is the pack's texture archive.
type ResourcePack struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	FileName string `json:"file_name"`
	SHA256   string `json:"sha256"`
	Size     int64  `json:"size"`
}

// checksum returns the fetch checksum for a published sha256, or "" when
// none was published.
func checksum(sha256 string) string {
	s := strings.TrimSpace(sha256)
	if s == "" || strings.EqualFold(s, placeholderChecksum) {
		return ""
	}
	return "sha256:" + strings.ToLower(s)
}

// safeFileName rejects names that would leave the target directory.
func safeFileName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("unsafe file name %q", name)
	}
	return nil
}

// InstallRecord is written to version.json after an install.
type InstallRecord struct {
	PackVersion      string    `json:"pack_version"`
	MinecraftVersion string    `json:"minecraft_version"`
	FabricVersion    string    `json:"fabric_version"`
	InstalledAt      time.Time `json:"installed_at"`
}

// ReadRecord loads version.json from the game directory.
func ReadRecord(l *layout.Layout) (*InstallRecord, error) {
	data, err := os.ReadFile(l.InstallRecord())
	if err != nil {
		return nil, err
	}
	var rec InstallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", lerrors.ErrParse, l.InstallRecord(), err)
	}
	return &rec, nil
}

func writeRecord(l *layout.Layout, rec InstallRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	tmp := l.InstallRecord() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	if err := os.Rename(tmp, l.InstallRecord()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	return nil
}
