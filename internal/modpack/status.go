package modpack

import (
	"path/filepath"

	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/meta"
)

// ResourcePackFile is the resource pack name the game options refer to.
const ResourcePackFile = "hegemonia.zip"

// Status describes what is installed in a game directory.
type Status struct {
	ClientInstalled       bool   `json:"minecraft_installed"`
	LoaderInstalled       bool   `json:"fabric_installed"`
	ModsInstalled         bool   `json:"mods_installed"`
	ModCount              int    `json:"mod_count"`
	ResourcePackInstalled bool   `json:"resource_pack_installed"`
	RuntimeInstalled      bool   `json:"runtime_installed"`
	PackVersion           string `json:"pack_version,omitempty"`
	NeedsUpdate           bool   `json:"needs_update"`
}

// CheckStatus inspects the game directory without touching the network.
// The runtime is not inspected here; callers fill RuntimeInstalled.
func CheckStatus(l *layout.Layout, gameVersion, loaderVersion string) Status {
	loaderJar := l.Library(meta.CoordinatePath("net.fabricmc:fabric-loader:" + loaderVersion))

	s := Status{
		ClientInstalled:       layout.Exists(l.ClientJar(gameVersion)),
		LoaderInstalled:       layout.Exists(loaderJar),
		ModCount:              layout.CountFiles(l.Mods(), ".jar"),
		ResourcePackInstalled: layout.Exists(filepath.Join(l.ResourcePacks(), ResourcePackFile)),
	}
	s.ModsInstalled = s.ModCount > 0

	rec, err := ReadRecord(l)
	if err == nil {
		s.PackVersion = rec.PackVersion
	}
	s.NeedsUpdate = !s.ModsInstalled || !s.ResourcePackInstalled || err != nil ||
		rec.MinecraftVersion != gameVersion
	return s
}
