// Package meta models the upstream version, library, asset and loader
// documents, and the pure functions that select and place their files.
package meta

import "strings"

// VersionManifest is the top level index of published game versions.
type VersionManifest struct {
	Latest   map[string]string `json:"latest,omitempty"`
	Versions []VersionRef      `json:"versions"`
}

// VersionRef points at the metadata document of one version.
type VersionRef struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
}

// Find returns the entry with the given id.
func (m *VersionManifest) Find(id string) (VersionRef, bool) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return VersionRef{}, false
}

// VersionMetadata describes everything one game version needs to run.
type VersionMetadata struct {
	ID         string           `json:"id"`
	Type       string           `json:"type,omitempty"`
	Assets     string           `json:"assets,omitempty"`
	AssetIndex AssetIndexRef    `json:"assetIndex"`
	Downloads  VersionDownloads `json:"downloads"`
	Libraries  []Library        `json:"libraries"`
	MainClass  string           `json:"mainClass"`
}

// VersionDownloads holds the client and server artifacts of a version.
type VersionDownloads struct {
	Client Download  `json:"client"`
	Server *Download `json:"server,omitempty"`
}

// Download is a single downloadable file.
type Download struct {
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// AssetIndexRef identifies and locates an asset index document.
type AssetIndexRef struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
}

// Library is one dependency of the game client.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

// LibraryDownloads lists the main artifact and per-platform classifiers.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a library file with its repository relative path.
type Artifact struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Artifact returns the main artifact, if the library declares one.
func (l Library) Artifact() *Artifact {
	if l.Downloads == nil || l.Downloads.Artifact == nil || l.Downloads.Artifact.URL == "" {
		return nil
	}
	return l.Downloads.Artifact
}

// NativeClassifier returns the classifier artifact carrying native code for
// the given OS, substituting ${arch} with the pointer width ("64" or "32").
func (l Library) NativeClassifier(osName, archBits string) (*Artifact, bool) {
	if l.Downloads == nil || len(l.Natives) == 0 {
		return nil, false
	}
	key, ok := l.Natives[osName]
	if !ok {
		return nil, false
	}
	key = strings.ReplaceAll(key, "${arch}", archBits)
	art, ok := l.Downloads.Classifiers[key]
	if !ok || art.URL == "" {
		return nil, false
	}
	return &art, true
}

// IsNativeArtifact reports whether the library coordinate carries a
// natives-* classifier, the form newer metadata uses for split natives.
func (l Library) IsNativeArtifact() bool {
	parts := strings.Split(l.Name, ":")
	return len(parts) >= 4 && strings.HasPrefix(parts[3], "natives-")
}

// Rule is one entry of a library's platform selection list.
type Rule struct {
	Action Action        `json:"action"`
	OS     *OSConstraint `json:"os,omitempty"`
}

// OSConstraint restricts a rule to a single operating system. Arch alone
// never matches; such rules are ignored by Applies.
type OSConstraint struct {
	Name string `json:"name,omitempty"`
	Arch string `json:"arch,omitempty"`
}

// Action is the decision a rule contributes.
type Action string

const (
	Allow Action = "allow"
	Deny  Action = "disallow"
)

// AssetIndex maps logical asset names to content addressed objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is a single blob in the asset store.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// ObjectPath returns the store relative location "<hh>/<hash>".
func (o AssetObject) ObjectPath() string {
	if len(o.Hash) < 2 {
		return o.Hash
	}
	return o.Hash[:2] + "/" + o.Hash
}

// LoaderProfile is the mod loader's launch profile for one game version.
type LoaderProfile struct {
	ID           string          `json:"id"`
	InheritsFrom string          `json:"inheritsFrom,omitempty"`
	MainClass    string          `json:"mainClass"`
	Libraries    []LoaderLibrary `json:"libraries"`
}

// LoaderLibrary is a Maven coordinate plus an optional repository root.
type LoaderLibrary struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
}
