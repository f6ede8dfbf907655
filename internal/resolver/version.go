// Package resolver turns pinned version identifiers into the metadata and
// classpath the launch needs.
package resolver

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/meta"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// JSONFetcher decodes a remote JSON document.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// FileFetcher downloads a URL to a path unless the path exists.
type FileFetcher interface {
	Fetch(ctx context.Context, url, dest string, opts ...fetch.Option) error
}

// VersionResolver finds a version's metadata through the version manifest.
// Nothing is cached: each Resolve performs two requests.
type VersionResolver struct {
	fetcher     JSONFetcher
	manifestURL string
	logger      hclog.Logger
}

// NewVersionResolver creates a resolver for the manifest at manifestURL.
func NewVersionResolver(fetcher JSONFetcher, manifestURL string, logger hclog.Logger) *VersionResolver {
	return &VersionResolver{
		fetcher:     fetcher,
		manifestURL: manifestURL,
		logger:      logger.Named("version"),
	}
}

// Manifest fetches the version manifest.
func (r *VersionResolver) Manifest(ctx context.Context) (*meta.VersionManifest, error) {
	var manifest meta.VersionManifest
	if err := r.fetcher.FetchJSON(ctx, r.manifestURL, &manifest); err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}
	r.logger.Debug("📜 version manifest loaded", "versions", len(manifest.Versions))
	return &manifest, nil
}

// Metadata fetches the metadata document of an entry found in the manifest.
func (r *VersionResolver) Metadata(ctx context.Context, ref meta.VersionRef) (*meta.VersionMetadata, error) {
	var md meta.VersionMetadata
	if err := r.fetcher.FetchJSON(ctx, ref.URL, &md); err != nil {
		return nil, fmt.Errorf("fetching metadata for %s: %w", ref.ID, err)
	}
	if md.MainClass == "" || md.Downloads.Client.URL == "" {
		return nil, fmt.Errorf("%w: metadata for %s lacks main class or client download", lerrors.ErrParse, ref.ID)
	}
	r.logger.Debug("📄 version metadata loaded", "id", md.ID, "libraries", len(md.Libraries), "assets", md.AssetIndex.ID)
	return &md, nil
}

// Resolve returns the metadata of version id, or ErrVersionNotFound when the
// manifest does not list it.
func (r *VersionResolver) Resolve(ctx context.Context, id string) (*meta.VersionMetadata, error) {
	manifest, err := r.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := manifest.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", lerrors.ErrVersionNotFound, id)
	}
	return r.Metadata(ctx, ref)
}
