package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/meta"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// LoaderResult is what the mod loader contributes to a launch.
type LoaderResult struct {
	ProfileID string
	MainClass string
	Classpath []string
}

// LoaderResolver downloads the mod loader profile and its libraries.
type LoaderResolver struct {
	json         JSONFetcher
	files        FileFetcher
	layout       *layout.Layout
	profileURL   string
	defaultMaven string
	logger       hclog.Logger
}

// NewLoaderResolver creates a resolver for the profile at profileURL. Library
// coordinates without their own repository are fetched from defaultMaven.
func NewLoaderResolver(json JSONFetcher, files FileFetcher, l *layout.Layout, profileURL, defaultMaven string, logger hclog.Logger) *LoaderResolver {
	return &LoaderResolver{
		json:         json,
		files:        files,
		layout:       l,
		profileURL:   profileURL,
		defaultMaven: defaultMaven,
		logger:       logger.Named("loader"),
	}
}

// Resolve fetches the profile and every library it lists. Any failure is
// fatal: a partial loader classpath cannot start the game.
func (r *LoaderResolver) Resolve(ctx context.Context) (*LoaderResult, error) {
	var profile meta.LoaderProfile
	if err := r.json.FetchJSON(ctx, r.profileURL, &profile); err != nil {
		return nil, fmt.Errorf("fetching loader profile: %w", err)
	}
	if profile.MainClass == "" {
		return nil, fmt.Errorf("%w: loader profile %s has no main class", lerrors.ErrParse, profile.ID)
	}

	result := &LoaderResult{
		ProfileID: profile.ID,
		MainClass: profile.MainClass,
		Classpath: make([]string, 0, len(profile.Libraries)),
	}

	for _, lib := range profile.Libraries {
		rel := meta.CoordinatePath(lib.Name)
		url := joinURL(firstNonEmpty(lib.URL, r.defaultMaven), rel)
		dest := r.layout.Library(rel)

		var opts []fetch.Option
		if lib.SHA1 != "" {
			opts = append(opts, fetch.WithChecksum("sha1:"+lib.SHA1))
		}
		if err := r.files.Fetch(ctx, url, dest, opts...); err != nil {
			return nil, fmt.Errorf("fetching loader library %s: %w", lib.Name, err)
		}
		result.Classpath = append(result.Classpath, dest)
	}

	r.logger.Debug("🧵 loader resolved", "profile", profile.ID, "main_class", profile.MainClass, "libraries", len(result.Classpath))
	return result, nil
}

func joinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
