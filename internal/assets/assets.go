// Package assets mirrors a content addressed asset index into the game
// directory.
package assets

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/meta"
	"github.com/hegemonia/launcher/internal/progress"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// Fetcher downloads a URL to a path unless the path exists.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, opts ...fetch.Option) error
}

// Result summarises one Sync.
type Result struct {
	Total   int
	Present int
	Fetched int
	Failed  int
}

// Syncer downloads missing asset objects.
type Syncer struct {
	fetcher       Fetcher
	layout        *layout.Layout
	baseURL       string
	workers       int
	progressEvery int
	reporter      progress.Reporter
	logger        hclog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithWorkers bounds concurrent object downloads.
func WithWorkers(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgressEvery reports progress after every n completed objects.
func WithProgressEvery(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.progressEvery = n
		}
	}
}

// WithReporter sets the progress sink.
func WithReporter(r progress.Reporter) Option {
	return func(s *Syncer) { s.reporter = r }
}

// NewSyncer creates a Syncer fetching objects from baseURL/<hh>/<hash>.
func NewSyncer(fetcher Fetcher, l *layout.Layout, baseURL string, logger hclog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		fetcher:       fetcher,
		layout:        l,
		baseURL:       strings.TrimRight(baseURL, "/"),
		workers:       8,
		progressEvery: 50,
		reporter:      progress.Nop,
		logger:        logger.Named("assets"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync makes sure the index and every object it lists exist locally. A
// failure to obtain the index is fatal; a failed object is a warning.
func (s *Syncer) Sync(ctx context.Context, ref meta.AssetIndexRef) (*Result, error) {
	index, err := s.loadIndex(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Deterministic order, de-duplicated by hash.
	seen := make(map[string]bool, len(index.Objects))
	var missing []meta.AssetObject
	result := &Result{}
	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := index.Objects[name]
		if obj.Hash == "" || seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true
		result.Total++
		if !validHash(obj.Hash) {
			result.Failed++
			s.logger.Warn("⚠️ asset has a malformed hash", "name", name, "hash", obj.Hash)
			continue
		}
		if layout.Exists(s.layout.AssetObject(obj.Hash)) {
			result.Present++
			continue
		}
		missing = append(missing, obj)
	}

	s.logger.Info("🎨 syncing assets", "index", ref.ID, "objects", result.Total, "missing", len(missing))
	s.reporter.Report(progress.Event{
		Stage:   progress.StageAssets,
		Message: "Downloading assets",
		Current: result.Present,
		Total:   result.Total,
	})

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, obj := range missing {
		g.Go(func() error {
			url := s.baseURL + "/" + obj.ObjectPath()
			err := s.fetcher.Fetch(gctx, url, s.layout.AssetObject(obj.Hash), fetch.WithChecksum("sha1:"+obj.Hash))

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				result.Failed++
				s.logger.Warn("⚠️ asset download failed", "hash", obj.Hash, "error", err)
			} else {
				result.Fetched++
			}
			if done%s.progressEvery == 0 || done == len(missing) {
				s.reporter.Report(progress.Event{
					Stage:   progress.StageAssets,
					Message: "Downloading assets",
					Current: result.Present + done,
					Total:   result.Total,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if result.Failed > 0 {
		s.reporter.Report(progress.Event{
			Stage:   progress.StageWarning,
			Message: fmt.Sprintf("%d assets could not be downloaded", result.Failed),
			Current: result.Failed,
			Total:   result.Total,
		})
	}
	s.logger.Debug("✅ assets synced", "fetched", result.Fetched, "failed", result.Failed, "present", result.Present)
	return result, nil
}

// validHash reports whether h is a lowercase SHA-1 hex digest, the only form
// that maps to a path inside the object store.
func validHash(h string) bool {
	if len(h) != 40 || strings.ToLower(h) != h {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}

func (s *Syncer) loadIndex(ctx context.Context, ref meta.AssetIndexRef) (*meta.AssetIndex, error) {
	path := s.layout.AssetIndex(ref.ID)

	var opts []fetch.Option
	if ref.SHA1 != "" {
		opts = append(opts, fetch.WithChecksum("sha1:"+ref.SHA1))
	}
	if err := s.fetcher.Fetch(ctx, ref.URL, path, opts...); err != nil {
		return nil, fmt.Errorf("fetching asset index %s: %w", ref.ID, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading asset index: %w", lerrors.ErrFilesystem, err)
	}
	var index meta.AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: asset index %s: %w", lerrors.ErrParse, ref.ID, err)
	}
	return &index, nil
}
