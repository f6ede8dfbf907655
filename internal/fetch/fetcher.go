// Package fetch downloads remote documents and files into the game directory.
//
// Fetch is idempotent: a destination that already exists is treated as done
// and no request is sent. New files are streamed to a temporary sibling and
// renamed into place, so a final path never holds a partial download.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

const (
	// DefaultTimeout bounds a single request, body included.
	DefaultTimeout = 2 * time.Minute
	// DefaultUserAgent identifies the launcher to upstream hosts.
	DefaultUserAgent = "hegemonia-launcher"

	progressStep = 512 * 1024
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s returned %d %s", lerrors.ErrHTTPStatus, e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return lerrors.ErrHTTPStatus
}

// ProgressFunc receives bytes transferred so far and the expected total, or
// -1 when the server did not announce a length.
type ProgressFunc func(current, total int64)

// Fetcher performs HTTP GETs on behalf of every provisioning stage.
type Fetcher struct {
	client     *http.Client
	logger     hclog.Logger
	userAgent  string
	validation ValidationLevel
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client, for tests and proxies.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout sets the per request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d, Transport: f.client.Transport}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithValidation sets the checksum mismatch policy.
func WithValidation(level ValidationLevel) FetcherOption {
	return func(f *Fetcher) { f.validation = level }
}

// New creates a Fetcher with a DefaultTimeout client.
func New(logger hclog.Logger, opts ...FetcherOption) *Fetcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	f := &Fetcher{
		client:     &http.Client{Timeout: DefaultTimeout},
		logger:     logger.Named("fetch"),
		userAgent:  DefaultUserAgent,
		validation: ValidationStandard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Validation returns the configured checksum policy.
func (f *Fetcher) Validation() ValidationLevel {
	return f.validation
}

type request struct {
	checksum string
	progress ProgressFunc
}

// Option tunes a single Fetch call.
type Option func(*request)

// WithChecksum verifies the download against "algo:hex" or a bare digest.
// An empty value disables verification for the call.
func WithChecksum(sum string) Option {
	return func(r *request) { r.checksum = sum }
}

// WithProgress reports transfer progress for large files.
func WithProgress(fn ProgressFunc) Option {
	return func(r *request) { r.progress = fn }
}

// Fetch downloads url to dest unless dest already exists.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, opts ...Option) (err error) {
	if _, statErr := os.Stat(dest); statErr == nil {
		f.logger.Trace("⏭️ already present", "path", dest)
		return nil
	}

	var req request
	for _, opt := range opts {
		opt(&req)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", lerrors.ErrFilesystem, dir, err)
	}

	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", lerrors.ErrFilesystem, dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	var (
		algo     ChecksumAlgorithm
		expected string
		hasher   io.Writer = io.Discard
		digest   interface{ Sum([]byte) []byte }
	)
	if req.checksum != "" && f.validation != ValidationNone {
		a, want, parseErr := ParseChecksum(req.checksum)
		switch {
		case parseErr == nil:
			h := a.New()
			algo, expected, hasher, digest = a, want, h, h
		case f.validation == ValidationStrict:
			_ = tmp.Close()
			return fmt.Errorf("%w: %s: %w", lerrors.ErrChecksumMismatch, url, parseErr)
		default:
			f.logger.Debug("⚠️ ignoring unusable checksum", "url", url, "error", parseErr)
		}
	}

	var body io.Reader = resp.Body
	if req.progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: req.progress}
	}

	if _, err = io.Copy(io.MultiWriter(tmp, hasher), body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: reading %s: %w", lerrors.ErrNetwork, url, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: writing %s: %w", lerrors.ErrFilesystem, tmpName, err)
	}
	if pr, ok := body.(*progressReader); ok {
		pr.finish()
	}

	if digest != nil {
		actual := fmt.Sprintf("%x", digest.Sum(nil))
		if actual != expected {
			if f.validation.rejectsMismatch() {
				err = fmt.Errorf("%w: %s: expected %s:%s, got %s", lerrors.ErrChecksumMismatch, url, algo, expected, actual)
				return err
			}
			if f.validation == ValidationRelaxed {
				f.logger.Warn("⚠️ checksum mismatch, keeping file", "url", url, "expected", expected, "actual", actual)
			} else {
				f.logger.Debug("checksum mismatch, keeping file", "url", url)
			}
		}
	}

	if err = os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("%w: moving %s into place: %w", lerrors.ErrFilesystem, dest, err)
	}

	f.logger.Debug("📥 downloaded", "url", url, "path", dest)
	return nil
}

// FetchJSON GETs url and decodes the JSON body into v. Nothing is written to
// disk.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, v any) error {
	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			return fmt.Errorf("%w: reading %s: %w", lerrors.ErrNetwork, url, err)
		}
		return fmt.Errorf("%w: %s: %w", lerrors.ErrParse, url, err)
	}
	return nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", lerrors.ErrNetwork, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Trace("🌐 GET", "url", url)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", lerrors.ErrNetwork, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, nil
}

type progressReader struct {
	r        io.Reader
	total    int64
	current  int64
	reported int64
	fn       ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.current += int64(n)
	if p.current-p.reported >= progressStep {
		p.reported = p.current
		p.fn(p.current, p.total)
	}
	return n, err
}

func (p *progressReader) finish() {
	if p.reported != p.current || p.current == 0 {
		p.reported = p.current
		p.fn(p.current, p.total)
	}
}
