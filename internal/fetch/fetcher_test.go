package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "fetch_test",
		Level: hclog.Trace,
	})
}

func sha1Hex(data string) string {
	sum := sha1.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

func countingServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchIsIdempotent(t *testing.T) {
	srv, hits := countingServer(t, "client jar bytes", http.StatusOK)
	f := New(testLogger())
	dest := filepath.Join(t.TempDir(), "versions", "1.20.4.jar")

	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/client.jar", dest))
	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/client.jar", dest))

	assert.Equal(t, int32(1), hits.Load(), "second fetch must not hit the network")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "client jar bytes", string(data))
}

func TestFetchNon2xx(t *testing.T) {
	srv, _ := countingServer(t, "nope", http.StatusNotFound)
	f := New(testLogger())
	dest := filepath.Join(t.TempDir(), "missing.jar")

	err := f.Fetch(context.Background(), srv.URL+"/missing.jar", dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lerrors.ErrHTTPStatus))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "failed fetch must not leave a file behind")
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(dest), ".missing.jar.part-*"))
	assert.Empty(t, leftovers)
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(testLogger()).Fetch(context.Background(), url+"/x", filepath.Join(t.TempDir(), "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lerrors.ErrNetwork))
}

func TestFetchChecksumPolicy(t *testing.T) {
	const body = "asset payload"
	good := "sha1:" + sha1Hex(body)
	bad := "sha1:" + sha1Hex("something else")

	tests := []struct {
		name      string
		level     ValidationLevel
		checksum  string
		wantErr   error
		wantSaved bool
	}{
		{"matching digest", ValidationStandard, good, nil, true},
		{"bare digest", ValidationStrict, sha1Hex(body), nil, true},
		{"standard rejects mismatch", ValidationStandard, bad, lerrors.ErrChecksumMismatch, false},
		{"strict rejects mismatch", ValidationStrict, bad, lerrors.ErrChecksumMismatch, false},
		{"relaxed keeps mismatch", ValidationRelaxed, bad, nil, true},
		{"minimal keeps mismatch", ValidationMinimal, bad, nil, true},
		{"none skips hashing", ValidationNone, bad, nil, true},
		{"standard ignores placeholder", ValidationStandard, "placeholder", nil, true},
		{"strict rejects placeholder", ValidationStrict, "placeholder", lerrors.ErrChecksumMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, body, http.StatusOK)
			f := New(testLogger(), WithValidation(tt.level))
			dest := filepath.Join(t.TempDir(), "objects", "ab", "blob")

			err := f.Fetch(context.Background(), srv.URL, dest, WithChecksum(tt.checksum))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}

			_, statErr := os.Stat(dest)
			assert.Equal(t, tt.wantSaved, statErr == nil)
		})
	}
}

func TestFetchProgress(t *testing.T) {
	body := strings.Repeat("x", 3*progressStep+10)
	srv, _ := countingServer(t, body, http.StatusOK)

	var calls []int64
	err := New(testLogger()).Fetch(context.Background(), srv.URL, filepath.Join(t.TempDir(), "big"),
		WithProgress(func(current, total int64) { calls = append(calls, current) }))
	require.NoError(t, err)

	require.NotEmpty(t, calls)
	assert.Equal(t, int64(len(body)), calls[len(calls)-1])
	for i := 1; i < len(calls); i++ {
		assert.Greater(t, calls[i], calls[i-1])
	}
}

func TestFetchJSON(t *testing.T) {
	srv, _ := countingServer(t, `{"versions":[{"id":"1.20.4","url":"x"}]}`, http.StatusOK)
	var doc struct {
		Versions []struct {
			ID string `json:"id"`
		} `json:"versions"`
	}
	require.NoError(t, New(testLogger()).FetchJSON(context.Background(), srv.URL, &doc))
	require.Len(t, doc.Versions, 1)
	assert.Equal(t, "1.20.4", doc.Versions[0].ID)

	broken, _ := countingServer(t, `{"versions":[`, http.StatusOK)
	err := New(testLogger()).FetchJSON(context.Background(), broken.URL, &doc)
	assert.True(t, errors.Is(err, lerrors.ErrParse), "got %v", err)
}
