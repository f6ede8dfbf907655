package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/layout"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "resolver_test",
		Level: hclog.Trace,
	})
}

type recordingServer struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
}

func newRecordingServer(t *testing.T, routes map[string]string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.paths = append(rs.paths, r.URL.Path)
		rs.mu.Unlock()
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.paths...)
}

func TestResolveVersionNotFound(t *testing.T) {
	srv := newRecordingServer(t, map[string]string{
		"/manifest.json": `{"versions":[{"id":"1.20.3","url":"/v/1.20.3.json"}]}`,
	})

	r := NewVersionResolver(fetch.New(testLogger()), srv.URL+"/manifest.json", testLogger())
	_, err := r.Resolve(context.Background(), "1.20.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, lerrors.ErrVersionNotFound))
	assert.Equal(t, []string{"/manifest.json"}, srv.requests(), "only the manifest may be requested")
}

func TestResolveVersion(t *testing.T) {
	routes := map[string]string{}
	srv := newRecordingServer(t, routes)
	routes["/manifest.json"] = fmt.Sprintf(`{"versions":[
		{"id":"1.20.4","url":"%s/v/1.20.4.json"},
		{"id":"1.20.3","url":"%s/v/1.20.3.json"}]}`, srv.URL, srv.URL)
	routes["/v/1.20.4.json"] = `{
		"id":"1.20.4",
		"mainClass":"net.minecraft.client.main.Main",
		"assetIndex":{"id":"12","url":"https://example.test/12.json"},
		"downloads":{"client":{"url":"https://example.test/client.jar","sha1":"abc","size":1}},
		"libraries":[{"name":"org.ow2.asm:asm:9.6"}]
	}`

	r := NewVersionResolver(fetch.New(testLogger()), srv.URL+"/manifest.json", testLogger())
	md, err := r.Resolve(context.Background(), "1.20.4")
	require.NoError(t, err)
	assert.Equal(t, "net.minecraft.client.main.Main", md.MainClass)
	assert.Equal(t, "12", md.AssetIndex.ID)
	assert.Len(t, md.Libraries, 1)

	_, err = r.Resolve(context.Background(), "1.20.4")
	require.NoError(t, err)
	assert.Len(t, srv.requests(), 4, "each resolve performs two round-trips")
}

func TestResolveVersionMalformed(t *testing.T) {
	srv := newRecordingServer(t, map[string]string{"/manifest.json": `{"versions": 7}`})
	r := NewVersionResolver(fetch.New(testLogger()), srv.URL+"/manifest.json", testLogger())
	_, err := r.Resolve(context.Background(), "1.20.4")
	assert.True(t, errors.Is(err, lerrors.ErrParse), "got %v", err)
}

func TestLoaderResolverUsesOverrideAndDefault(t *testing.T) {
	routes := map[string]string{
		"/default/net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar": "loader",
		"/mirror/org/ow2/asm/asm/9.6/asm-9.6.jar":                             "asm",
	}
	srv := newRecordingServer(t, routes)
	routes["/meta/profile.json"] = fmt.Sprintf(`{
		"id":"fabric-loader-0.16.9-1.20.4",
		"mainClass":"net.fabricmc.loader.impl.launch.knot.KnotClient",
		"libraries":[
			{"name":"org.ow2.asm:asm:9.6","url":"%s/mirror"},
			{"name":"net.fabricmc:fabric-loader:0.16.9"}
		]}`, srv.URL)

	l := layout.New(t.TempDir())
	f := fetch.New(testLogger())
	r := NewLoaderResolver(f, f, l, srv.URL+"/meta/profile.json", srv.URL+"/default/", testLogger())

	res, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", res.MainClass)
	require.Len(t, res.Classpath, 2)
	assert.Equal(t, l.Library("org/ow2/asm/asm/9.6/asm-9.6.jar"), res.Classpath[0])
	assert.Equal(t, l.Library("net/fabricmc/fabric-loader/0.16.9/fabric-loader-0.16.9.jar"), res.Classpath[1])

	data, err := os.ReadFile(res.Classpath[0])
	require.NoError(t, err)
	assert.Equal(t, "asm", string(data))
	assert.Contains(t, srv.requests(), "/mirror/org/ow2/asm/asm/9.6/asm-9.6.jar")
}

func TestLoaderResolverLibraryFailureIsFatal(t *testing.T) {
	srv := newRecordingServer(t, map[string]string{
		"/profile.json": `{"id":"x","mainClass":"Main","libraries":[{"name":"org.example:gone:1.0"}]}`,
	})
	l := layout.New(t.TempDir())
	f := fetch.New(testLogger())
	r := NewLoaderResolver(f, f, l, srv.URL+"/profile.json", srv.URL, testLogger())

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lerrors.ErrHTTPStatus))
	_, statErr := os.Stat(filepath.Join(l.Libraries(), "org", "example", "gone", "1.0", "gone-1.0.jar"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://maven.fabricmc.net/a/b.jar", joinURL("https://maven.fabricmc.net/", "a/b.jar"))
	assert.Equal(t, "https://maven.fabricmc.net/a/b.jar", joinURL("https://maven.fabricmc.net", "a/b.jar"))
}
