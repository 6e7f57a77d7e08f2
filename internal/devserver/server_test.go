package devserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	sioclient "github.com/zishang520/socket.io-client-go/socket"
)

func buildDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html><body><h1>Hi</h1></body></html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "style"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style", "index.min.css"), []byte("a{}"), 0o644))
	return dir
}

func get(t *testing.T, h http.Handler, target string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Result()
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(data)
}

func TestInject(t *testing.T) {
	t.Run("before the closing body tag", func(t *testing.T) {
		out := string(inject([]byte("<body><p>x</p></BODY>")))
		assert.True(t, strings.HasPrefix(out, "<body><p>x</p><script src="))
		assert.True(t, strings.HasSuffix(out, "</script></BODY>"))
	})

	t.Run("appended without a body tag", func(t *testing.T) {
		out := string(inject([]byte("<p>x</p>")))
		assert.True(t, strings.HasPrefix(out, "<p>x</p><script"))
		assert.Contains(t, out, `.on("reload"`)
	})
}

func TestStatic(t *testing.T) {
	s := New(buildDir(t), "127.0.0.1:0")
	h := s.Handler()

	t.Run("index gets the reload client", func(t *testing.T) {
		res := get(t, h, "/")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
		page := body(t, res)
		assert.Contains(t, page, "<h1>Hi</h1><script src=\""+ClientScriptURL)
		assert.True(t, strings.HasSuffix(page, "</body></html>"))
	})

	t.Run("other files are served unchanged", func(t *testing.T) {
		res := get(t, h, "/style/index.min.css")
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "a{}", body(t, res))
	})

	t.Run("missing files are 404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, h, "/nope.html").StatusCode)
		assert.Equal(t, http.StatusNotFound, get(t, h, "/nope.js").StatusCode)
	})
}

func TestBroadcastReachesClients(t *testing.T) {
	// --- Arrange ---
	ctx := ctxlog.Discard(context.Background())
	s := New(buildDir(t), "127.0.0.1:0")
	addr, err := s.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(ctx) })

	opts := sioclient.DefaultOptions()
	opts.SetPath(SocketPath)
	opts.SetTransports(types.NewSet(transports.WebSocket))
	manager := sioclient.NewManager("http://"+addr.String(), opts)
	client := manager.Socket("/", opts)
	t.Cleanup(func() { client.Disconnect() })

	reloaded := make(chan struct{}, 1)
	client.On(types.EventName(ReloadEvent), func(...any) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	client.Connect()

	require.Eventually(t, func() bool { return s.Clients() == 1 }, 5*time.Second, 20*time.Millisecond)

	// --- Act ---
	require.NoError(t, s.Broadcast(ctx))

	// --- Assert ---
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not receive the reload event")
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	s := New(t.TempDir(), "127.0.0.1:0")
	assert.NoError(t, s.Shutdown(ctxlog.Discard(context.Background())))
}

func TestBroadcastWithoutClients(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	s := New(buildDir(t), "127.0.0.1:0")
	_, err := s.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(ctx) })

	assert.NoError(t, s.Broadcast(ctx))
	assert.Zero(t, s.Clients())
}
