package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// SocketPath is the URL path of the socket.io endpoint.
const SocketPath = "/socket.io/"

// Server serves a directory of static files with live reload.
type Server struct {
	dir  string
	addr string

	io      *socket.Server
	clients atomic.Int32

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a server for the files in dir, listening on addr once started.
func New(dir, addr string) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetServeClient(false)
	opts.SetCors(&types.Cors{Origin: "*"})

	s := &Server{
		dir:  dir,
		addr: addr,
		io:   socket.NewServer(nil, opts),
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.clients.Add(1)
		client.On("disconnect", func(...any) {
			s.clients.Add(-1)
		})
	})
	return s
}

// Handler returns the HTTP handler serving both static files and the
// socket.io endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(SocketPath, s.io.ServeHandler(nil))
	mux.Handle("/", s.static())
	return mux
}

// static serves files from dir, injecting the reload client into HTML.
func (s *Server) static() http.Handler {
	files := http.FileServer(http.Dir(s.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")

		name := path.Clean("/" + r.URL.Path)
		full := filepath.Join(s.dir, filepath.FromSlash(name))
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			full = filepath.Join(full, "index.html")
			name = path.Join(name, "index.html")
		}
		if !strings.EqualFold(path.Ext(name), ".html") {
			files.ServeHTTP(w, r)
			return
		}

		page, err := os.ReadFile(full)
		if err != nil {
			files.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(inject(page)))
	})
}

// Start listens on the configured address and serves in the background.
// It returns the bound address.
func (s *Server) Start(ctx context.Context) (net.Addr, error) {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("dev server: %w", err)
	}

	srv := &http.Server{Handler: s.Handler()}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	go func() {
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Dev server failed unexpectedly", "error", err)
		}
	}()
	logger.Info("🌐 Dev server started", "address", fmt.Sprintf("http://%s/", ln.Addr()), "dir", s.dir)
	return ln.Addr(), nil
}

// Broadcast sends a reload event to every connected browser.
func (s *Server) Broadcast(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🔄 Reloading browsers.", "clients", s.clients.Load())
	s.io.Emit(ReloadEvent)
	return nil
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	return int(s.clients.Load())
}

// Shutdown closes the socket.io server and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Closing dev server...")

	s.io.Close(nil)

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		logger.Debug("Dev server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Dev server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Dev server shut down gracefully.")
	return nil
}
