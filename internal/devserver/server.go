// Package devserver serves a built site with live reload.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/pipeline"
)

// ReloadPath is the websocket endpoint pages connect to.
const ReloadPath = "/_nbsite/reload"

const (
	indexFile       = "index.html"
	shutdownTimeout = 5 * time.Second
	readHeaderWait  = 10 * time.Second
)

// ErrListen indicates the server could not bind its address.
var ErrListen = errors.New("failed to listen")

// Server serves files from a directory and injects the reload snippet into
// HTML responses.
type Server struct {
	dir    string
	reload pipeline.ReloadInjector
	hub    *Hub
	logger *zap.Logger
	files  http.Handler
	router chi.Router
}

// New creates a server for dir. A nil reload injector serves HTML unchanged.
func New(dir string, reload pipeline.ReloadInjector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		dir:    dir,
		reload: reload,
		hub:    NewHub(logger),
		logger: logger,
		files:  http.FileServer(http.Dir(dir)),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(noCache)
	r.Get(ReloadPath, s.hub.ServeHTTP)
	r.Get("/*", s.serveStatic)
	r.Head("/*", s.serveStatic)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Reload tells every connected page to reload.
func (s *Server) Reload() {
	n := s.hub.Broadcast(ReloadMessage)
	s.logger.Debug("reload sent", zap.Int("clients", n))
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrListen, addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and disconnects reload clients.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderWait,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving " + s.dir + " at http://" + ln.Addr().String() + "/")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	full := filepath.Join(s.dir, filepath.FromSlash(name))

	info, err := os.Stat(full)
	if err == nil && info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, path.Base(name)+"/", http.StatusMovedPermanently)
			return
		}
		full = filepath.Join(full, indexFile)
	}

	if s.reload != nil && strings.EqualFold(filepath.Ext(full), ".html") {
		s.serveHTML(w, r, full)
		return
	}
	s.files.ServeHTTP(w, r)
}

func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, full string) {
	data, err := os.ReadFile(full) // #nosec G304 -- path cleaned and rooted at the site dir
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		s.logger.Warn("reading page failed", zap.String("path", full), zap.Error(err))
		http.Error(w, "cannot read page", http.StatusInternalServerError)
		return
	}

	page, err := s.reload.InjectReload(r.Context(), string(data))
	if err != nil {
		http.Error(w, "cannot render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", fmt.Sprint(len(page)))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(page))
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
