// Package server serves the live preview of one document: an index page,
// a WebSocket feed of state changes and a small JSON API that drives the
// view controller.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/internal/metrics"
	"github.com/yaklabco/mdcat/pkg/markdown"
	"github.com/yaklabco/mdcat/pkg/view"
	"github.com/yaklabco/mdcat/pkg/watch"
)

// AssetPrefix is the URL prefix local images are served under.
const AssetPrefix = "/_assets/"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ErrClosed is returned by Serve after the server has stopped.
var ErrClosed = errors.New("server closed")

//go:embed static
var staticFiles embed.FS

// Options configures a Server.
type Options struct {
	// Stylesheet is CSS served with the page, typically the code
	// highlighting theme.
	Stylesheet string

	// Watch reloads the document when it changes on disk.
	Watch bool

	// Debounce is the quiet period for file events. Zero uses the watcher
	// default.
	Debounce time.Duration

	// Metrics, when set, is updated and served at /metrics.
	Metrics *metrics.Metrics

	Logger *log.Logger
}

// Server is the live preview server for one controller.
type Server struct {
	ctrl       *view.Controller
	loop       *view.Loop
	hub        *Hub
	assets     markdown.PrefixResolver
	stylesheet string
	watch      bool
	debounce   time.Duration
	metrics    *metrics.Metrics
	logger     *log.Logger
	upgrader   websocket.Upgrader

	mu     sync.Mutex
	closed bool
}

// New creates a server for ctrl. Every mutation it performs runs on loop,
// which Serve drives.
func New(ctrl *view.Controller, loop *view.Loop, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	s := &Server{
		ctrl:       ctrl,
		loop:       loop,
		hub:        NewHub(opts.Logger, opts.Metrics),
		assets:     markdown.PrefixResolver{Prefix: AssetPrefix},
		stylesheet: opts.Stylesheet,
		watch:      opts.Watch,
		debounce:   opts.Debounce,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHost,
		},
	}

	ctrl.Store().Subscribe(func(view.State) { s.publish() })
	if preview := ctrl.Preview(); preview != nil {
		preview.OnChange(func(view.Frame) { s.publish() })
	}
	s.publish()
	return s
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler for every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /_mdcat/style.css", s.handleStylesheet)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/diff", s.handleDiff)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/mode/toggle", s.handleToggle)
	mux.HandleFunc("POST /api/navigate", s.handleNavigate)
	mux.HandleFunc("PUT /api/content", s.handleContent)
	mux.HandleFunc("POST /api/save", s.handleSave)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Asset references carry an escaped absolute path, which the mux
	// would clean and redirect, so they bypass it.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(logging.With(
			logging.WithLogger(r.Context(), s.logger),
			logging.FieldMethod, r.Method,
			logging.FieldPath, r.URL.Path,
		))
		if strings.HasPrefix(r.URL.EscapedPath(), AssetPrefix) {
			s.handleAsset(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the loop, the file watcher and the HTTP server on ln until
// ctx is done, then shuts down gracefully. A server serves once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("event loop stopped", logging.FieldError, err)
		}
	}()

	if s.watch {
		watcher, err := s.startWatcher(ctx)
		if err != nil {
			cancel()
			wg.Wait()
			_ = ln.Close()
			return err
		}
		defer func() { _ = watcher.Close() }()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("serving preview", logging.FieldAddr, "http://"+ln.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	s.hub.Close()
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}

	cancel()
	wg.Wait()

	if errors.Is(serveErr, http.ErrServerClosed) {
		return nil
	}
	return serveErr
}

func (s *Server) startWatcher(ctx context.Context) (*watch.Watcher, error) {
	path := s.ctrl.Store().State().FilePath
	if path == "" {
		return nil, view.ErrNoDocument
	}

	watcher := watch.New(watch.Options{Debounce: s.debounce, Logger: s.logger})
	err := watcher.Watch(ctx, path, func() {
		s.loop.Post(func() { s.reload(ctx) })
	})
	if err != nil {
		return nil, fmt.Errorf("watch document: %w", err)
	}
	return watcher, nil
}

// reload applies an external change. It runs on the loop.
func (s *Server) reload(ctx context.Context) {
	st := s.ctrl.Store().State()
	applied, err := s.ctrl.Reload(ctx)
	switch {
	case err != nil:
		s.metrics.RecordReload("error")
		s.logger.Warn("reload failed", logging.FieldPath, st.FilePath, logging.FieldError, err)
	case applied:
		s.metrics.RecordReload("applied")
		s.metrics.SetDocumentBytes(len(s.ctrl.Store().State().Content))
		s.logger.Info("document changed on disk", logging.FieldPath, st.FilePath)
	default:
		s.metrics.RecordReload("ignored")
	}
}

// sameHost accepts browser connections from the page this server served
// and non-browser clients that send no Origin.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://") == r.Host
}
