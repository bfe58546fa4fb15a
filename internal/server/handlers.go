package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdcat/internal/logging"
)

// ErrOutsideDocument is returned for asset requests that leave the
// document directory.
var ErrOutsideDocument = errors.New("asset is outside the document directory")

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = io.WriteString(w, s.stylesheet)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logging.FieldError, err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.hub.register(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()

	// Reading stays on the handler goroutine so r.Context() lives as long
	// as the connection.
	defer s.hub.unregister(c)
	c.readPump(func(data []byte) {
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Debug("bad command", logging.FieldError, err)
			return
		}
		if err := s.Dispatch(r.Context(), cmd); err != nil {
			logger.Warn("command failed",
				logging.FieldEvent, cmd.Action,
				logging.FieldError, err)
		}
	})
}

// handleAsset serves a local image referenced by the rendered markup.
// Only files inside the document directory are served.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path, err := s.assets.PathFromPrefix(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	baseDir := s.ctrl.Store().State().BaseDir
	if !within(baseDir, path) {
		logging.FromContext(r.Context()).Warn("refusing asset", "file", path, logging.FieldError, ErrOutsideDocument)
		http.Error(w, ErrOutsideDocument.Error(), http.StatusForbidden)
		return
	}

	http.ServeFile(w, r, filepath.Clean(path))
}

// within reports whether path is dir or lies beneath it. Paths that exist
// are compared after resolving symlinks, so a link inside dir cannot reach
// a file outside it.
func within(dir, path string) bool {
	if dir == "" || !filepath.IsAbs(path) {
		return false
	}
	if !lexicallyWithin(dir, path) {
		return false
	}

	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	return lexicallyWithin(realDir, realPath)
}

func lexicallyWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
