package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/view"
)

// maxBodySize bounds API request bodies, including full document edits.
const maxBodySize = 8 << 20

// ErrUnknownAction is returned for a command with an unrecognised action.
var ErrUnknownAction = errors.New("unknown action")

// Dispatch runs cmd on the loop and waits until the views have settled.
func (s *Server) Dispatch(ctx context.Context, cmd Command) error {
	var runErr error
	err := s.loop.Call(ctx, func() {
		runErr = s.apply(ctx, cmd)
	})
	if err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	return s.settle(ctx)
}

// apply performs one command. It runs on the loop.
func (s *Server) apply(ctx context.Context, cmd Command) error {
	search := s.ctrl.Search()

	switch cmd.Action {
	case ActionSearchOpen:
		search.Open()
	case ActionSearchQuery:
		search.SetQuery(cmd.Query)
		s.metrics.RecordSearch(len(search.Matches()))
	case ActionSearchCase:
		search.ToggleCaseSensitive()
		s.metrics.RecordSearch(len(search.Matches()))
	case ActionSearchNext:
		search.Next()
	case ActionSearchPrev:
		search.Prev()
	case ActionSearchClose:
		search.Close()
	case ActionModeToggle:
		s.ctrl.ToggleModeWithSync()
		s.metrics.RecordToggle()
	case ActionNavigate:
		s.ctrl.NavigateToLine(cmd.Line)
	case ActionEdit:
		s.ctrl.Edit(cmd.Content)
		s.metrics.SetDocumentBytes(len(cmd.Content))
	case ActionSave:
		err := s.ctrl.Save(ctx)
		s.metrics.RecordSave(err)
		return err
	case ActionReload:
		s.reload(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return nil
}

// settle waits two loop turns so the render pass and the deferred
// repositioning a command schedules have both run.
func (s *Server) settle(ctx context.Context) error {
	for range 2 {
		if err := s.loop.Call(ctx, func() {}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, http.StatusOK)
}

// searchActions maps /api/search action names to commands.
//
//nolint:gochecknoglobals // Read-only lookup table.
var searchActions = map[string]string{
	"open":  ActionSearchOpen,
	"query": ActionSearchQuery,
	"case":  ActionSearchCase,
	"next":  ActionSearchNext,
	"prev":  ActionSearchPrev,
	"close": ActionSearchClose,
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if !s.decode(w, r, &cmd) {
		return
	}
	action, ok := searchActions[cmd.Action]
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action))
		return
	}
	cmd.Action = action
	s.run(w, r, cmd)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, Command{Action: ActionModeToggle})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if !s.decode(w, r, &cmd) {
		return
	}
	cmd.Action = ActionNavigate
	s.run(w, r, cmd)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))
		return
	}
	s.run(w, r, Command{Action: ActionEdit, Content: string(body)})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, Command{Action: ActionSave})
}

// handleDiff answers with the unsaved changes as a unified diff. The body
// is empty when the content matches the file on disk.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	d, err := s.ctrl.Diff(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.metrics.RecordRequest(r.URL.Path, http.StatusOK)
	w.Header().Set("Content-Type", "text/x-diff; charset=utf-8")
	w.Header().Set("X-Diff-Stat", d.Stat())
	_, _ = io.WriteString(w, d.Unified())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}

// run dispatches cmd and answers with the resulting state.
func (s *Server) run(w http.ResponseWriter, r *http.Request, cmd Command) {
	if err := s.Dispatch(r.Context(), cmd); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeState(w, r, http.StatusOK)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, view.ErrModifiedExternally):
		return http.StatusConflict
	case errors.Is(err, view.ErrLoopStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (s *Server) writeState(w http.ResponseWriter, r *http.Request, code int) {
	s.writeJSON(w, r, code, s.snapshot())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	logging.FromContext(r.Context()).Debug("api error",
		logging.FieldStatus, code,
		logging.FieldError, err)
	s.writeJSON(w, r, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	s.metrics.RecordRequest(r.URL.Path, code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Debug("write response", logging.FieldError, err)
	}
}
