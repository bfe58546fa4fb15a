package server

import (
	"encoding/json"
	"path/filepath"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/view"
)

// Message is the state pushed to clients after every change.
type Message struct {
	Filename string           `json:"filename,omitempty"`
	Title    string           `json:"title,omitempty"`
	HTML     string           `json:"html,omitempty"`
	Raw      string           `json:"raw,omitempty"`
	Mode     view.Mode        `json:"mode"`
	Dirty    bool             `json:"dirty"`
	Line     int              `json:"line"`
	Scroll   int              `json:"scroll"`
	Search   view.SearchState `json:"search"`
	Counter  string           `json:"counter,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Command is a client request, sent as a WebSocket frame or an API body.
type Command struct {
	Action  string `json:"action"`
	Query   string `json:"query,omitempty"`
	Line    int    `json:"line,omitempty"`
	Content string `json:"content,omitempty"`
}

// Command actions.
const (
	ActionSearchOpen  = "search.open"
	ActionSearchQuery = "search.query"
	ActionSearchNext  = "search.next"
	ActionSearchPrev  = "search.prev"
	ActionSearchCase  = "search.case"
	ActionSearchClose = "search.close"
	ActionModeToggle  = "mode.toggle"
	ActionNavigate    = "navigate"
	ActionEdit        = "edit"
	ActionSave        = "save"
	ActionReload      = "reload"
)

// snapshot builds the message for the current state. The markup is sent
// in rendered mode and the source in raw mode.
func (s *Server) snapshot() Message {
	st := s.ctrl.Store().State()
	msg := Message{
		Mode:    st.Mode,
		Dirty:   st.Dirty,
		Line:    s.ctrl.VisibleLine(),
		Search:  st.Search,
		Counter: st.Search.Counter(),
	}
	if st.FilePath != "" {
		msg.Filename = filepath.Base(st.FilePath)
	}

	if st.Mode == view.ModeRaw {
		msg.Raw = st.Content
		return msg
	}

	if preview := s.ctrl.Preview(); preview != nil {
		frame := preview.Frame()
		msg.HTML = frame.HTML
		msg.Title = frame.Title
		msg.Scroll = frame.Scroll
		if frame.Err != nil {
			msg.Error = frame.Err.Error()
		}
	}
	return msg
}

// publish broadcasts the current state.
func (s *Server) publish() {
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		s.logger.Error("encode state", logging.FieldError, err)
		return
	}
	s.hub.Broadcast(data)
}
