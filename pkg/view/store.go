package view

import (
	"path/filepath"
	"strconv"
	"sync"
)

// SearchState is the live search session.
//
// When TotalMatches > 0, 0 <= CurrentIndex < TotalMatches holds. When
// TotalMatches == 0, CurrentIndex is zero and carries no meaning.
type SearchState struct {
	Query         string `json:"query"`
	Open          bool   `json:"open"`
	CaseSensitive bool   `json:"caseSensitive"`
	CurrentIndex  int    `json:"currentIndex"`
	TotalMatches  int    `json:"totalMatches"`
}

// Counter formats the position label shown next to the search input:
// "i of n" with matches, "0 of 0" for a query without matches, and empty
// for no query.
func (s SearchState) Counter() string {
	switch {
	case s.TotalMatches > 0:
		return strconv.Itoa(s.CurrentIndex+1) + " of " + strconv.Itoa(s.TotalMatches)
	case s.Query != "":
		return "0 of 0"
	default:
		return ""
	}
}

func (s SearchState) normalized() SearchState {
	if s.TotalMatches <= 0 {
		s.TotalMatches = 0
		s.CurrentIndex = 0
		return s
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= s.TotalMatches {
		s.CurrentIndex = 0
	}
	return s
}

// SearchPatch updates selected search fields. Nil fields are left alone.
type SearchPatch struct {
	Query         *string
	CaseSensitive *bool
	CurrentIndex  *int
	TotalMatches  *int
}

// State is a snapshot of the view state of one document.
type State struct {
	FilePath string      `json:"filePath"`
	BaseDir  string      `json:"baseDir"`
	Content  string      `json:"content"`
	Mode     Mode        `json:"mode"`
	Dirty    bool        `json:"dirty"`
	Search   SearchState `json:"search"`
}

// HasDocument reports whether a file is open.
func (s State) HasDocument() bool {
	return s.FilePath != ""
}

// Listener receives the state after every mutation.
type Listener func(State)

// Store owns the view state. Every mutation notifies all listeners
// synchronously, in subscription order, after the lock is released.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

// NewStore creates a store in the initial state: no file, rendered mode,
// search closed.
func NewStore() *Store {
	return &Store{}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l == sub {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetFile opens path with its content and marks the document clean.
func (s *Store) SetFile(path, content string) {
	s.update(func(st *State) bool {
		st.FilePath = path
		st.BaseDir = ""
		if path != "" {
			st.BaseDir = filepath.Dir(path)
		}
		st.Content = content
		st.Dirty = false
		return true
	})
}

// SetContent replaces the content with an edit and marks it dirty.
func (s *Store) SetContent(content string) {
	s.update(func(st *State) bool {
		st.Content = content
		st.Dirty = true
		return true
	})
}

// MarkClean clears the dirty flag after a save.
func (s *Store) MarkClean() {
	s.update(func(st *State) bool {
		st.Dirty = false
		return true
	})
}

// SetMode switches to mode.
func (s *Store) SetMode(mode Mode) {
	s.update(func(st *State) bool {
		st.Mode = mode
		return true
	})
}

// ToggleMode flips between rendered and raw.
func (s *Store) ToggleMode() Mode {
	var mode Mode
	s.update(func(st *State) bool {
		st.Mode = st.Mode.Toggled()
		mode = st.Mode
		return true
	})
	return mode
}

// ToggleSearch opens a closed search or closes an open one. Closing resets
// the search session.
func (s *Store) ToggleSearch() {
	s.update(func(st *State) bool {
		if st.Search.Open {
			st.Search = SearchState{}
			return true
		}
		st.Search.Open = true
		return true
	})
}

// OpenSearch opens search, keeping any existing query.
func (s *Store) OpenSearch() {
	s.update(func(st *State) bool {
		if st.Search.Open {
			return false
		}
		st.Search.Open = true
		return true
	})
}

// SetSearch applies patch to the search state and restores its index
// invariant.
func (s *Store) SetSearch(patch SearchPatch) {
	s.update(func(st *State) bool {
		next := st.Search
		if patch.Query != nil {
			next.Query = *patch.Query
		}
		if patch.CaseSensitive != nil {
			next.CaseSensitive = *patch.CaseSensitive
		}
		if patch.CurrentIndex != nil {
			next.CurrentIndex = *patch.CurrentIndex
		}
		if patch.TotalMatches != nil {
			next.TotalMatches = *patch.TotalMatches
		}
		st.Search = next.normalized()
		return true
	})
}

// CloseSearch closes search and resets it to empty.
func (s *Store) CloseSearch() {
	s.update(func(st *State) bool {
		if st.Search == (SearchState{}) {
			return false
		}
		st.Search = SearchState{}
		return true
	})
}

// ApplyExternalUpdate replaces the content with a version read from disk.
// It is ignored while the document has unsaved edits or when the content is
// unchanged, and reports whether the state changed.
func (s *Store) ApplyExternalUpdate(content string) bool {
	applied := false
	s.update(func(st *State) bool {
		if !st.HasDocument() || st.Dirty || st.Content == content {
			return false
		}
		st.Content = content
		applied = true
		return true
	})
	return applied
}

func (s *Store) update(mutate func(*State) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	snapshot := s.state
	listeners := make([]*subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(snapshot)
	}
}

// Ptr returns a pointer to v, for building a SearchPatch.
func Ptr[T any](v T) *T {
	return &v
}
