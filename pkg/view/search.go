package view

import (
	"sync"

	"github.com/yaklabco/mdcat/pkg/search"
)

// Search drives the search session: it finds matches in the raw content,
// keeps the match counters in the store and moves the active view to the
// current match.
type Search struct {
	store    *Store
	loop     *Loop
	navigate func(line int)

	mu       sync.Mutex
	matches  []search.Match
	content  string
	query    string
	caseSens bool
	pending  bool
}

// NewSearch creates a search controller. navigate receives the line of the
// current match after every query change or navigation step; it may be nil.
func NewSearch(store *Store, loop *Loop, navigate func(line int)) *Search {
	s := &Search{store: store, loop: loop, navigate: navigate}
	store.Subscribe(s.observe)
	return s
}

// Open opens the search session.
func (s *Search) Open() {
	s.store.OpenSearch()
}

// SetQuery replaces the query, opening search if needed, and jumps to the
// current match.
func (s *Search) SetQuery(query string) {
	s.store.OpenSearch()
	s.store.SetSearch(SearchPatch{Query: Ptr(query)})
	s.update(true)
}

// ToggleCaseSensitive flips case sensitivity and recomputes matches.
func (s *Search) ToggleCaseSensitive() {
	st := s.store.State()
	s.store.SetSearch(SearchPatch{CaseSensitive: Ptr(!st.Search.CaseSensitive)})
	s.update(true)
}

// Next advances to the following match, wrapping past the last one.
func (s *Search) Next() bool {
	return s.step(1)
}

// Prev moves to the preceding match, wrapping before the first one.
func (s *Search) Prev() bool {
	return s.step(-1)
}

// Close closes search and forgets its matches.
func (s *Search) Close() {
	s.mu.Lock()
	s.matches = nil
	s.query = ""
	s.mu.Unlock()
	s.store.CloseSearch()
}

// Matches returns the matches of the current query.
func (s *Search) Matches() []search.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]search.Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Current returns the current match.
func (s *Search) Current() (search.Match, bool) {
	st := s.store.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Search.TotalMatches == 0 || st.Search.CurrentIndex >= len(s.matches) {
		return search.Match{}, false
	}
	return s.matches[st.Search.CurrentIndex], true
}

// Counter returns the position label for the search bar.
func (s *Search) Counter() string {
	return s.store.State().Search.Counter()
}

func (s *Search) step(delta int) bool {
	st := s.store.State()
	s.mu.Lock()
	n := len(s.matches)
	s.mu.Unlock()
	if n == 0 || !st.Search.Open || st.Search.TotalMatches != n {
		return false
	}

	index := ((st.Search.CurrentIndex+delta)%n + n) % n
	s.store.SetSearch(SearchPatch{CurrentIndex: Ptr(index)})
	s.goTo(index)
	return true
}

func (s *Search) update(jump bool) {
	st := s.store.State()
	matches := search.FindMatches(st.Content, st.Search.Query, search.Options{
		CaseSensitive: st.Search.CaseSensitive,
	})

	s.mu.Lock()
	s.matches = matches
	s.content = st.Content
	s.query = st.Search.Query
	s.caseSens = st.Search.CaseSensitive
	s.mu.Unlock()

	index := st.Search.CurrentIndex
	if index >= len(matches) {
		index = 0
	}
	s.store.SetSearch(SearchPatch{TotalMatches: Ptr(len(matches)), CurrentIndex: Ptr(index)})

	if jump && len(matches) > 0 {
		s.goTo(index)
	}
}

func (s *Search) goTo(index int) {
	s.mu.Lock()
	if index >= len(s.matches) || s.navigate == nil {
		s.mu.Unlock()
		return
	}
	line := s.matches[index].Line
	s.mu.Unlock()
	s.navigate(line)
}

// observe recounts matches on the loop when the content or query changes
// by a route other than this controller, such as a reload from disk.
func (s *Search) observe(st State) {
	s.mu.Lock()
	stale := st.Search.Open && st.Search.Query != "" &&
		(st.Content != s.content || st.Search.Query != s.query || st.Search.CaseSensitive != s.caseSens)
	if !stale || s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	s.loop.Post(func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		if st := s.store.State(); st.Search.Open {
			s.update(false)
		}
	})
}
