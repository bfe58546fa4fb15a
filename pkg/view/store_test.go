package view_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdcat/pkg/view"
)

func TestStore_Initial(t *testing.T) {
	t.Parallel()

	st := view.NewStore().State()
	assert.False(t, st.HasDocument())
	assert.Equal(t, view.ModeRendered, st.Mode)
	assert.Equal(t, view.SearchState{}, st.Search)
}

func TestStore_FileLifecycle(t *testing.T) {
	t.Parallel()

	store := view.NewStore()
	path := filepath.Join("docs", "guide.md")

	store.SetFile(path, "# Guide")
	st := store.State()
	assert.Equal(t, path, st.FilePath)
	assert.Equal(t, "docs", st.BaseDir)
	assert.False(t, st.Dirty)

	store.SetContent("# Guide\n\nedited")
	assert.True(t, store.State().Dirty)

	store.MarkClean()
	assert.False(t, store.State().Dirty)
}

func TestStore_ApplyExternalUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(*view.Store)
		content string
		applied bool
		want    string
	}{
		{
			name:    "no document",
			setup:   func(*view.Store) {},
			content: "new",
			want:    "",
		},
		{
			name:    "clean document",
			setup:   func(s *view.Store) { s.SetFile("a.md", "old") },
			content: "new",
			applied: true,
			want:    "new",
		},
		{
			name: "dirty document keeps edits",
			setup: func(s *view.Store) {
				s.SetFile("a.md", "old")
				s.SetContent("mine")
			},
			content: "theirs",
			want:    "mine",
		},
		{
			name:    "unchanged content",
			setup:   func(s *view.Store) { s.SetFile("a.md", "same") },
			content: "same",
			want:    "same",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := view.NewStore()
			tt.setup(store)

			notified := 0
			store.Subscribe(func(view.State) { notified++ })

			assert.Equal(t, tt.applied, store.ApplyExternalUpdate(tt.content))
			assert.Equal(t, tt.want, store.State().Content)
			if tt.applied {
				assert.Equal(t, 1, notified)
				assert.False(t, store.State().Dirty)
			} else {
				assert.Zero(t, notified)
			}
		})
	}
}

func TestStore_ToggleMode(t *testing.T) {
	t.Parallel()

	store := view.NewStore()
	assert.Equal(t, view.ModeRaw, store.ToggleMode())
	assert.Equal(t, view.ModeRendered, store.ToggleMode())

	store.SetMode(view.ModeRaw)
	assert.Equal(t, view.ModeRaw, store.State().Mode)
}

func TestStore_SearchInvariant(t *testing.T) {
	t.Parallel()

	store := view.NewStore()
	store.OpenSearch()
	store.SetSearch(view.SearchPatch{
		Query:        view.Ptr("go"),
		TotalMatches: view.Ptr(3),
		CurrentIndex: view.Ptr(2),
	})
	assert.Equal(t, 2, store.State().Search.CurrentIndex)

	store.SetSearch(view.SearchPatch{CurrentIndex: view.Ptr(3)})
	assert.Equal(t, 0, store.State().Search.CurrentIndex, "index past the end resets")

	store.SetSearch(view.SearchPatch{CurrentIndex: view.Ptr(1), TotalMatches: view.Ptr(0)})
	s := store.State().Search
	assert.Zero(t, s.CurrentIndex)
	assert.Zero(t, s.TotalMatches)
	assert.True(t, s.Open)
	assert.Equal(t, "go", s.Query)
}

func TestStore_CloseSearchResets(t *testing.T) {
	t.Parallel()

	store := view.NewStore()
	store.ToggleSearch()
	store.SetSearch(view.SearchPatch{
		Query:         view.Ptr("x"),
		CaseSensitive: view.Ptr(true),
		TotalMatches:  view.Ptr(4),
		CurrentIndex:  view.Ptr(1),
	})

	store.CloseSearch()
	assert.Equal(t, view.SearchState{}, store.State().Search)

	store.ToggleSearch()
	require.True(t, store.State().Search.Open)
	store.SetSearch(view.SearchPatch{Query: view.Ptr("y")})
	store.ToggleSearch()
	assert.Equal(t, view.SearchState{}, store.State().Search)
}

func TestSearchState_Counter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state view.SearchState
		want  string
	}{
		{"no query", view.SearchState{}, ""},
		{"no matches", view.SearchState{Query: "zzz"}, "0 of 0"},
		{"first of three", view.SearchState{Query: "a", TotalMatches: 3}, "1 of 3"},
		{"last of three", view.SearchState{Query: "a", TotalMatches: 3, CurrentIndex: 2}, "3 of 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.state.Counter())
		})
	}
}

func TestStore_Subscribe(t *testing.T) {
	t.Parallel()

	store := view.NewStore()

	var order []string
	store.Subscribe(func(view.State) { order = append(order, "a") })
	unsubscribe := store.Subscribe(func(view.State) { order = append(order, "b") })

	store.SetContent("x")
	unsubscribe()
	store.SetContent("y")

	assert.Equal(t, []string{"a", "b", "a"}, order)
}

func TestStore_ListenerSeesSnapshot(t *testing.T) {
	t.Parallel()

	store := view.NewStore()
	var seen view.State
	store.Subscribe(func(st view.State) { seen = st })

	store.SetFile("doc.md", "body")
	assert.Equal(t, "body", seen.Content)
	assert.Equal(t, "doc.md", seen.FilePath)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want view.Mode
	}{
		{"rendered", view.ModeRendered},
		{"preview", view.ModeRendered},
		{"raw", view.ModeRaw},
	} {
		got, err := view.ParseMode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := view.ParseMode("split")
	require.ErrorIs(t, err, view.ErrInvalidMode)

	text, err := view.ModeRaw.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "raw", string(text))
}
