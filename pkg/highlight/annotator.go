package highlight

import "golang.org/x/net/html"

// Query is the input tuple that decides whether markers must be redrawn.
type Query struct {
	Open          bool
	Text          string
	Index         int
	CaseSensitive bool
}

// active reports whether the query should produce markers.
func (q Query) active() bool {
	return q.Open && q.Text != ""
}

// ScrollFunc receives the current marker after markers are redrawn.
type ScrollFunc func(mark *html.Node)

// Annotator owns the markers of one content tree. It redraws only when
// the query tuple changes or a new tree is bound.
type Annotator struct {
	root   *html.Node
	last   Query
	synced bool
	count  int
	scroll ScrollFunc
}

// NewAnnotator creates an annotator. scroll may be nil.
func NewAnnotator(scroll ScrollFunc) *Annotator {
	return &Annotator{scroll: scroll}
}

// Reset binds a freshly rendered tree. The next Sync always redraws.
func (a *Annotator) Reset(root *html.Node) {
	a.root = root
	a.synced = false
	a.count = 0
}

// Root returns the bound tree.
func (a *Annotator) Root() *html.Node {
	return a.root
}

// Count returns the number of markers currently in the tree.
func (a *Annotator) Count() int {
	return a.count
}

// Sync brings the markers in line with q. It returns false without
// touching the tree when q equals the last applied tuple.
func (a *Annotator) Sync(q Query) bool {
	if a.root == nil {
		return false
	}
	if a.synced && q == a.last {
		return false
	}

	Clear(a.root)
	a.count = 0
	if q.active() {
		a.count = Apply(a.root, q.Text, q.CaseSensitive, q.Index)
	}
	a.last = q
	a.synced = true

	if a.scroll != nil && a.count > 0 {
		if mark := CurrentMarker(a.root); mark != nil {
			a.scroll(mark)
		}
	}
	return true
}

// Current returns the marker flagged current, or nil.
func (a *Annotator) Current() *html.Node {
	if a.root == nil {
		return nil
	}
	return CurrentMarker(a.root)
}
