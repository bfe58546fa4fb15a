package view

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	"github.com/yaklabco/mdcat/internal/logging"
	"github.com/yaklabco/mdcat/pkg/dom"
	"github.com/yaklabco/mdcat/pkg/highlight"
	"github.com/yaklabco/mdcat/pkg/markdown"
)

// Renderer converts a document to annotated markup.
type Renderer interface {
	RenderDocument(doc markdown.Document) (*markdown.Result, error)
}

// PreviewOptions configures a Preview.
type PreviewOptions struct {
	// Layout places blocks vertically. Defaults to LineLayout.
	Layout Layout

	// Rows is the viewport height. Defaults to DefaultViewportRows.
	Rows int

	Logger *log.Logger
}

// Frame is what the preview shows after a pass.
type Frame struct {
	HTML    string
	Title   string
	Err     error
	Matches int
	Scroll  int
}

// Preview is the rendered view. It re-renders on the loop when the content
// changes while rendered mode is active, and redraws search markers when
// the search tuple changes.
type Preview struct {
	store     *Store
	loop      *Loop
	renderer  Renderer
	layout    Layout
	rows      int
	logger    *log.Logger
	annotator *highlight.Annotator

	mu        sync.Mutex
	root      *html.Node
	blocks    []dom.Block
	frame     Frame
	source    string
	baseDir   string
	rendered  bool
	scheduled bool
	listeners []func(Frame)
}

// NewPreview creates a preview bound to store. Passes run on loop.
func NewPreview(store *Store, loop *Loop, renderer Renderer, opts PreviewOptions) *Preview {
	if opts.Layout == nil {
		opts.Layout = LineLayout{}
	}
	if opts.Rows < 1 {
		opts.Rows = DefaultViewportRows
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	p := &Preview{
		store:    store,
		loop:     loop,
		renderer: renderer,
		layout:   opts.Layout,
		rows:     opts.Rows,
		logger:   opts.Logger,
	}
	p.annotator = highlight.NewAnnotator(p.scrollIntoView)

	store.Subscribe(func(State) { p.schedule() })
	p.schedule()

	return p
}

// OnChange registers fn to receive every new frame.
func (p *Preview) OnChange(fn func(Frame)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Frame returns the last frame.
func (p *Preview) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// HTML returns the markup of the last frame.
func (p *Preview) HTML() string {
	return p.Frame().HTML
}

// Err returns the error of the last render, if any.
func (p *Preview) Err() error {
	return p.Frame().Err
}

// Rows returns the viewport height.
func (p *Preview) Rows() int {
	return p.rows
}

// Scroll returns the offset of the viewport top.
func (p *Preview) Scroll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame.Scroll
}

// SetScroll moves the viewport top to offset.
func (p *Preview) SetScroll(offset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame.Scroll = max(offset, 0)
}

// VisibleLine returns the line of the topmost block whose top is at or
// below the viewport top. Past the last block it returns that block's
// line, and 1 when nothing is rendered.
func (p *Preview) VisibleLine() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.blocks) == 0 {
		return 1
	}

	best, bestTop := -1, 0
	for i, b := range p.blocks {
		top := p.layout.Top(b)
		if top < p.frame.Scroll {
			continue
		}
		if best < 0 || top < bestTop {
			best, bestTop = i, top
		}
	}
	if best < 0 {
		return p.blocks[len(p.blocks)-1].Line
	}
	return p.blocks[best].Line
}

// ScrollToLine moves the viewport top to the first block at or after line,
// or to the last block when line is past the end. It reports whether a
// block was found.
func (p *Preview) ScrollToLine(line int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.blocks) == 0 {
		return false
	}
	target := p.blocks[len(p.blocks)-1]
	for _, b := range p.blocks {
		if b.Line >= line {
			target = b
			break
		}
	}
	p.frame.Scroll = max(p.layout.Top(target), 0)
	return true
}

// ScrollIntoView centers the block containing n when it is off-screen.
func (p *Preview) ScrollIntoView(n *html.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.centerLocked(n)
}

func (p *Preview) schedule() {
	p.mu.Lock()
	if p.scheduled {
		p.mu.Unlock()
		return
	}
	p.scheduled = true
	p.mu.Unlock()

	p.loop.Post(func() {
		p.mu.Lock()
		if !p.scheduled {
			p.mu.Unlock()
			return
		}
		p.scheduled = false
		p.mu.Unlock()
		p.pass()
	})
}

// pass renders when needed and syncs search markers.
func (p *Preview) pass() {
	st := p.store.State()
	if st.Mode != ModeRendered {
		return
	}

	p.mu.Lock()
	stale := !p.rendered || p.source != st.Content || p.baseDir != st.BaseDir
	p.mu.Unlock()

	if stale {
		p.render(st)
	}

	p.mu.Lock()
	changed := p.annotator.Sync(queryOf(st.Search))
	if changed || stale {
		p.frame.Matches = p.annotator.Count()
		if p.root != nil {
			p.frame.HTML = dom.Render(p.root)
		}
	}
	frame := p.frame
	listeners := p.listeners
	p.mu.Unlock()

	if changed || stale {
		for _, fn := range listeners {
			fn(frame)
		}
	}
}

func (p *Preview) render(st State) {
	var (
		root   *html.Node
		result *markdown.Result
		err    error
	)
	if st.HasDocument() {
		result, err = p.renderer.RenderDocument(markdown.Document{Source: st.Content, BaseDir: st.BaseDir})
		if err == nil {
			root, err = dom.Parse(result.HTML)
		}
	}
	if err != nil {
		err = fmt.Errorf("render %s: %w", st.FilePath, err)
		p.logger.Error("render failed", logging.FieldPath, st.FilePath, logging.FieldError, err)
		root = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.source = st.Content
	p.baseDir = st.BaseDir
	p.rendered = true
	p.root = root
	p.blocks = nil
	p.frame.HTML = ""
	p.frame.Title = ""
	p.frame.Err = err
	if root != nil {
		p.blocks = dom.Blocks(root)
		p.frame.Title = result.Title
	}
	p.annotator.Reset(root)

	p.logger.Debug("rendered preview",
		logging.FieldPath, st.FilePath,
		logging.FieldCount, len(p.blocks))
}

// scrollIntoView is the annotator callback. It runs with p.mu held.
func (p *Preview) scrollIntoView(mark *html.Node) {
	p.centerLocked(mark)
}

func (p *Preview) centerLocked(n *html.Node) {
	block := dom.Ancestor(n, func(a *html.Node) bool {
		_, ok := dom.SourceLine(a)
		return ok
	})
	if block == nil {
		return
	}
	line, _ := dom.SourceLine(block)
	top := p.layout.Top(dom.Block{Node: block, Line: line})
	if top >= p.frame.Scroll && top < p.frame.Scroll+p.rows {
		return
	}
	p.frame.Scroll = max(top-p.rows/2, 0)
}

func queryOf(s SearchState) highlight.Query {
	return highlight.Query{
		Open:          s.Open,
		Text:          s.Query,
		Index:         s.CurrentIndex,
		CaseSensitive: s.CaseSensitive,
	}
}
