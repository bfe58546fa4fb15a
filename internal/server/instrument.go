package server

import (
	"time"

	"github.com/yaklabco/mdcat/internal/metrics"
	"github.com/yaklabco/mdcat/pkg/markdown"
	"github.com/yaklabco/mdcat/pkg/view"
)

// instrumentedRenderer times every render.
type instrumentedRenderer struct {
	next    view.Renderer
	metrics *metrics.Metrics
}

// InstrumentRenderer wraps r so each render is recorded in m. A nil m
// returns r unchanged.
//
//nolint:ireturn // view.Renderer is the consumer's interface
func InstrumentRenderer(r view.Renderer, m *metrics.Metrics) view.Renderer {
	if m == nil {
		return r
	}
	return &instrumentedRenderer{next: r, metrics: m}
}

func (r *instrumentedRenderer) RenderDocument(doc markdown.Document) (*markdown.Result, error) {
	start := time.Now()
	res, err := r.next.RenderDocument(doc)
	r.metrics.RecordRender(time.Since(start), err)
	if err == nil {
		r.metrics.SetDocumentBytes(len(doc.Source))
	}
	return res, err
}
