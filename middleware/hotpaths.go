package middleware

import (
	"log/slog"
	"net/http"

	"github.com/caasmo/actiondispatch/core"
	"github.com/caasmo/actiondispatch/topk"
)

// HotPaths feeds every request path into a top-k sketch and logs the paths
// that dominate the window. It never alters the request.
type HotPaths struct {
	sketch *topk.TopKSketch
	logger *slog.Logger
}

func NewHotPaths(sketch *topk.TopKSketch, logger *slog.Logger) *HotPaths {
	logger.Info("hotpaths: sketch memory usage", "bytes", sketch.SizeBytes())
	return &HotPaths{sketch: sketch, logger: logger}
}

func (m *HotPaths) Handle(r *http.Request, next core.Next) (core.Response, error) {
	if hot := m.sketch.Observe(r.Method + " " + r.URL.Path); len(hot) > 0 {
		m.logger.Warn("hotpaths: paths above hot share", "paths", hot)
	}
	return next(r)
}

// Top returns the most requested paths in the current window.
func (m *HotPaths) Top() []topk.Entry {
	return m.sketch.Top()
}
