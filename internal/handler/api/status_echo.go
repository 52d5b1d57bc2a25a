package api

import (
	models "StreamPulse/internal/domain/models"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/stream"
	xhttp "StreamPulse/pkg/http"
	xlogger "StreamPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler exposes a small read-only HTTP surface next to the
// streaming endpoint: source discovery, the current stats snapshot, and
// sample-point previews.
type StatusEchoHandler struct {
	logger      *xlogger.Logger
	sources     *generator.Registry
	broadcaster *stream.Broadcaster
}

func NewStatusEchoHandler(logger *xlogger.Logger, sources *generator.Registry, broadcaster *stream.Broadcaster) *StatusEchoHandler {
	return &StatusEchoHandler{logger: logger, sources: sources, broadcaster: broadcaster}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/sources", h.Sources)
	g.GET("/stats", h.Stats)
	g.GET("/sources/:source/preview", h.Preview)
}

// SourceInfo describes one advertised source kind.
type SourceInfo struct {
	Kind   string   `json:"kind"`
	Fields []string `json:"fields"`
	Active bool     `json:"active"`
}

// Health reports process liveness.
func (h *StatusEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok", "version": models.Version})
}

// Sources lists the advertised source kinds with their field sets.
func (h *StatusEchoHandler) Sources(c echo.Context) error {
	active := make(map[string]bool)
	for _, s := range h.sources.Sources() {
		active[s] = true
	}

	infos := make([]SourceInfo, 0, len(models.KnownKinds))
	for _, kind := range models.KnownKinds {
		infos = append(infos, SourceInfo{
			Kind:   string(kind),
			Fields: generator.New(string(kind)).Fields(),
			Active: active[string(kind)],
		})
	}
	return xhttp.SuccessResponse(c, infos)
}

// Stats returns the same aggregate snapshot the broadcaster pushes to
// connected clients.
func (h *StatusEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.broadcaster.Stats())
}

// PreviewRequest holds the preview query parameters.
type PreviewRequest struct {
	Count int `query:"count" default:"5" validate:"gte=1,lte=100"`
}

// Preview generates sample data points for a source from a detached
// generator, so live streams are never disturbed. Previews are limited to
// advertised kinds and sources with a live generator; arbitrary names are
// rejected rather than silently falling back to the generic field set.
func (h *StatusEchoHandler) Preview(c echo.Context) error {
	req := &PreviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	source := c.Param("source")
	if !h.previewable(source) {
		return xhttp.NotFoundErrorf("unknown source: %s", source).WithParam("source", source)
	}
	gen := generator.New(source)
	points := make([]models.DataPoint, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		points = append(points, gen.GenerateDataPoint())
	}

	h.logger.Debug("preview generated",
		xlogger.String("source", source),
		xlogger.Int("count", req.Count),
	)
	return xhttp.SuccessResponse(c, points)
}

// previewable reports whether source is an advertised kind or has a live
// generator (covers generic sources clients have subscribed to).
func (h *StatusEchoHandler) previewable(source string) bool {
	if models.KindOf(source) != models.KindGeneric {
		return true
	}
	for _, s := range h.sources.Sources() {
		if s == source {
			return true
		}
	}
	return false
}
