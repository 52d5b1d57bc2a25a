package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"StreamPulse/internal/domain/models"
	drepo "StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/hub"
	"StreamPulse/internal/stream"
	"StreamPulse/pkg/config"
	xlogger "StreamPulse/pkg/logger"
	"StreamPulse/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// readLimit caps inbound control frames; client messages are tiny.
const readLimit = 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler owns the WebSocket endpoint: it upgrades connections, registers
// sessions, and drives the per-session protocol state machine
// (idle → subscribed → idle).
type Handler struct {
	cfg         *config.Config
	registry    *hub.Registry
	sources     *generator.Registry
	broadcaster *stream.Broadcaster
	metrics     drepo.Metrics
	counter     *stream.Counter
	logger      *xlogger.Logger
}

// NewHandler creates the streaming protocol handler.
func NewHandler(
	cfg *config.Config,
	registry *hub.Registry,
	sources *generator.Registry,
	broadcaster *stream.Broadcaster,
	metrics drepo.Metrics,
	counter *stream.Counter,
	logger *xlogger.Logger,
) *Handler {
	return &Handler{
		cfg:         cfg,
		registry:    registry,
		sources:     sources,
		broadcaster: broadcaster,
		metrics:     metrics,
		counter:     counter,
		logger:      logger,
	}
}

// RegisterRoutes mounts the streaming endpoint on the Echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Stream)
}

// Stream serves one client connection. It blocks until the peer
// disconnects, then releases every resource bound to the session.
func (h *Handler) Stream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// upgrader has already written the error response.
		return nil
	}

	s := h.registry.NewSession(conn, h.cfg.Stream.SendBuffer)

	// The welcome is enqueued before the session is registered, so it sits
	// ahead of any stats broadcast in the FIFO buffer and is always the
	// first frame the client receives.
	h.sendWelcome(s, h.registry.Count()+1)
	total := h.registry.Register(s)

	h.metrics.RecordClients(total)
	h.logger.Info("client connected",
		xlogger.String("client_id", s.ID()),
		xlogger.Int("total", total),
	)

	go s.WritePump(h.cfg.Stream.PingInterval, h.cfg.Stream.WriteTimeout)

	h.readLoop(c.Request().Context(), s)

	h.registry.Remove(s)
	s.Close()
	h.metrics.RecordClients(h.registry.Count())
	h.logger.Info("client disconnected",
		xlogger.String("client_id", s.ID()),
		xlogger.Duration("connected_for", time.Since(s.Joined())),
		xlogger.Int("total", h.registry.Count()),
	)
	return nil
}

func (h *Handler) sendWelcome(s *hub.Session, clients int) {
	welcome := models.Welcome{
		Type:             models.TypeWelcome,
		ClientID:         s.ID(),
		Timestamp:        util.NowISO(),
		AvailableSources: models.KnownKindNames(),
		ServerInfo: models.ServerInfo{
			Version:          models.Version,
			Uptime:           h.broadcaster.Uptime(),
			ClientsConnected: clients,
		},
	}
	h.deliver(s, models.TypeWelcome, welcome)
}

// readLoop consumes inbound frames until the connection dies. The read
// deadline is refreshed by pong responses to the write pump's pings, so a
// silent peer is detected within ping_interval + pong_timeout.
func (h *Handler) readLoop(ctx context.Context, s *hub.Session) {
	conn := s.Conn()
	pongWait := h.cfg.Stream.PingInterval + h.cfg.Stream.PongTimeout
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(ctx, s, raw)
	}
}

func (h *Handler) handleMessage(ctx context.Context, s *hub.Session, raw []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.metrics.RecordError("malformed_payload")
		h.deliver(s, models.TypeError, models.ErrorMessage{
			Type:      models.TypeError,
			Message:   "Invalid JSON message",
			Timestamp: util.NowISO(),
		})
		return
	}

	switch msg.Type {
	case models.TypeSubscribe:
		h.subscribe(ctx, s, msg)
	case models.TypeUnsubscribe:
		h.unsubscribe(s)
	case models.TypePing:
		h.deliver(s, models.TypePong, models.Pong{
			Type:      models.TypePong,
			Timestamp: util.NowISO(),
		})
	default:
		// Unknown message types are dropped without a reply.
	}
}

// subscribe transitions the session to the subscribed state. A second
// subscribe replaces the running dispatcher; the generation token handed
// to the new dispatcher guarantees the old one stops delivering first.
func (h *Handler) subscribe(ctx context.Context, s *hub.Session, msg models.ClientMessage) {
	source := msg.Source
	if source == "" {
		source = h.cfg.Stream.DefaultSource
	}
	frequency := msg.Frequency
	if frequency <= 0 {
		frequency = h.cfg.Stream.DefaultFrequency
	}

	gen := h.sources.GetOrCreate(source)

	dispatchCtx, token, err := s.BeginSubscription(ctx, source, frequency)
	if err != nil {
		return
	}

	// Acknowledge before the dispatcher starts so the subscribed message
	// always precedes the first data push.
	h.deliver(s, models.TypeSubscribed, models.Subscribed{
		Type:      models.TypeSubscribed,
		Source:    source,
		Frequency: frequency,
		Timestamp: util.NowISO(),
	})
	h.logger.Info("client subscribed",
		xlogger.String("client_id", s.ID()),
		xlogger.String("source", source),
		xlogger.Int("frequency_ms", frequency),
	)

	d := stream.NewDispatcher(s, gen, h.registry, h.metrics, h.counter, source, frequency, token)
	go d.Run(dispatchCtx)
}

// unsubscribe returns the session to idle. Safe to call when already idle.
func (h *Handler) unsubscribe(s *hub.Session) {
	s.EndSubscription()
	h.deliver(s, models.TypeUnsubscribed, models.Unsubscribed{
		Type:      models.TypeUnsubscribed,
		Timestamp: util.NowISO(),
	})
}

func (h *Handler) deliver(s *hub.Session, msgType string, payload interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		h.metrics.RecordError("marshal_" + msgType)
		return
	}
	if err := s.Enqueue(b); err != nil {
		h.metrics.RecordError("deliver_" + msgType)
		return
	}
	h.metrics.RecordMessageSent(msgType)
}
