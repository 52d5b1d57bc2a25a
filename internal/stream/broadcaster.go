package stream

import (
	"context"
	"encoding/json"
	"time"

	"StreamPulse/internal/domain/models"
	drepo "StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/hub"
	xlogger "StreamPulse/pkg/logger"
	"StreamPulse/pkg/util"
)

// Broadcaster is the process-wide stats task. Every interval it computes
// aggregate registry statistics and pushes them to every live session.
// Sessions whose delivery fails are treated as dead and removed.
type Broadcaster struct {
	registry *hub.Registry
	sources  *generator.Registry
	metrics  drepo.Metrics
	counter  *Counter
	logger   *xlogger.Logger

	interval time.Duration
	started  time.Time
}

// NewBroadcaster creates a broadcaster sweeping registry every interval.
func NewBroadcaster(
	registry *hub.Registry,
	sources *generator.Registry,
	metrics drepo.Metrics,
	counter *Counter,
	interval time.Duration,
	logger *xlogger.Logger,
) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		sources:  sources,
		metrics:  metrics,
		counter:  counter,
		logger:   logger,
		interval: interval,
		started:  time.Now(),
	}
}

// Uptime returns seconds since the broadcaster started, which tracks
// process start for all practical purposes.
func (b *Broadcaster) Uptime() float64 {
	return time.Since(b.started).Seconds()
}

// Stats builds the aggregate snapshot sent on each tick. Also served by
// the status API.
func (b *Broadcaster) Stats() models.StatsPayload {
	return models.StatsPayload{
		ClientsConnected: b.registry.Count(),
		ActiveSources:    b.sources.Sources(),
		Uptime:           b.Uptime(),
		DataPointsSent:   b.counter.Total(),
	}
}

// Run executes the broadcast loop until ctx is cancelled. It lives for
// the whole process, independent of any client.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick()
		}
	}
}

func (b *Broadcaster) tick() {
	sessions := b.registry.Snapshot()
	if len(sessions) == 0 {
		return
	}

	msg := models.ServerStats{
		Type:      models.TypeServerStats,
		Timestamp: util.NowISO(),
		Stats:     b.Stats(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		b.metrics.RecordError("marshal_stats")
		return
	}

	for _, s := range sessions {
		if err := s.Enqueue(payload); err != nil {
			// Connection-closed detection: drop the session.
			b.registry.Remove(s)
			s.Close()
			b.metrics.RecordError("stats_deliver")
			if b.logger != nil {
				b.logger.Debug("stats broadcast dropped dead session", xlogger.String("client_id", s.ID()))
			}
			continue
		}
		b.metrics.RecordMessageSent(models.TypeServerStats)
	}
	b.metrics.RecordClients(b.registry.Count())
}
