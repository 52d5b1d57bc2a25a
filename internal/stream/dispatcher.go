package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"StreamPulse/internal/domain/models"
	drepo "StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/hub"
	"StreamPulse/pkg/util"
)

// Dispatcher is the per-subscription delivery loop: it pulls data points
// from the session's bound generator at the requested cadence and pushes
// framed messages to the session's outbound channel.
type Dispatcher struct {
	session  *hub.Session
	gen      *generator.Generator
	registry *hub.Registry
	metrics  drepo.Metrics
	counter  *Counter

	source    string
	frequency time.Duration
	token     uint64
}

// NewDispatcher binds a dispatcher to a session, a generator, and the
// generation token issued by Session.BeginSubscription.
func NewDispatcher(
	session *hub.Session,
	gen *generator.Generator,
	registry *hub.Registry,
	metrics drepo.Metrics,
	counter *Counter,
	source string,
	frequencyMS int,
	token uint64,
) *Dispatcher {
	return &Dispatcher{
		session:   session,
		gen:       gen,
		registry:  registry,
		metrics:   metrics,
		counter:   counter,
		source:    source,
		frequency: time.Duration(frequencyMS) * time.Millisecond,
		token:     token,
	}
}

// Run generates and delivers data points until the subscription is
// replaced, the session dies, or ctx is cancelled. The first point goes
// out immediately; each subsequent one after the cadence interval.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.frequency)
	defer ticker.Stop()

	for {
		if err := d.push(); err != nil {
			if errors.Is(err, hub.ErrSessionClosed) || errors.Is(err, hub.ErrSendBufferFull) {
				// Dead peer: clean up the session and stop.
				d.registry.Remove(d.session)
				d.session.Close()
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) push() error {
	start := time.Now()
	dp := d.gen.GenerateDataPoint()

	msg := models.DataMessage{
		Type:      models.TypeData,
		Source:    d.source,
		Data:      dp,
		Timestamp: util.NowISO(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		d.metrics.RecordError("marshal_data")
		return err
	}

	if err := d.session.EnqueueForGeneration(d.token, b); err != nil {
		if !errors.Is(err, hub.ErrStaleGeneration) {
			d.metrics.RecordError("deliver_data")
		}
		return err
	}

	d.counter.Inc()
	d.metrics.RecordDataPoint(d.source)
	d.metrics.RecordMessageSent(models.TypeData)
	d.metrics.RecordLatency("dispatch", time.Since(start).Seconds())
	return nil
}
