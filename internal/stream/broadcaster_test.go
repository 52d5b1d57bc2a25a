package stream

import (
	"testing"
	"time"

	"StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/hub"
)

func TestStatsSnapshot(t *testing.T) {
	sessions := hub.NewRegistry()
	sources := generator.NewRegistry()
	counter := NewCounter()
	b := NewBroadcaster(sessions, sources, repository.NopMetrics{}, counter, time.Second, nil)

	sessions.Register(sessions.NewSession(nil, 4))
	sessions.Register(sessions.NewSession(nil, 4))
	sources.GetOrCreate("stock")
	sources.GetOrCreate("sensor")
	counter.Inc()
	counter.Inc()
	counter.Inc()

	st := b.Stats()
	if st.ClientsConnected != 2 {
		t.Fatalf("expected 2 clients, got %d", st.ClientsConnected)
	}
	if len(st.ActiveSources) != 2 || st.ActiveSources[0] != "stock" || st.ActiveSources[1] != "sensor" {
		t.Fatalf("unexpected active sources %v", st.ActiveSources)
	}
	if st.DataPointsSent != 3 {
		t.Fatalf("expected 3 data points, got %d", st.DataPointsSent)
	}
	if st.Uptime < 0 {
		t.Fatalf("negative uptime %v", st.Uptime)
	}
}

func TestTickDropsDeadSessions(t *testing.T) {
	sessions := hub.NewRegistry()
	sources := generator.NewRegistry()
	b := NewBroadcaster(sessions, sources, repository.NopMetrics{}, NewCounter(), time.Second, nil)

	live := sessions.NewSession(nil, 4)
	dead := sessions.NewSession(nil, 4)
	sessions.Register(live)
	sessions.Register(dead)
	dead.Close()

	b.tick()

	if sessions.Count() != 1 {
		t.Fatalf("expected dead session removed, count=%d", sessions.Count())
	}
	for _, s := range sessions.Snapshot() {
		if s != live {
			t.Fatalf("wrong session survived the sweep")
		}
	}
}

func TestTickWithNoSessions(t *testing.T) {
	sessions := hub.NewRegistry()
	b := NewBroadcaster(sessions, generator.NewRegistry(), repository.NopMetrics{}, NewCounter(), time.Second, nil)
	b.tick() // must not panic with an empty registry
}
