package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StreamPulse/internal/domain/repository"
	"StreamPulse/internal/generator"
	"StreamPulse/internal/hub"
	"StreamPulse/internal/stream"
	"StreamPulse/pkg/config"
	xhttp "StreamPulse/pkg/http"
	xlogger "StreamPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

type testEnv struct {
	srv         *httptest.Server
	registry    *hub.Registry
	sources     *generator.Registry
	broadcaster *stream.Broadcaster
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}

	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	registry := hub.NewRegistry()
	sources := generator.NewRegistry()
	counter := stream.NewCounter()
	broadcaster := stream.NewBroadcaster(registry, sources, repository.NopMetrics{}, counter, 100*time.Millisecond, log)

	h := NewHandler(cfg, registry, sources, broadcaster, repository.NopMetrics{}, counter, log)

	// Mount through the full server stack, middleware included, so the
	// upgrade path is tested exactly as it runs in production.
	server := xhttp.NewServer(xhttp.Handlers{h},
		xhttp.WithMetrics(cfg.Metrics.Enabled, cfg.Metrics.Path),
	)

	srv := httptest.NewServer(server.Echo())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, registry: registry, sources: sources, broadcaster: broadcaster}
}

func (env *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode frame %q: %v", raw, err)
	}
	return m
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 50; i++ {
		m := readFrame(t, conn)
		if m["type"] == msgType {
			return m
		}
	}
	t.Fatalf("no %s frame within 50 messages", msgType)
	return nil
}

func send(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestWelcomeIsFirstFrame(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	m := readFrame(t, conn)
	if m["type"] != "welcome" {
		t.Fatalf("first frame is %q, want welcome", m["type"])
	}
	if !strings.HasPrefix(m["client_id"].(string), "client_") {
		t.Fatalf("unexpected client_id %v", m["client_id"])
	}

	srcs, ok := m["available_sources"].([]interface{})
	if !ok || len(srcs) != 5 {
		t.Fatalf("unexpected available_sources %v", m["available_sources"])
	}
	want := []string{"stock", "sensor", "network", "crypto", "weather"}
	for i, s := range want {
		if srcs[i] != s {
			t.Fatalf("available_sources[%d] = %v, want %s", i, srcs[i], s)
		}
	}

	info, ok := m["server_info"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing server_info")
	}
	if info["version"] != "1.0.0" {
		t.Fatalf("unexpected version %v", info["version"])
	}
	if info["clients_connected"].(float64) != 1 {
		t.Fatalf("unexpected clients_connected %v", info["clients_connected"])
	}
}

func TestUpgradeSucceedsWithMetricsEnabled(t *testing.T) {
	env := newTestEnv(t)

	// The metrics middleware wraps every route, including the upgrade;
	// its response writer must keep forwarding Hijack for the handshake
	// to complete.
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("handshake failed (status %d): %v", status, err)
	}
	defer conn.Close()

	if m := readFrame(t, conn); m["type"] != "welcome" {
		t.Fatalf("expected welcome, got %v", m["type"])
	}

	// The scrape endpoint is mounted on the same server.
	hresp, err := http.Get(env.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics scrape: %v", err)
	}
	defer hresp.Body.Close()
	if hresp.StatusCode != http.StatusOK {
		t.Fatalf("metrics scrape status %d", hresp.StatusCode)
	}
}

func TestWelcomePrecedesStatsForLateJoiner(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.broadcaster.Run(ctx)

	// With the broadcaster already sweeping, a joining client must still
	// see welcome before any server_stats frame.
	for i := 0; i < 5; i++ {
		conn := env.dial(t)
		if m := readFrame(t, conn); m["type"] != "welcome" {
			t.Fatalf("join %d: first frame is %q, want welcome", i, m["type"])
		}
	}
}

func TestSubscribeStreamsData(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "subscribe", "source": "sensor", "frequency": 50})

	ack := readUntil(t, conn, "subscribed")
	if ack["source"] != "sensor" || ack["frequency"].(float64) != 50 {
		t.Fatalf("unexpected ack %v", ack)
	}

	for i := 0; i < 3; i++ {
		m := readUntil(t, conn, "data")
		if m["source"] != "sensor" {
			t.Fatalf("data from wrong source %v", m["source"])
		}
		data := m["data"].(map[string]interface{})
		fields := data["data"].(map[string]interface{})
		for _, f := range []string{"temperature", "humidity", "pressure", "light"} {
			if _, ok := fields[f]; !ok {
				t.Fatalf("data point missing field %s: %v", f, fields)
			}
		}
		if h := fields["humidity"].(float64); h < 0 || h > 100 {
			t.Fatalf("humidity %v out of [0,100]", h)
		}
		md := data["metadata"].(map[string]interface{})
		if _, ok := md["sequence"]; !ok {
			t.Fatalf("data point missing metadata.sequence")
		}
	}
}

func TestSubscribeDefaults(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "subscribe"})

	ack := readUntil(t, conn, "subscribed")
	if ack["source"] != "stock" {
		t.Fatalf("default source %v, want stock", ack["source"])
	}
	if ack["frequency"].(float64) != 500 {
		t.Fatalf("default frequency %v, want 500", ack["frequency"])
	}
	m := readUntil(t, conn, "data")
	if m["source"] != "stock" {
		t.Fatalf("data from %v, want stock", m["source"])
	}
}

func TestResubscribeReplacesStream(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "subscribe", "source": "stock", "frequency": 20})
	readUntil(t, conn, "subscribed")
	readUntil(t, conn, "data")

	send(t, conn, map[string]interface{}{"type": "subscribe", "source": "weather", "frequency": 20})
	ack := readUntil(t, conn, "subscribed")
	if ack["source"] != "weather" {
		t.Fatalf("replacement ack for %v", ack["source"])
	}

	// Once the replacement is acknowledged, no stock frame may follow:
	// the old dispatcher's generation token is stale before the ack is
	// even queued.
	for i := 0; i < 10; i++ {
		m := readUntil(t, conn, "data")
		if m["source"] != "weather" {
			t.Fatalf("frame %d from old stream: %v", i, m["source"])
		}
	}
}

func TestPingPong(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "ping"})
	m := readFrame(t, conn)
	if m["type"] != "pong" {
		t.Fatalf("expected pong, got %v", m["type"])
	}
	if m["timestamp"] == "" {
		t.Fatalf("pong missing timestamp")
	}
}

func TestPingKeepsSubscriptionActive(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "subscribe", "source": "network", "frequency": 20})
	readUntil(t, conn, "subscribed")
	readUntil(t, conn, "data")

	send(t, conn, map[string]interface{}{"type": "ping"})
	readUntil(t, conn, "pong")

	// Data keeps flowing after the ping.
	m := readUntil(t, conn, "data")
	if m["source"] != "network" {
		t.Fatalf("stream changed after ping: %v", m["source"])
	}
}

func TestMalformedPayloadKeepsConnectionOpen(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := readFrame(t, conn)
	if m["type"] != "error" {
		t.Fatalf("expected error frame, got %v", m["type"])
	}
	if m["message"] != "Invalid JSON message" {
		t.Fatalf("unexpected error message %v", m["message"])
	}

	// The connection survives the bad payload.
	send(t, conn, map[string]interface{}{"type": "ping"})
	if m := readFrame(t, conn); m["type"] != "pong" {
		t.Fatalf("connection unusable after error: got %v", m["type"])
	}
}

func TestUnknownTypeIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "teleport"})
	send(t, conn, map[string]interface{}{"type": "ping"})

	// The unknown type produces no reply, so the next frame is the pong.
	if m := readFrame(t, conn); m["type"] != "pong" {
		t.Fatalf("unknown type produced a reply: %v", m["type"])
	}
}

func TestUnsubscribeStopsData(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "subscribe", "source": "crypto", "frequency": 20})
	readUntil(t, conn, "subscribed")
	readUntil(t, conn, "data")

	send(t, conn, map[string]interface{}{"type": "unsubscribe"})
	readUntil(t, conn, "unsubscribed")

	// The subscription ends before the ack is queued, so nothing may
	// arrive after it until the next stats broadcast.
	_ = conn.SetReadDeadline(time.Now().Add(80 * time.Millisecond))
	if _, raw, err := conn.ReadMessage(); err == nil {
		var m map[string]interface{}
		_ = json.Unmarshal(raw, &m)
		if m["type"] == "data" {
			t.Fatalf("data frame after unsubscribe ack: %s", raw)
		}
	}
}

func TestUnsubscribeWhileIdle(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, map[string]interface{}{"type": "unsubscribe"})
	if m := readFrame(t, conn); m["type"] != "unsubscribed" {
		t.Fatalf("expected unsubscribed ack, got %v", m["type"])
	}
}

func TestDisconnectReleasesSession(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	readUntil(t, conn, "welcome")
	waitFor(t, time.Second, func() bool { return env.registry.Count() == 1 })

	_ = conn.Close()
	waitFor(t, 2*time.Second, func() bool { return env.registry.Count() == 0 })
}

func TestStatsBroadcastReachesAllClients(t *testing.T) {
	env := newTestEnv(t)

	a := env.dial(t)
	b := env.dial(t)
	readUntil(t, a, "welcome")
	readUntil(t, b, "welcome")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.broadcaster.Run(ctx)

	for _, conn := range []*websocket.Conn{a, b} {
		m := readUntil(t, conn, "server_stats")
		stats, ok := m["stats"].(map[string]interface{})
		if !ok {
			t.Fatalf("server_stats missing nested stats object: %v", m)
		}
		if stats["clients_connected"].(float64) != 2 {
			t.Fatalf("unexpected clients_connected %v", stats["clients_connected"])
		}
		if _, ok := stats["data_points_sent"]; !ok {
			t.Fatalf("stats missing data_points_sent")
		}
		if _, ok := stats["uptime"]; !ok {
			t.Fatalf("stats missing uptime")
		}
	}
}
