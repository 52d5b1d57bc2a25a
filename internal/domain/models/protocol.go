package models

// Version reported in the welcome server_info block.
const Version = "1.0.0"

// Message type discriminators shared by both directions of the protocol.
const (
	TypeSubscribe    = "subscribe"
	TypeUnsubscribe  = "unsubscribe"
	TypePing         = "ping"
	TypeWelcome      = "welcome"
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypePong         = "pong"
	TypeError        = "error"
	TypeData         = "data"
	TypeServerStats  = "server_stats"
)

// ClientMessage is the single inbound shape. Fields not relevant to the
// message type are left at their zero value; extra JSON fields are ignored.
type ClientMessage struct {
	Type      string `json:"type"`
	Source    string `json:"source,omitempty"`
	Frequency int    `json:"frequency,omitempty"` // milliseconds
}

// ServerInfo is embedded in the welcome message.
type ServerInfo struct {
	Version          string  `json:"version"`
	Uptime           float64 `json:"uptime"` // seconds
	ClientsConnected int     `json:"clients_connected"`
}

// Welcome is the first message every client receives after connecting.
type Welcome struct {
	Type             string     `json:"type"`
	ClientID         string     `json:"client_id"`
	Timestamp        string     `json:"timestamp"`
	AvailableSources []string   `json:"available_sources"`
	ServerInfo       ServerInfo `json:"server_info"`
}

// Subscribed acknowledges a subscription before the first data push.
type Subscribed struct {
	Type      string `json:"type"`
	Source    string `json:"source"`
	Frequency int    `json:"frequency"`
	Timestamp string `json:"timestamp"`
}

// Unsubscribed acknowledges an unsubscribe, including a redundant one.
type Unsubscribed struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// Pong answers a client ping.
type Pong struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// ErrorMessage reports a malformed inbound payload. The connection stays
// open after it is sent.
type ErrorMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// DataMessage wraps one generated data point for delivery.
type DataMessage struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Data      DataPoint `json:"data"`
	Timestamp string    `json:"timestamp"`
}

// StatsPayload is the aggregate snapshot computed by the stats broadcaster.
type StatsPayload struct {
	ClientsConnected int      `json:"clients_connected"`
	ActiveSources    []string `json:"active_sources"`
	Uptime           float64  `json:"uptime"` // seconds
	DataPointsSent   int64    `json:"data_points_sent"`
}

// ServerStats is broadcast to every connected client on a fixed interval.
type ServerStats struct {
	Type      string       `json:"type"`
	Timestamp string       `json:"timestamp"`
	Stats     StatsPayload `json:"stats"`
}
