package models

// Metadata carries per-point bookkeeping attached by the generator.
type Metadata struct {
	Sequence     int64   `json:"sequence"`
	Quality      float64 `json:"quality"`
	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    bool    `json:"is_anomaly"`
}

// DataPoint is one generated sample for a source. It is transient: built,
// serialized onto the wire, and discarded. Nothing stores it.
type DataPoint struct {
	Timestamp string             `json:"timestamp"`
	Source    string             `json:"source"`
	Data      map[string]float64 `json:"data"`
	Metadata  Metadata           `json:"metadata"`
}
