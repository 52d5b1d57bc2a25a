package generator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"StreamPulse/internal/domain/models"
	"StreamPulse/pkg/util"
)

const (
	// volatility is the standard deviation of the per-tick noise term.
	volatility = 0.02

	// trendStep bounds the per-tick random walk applied to the trend.
	trendStep = 0.0001

	// trendClamp bounds the trend itself.
	trendClamp = 0.005

	// seasonalAmp scales the hourly-period oscillation.
	seasonalAmp = 0.1

	// anomalyProb is the chance a data point carries an injected spike.
	anomalyProb = 0.05

	// anomalySpike multiplies the noise term for an anomalous point. The
	// spike is applied before clamping, so field bounds still hold.
	anomalySpike = 5.0
)

// Generator produces bounded pseudo-random time-series values for one
// source. A generator is shared by every dispatcher subscribed to its
// source, so all state access is serialized through mu.
type Generator struct {
	source string
	kind   models.Kind

	mu     sync.Mutex
	fields map[string]float64
	trend  float64
	rng    *rand.Rand
}

// New creates a generator seeded with kind-specific initial field values.
func New(source string) *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	g := &Generator{
		source: source,
		kind:   models.KindOf(source),
		rng:    rng,
		trend:  uniform(rng, -0.001, 0.001),
	}
	g.fields = initialFields(g.kind, rng)
	return g
}

// Source returns the source name this generator was created for.
func (g *Generator) Source() string { return g.source }

// Kind returns the field-set family of this generator.
func (g *Generator) Kind() models.Kind { return g.kind }

// Fields returns the field names of this generator's kind.
func (g *Generator) Fields() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.fields))
	for name := range g.fields {
		names = append(names, name)
	}
	return names
}

// GenerateDataPoint advances every field one tick and assembles the
// resulting data point. Safe for concurrent use.
func (g *Generator) GenerateDataPoint() models.DataPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	anomalous := g.rng.Float64() < anomalyProb

	data := make(map[string]float64, len(g.fields))
	for name, base := range g.fields {
		v := g.nextValue(name, base, now, anomalous)
		g.fields[name] = v
		data[name] = v
	}

	score := uniform(g.rng, 0, 0.1)
	if anomalous {
		score = uniform(g.rng, 0.9, 1.0)
	}

	return models.DataPoint{
		Timestamp: util.ISOTimestamp(now),
		Source:    g.source,
		Data:      data,
		Metadata: models.Metadata{
			Sequence:     now.UnixMilli() % 1_000_000,
			Quality:      uniform(g.rng, 0.95, 1.0),
			AnomalyScore: round2(score),
			IsAnomaly:    anomalous,
		},
	}
}

// nextValue computes one field update: trend plus hourly seasonality plus
// gaussian noise, then the field-specific clamp policy. The trend random
// walk is shared across all fields of the generator. Caller holds mu.
func (g *Generator) nextValue(name string, base float64, now time.Time, anomalous bool) float64 {
	g.trend += uniform(g.rng, -trendStep, trendStep)
	g.trend = clamp(g.trend, -trendClamp, trendClamp)

	seasonal := seasonalAmp * math.Sin(float64(now.Unix())/3600)
	noise := g.rng.NormFloat64() * volatility
	if anomalous {
		noise *= anomalySpike
	}
	v := base * (1 + g.trend + seasonal + noise)

	switch {
	case name == "price" && v < 0:
		// Prices never go negative; floor at 10% of the prior value.
		v = base * 0.1
	case name == "humidity" || name == "dominance":
		v = clamp(v, 0, 100)
	case name == "temperature":
		v = clamp(v, -50, 60)
	}

	return round2(v)
}

// initialFields builds the fixed field set for a kind. The set never
// changes size after creation.
func initialFields(kind models.Kind, rng *rand.Rand) map[string]float64 {
	switch kind {
	case models.KindStock:
		return map[string]float64{
			"price":      100.0 + uniform(rng, -20, 20),
			"volume":     1_000_000.0,
			"market_cap": 1_000_000_000.0,
		}
	case models.KindSensor:
		return map[string]float64{
			"temperature": 20.0 + uniform(rng, -5, 15),
			"humidity":    50.0 + uniform(rng, -20, 20),
			"pressure":    1013.25 + uniform(rng, -50, 50),
			"light":       uniform(rng, 0, 1000),
		}
	case models.KindNetwork:
		return map[string]float64{
			"bandwidth": uniform(rng, 100, 1000),
			"latency":   10.0 + uniform(rng, 0, 50),
			"packets":   uniform(rng, 1000, 10000),
			"errors":    uniform(rng, 0, 10),
		}
	case models.KindCrypto:
		return map[string]float64{
			"price":      50_000.0 + uniform(rng, -10_000, 20_000),
			"volume":     uniform(rng, 100_000_000, 1_000_000_000),
			"market_cap": 1_000_000_000_000.0,
			"dominance":  uniform(rng, 40, 60),
		}
	case models.KindWeather:
		return map[string]float64{
			"temperature":   15.0 + uniform(rng, -10, 25),
			"humidity":      40.0 + uniform(rng, -20, 40),
			"wind_speed":    uniform(rng, 0, 30),
			"pressure":      1013.25 + uniform(rng, -40, 40),
			"precipitation": uniform(rng, 0, 10),
		}
	default:
		return map[string]float64{"value": 50.0}
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
