package generator

import (
	"testing"
	"time"

	"StreamPulse/internal/domain/models"
)

func TestFieldSetsPerKind(t *testing.T) {
	cases := map[string][]string{
		"stock":   {"price", "volume", "market_cap"},
		"sensor":  {"temperature", "humidity", "pressure", "light"},
		"network": {"bandwidth", "latency", "packets", "errors"},
		"crypto":  {"price", "volume", "market_cap", "dominance"},
		"weather": {"temperature", "humidity", "wind_speed", "pressure", "precipitation"},
		"bogus":   {"value"},
	}
	for source, want := range cases {
		g := New(source)
		dp := g.GenerateDataPoint()
		if len(dp.Data) != len(want) {
			t.Fatalf("%s: expected %d fields, got %d", source, len(want), len(dp.Data))
		}
		for _, f := range want {
			if _, ok := dp.Data[f]; !ok {
				t.Fatalf("%s: missing field %s", source, f)
			}
		}
	}
}

func TestFieldSetNeverChangesSize(t *testing.T) {
	g := New("sensor")
	for i := 0; i < 200; i++ {
		dp := g.GenerateDataPoint()
		if len(dp.Data) != 4 {
			t.Fatalf("tick %d: field set size changed to %d", i, len(dp.Data))
		}
	}
}

func TestTemperatureClamp(t *testing.T) {
	g := New("weather")
	for i := 0; i < 2000; i++ {
		dp := g.GenerateDataPoint()
		v := dp.Data["temperature"]
		if v < -50 || v > 60 {
			t.Fatalf("tick %d: temperature %v out of [-50,60]", i, v)
		}
	}
}

func TestPercentageClamp(t *testing.T) {
	sensor := New("sensor")
	crypto := New("crypto")
	for i := 0; i < 2000; i++ {
		if v := sensor.GenerateDataPoint().Data["humidity"]; v < 0 || v > 100 {
			t.Fatalf("tick %d: humidity %v out of [0,100]", i, v)
		}
		if v := crypto.GenerateDataPoint().Data["dominance"]; v < 0 || v > 100 {
			t.Fatalf("tick %d: dominance %v out of [0,100]", i, v)
		}
	}
}

func TestPriceNeverNegative(t *testing.T) {
	g := New("stock")
	for i := 0; i < 2000; i++ {
		if v := g.GenerateDataPoint().Data["price"]; v < 0 {
			t.Fatalf("tick %d: negative price %v", i, v)
		}
	}
}

func TestPriceFloorsAtTenPercent(t *testing.T) {
	g := New("stock")
	now := time.Now()
	base := 50.0
	for i := 0; i < 5000; i++ {
		v := g.nextValue("price", base, now, true)
		if v < 0 {
			t.Fatalf("price went negative: %v", v)
		}
	}
}

func TestTrendStaysClamped(t *testing.T) {
	g := New("stock")
	for i := 0; i < 10000; i++ {
		g.GenerateDataPoint()
		if g.trend < -trendClamp || g.trend > trendClamp {
			t.Fatalf("tick %d: trend %v escaped clamp band", i, g.trend)
		}
	}
}

func TestValuesRoundedToTwoDecimals(t *testing.T) {
	g := New("sensor")
	dp := g.GenerateDataPoint()
	for name, v := range dp.Data {
		if round2(v) != v {
			t.Fatalf("%s: value %v not rounded to 2 decimals", name, v)
		}
	}
}

func TestMetadataShape(t *testing.T) {
	g := New("crypto")
	dp := g.GenerateDataPoint()
	md := dp.Metadata
	if md.Sequence < 0 || md.Sequence >= 1_000_000 {
		t.Fatalf("sequence %d out of range", md.Sequence)
	}
	if md.Quality < 0.95 || md.Quality > 1.0 {
		t.Fatalf("quality %v out of [0.95,1.0]", md.Quality)
	}
	if md.AnomalyScore < 0 || md.AnomalyScore > 1.0 {
		t.Fatalf("anomaly score %v out of range", md.AnomalyScore)
	}
	if dp.Source != "crypto" {
		t.Fatalf("unexpected source %q", dp.Source)
	}
	if dp.Timestamp == "" {
		t.Fatalf("empty timestamp")
	}
}

func TestAnomalyRateRoughlyFivePercent(t *testing.T) {
	g := New("stock")
	n := 0
	const total = 4000
	for i := 0; i < total; i++ {
		if g.GenerateDataPoint().Metadata.IsAnomaly {
			n++
		}
	}
	// 5% of 4000 is 200; allow a generous band to keep the test stable.
	if n < 50 || n > 500 {
		t.Fatalf("anomaly count %d outside plausible band for p=0.05", n)
	}
}

func TestKindOfFallsBackToGeneric(t *testing.T) {
	if k := models.KindOf("nonsense"); k != models.KindGeneric {
		t.Fatalf("expected generic, got %s", k)
	}
	if k := models.KindOf("sensor"); k != models.KindSensor {
		t.Fatalf("expected sensor, got %s", k)
	}
}
