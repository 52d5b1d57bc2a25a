package models

// Kind identifies the family of a synthetic data source. It decides the
// field set a generator is created with; unrecognized source names fall
// back to KindGeneric.
type Kind string

const (
	KindStock   Kind = "stock"
	KindSensor  Kind = "sensor"
	KindNetwork Kind = "network"
	KindCrypto  Kind = "crypto"
	KindWeather Kind = "weather"
	KindGeneric Kind = "generic"
)

// KnownKinds lists the sources advertised to clients in the welcome
// message. KindGeneric is deliberately absent: it is the fallback for
// arbitrary source names, not an advertised feed.
var KnownKinds = []Kind{KindStock, KindSensor, KindNetwork, KindCrypto, KindWeather}

// KindOf maps a client-supplied source name to a Kind.
func KindOf(source string) Kind {
	switch Kind(source) {
	case KindStock, KindSensor, KindNetwork, KindCrypto, KindWeather:
		return Kind(source)
	default:
		return KindGeneric
	}
}

// KnownKindNames returns the advertised source names as plain strings.
func KnownKindNames() []string {
	names := make([]string, len(KnownKinds))
	for i, k := range KnownKinds {
		names[i] = string(k)
	}
	return names
}
