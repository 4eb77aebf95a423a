package fallback

import (
	"math/rand/v2"

	"relieflink/internal/geo"
	"relieflink/pkg/types"
)

const (
	DefaultMaxDistanceKm = 50.0
	DefaultMaxResults    = 5
)

// Rand picks among equally applicable templates. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// Engine answers every capability locally from a static reference pool. It
// never touches the network and holds no mutable state after New returns.
type Engine struct {
	ref           types.ReferenceData
	rng           Rand
	speedKmh      float64
	maxDistanceKm float64
	maxResults    int
	language      types.Language
}

type Option func(*Engine)

func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

func WithAverageSpeed(kmh float64) Option {
	return func(e *Engine) {
		if kmh > 0 {
			e.speedKmh = kmh
		}
	}
}

func WithMatchLimits(maxDistanceKm float64, maxResults int) Option {
	return func(e *Engine) {
		if maxDistanceKm > 0 {
			e.maxDistanceKm = maxDistanceKm
		}
		if maxResults > 0 {
			e.maxResults = maxResults
		}
	}
}

// WithLanguage sets the language used when a conversation request names
// none and the message gives no hint.
func WithLanguage(lang types.Language) Option {
	return func(e *Engine) {
		if lang != "" {
			e.language = lang
		}
	}
}

func New(ref types.ReferenceData, opts ...Option) *Engine {
	e := &Engine{
		ref:           ref,
		rng:           globalRand{},
		speedKmh:      geo.DefaultAverageSpeedKmh,
		maxDistanceKm: DefaultMaxDistanceKm,
		maxResults:    DefaultMaxResults,
		language:      types.LanguageEnglish,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) ReferenceData() types.ReferenceData {
	return e.ref
}
