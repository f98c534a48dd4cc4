package terrain

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Noise3 is a 3D scalar noise field.
type Noise3 interface {
	Eval3(x, y, z float64) float64
}

// Billow is a fractal noise built from folded OpenSimplex octaves. Each octave contributes
// 2|n|-1, which produces rounded, cloud-like lumps. Output is normalized to [-1, 1].
type Billow struct {
	sources     []opensimplex.Noise
	persistence float64
	lacunarity  float64
	norm        float64
}

var _ Noise3 = &Billow{}

// BillowParams configures a Billow field.
type BillowParams struct {
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// DefaultBillowParams returns six octaves with persistence 0.5 and lacunarity 2.
func DefaultBillowParams() BillowParams {
	return BillowParams{Octaves: 6, Persistence: 0.5, Lacunarity: 2}
}

// NewBillow creates a Billow field whose octave i is seeded with seed+i.
// Non-positive octave counts are raised to 1.
//
// Parameters:
//   - seed: the base seed
//   - params: octave configuration
//
// Returns:
//   - *Billow: the noise field
func NewBillow(seed int64, params BillowParams) *Billow {
	octaves := max(params.Octaves, 1)
	b := &Billow{
		sources:     make([]opensimplex.Noise, octaves),
		persistence: params.Persistence,
		lacunarity:  params.Lacunarity,
	}
	amp := 1.0
	for i := range octaves {
		b.sources[i] = opensimplex.New(seed + int64(i))
		b.norm += math.Abs(amp)
		amp *= b.persistence
	}
	return b
}

// Eval3 samples the field at (x, y, z).
func (b *Billow) Eval3(x, y, z float64) float64 {
	var sum float64
	amp := 1.0
	for _, src := range b.sources {
		sum += (2*math.Abs(src.Eval3(x, y, z)) - 1) * amp
		amp *= b.persistence
		x *= b.lacunarity
		y *= b.lacunarity
		z *= b.lacunarity
	}
	return sum / b.norm
}
