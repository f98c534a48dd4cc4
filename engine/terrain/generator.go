package terrain

import (
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
	"github.com/ojrac/opensimplex-go"
)

// generator is the implementation of the Generator interface.
// All fields are read-only after construction so a generator may be shared across workers.
type generator struct {
	seed int64

	simplex Noise3
	billow  Noise3

	radius        int
	shellDepth    int
	frequency     float64
	surfaceColor  voxel.Color
	interiorColor voxel.Color
	billowParams  BillowParams
}

// Generator procedurally fills voxel chunks of a noisy planetoid.
//
// The world is a solid sphere centred on the origin. A voxel inside it is filled when 3D simplex
// noise is positive. Filled voxels are tinted by a billow field and coloured as surface when the
// probe at (x, y-shellDepth, z) lies outside the sphere, or as stone otherwise.
type Generator interface {
	// Seed returns the seed the noise sources were built from.
	//
	// Returns:
	//   - int64: the generator seed
	Seed() int64

	// Voxel evaluates a single world-space voxel.
	//
	// Parameters:
	//   - x, y, z: world voxel coordinates
	//
	// Returns:
	//   - voxel.Color: the voxel color, voxel.Transparent when empty
	Voxel(x, y, z int) voxel.Color

	// Chunk generates the chunk at chunk coordinates (cx, cy, cz).
	// The chunk is addressed (local z, local y, local x) so its storage order is x-fastest.
	//
	// Parameters:
	//   - cx, cy, cz: chunk coordinates; world voxel = local + c*voxel.ChunkSize
	//
	// Returns:
	//   - *voxel.Chunk[voxel.Color]: the chunk, or nil when no voxel is filled
	Chunk(cx, cy, cz int32) *voxel.Chunk[voxel.Color]
}

var _ Generator = &generator{}

// NewGenerator creates a deterministic terrain Generator for seed.
//
// Parameters:
//   - seed: the noise seed
//   - options: functional options overriding the default shape and palette
//
// Returns:
//   - Generator: the configured generator
func NewGenerator(seed int64, options ...GeneratorBuilderOption) Generator {
	g := &generator{
		seed:          seed,
		radius:        DefaultRadius,
		shellDepth:    DefaultShellDepth,
		frequency:     DefaultFrequency,
		surfaceColor:  DefaultSurfaceColor,
		interiorColor: DefaultInteriorColor,
		billowParams:  DefaultBillowParams(),
	}
	for _, opt := range options {
		opt(g)
	}
	g.simplex = opensimplex.New(seed)
	g.billow = NewBillow(seed, g.billowParams)
	return g
}

func (g *generator) Seed() int64 {
	return g.seed
}

func (g *generator) Voxel(x, y, z int) voxel.Color {
	if !g.inside(x, y, z) {
		return voxel.Transparent
	}

	base := g.interiorColor
	if !g.inside(x, y-g.shellDepth, z) {
		base = g.surfaceColor
	}

	fx, fy, fz := float64(x)*g.frequency, float64(y)*g.frequency, float64(z)*g.frequency
	if g.simplex.Eval3(fx, fy, fz) <= 0 {
		return voxel.Transparent
	}
	tone := 0.5*g.billow.Eval3(fx, fy, fz) + 0.5
	return base.Scale(tone)
}

func (g *generator) Chunk(cx, cy, cz int32) *voxel.Chunk[voxel.Color] {
	c := voxel.NewChunk[voxel.Color]()
	ox, oy, oz := int(cx)*voxel.ChunkSize, int(cy)*voxel.ChunkSize, int(cz)*voxel.ChunkSize

	filled := false
	for x := range voxel.ChunkSize {
		for y := range voxel.ChunkSize {
			for z := range voxel.ChunkSize {
				col := g.Voxel(ox+x, oy+y, oz+z)
				if col.Filled() {
					filled = true
				}
				c.Set(z, y, x, col)
			}
		}
	}
	if !filled {
		return nil
	}
	return c
}

// inside reports whether (x, y, z) lies within the sphere of the configured radius.
func (g *generator) inside(x, y, z int) bool {
	return x*x+y*y+z*z <= g.radius*g.radius
}
