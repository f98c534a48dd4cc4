package terrain

import "github.com/Carmen-Shannon/vtrace-go/engine/voxel"

const (
	// DefaultRadius is the planetoid radius in voxels.
	DefaultRadius = 100
	// DefaultShellDepth is how far below the sphere surface voxels still count as surface.
	DefaultShellDepth = 4
	// DefaultFrequency scales world coordinates before sampling noise.
	DefaultFrequency = 0.1
)

var (
	// DefaultSurfaceColor is the dirt colour of the outer shell.
	DefaultSurfaceColor = voxel.Color{R: 255, G: 200, B: 100, A: 255}
	// DefaultInteriorColor is the colour of everything below the shell.
	DefaultInteriorColor = voxel.Color{R: 150, G: 150, B: 150, A: 255}
)

// GeneratorBuilderOption is a functional option applied to a generator during construction via NewGenerator.
type GeneratorBuilderOption func(*generator)

// WithRadius sets the planetoid radius in voxels. Negative values are ignored.
//
// Parameters:
//   - radius: the sphere radius
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the radius option to a generator
func WithRadius(radius int) GeneratorBuilderOption {
	return func(g *generator) {
		if radius >= 0 {
			g.radius = radius
		}
	}
}

// WithShellDepth sets the thickness of the surface-coloured shell.
//
// Parameters:
//   - depth: shell thickness in voxels
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the shell depth option to a generator
func WithShellDepth(depth int) GeneratorBuilderOption {
	return func(g *generator) {
		g.shellDepth = depth
	}
}

// WithFrequency sets the world-to-noise coordinate scale. Non-positive values are ignored.
//
// Parameters:
//   - frequency: the sampling frequency
//
// Returns:
//   - GeneratorBuilderOption: a function that applies the frequency option to a generator
func WithFrequency(frequency float64) GeneratorBuilderOption {
	return func(g *generator) {
		if frequency > 0 {
			g.frequency = frequency
		}
	}
}

// WithSurfaceColor sets the base colour of the surface shell.
func WithSurfaceColor(c voxel.Color) GeneratorBuilderOption {
	return func(g *generator) {
		g.surfaceColor = c
	}
}

// WithInteriorColor sets the base colour below the shell.
func WithInteriorColor(c voxel.Color) GeneratorBuilderOption {
	return func(g *generator) {
		g.interiorColor = c
	}
}

// WithBillow overrides the billow octave configuration.
func WithBillow(params BillowParams) GeneratorBuilderOption {
	return func(g *generator) {
		g.billowParams = params
	}
}
