package world

// WorldBuilderOption is a functional option applied to a world during construction via NewWorld.
type WorldBuilderOption func(*world)

// WithViewDistance sets the paging radius in chunks. Negative values are ignored.
//
// Parameters:
//   - chunks: the radius
//
// Returns:
//   - WorldBuilderOption: a function that applies the view distance to a world
func WithViewDistance(chunks int32) WorldBuilderOption {
	return func(w *world) {
		if chunks >= 0 {
			w.viewDistance = chunks
		}
	}
}
