package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount sets the number of indices drawn from the provider's index buffer.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}

// WithCapacity sets the element capacity of the provider's vertex buffer.
//
// Parameters:
//   - capacity: the number of elements the buffer holds
//
// Returns:
//   - BindGroupProviderOption: a function that sets the capacity
func WithCapacity(capacity int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if capacity >= 0 {
			p.capacity = capacity
		}
	}
}
