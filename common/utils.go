package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// NextPowerOfTwoAbove returns the smallest power of two strictly greater than n.
// NextPowerOfTwoAbove(0) is 1, NextPowerOfTwoAbove(4) is 8.
func NextPowerOfTwoAbove(n uint32) uint32 {
	p := uint32(1)
	for p <= n {
		p <<= 1
	}
	return p
}
