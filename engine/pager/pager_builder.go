package pager

import "runtime"

// DefaultQueueSize bounds the number of generation tasks buffered ahead of the workers.
const DefaultQueueSize = 256

// DefaultWorkers returns the default generation worker count: one less than the CPU count, at least one.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// PagerBuilderOption is a functional option applied to a pager during construction via NewPager.
type PagerBuilderOption func(*pager)

// WithWorkers sets the number of concurrent chunk generation workers. Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - PagerBuilderOption: a function that applies the worker option to a pager
func WithWorkers(n int) PagerBuilderOption {
	return func(p *pager) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithQueueSize sets the task queue capacity of the worker pool. Values below 1 are ignored.
//
// Parameters:
//   - n: the queue size
//
// Returns:
//   - PagerBuilderOption: a function that applies the queue size option to a pager
func WithQueueSize(n int) PagerBuilderOption {
	return func(p *pager) {
		if n >= 1 {
			p.queueSize = n
		}
	}
}
