package pager

import (
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/vtrace-go/common"
	"github.com/Carmen-Shannon/vtrace-go/engine/terrain"
	"github.com/Carmen-Shannon/vtrace-go/engine/voxel"
)

// ErrClosed is returned when paging is attempted after Close.
var ErrClosed = errors.New("pager closed")

// Pager caches generated terrain chunks keyed by chunk coordinate.
//
// Each coordinate is generated at most once. A coordinate whose chunk turned out empty is still
// recorded so it is never regenerated.
type Pager interface {
	// Page generates the chunk at c if it has not been paged yet.
	//
	// Parameters:
	//   - c: the chunk coordinate
	//
	// Returns:
	//   - bool: true if c was generated by this call and holds at least one filled voxel
	//   - error: ErrClosed after Close
	Page(c ChunkCoord) (bool, error)

	// PageAround pages every coordinate within radius chunks of center (a cube, inclusive).
	// Absent coordinates are generated concurrently on the pager's worker pool.
	//
	// Parameters:
	//   - center: the chunk coordinate at the middle of the cube
	//   - radius: the half extent of the cube in chunks; negative values page nothing
	//
	// Returns:
	//   - []ChunkCoord: the newly generated non-empty coordinates, nearest to center first
	//   - error: ErrClosed after Close
	PageAround(center ChunkCoord, radius int32) ([]ChunkCoord, error)

	// Chunk returns the chunk recorded at c.
	//
	// Returns:
	//   - *voxel.Chunk[voxel.Color]: the chunk, nil when empty or not paged
	//   - bool: true if c has been paged
	Chunk(c ChunkCoord) (*voxel.Chunk[voxel.Color], bool)

	// Len returns the number of paged coordinates, empty ones included.
	Len() int

	// Filled returns every paged coordinate holding a non-empty chunk, sorted by X, Y, Z.
	Filled() []ChunkCoord

	// Visible filters candidates down to coordinates whose chunk bounds intersect the frustum.
	Visible(frustum common.Frustum, candidates []ChunkCoord) []ChunkCoord

	// Close waits for in-flight generation, stops the generation workers and marks the pager
	// closed. Subsequent paging calls return ErrClosed. Calling Close again is a no-op.
	Close()
}

type pager struct {
	mu     sync.RWMutex
	gen    terrain.Generator
	chunks map[ChunkCoord]*voxel.Chunk[voxel.Color]
	closed bool

	workers   int
	queueSize int

	// running is read-held for the whole of a PageAround generation; Close takes it exclusively
	// before closing stop so no task is left queued without a worker.
	running sync.RWMutex
	tasks   chan worker.Task
	stop    chan int
	pool    []worker.Worker
}

var _ Pager = &pager{}

// NewPager creates a Pager backed by gen.
//
// Parameters:
//   - gen: the terrain generator producing chunks
//   - options: functional options for worker count and queue size
//
// Returns:
//   - Pager: the new pager
func NewPager(gen terrain.Generator, options ...PagerBuilderOption) Pager {
	p := &pager{
		gen:       gen,
		chunks:    make(map[ChunkCoord]*voxel.Chunk[voxel.Color]),
		workers:   DefaultWorkers(),
		queueSize: DefaultQueueSize,
	}
	for _, opt := range options {
		opt(p)
	}

	p.tasks = make(chan worker.Task, p.queueSize)
	p.stop = make(chan int)
	for i := range p.workers {
		w := worker.NewWorker(i, p.tasks, p.stop, 0, nil)
		w.Start()
		p.pool = append(p.pool, w)
	}
	return p
}

func (p *pager) Page(c ChunkCoord) (bool, error) {
	p.mu.RLock()
	closed := p.closed
	_, ok := p.chunks[c]
	p.mu.RUnlock()
	if closed {
		return false, ErrClosed
	}
	if ok {
		return false, nil
	}

	chunk := p.gen.Chunk(c.X, c.Y, c.Z)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.chunks[c]; ok {
		return false, nil
	}
	p.chunks[c] = chunk
	return chunk != nil, nil
}

func (p *pager) PageAround(center ChunkCoord, radius int32) ([]ChunkCoord, error) {
	if radius < 0 {
		return nil, nil
	}

	p.running.RLock()
	defer p.running.RUnlock()

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrClosed
	}
	var missing []ChunkCoord
	for x := center.X - radius; x <= center.X+radius; x++ {
		for y := center.Y - radius; y <= center.Y+radius; y++ {
			for z := center.Z - radius; z <= center.Z+radius; z++ {
				c := ChunkCoord{X: x, Y: y, Z: z}
				if _, ok := p.chunks[c]; !ok {
					missing = append(missing, c)
				}
			}
		}
	}
	p.mu.RUnlock()

	if len(missing) == 0 {
		return nil, nil
	}

	start := time.Now()
	results := make([]*voxel.Chunk[voxel.Color], len(missing))
	// Submit in batches no larger than the queue so a batch never blocks on a full queue.
	for lo := 0; lo < len(missing); lo += p.queueSize {
		hi := min(lo+p.queueSize, len(missing))
		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			c := missing[i]
			wg.Add(1)
			p.tasks <- worker.Task{
				ID: i,
				Do: func() (any, error) {
					defer wg.Done()
					results[i] = p.gen.Chunk(c.X, c.Y, c.Z)
					return nil, nil
				},
			}
		}
		wg.Wait()
	}

	var added []ChunkCoord
	p.mu.Lock()
	for i, c := range missing {
		if _, ok := p.chunks[c]; ok {
			continue
		}
		p.chunks[c] = results[i]
		if results[i] != nil {
			added = append(added, c)
		}
	}
	total := len(p.chunks)
	p.mu.Unlock()

	slices.SortFunc(added, func(a, b ChunkCoord) int {
		da, db := a.DistanceSq(center), b.DistanceSq(center)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	log.Printf("[Pager] paged %d chunks around %v (%d non-empty) in %v, %d cached",
		len(missing), center, len(added), time.Since(start).Round(time.Microsecond), total)
	return added, nil
}

func (p *pager) Chunk(c ChunkCoord) (*voxel.Chunk[voxel.Color], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	chunk, ok := p.chunks[c]
	return chunk, ok
}

func (p *pager) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.chunks)
}

func (p *pager) Filled() []ChunkCoord {
	p.mu.RLock()
	out := make([]ChunkCoord, 0, len(p.chunks))
	for c, chunk := range p.chunks {
		if chunk != nil {
			out = append(out, c)
		}
	}
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b ChunkCoord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return out
}

func (p *pager) Visible(frustum common.Frustum, candidates []ChunkCoord) []ChunkCoord {
	out := make([]ChunkCoord, 0, len(candidates))
	for _, c := range candidates {
		min, max := c.Bounds()
		if frustum.IntersectsAABB(min, max) {
			out = append(out, c)
		}
	}
	return out
}

func (p *pager) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.running.Lock()
	defer p.running.Unlock()
	// a closed stop channel ends every worker's loop
	close(p.stop)
}
