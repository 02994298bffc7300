package nbsite

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// proberPool manages page probers for parallel verification. Each prober
// owns its own browser. Probers are created lazily on first acquire.
type proberPool struct {
	size    int
	factory func() pageProber
	probers []pageProber
	sem     chan pageProber
	mu      sync.Mutex
	created int
	closed  bool
}

func newProberPool(n int, factory func() pageProber) *proberPool {
	if n < 1 {
		n = 1
	}
	return &proberPool{
		size:    n,
		factory: factory,
		probers: make([]pageProber, 0, n),
		sem:     make(chan pageProber, n),
	}
}

// acquire gets a prober, creating one if capacity allows.
// Blocks until one is released or ctx is done.
func (p *proberPool) acquire(ctx context.Context) (pageProber, error) {
	select {
	case pr, ok := <-p.sem:
		if ok {
			return pr, nil
		}
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errors.New("prober pool closed")
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		pr := p.factory()

		p.mu.Lock()
		p.probers = append(p.probers, pr)
		p.mu.Unlock()
		return pr, nil
	}
	p.mu.Unlock()

	select {
	case pr, ok := <-p.sem:
		if !ok {
			return nil, errors.New("prober pool closed")
		}
		return pr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release returns a prober to the pool, or drops it once the pool is closed.
// sem has room for every prober the pool creates, so the send never blocks.
func (p *proberPool) release(pr pageProber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- pr
}

// close releases all browsers and joins their errors.
func (p *proberPool) close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	probers := p.probers
	p.mu.Unlock()

	var errs []error
	for _, pr := range probers {
		if err := pr.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResolvePoolSize determines the number of verification workers.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return min(workers, MaxPoolSize)
	}

	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return max(MinPoolSize, min(n, MaxPoolSize))
}
