package systems

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// parallelThreshold is the minimum live body count for the worker pool.
// Below this the goroutine handoff costs more than it saves.
const parallelThreshold = 64

// forceChunk is a range of body ids and the scratch slot it writes to.
type forceChunk struct {
	lo, hi int
	slot   int
}

// forcePool runs the force pass across persistent workers. Each chunk writes
// to its own forceScratch; results are merged in slot order so the sum is
// deterministic for a fixed worker count.
type forcePool struct {
	u          *Universe
	numWorkers int
	scratches  []forceScratch

	workChan chan forceChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newForcePool(u *Universe, workers int) *forcePool {
	return &forcePool{
		u:          u,
		numWorkers: workers,
		scratches:  make([]forceScratch, workers),
	}
}

// start launches the persistent workers.
func (p *forcePool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan forceChunk)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *forcePool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	p.running = false
}

func (p *forcePool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			p.u.accumulateRange(chunk.lo, chunk.hi, &p.scratches[chunk.slot])
			p.doneChan <- struct{}{}
		}
	}
}

// run splits [0, n) into numWorkers contiguous chunks, waits for every
// chunk, then sums the per-worker force buffers into dst and appends all
// candidates to cands.
func (p *forcePool) run(n int, dst []r2.Vec, cands []candidate) []candidate {
	p.start()

	for w := range p.scratches {
		p.scratches[w].reset(n)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		lo := w * chunkSize
		hi := min(lo+chunkSize, n)
		if lo >= hi {
			continue
		}
		p.workChan <- forceChunk{lo: lo, hi: hi, slot: w}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}

	// Merge in slot order so the float sums do not depend on scheduling.
	for w := range p.scratches {
		s := &p.scratches[w]
		for k := 0; k < n; k++ {
			dst[k] = r2.Add(dst[k], s.forces[k])
		}
		cands = append(cands, s.cands...)
	}
	return cands
}
