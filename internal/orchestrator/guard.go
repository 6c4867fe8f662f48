package orchestrator

import "sync/atomic"

// Guard is a single-slot semaphore. The check and the set happen in one
// compare-and-swap so two triggers can never both win.
type Guard struct {
	busy atomic.Bool
}

func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}

func (g *Guard) Held() bool {
	return g.busy.Load()
}
