package thing

import (
	"sync"
)

// Fleet supervises a set of sync loops that share one property sink.
//
// Registration, start and shutdown are supervisor concerns; the loops
// themselves never know about each other. Shutdown is idempotent and
// ordered: every loop is cancelled and joined before the shared sink
// is stopped, so no loop can notify into a dead sink.
type Fleet struct {
	sink   Sink
	logger Logger

	mu    sync.Mutex
	loops []*SyncLoop

	stopOnce sync.Once
}

// NewFleet builds an empty fleet around a shared sink.
func NewFleet(sink Sink, logger Logger) *Fleet {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Fleet{sink: sink, logger: logger}
}

// Register adds a loop to the managed set. Loops must be registered
// before StartAll; late registrations are not started.
func (f *Fleet) Register(loop *SyncLoop) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loops = append(f.loops, loop)
}

// Loops returns the managed loops, for status reporting.
func (f *Fleet) Loops() []*SyncLoop {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*SyncLoop, len(f.loops))
	copy(out, f.loops)
	return out
}

// Snapshot returns the current status of every managed loop.
func (f *Fleet) Snapshot() []Status {
	loops := f.Loops()
	out := make([]Status, 0, len(loops))
	for _, l := range loops {
		out = append(out, l.Snapshot())
	}
	return out
}

// StartAll starts every registered loop. The first start error stops
// the rollout; loops already started keep running and are the
// caller's to shut down.
func (f *Fleet) StartAll() error {
	for _, loop := range f.Loops() {
		if err := loop.Start(); err != nil {
			return err
		}
		f.logger.Info("started sync loop", "thing_id", loop.ID())
	}
	return nil
}

// Shutdown cancels every loop, waits for all of them to unwind, then
// stops the shared sink. Safe to call from any goroutine, any number
// of times; later calls block until the first completes.
func (f *Fleet) Shutdown() {
	f.stopOnce.Do(func() {
		loops := f.Loops()
		f.logger.Info("shutting down fleet", "loops", len(loops))

		var wg sync.WaitGroup
		for _, loop := range loops {
			wg.Add(1)
			go func(l *SyncLoop) {
				defer wg.Done()
				l.CancelAndJoin()
			}(loop)
		}
		wg.Wait()

		if f.sink != nil {
			f.sink.Stop()
		}
		f.logger.Info("fleet shutdown complete")
	})
}
