package simulator

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// executorIdleRecheck is how long the executor sleeps when its queue is
// drained before checking again; a Wake cuts the sleep short.
const executorIdleRecheck = 5000 * time.Millisecond

// Executor drains the order book's fill queue in the background,
// acknowledging each order and then working it into partial fills. Delay and
// partial count can be retuned while it runs.
type Executor struct {
	sim *Simulator

	mu       sync.Mutex
	delay    time.Duration
	partials int
	running  bool
	stopCh   chan struct{}
	wakeCh   chan struct{}
	doneCh   chan struct{}

	log *zap.SugaredLogger
}

func NewExecutor(sim *Simulator, delay time.Duration, partials int) *Executor {
	if partials < 1 {
		partials = 1
	}
	e := &Executor{
		sim:      sim,
		delay:    delay,
		partials: partials,
		log:      zap.S(),
	}
	sim.executor = e
	return e
}

func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Executor) SetDelay(d time.Duration) {
	e.mu.Lock()
	e.delay = d
	e.mu.Unlock()
}

func (e *Executor) SetPartials(n int) {
	if n < 1 {
		n = 1
	}
	e.mu.Lock()
	e.partials = n
	e.mu.Unlock()
}

func (e *Executor) params() (time.Duration, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.delay, e.partials
}

// Start launches the fill loop. Starting a running executor is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.wakeCh = make(chan struct{}, 1)
	e.doneCh = make(chan struct{})
	stop, wake, done := e.stopCh, e.wakeCh, e.doneCh
	e.mu.Unlock()

	e.log.Info("executor started")
	e.sim.observer.ExecutorStatus(true)
	go e.loop(stop, wake, done)
}

// Stop signals the loop and waits for it to exit.
func (e *Executor) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	done := e.doneCh
	e.mu.Unlock()

	<-done
	e.log.Info("executor stopped")
	e.sim.observer.ExecutorStatus(false)
}

// Wake nudges an idle executor so a freshly queued order is picked up
// without waiting out the idle recheck.
func (e *Executor) Wake() {
	e.mu.Lock()
	wake := e.wakeCh
	e.mu.Unlock()
	if wake == nil {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

func (e *Executor) loop(stop <-chan struct{}, wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		var order *model.Order
		ok := e.sim.Connected()
		if ok {
			order, ok = e.sim.book.NextToFill()
		}
		if !ok {
			select {
			case <-stop:
				return
			case <-wake:
			case <-time.After(executorIdleRecheck):
			}
			continue
		}

		if _, err := e.sim.Acknowledge(order); err != nil {
			continue
		}
		delay, partials := e.params()
		e.sim.executeOrder(order, partials, delay, stop)
	}
}
