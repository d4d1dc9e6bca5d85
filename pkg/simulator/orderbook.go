package simulator

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// OrderBook is the in-memory registry of every order the simulator has seen.
// All mutation happens under the book's lock; observers get copies.
type OrderBook struct {
	mu            sync.RWMutex
	byOrderID     map[string]*model.Order
	byClOrdID     map[string]*model.Order
	byOrigClOrdID map[string]*model.Order
	seq           []*model.Order

	toFill deque.Deque[*model.Order]
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		byOrderID:     make(map[string]*model.Order),
		byClOrdID:     make(map[string]*model.Order),
		byOrigClOrdID: make(map[string]*model.Order),
	}
}

// Add registers an order. When needsFill is set the order is also queued for
// the executor.
func (b *OrderBook) Add(o *model.Order, needsFill bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.byOrderID[o.OrderID] = o
	b.index(o)
	b.seq = append(b.seq, o)
	if needsFill {
		b.toFill.PushBack(o)
	}
}

// index refreshes the ClOrdID lookups; call under lock whenever an order
// adopts a new client order id.
func (b *OrderBook) index(o *model.Order) {
	if o.ClOrdID != "" {
		b.byClOrdID[o.ClOrdID] = o
	}
	if o.OrigClOrdID != "" {
		b.byOrigClOrdID[o.OrigClOrdID] = o
	}
}

// Reindex publishes a changed ClOrdID chain for an existing order.
func (b *OrderBook) Reindex(o *model.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.index(o)
}

func (b *OrderBook) GetByOrderID(orderID string) (*model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.byOrderID[orderID]
	return o, ok
}

func (b *OrderBook) GetByClOrdID(clOrdID string) (*model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.byClOrdID[clOrdID]
	return o, ok
}

func (b *OrderBook) GetByOrigClOrdID(origClOrdID string) (*model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.byOrigClOrdID[origClOrdID]
	return o, ok
}

// QueueForFill appends an order to the executor's queue.
func (b *OrderBook) QueueForFill(o *model.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toFill.PushBack(o)
}

// NextToFill pops the next order still waiting for an acknowledgement.
// Orders whose ReceivedOrder flag was cleared while queued are skipped.
func (b *OrderBook) NextToFill() (*model.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.toFill.Len() > 0 {
		o := b.toFill.PopFront()
		if o.ReceivedOrder {
			return o, true
		}
	}
	return nil, false
}

// Size returns the number of registered orders.
func (b *OrderBook) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.seq)
}

// Snapshot returns copies of all orders in insertion order, for observers.
func (b *OrderBook) Snapshot() []model.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Order, 0, len(b.seq))
	for _, o := range b.seq {
		out = append(out, *o)
	}
	return out
}
