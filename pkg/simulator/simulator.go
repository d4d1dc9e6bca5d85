package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/pkg/instrument"
	"github.com/fiximulator/fiximulator/pkg/pricemath"
	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// Simulator owns the order book, the execution log and the IOI registry,
// and drives every order through the lifecycle engine. Session callbacks and
// the background actors all funnel through here; transitions are serialized
// by the simulator's lock and sends happen after the lock is released.
type Simulator struct {
	gateway  Gateway
	observer Observer
	settings *Settings
	policy   *AutoPolicy
	catalog  *instrument.Catalog

	book  *OrderBook
	execs *ExecutionLog
	iois  *IOISet

	engine   *LifecycleEngine
	orderIDs *IDAllocator
	ioiIDs   *IDAllocator

	executor *Executor

	mu chanMutex

	// outbox holds queued execution-report sends in transition order; a
	// single drainer at a time delivers them, so the wire order matches the
	// order the engine produced them in.
	outMu  sync.Mutex
	outbox deque.Deque[func()]
	sendMu sync.Mutex

	log *zap.SugaredLogger
}

// chanMutex is a channel-backed mutex so transitions stay serializable while
// remaining cheap to hand between the session goroutine and the actors.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	m := make(chanMutex, 1)
	m <- struct{}{}
	return m
}

func (m chanMutex) Lock()   { <-m }
func (m chanMutex) Unlock() { m <- struct{}{} }

func NewSimulator(settings *Settings, catalog *instrument.Catalog, observer Observer) *Simulator {
	if observer == nil {
		observer = NopObserver{}
	}
	policy := NewAutoPolicy(settings)
	execIDs := NewIDAllocator("E")
	s := &Simulator{
		observer: observer,
		settings: settings,
		policy:   policy,
		catalog:  catalog,
		book:     NewOrderBook(),
		execs:    NewExecutionLog(),
		iois:     NewIOISet(),
		engine:   NewLifecycleEngine(execIDs, policy.PricePrecision),
		orderIDs: NewIDAllocator("O"),
		ioiIDs:   NewIDAllocator("IOI"),
		mu:       newChanMutex(),
		log:      zap.S(),
	}
	return s
}

// AddGateway wires the session layer. Must be called before Start.
func (s *Simulator) AddGateway(g Gateway) {
	s.gateway = g
}

func (s *Simulator) Start(ctx context.Context) error {
	return s.gateway.Start(ctx)
}

func (s *Simulator) Stop() {
	if s.executor != nil {
		s.executor.Stop()
	}
	s.gateway.Stop()
}

// Accessors for observers and tooling; all return snapshots or registries
// that snapshot on read.

func (s *Simulator) Orders() *OrderBook           { return s.book }
func (s *Simulator) Executions() *ExecutionLog    { return s.execs }
func (s *Simulator) IOIs() *IOISet                { return s.iois }
func (s *Simulator) Settings() *Settings          { return s.settings }
func (s *Simulator) Policy() *AutoPolicy          { return s.policy }
func (s *Simulator) Catalog() *instrument.Catalog { return s.catalog }

// Connected reports whether the session layer has a logged-on counterparty.
func (s *Simulator) Connected() bool {
	return s.gateway != nil && s.gateway.Connected()
}

// SessionUp is called by the gateway on logon.
func (s *Simulator) SessionUp(sessionID string) {
	s.log.Infow("session logged on", "session", sessionID)
	s.observer.ConnectionStatus(true)
}

// SessionDown is called by the gateway on logout.
func (s *Simulator) SessionDown(sessionID string) {
	s.log.Infow("session logged out", "session", sessionID)
	s.observer.ConnectionStatus(false)
}

// AddOrder handles an inbound NewOrderSingle. When the executor is running
// the order is queued for it; otherwise the auto policy decides what happens
// next, and in headless mode the full ack/pending/fill/done pipeline runs
// inline with the configured per-stage delay.
func (s *Simulator) AddOrder(ctx context.Context, req *model.NewOrderRequest) {
	order := &model.Order{
		OrderID:       s.orderIDs.Next(),
		ClOrdID:       req.ClOrdID,
		Symbol:        req.Symbol,
		SecurityID:    req.SecurityID,
		IDSource:      req.IDSource,
		CustomField:   req.CustomField,
		Side:          req.Side,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Limit:         req.Price,
		Status:        model.OrderStatusUnknown,
		Open:          req.Quantity,
		AvgPx:         decimal.Zero,
		ReceivedOrder: true,
	}

	if s.executor != nil && s.executor.Running() {
		s.book.Add(order, true)
		s.observer.OrdersUpdated()
		s.executor.Wake()
		return
	}

	s.book.Add(order, false)
	s.observer.OrdersUpdated()

	if s.policy.AutoAcknowledge() {
		s.Acknowledge(order) // nolint:errcheck
	}
	if !s.policy.UIEnabled() {
		s.runHeadlessPipeline(order)
	}
}

// runHeadlessPipeline drives a new order to done-for-day without operator
// input. It runs on the inbound dispatch goroutine, so per-order report
// ordering is preserved.
func (s *Simulator) runHeadlessPipeline(order *model.Order) {
	delay := time.Duration(s.policy.DelaySeconds()) * time.Second

	time.Sleep(delay)
	s.mu.Lock()
	order.ReceivedOrder = true // still awaiting simulated acceptance
	s.mu.Unlock()
	s.PendingNew(order) // nolint:errcheck

	time.Sleep(delay)
	s.AutoExecute(order)

	time.Sleep(delay)
	s.DoneForDay(order) // nolint:errcheck
}

// CancelOrder handles an inbound OrderCancelRequest. An unknown
// OrigClOrdID still produces an order record so the auto responses can
// answer the client.
func (s *Simulator) CancelOrder(ctx context.Context, req *model.CancelRequest) {
	order := s.adoptRequest(req.OrigClOrdID, req.ClOrdID, req.Symbol, req.Side, func(o *model.Order) {
		o.ReceivedCancel = true
	})
	s.observer.OrdersUpdated()

	if s.policy.AutoPendingCancel() {
		s.PendingCancel(order) // nolint:errcheck
	}
	if s.policy.AutoCancel() {
		s.Cancel(order) // nolint:errcheck
	}
}

// ReplaceOrder handles an inbound OrderCancelReplaceRequest.
func (s *Simulator) ReplaceOrder(ctx context.Context, req *model.ReplaceRequest) {
	order := s.adoptRequest(req.OrigClOrdID, req.ClOrdID, req.Symbol, req.Side, func(o *model.Order) {
		o.ReceivedReplace = true
	})
	s.observer.OrdersUpdated()

	if s.policy.AutoPendingReplace() {
		s.PendingReplace(order) // nolint:errcheck
	}
	if s.policy.AutoReplace() {
		s.Replace(order) // nolint:errcheck
	}
}

// adoptRequest attaches a cancel or replace request to the working order it
// references, updating the ClOrdID chain. When the original is unknown a
// fresh record in <UNKNOWN> status is created from the request.
func (s *Simulator) adoptRequest(origClOrdID, clOrdID, symbol string, side model.OrderSide, mark func(*model.Order)) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.book.GetByClOrdID(origClOrdID)
	if !ok {
		s.log.Warnw("request references unknown order", "origClOrdID", origClOrdID)
		order = &model.Order{
			OrderID:     s.orderIDs.Next(),
			ClOrdID:     clOrdID,
			OrigClOrdID: origClOrdID,
			Symbol:      symbol,
			Side:        side,
			Status:      model.OrderStatusUnknown,
			AvgPx:       decimal.Zero,
		}
		mark(order)
		s.book.Add(order, false)
		return order
	}

	order.OrigClOrdID = origClOrdID
	order.ClOrdID = clOrdID
	mark(order)
	s.book.Reindex(order)
	return order
}

// DontKnowTrade flags the referenced execution as DK'd. Unknown references
// are logged and ignored.
func (s *Simulator) DontKnowTrade(ctx context.Context, execID string) {
	if !s.execs.MarkDKd(execID) {
		s.log.Warnw("dont-know-trade references unknown execution", "execID", execID)
		return
	}
	s.observer.ExecutionsUpdated()
}

// transition applies one engine event under the lock, records the resulting
// execution and queues its send, then dispatches after the lock is released.
// Send failures are logged only; the execution record already exists in the
// log.
func (s *Simulator) transition(op string, fn func() (*model.Execution, error)) (*model.Execution, error) {
	s.mu.Lock()
	exec, err := fn()
	if err != nil {
		s.mu.Unlock()
		s.log.Warnw("event rejected", "op", op, "err", err)
		return nil, err
	}
	s.execs.Add(exec)
	s.enqueueSend(func() {
		if sendErr := s.gateway.SendExecution(exec); sendErr != nil {
			s.log.Errorw("send execution failed", "op", op, "execID", exec.ExecID, "err", sendErr)
		}
	})
	s.mu.Unlock()

	s.observer.OrdersUpdated()
	s.observer.ExecutionsUpdated()

	s.drainSends()
	return exec, nil
}

// enqueueSend appends an outbound dispatch. Callers hold the simulator lock,
// so queue order equals transition order.
func (s *Simulator) enqueueSend(send func()) {
	s.outMu.Lock()
	s.outbox.PushBack(send)
	s.outMu.Unlock()
}

// drainSends delivers queued sends in FIFO order. The drainer holding sendMu
// also delivers sends queued by other goroutines while it runs; late comers
// find the queue empty and return. The simulator lock is never held here.
func (s *Simulator) drainSends() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	for {
		s.outMu.Lock()
		if s.outbox.Len() == 0 {
			s.outMu.Unlock()
			return
		}
		send := s.outbox.PopFront()
		s.outMu.Unlock()
		send()
	}
}

func (s *Simulator) Acknowledge(o *model.Order) (*model.Execution, error) {
	return s.transition("acknowledge", func() (*model.Execution, error) { return s.engine.Acknowledge(o) })
}

func (s *Simulator) Reject(o *model.Order) (*model.Execution, error) {
	return s.transition("reject", func() (*model.Execution, error) { return s.engine.Reject(o) })
}

func (s *Simulator) PendingNew(o *model.Order) (*model.Execution, error) {
	return s.transition("pending-new", func() (*model.Execution, error) { return s.engine.PendingNew(o) })
}

func (s *Simulator) DoneForDay(o *model.Order) (*model.Execution, error) {
	return s.transition("done-for-day", func() (*model.Execution, error) { return s.engine.DoneForDay(o) })
}

func (s *Simulator) PendingCancel(o *model.Order) (*model.Execution, error) {
	return s.transition("pending-cancel", func() (*model.Execution, error) { return s.engine.PendingCancel(o) })
}

func (s *Simulator) Cancel(o *model.Order) (*model.Execution, error) {
	return s.transition("cancel", func() (*model.Execution, error) { return s.engine.Cancel(o) })
}

func (s *Simulator) PendingReplace(o *model.Order) (*model.Execution, error) {
	return s.transition("pending-replace", func() (*model.Execution, error) { return s.engine.PendingReplace(o) })
}

func (s *Simulator) Replace(o *model.Order) (*model.Execution, error) {
	return s.transition("replace", func() (*model.Execution, error) { return s.engine.Replace(o) })
}

// Fill executes lastShares at lastPx against the order.
func (s *Simulator) Fill(o *model.Order, lastShares int64, lastPx decimal.Decimal) (*model.Execution, error) {
	return s.transition("fill", func() (*model.Execution, error) { return s.engine.Fill(o, lastShares, lastPx) })
}

// Bust retroactively cancels the referenced fill.
func (s *Simulator) Bust(execID string) (*model.Execution, error) {
	ref, ok := s.execs.GetByExecID(execID)
	if !ok {
		s.log.Warnw("bust references unknown execution", "execID", execID)
		return nil, errExecutionNotFound
	}
	return s.transition("bust", func() (*model.Execution, error) { return s.engine.Bust(ref) })
}

// Correct restates the referenced fill as newShares@newPx.
func (s *Simulator) Correct(execID string, newShares int64, newPx decimal.Decimal) (*model.Execution, error) {
	ref, ok := s.execs.GetByExecID(execID)
	if !ok {
		s.log.Warnw("correct references unknown execution", "execID", execID)
		return nil, errExecutionNotFound
	}
	return s.transition("correct", func() (*model.Execution, error) { return s.engine.Correct(ref, newShares, newPx) })
}

// RejectCancelReplace answers a cancel (cancel=true) or replace request with
// an OrderCancelReject.
func (s *Simulator) RejectCancelReplace(o *model.Order, cancel bool) error {
	s.mu.Lock()
	reject := s.engine.RejectCancelReplace(o, cancel)
	s.mu.Unlock()
	s.observer.OrdersUpdated()

	if err := s.gateway.SendCancelReject(reject); err != nil {
		s.log.Errorw("send cancel reject failed", "orderID", o.OrderID, "err", err)
		return err
	}
	return nil
}

// SendIOI validates, dispatches and retains an indication of interest.
func (s *Simulator) SendIOI(i *model.IOI) error {
	if i.ID == "" {
		i.ID = s.ioiIDs.Next()
	}
	if i.NeedsRefID() && i.RefID == "" {
		s.log.Warnw("ioi rejected", "ioiID", i.ID, "err", errMissingRefID)
		return errMissingRefID
	}

	if err := s.gateway.SendIOI(i); err != nil {
		s.log.Errorw("send ioi failed", "ioiID", i.ID, "err", err)
	}
	s.iois.Add(i)
	s.observer.IOIsUpdated()
	return nil
}

// AutoExecute fills a new order in the headless pipeline. Partials is fixed
// at one, so the order completes in a single full fill.
func (s *Simulator) AutoExecute(o *model.Order) {
	s.executeOrder(o, 1, 0, nil)
}

// executeOrder breaks an order into up to partials fills at the instrument
// reference price (or a random price for unknown symbols), jittering each
// fill by one cent and pausing delay between partials.
func (s *Simulator) executeOrder(o *model.Order, partials int, delay time.Duration, stop <-chan struct{}) {
	if partials < 1 {
		partials = 1
	}

	fillQty := o.Quantity / int64(partials)
	if fillQty == 0 {
		fillQty = 1
	}
	fillPrice := s.referencePrice(o.Symbol)
	cent := decimal.New(1, -2)

	for i := 0; i < partials; i++ {
		open := s.openQty(o)
		if open <= 0 {
			return
		}

		if rand.Intn(2) == 0 {
			fillPrice = fillPrice.Add(cent)
		} else {
			fillPrice = fillPrice.Sub(cent)
		}

		if fillQty < open && i != partials-1 {
			s.Fill(o, fillQty, fillPrice) // nolint:errcheck
		} else {
			s.Fill(o, open, fillPrice) // nolint:errcheck
			return
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-stop:
				return
			}
		}
	}
}

func (s *Simulator) openQty(o *model.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return o.Open
}

// referencePrice looks the symbol up in the catalog and falls back to a
// random price in [0,100) rounded to the configured precision.
func (s *Simulator) referencePrice(symbol string) decimal.Decimal {
	if instr := s.catalog.Get(symbol); instr != nil && !instr.Price.IsZero() {
		return instr.Price
	}
	return pricemath.Round(decimal.NewFromFloat(rand.Float64()*100), s.policy.PricePrecision())
}
