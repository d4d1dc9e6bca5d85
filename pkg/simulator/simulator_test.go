package simulator

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fiximulator/fiximulator/pkg/instrument"
	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// fakeGateway records outbound traffic in memory.
type fakeGateway struct {
	mu         sync.Mutex
	connected  bool
	executions []*model.Execution
	rejects    []*model.CancelReject
	iois       []*model.IOI
	sendErr    error
}

func (g *fakeGateway) Start(ctx context.Context) error { return nil }
func (g *fakeGateway) Stop()                           {}

func (g *fakeGateway) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *fakeGateway) SendExecution(e *model.Execution) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.executions = append(g.executions, e)
	return nil
}

func (g *fakeGateway) SendCancelReject(r *model.CancelReject) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.rejects = append(g.rejects, r)
	return nil
}

func (g *fakeGateway) SendIOI(i *model.IOI) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.iois = append(g.iois, i)
	return nil
}

func (g *fakeGateway) sentExecTypes() []model.ExecType {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.ExecType, 0, len(g.executions))
	for _, e := range g.executions {
		out = append(out, e.ExecType)
	}
	return out
}

func testCatalog() *instrument.Catalog {
	return instrument.NewCatalog([]instrument.Instrument{
		{Symbol: "AAPL", Ticker: "AAPL", RIC: "AAPL.O", Cusip: "037833100", Name: "Apple Inc.", Price: dec("150.00")},
	})
}

func newTestSimulator(values map[string]string) (*Simulator, *fakeGateway) {
	settings := NewSettings()
	for k, v := range values {
		settings.Set(k, v)
	}
	sim := NewSimulator(settings, testCatalog(), nil)
	gw := &fakeGateway{connected: true}
	sim.AddGateway(gw)
	return sim, gw
}

func newOrderReq(clOrdID string, qty int64) *model.NewOrderRequest {
	return &model.NewOrderRequest{
		ClOrdID:  clOrdID,
		Symbol:   "AAPL",
		Side:     model.OrderSideBuy,
		Type:     model.OrderTypeLimit,
		Quantity: qty,
	}
}

func TestHeadlessAutoPipeline(t *testing.T) {
	sim, gw := newTestSimulator(map[string]string{
		keyAutoAcknowledge: "true",
		keyUIEnabled:       "false",
		keyDelayInSeconds:  "0",
	})

	sim.AddOrder(context.Background(), newOrderReq("C1", 100))

	want := []model.ExecType{
		model.ExecTypeNew,
		model.ExecTypePendingNew,
		model.ExecTypeFill,
		model.ExecTypeDoneForDay,
	}
	got := gw.sentExecTypes()
	if len(got) != len(want) {
		t.Fatalf("sent %d reports %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d = %s, want %s", i, got[i], want[i])
		}
	}

	o, ok := sim.Orders().GetByClOrdID("C1")
	if !ok {
		t.Fatal("order not in book")
	}
	if o.Status != model.OrderStatusDoneForDay || o.Executed != 100 || o.Open != 0 {
		t.Errorf("final order state wrong: %+v", o)
	}

	// fill price is the instrument reference jittered by one cent
	if o.AvgPx.LessThan(dec("149.99")) || o.AvgPx.GreaterThan(dec("150.01")) {
		t.Errorf("avg = %s, want 150.00 +/- 0.01", o.AvgPx)
	}

	fill := gw.executions[2]
	if fill.LastShares != 100 || !fill.LastPx.Equal(o.AvgPx) {
		t.Errorf("fill = %d@%s, want 100 shares at the avg price", fill.LastShares, fill.LastPx)
	}
}

func TestSendFailureKeepsEngineState(t *testing.T) {
	sim, gw := newTestSimulator(map[string]string{keyAutoAcknowledge: "true"})
	gw.sendErr = context.DeadlineExceeded

	sim.AddOrder(context.Background(), newOrderReq("C1", 100))

	o, _ := sim.Orders().GetByClOrdID("C1")
	if o.Status != model.OrderStatusNew {
		t.Errorf("status = %s, want New despite send failure", o.Status)
	}
	// the execution stays in the log even though the wire send failed
	if sim.Executions().Size() != 1 {
		t.Errorf("exec log size = %d, want 1", sim.Executions().Size())
	}
}

func TestCancelAutoResponses(t *testing.T) {
	sim, gw := newTestSimulator(map[string]string{
		keyAutoAcknowledge:   "true",
		keyAutoPendingCancel: "true",
		keyAutoCancel:        "true",
	})

	sim.AddOrder(context.Background(), newOrderReq("C1", 100))
	sim.CancelOrder(context.Background(), &model.CancelRequest{
		ClOrdID:     "C2",
		OrigClOrdID: "C1",
		Symbol:      "AAPL",
		Side:        model.OrderSideBuy,
	})

	o, ok := sim.Orders().GetByClOrdID("C2")
	if !ok {
		t.Fatal("order not reachable under adopted ClOrdID")
	}
	if o.Status != model.OrderStatusCanceled {
		t.Errorf("status = %s, want Canceled", o.Status)
	}
	if o.OrigClOrdID != "C1" {
		t.Errorf("origClOrdID = %s, want C1", o.OrigClOrdID)
	}

	types := gw.sentExecTypes()
	want := []model.ExecType{model.ExecTypeNew, model.ExecTypePendingCancel, model.ExecTypeCanceled}
	if len(types) != len(want) {
		t.Fatalf("sent %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("report %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestReplaceAutoResponses(t *testing.T) {
	sim, _ := newTestSimulator(map[string]string{
		keyAutoAcknowledge:    "true",
		keyAutoPendingReplace: "true",
		keyAutoReplace:        "true",
	})

	sim.AddOrder(context.Background(), newOrderReq("C1", 100))
	sim.ReplaceOrder(context.Background(), &model.ReplaceRequest{
		ClOrdID:     "C2",
		OrigClOrdID: "C1",
		Symbol:      "AAPL",
		Side:        model.OrderSideBuy,
		Quantity:    200,
	})

	o, _ := sim.Orders().GetByClOrdID("C2")
	if o.Status != model.OrderStatusReplaced {
		t.Errorf("status = %s, want Replaced", o.Status)
	}
}

func TestCancelUnknownOrderCreatesRecord(t *testing.T) {
	sim, gw := newTestSimulator(nil)

	sim.CancelOrder(context.Background(), &model.CancelRequest{
		ClOrdID:     "C9",
		OrigClOrdID: "missing",
		Symbol:      "AAPL",
		Side:        model.OrderSideBuy,
	})

	o, ok := sim.Orders().GetByClOrdID("C9")
	if !ok {
		t.Fatal("unknown cancel should register an order record")
	}
	if o.Status != model.OrderStatusUnknown || !o.ReceivedCancel {
		t.Errorf("record state wrong: %+v", o)
	}

	// operator refuses the request; the never-acknowledged order reports NEW
	if err := sim.RejectCancelReplace(o, true); err != nil {
		t.Fatalf("reject cancel: %v", err)
	}
	if len(gw.rejects) != 1 {
		t.Fatalf("sent %d rejects, want 1", len(gw.rejects))
	}
	if gw.rejects[0].ResponseTo != model.CxlRejResponseToCancelRequest {
		t.Errorf("responseTo = %s", gw.rejects[0].ResponseTo)
	}
	if o.Status != model.OrderStatusNew {
		t.Errorf("status = %s, want New", o.Status)
	}
}

func TestDontKnowTrade(t *testing.T) {
	sim, _ := newTestSimulator(map[string]string{keyAutoAcknowledge: "true"})

	sim.AddOrder(context.Background(), newOrderReq("C1", 100))
	o, _ := sim.Orders().GetByClOrdID("C1")
	exec, err := sim.Fill(o, 100, dec("150.00"))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	sim.DontKnowTrade(context.Background(), exec.ExecID)
	if got, _ := sim.Executions().GetByExecID(exec.ExecID); !got.DKd {
		t.Error("execution should be flagged DKd")
	}

	// unknown references are ignored
	sim.DontKnowTrade(context.Background(), "nope")
}

func TestBustUnknownExecution(t *testing.T) {
	sim, _ := newTestSimulator(nil)

	if _, err := sim.Bust("nope"); err != errExecutionNotFound {
		t.Errorf("err = %v, want errExecutionNotFound", err)
	}
	if _, err := sim.Correct("nope", 10, dec("1.00")); err != errExecutionNotFound {
		t.Errorf("err = %v, want errExecutionNotFound", err)
	}
}

func TestBustAndCorrectThroughSimulator(t *testing.T) {
	sim, _ := newTestSimulator(map[string]string{keyAutoAcknowledge: "true"})

	sim.AddOrder(context.Background(), newOrderReq("C1", 200))
	o, _ := sim.Orders().GetByClOrdID("C1")
	first, _ := sim.Fill(o, 100, dec("20.00"))
	second, _ := sim.Fill(o, 100, dec("20.10"))

	if !o.AvgPx.Equal(dec("20.05")) {
		t.Fatalf("avg = %s, want 20.05", o.AvgPx)
	}

	bust, err := sim.Bust(second.ExecID)
	if err != nil {
		t.Fatalf("bust: %v", err)
	}
	if o.Executed != 100 || o.Open != 100 || !o.AvgPx.Equal(dec("20.00")) {
		t.Errorf("post-bust state wrong: %+v", o)
	}
	if bust.RefExecID != second.ExecID || bust.ExecTransType != model.ExecTransTypeCancel {
		t.Errorf("bust exec wrong: %+v", bust)
	}

	corr, err := sim.Correct(first.ExecID, 100, dec("20.02"))
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if o.Executed != 100 || !o.AvgPx.Equal(dec("20.02")) {
		t.Errorf("post-correct state wrong: %+v", o)
	}
	if corr.RefExecID != first.ExecID || corr.ExecTransType != model.ExecTransTypeCorrect {
		t.Errorf("correct exec wrong: %+v", corr)
	}

	// a second bust of the same fill is refused and leaves state alone
	if _, err := sim.Bust(second.ExecID); err == nil {
		t.Error("expected error busting the same execution twice")
	}
	if o.Executed != 100 || !o.AvgPx.Equal(dec("20.02")) {
		t.Errorf("state changed by refused bust: %+v", o)
	}
}

func TestReportsCarryStatusAtTransition(t *testing.T) {
	sim, gw := newTestSimulator(map[string]string{keyAutoAcknowledge: "true"})

	sim.AddOrder(context.Background(), newOrderReq("C1", 200))
	o, _ := sim.Orders().GetByClOrdID("C1")
	sim.Fill(o, 100, dec("20.00")) // nolint:errcheck
	sim.Cancel(o)                  // nolint:errcheck

	if len(gw.executions) != 3 {
		t.Fatalf("sent %d reports, want 3", len(gw.executions))
	}
	partial := gw.executions[1]
	if partial.ExecType != model.ExecTypePartialFill {
		t.Fatalf("report 1 = %s, want PartialFill", partial.ExecType)
	}
	// the partial-fill report keeps the status it was produced with even
	// though the order has since been canceled
	if partial.OrdStatus != model.OrderStatusPartiallyFilled {
		t.Errorf("report status = %s, want PartiallyFilled", partial.OrdStatus)
	}
	if o.Status != model.OrderStatusCanceled {
		t.Errorf("order status = %s, want Canceled", o.Status)
	}
}

func TestSendIOI(t *testing.T) {
	sim, gw := newTestSimulator(nil)

	ioi := &model.IOI{
		TransType: model.IOITransTypeNew,
		Side:      model.OrderSideBuy,
		Quantity:  500,
		Symbol:    "AAPL",
		Price:     dec("150.00"),
	}
	if err := sim.SendIOI(ioi); err != nil {
		t.Fatalf("send ioi: %v", err)
	}
	if ioi.ID == "" {
		t.Error("ioi should get an id assigned")
	}
	if sim.IOIs().Size() != 1 || len(gw.iois) != 1 {
		t.Errorf("ioi not dispatched and retained")
	}

	// CANCEL without a reference is refused before dispatch
	bad := &model.IOI{TransType: model.IOITransTypeCancel, Side: model.OrderSideSell, Quantity: 100, Symbol: "AAPL"}
	if err := sim.SendIOI(bad); err != errMissingRefID {
		t.Errorf("err = %v, want errMissingRefID", err)
	}
	if sim.IOIs().Size() != 1 {
		t.Error("refused ioi must not be retained")
	}

	// with a reference it goes out
	ok := &model.IOI{TransType: model.IOITransTypeCancel, RefID: ioi.ID, Side: model.OrderSideSell, Quantity: 100, Symbol: "AAPL"}
	if err := sim.SendIOI(ok); err != nil {
		t.Fatalf("send cancel ioi: %v", err)
	}
	if len(gw.iois) != 2 {
		t.Errorf("sent %d iois, want 2", len(gw.iois))
	}
}

func TestFillOnCanceledOrderRefused(t *testing.T) {
	sim, gw := newTestSimulator(map[string]string{
		keyAutoAcknowledge:   "true",
		keyAutoPendingCancel: "true",
		keyAutoCancel:        "true",
	})

	sim.AddOrder(context.Background(), newOrderReq("C1", 300))
	o, _ := sim.Orders().GetByClOrdID("C1")
	sim.Fill(o, 150, dec("10.00")) // nolint:errcheck

	sim.CancelOrder(context.Background(), &model.CancelRequest{ClOrdID: "C2", OrigClOrdID: "C1", Symbol: "AAPL", Side: model.OrderSideBuy})
	if o.Status != model.OrderStatusCanceled {
		t.Fatalf("status = %s, want Canceled", o.Status)
	}

	before := len(gw.sentExecTypes())
	if _, err := sim.Fill(o, 150, decimal.NewFromInt(10)); err == nil {
		t.Error("expected error filling a canceled order")
	}
	if len(gw.sentExecTypes()) != before {
		t.Error("refused event must not produce a report")
	}
}
