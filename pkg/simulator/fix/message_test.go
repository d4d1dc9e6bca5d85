package fix

import (
	"testing"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix42/newordersingle"
	"github.com/quickfixgo/fix42/ordercancelreplacerequest"
	"github.com/quickfixgo/fix42/ordercancelrequest"
	"github.com/quickfixgo/tag"
	"github.com/shopspring/decimal"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrder() *model.Order {
	return &model.Order{
		OrderID:     "O1",
		ClOrdID:     "C1",
		Symbol:      "AAPL",
		SecurityID:  "037833100",
		IDSource:    "Cusip",
		CustomField: "blue",
		Side:        model.OrderSideBuy,
		Type:        model.OrderTypeLimit,
		Quantity:    100,
		Status:      model.OrderStatusFilled,
		Open:        0,
		Executed:    100,
		AvgPx:       dec("150.00"),
	}
}

func TestEncodeExecutionFill(t *testing.T) {
	o := testOrder()
	exec := &model.Execution{
		ExecID:        "E1",
		Order:         o,
		ClOrdID:       "C1",
		OrdStatus:     model.OrderStatusFilled,
		ExecType:      model.ExecTypeFill,
		ExecTransType: model.ExecTransTypeNew,
		LeavesQty:     0,
		CumQty:        100,
		AvgPx:         dec("150.00"),
		LastShares:    100,
		LastPx:        dec("150.00"),
	}

	msg := encodeExecution(exec, 4)

	if v, _ := msg.GetOrderID(); v != "O1" {
		t.Errorf("OrderID = %s", v)
	}
	if v, _ := msg.GetExecID(); v != "E1" {
		t.Errorf("ExecID = %s", v)
	}
	if v, _ := msg.GetExecType(); v != enum.ExecType_FILL {
		t.Errorf("ExecType = %s", v)
	}
	if v, _ := msg.GetOrdStatus(); v != enum.OrdStatus_FILLED {
		t.Errorf("OrdStatus = %s", v)
	}
	if v, _ := msg.GetSide(); v != enum.Side_BUY {
		t.Errorf("Side = %s", v)
	}
	if v, _ := msg.GetClOrdID(); v != "C1" {
		t.Errorf("ClOrdID = %s", v)
	}
	if v, _ := msg.GetLeavesQty(); !v.IsZero() {
		t.Errorf("LeavesQty = %s", v)
	}
	if v, _ := msg.GetCumQty(); !v.Equal(dec("100")) {
		t.Errorf("CumQty = %s", v)
	}
	if v, _ := msg.GetLastShares(); !v.Equal(dec("100")) {
		t.Errorf("LastShares = %s", v)
	}
	if v, _ := msg.GetSecurityID(); v != "037833100" {
		t.Errorf("SecurityID = %s", v)
	}
	if v, _ := msg.GetIDSource(); v != enum.IDSource_CUSIP {
		t.Errorf("IDSource = %s", v)
	}
	// the order's custom field rides along on tag 9999
	if v, err := msg.GetString(tagCustomField); err != nil || v != "blue" {
		t.Errorf("custom field = %q err=%v", v, err)
	}
}

func TestEncodeExecutionNonFillOmitsLastShares(t *testing.T) {
	o := testOrder()
	o.Status = model.OrderStatusNew
	o.Executed = 0
	o.Open = 100
	exec := &model.Execution{
		ExecID:        "E1",
		Order:         o,
		ClOrdID:       "C1",
		OrdStatus:     model.OrderStatusNew,
		ExecType:      model.ExecTypeNew,
		ExecTransType: model.ExecTransTypeNew,
		LeavesQty:     100,
	}

	msg := encodeExecution(exec, 4)
	if msg.Has(tag.LastShares) || msg.Has(tag.LastPx) {
		t.Error("LastShares/LastPx must not be set on a non-fill report")
	}
	if msg.Has(tag.ExecRefID) {
		t.Error("ExecRefID must not be set without a referenced execution")
	}
}

func TestEncodeExecutionUsesRecordedState(t *testing.T) {
	o := testOrder()
	exec := &model.Execution{
		ExecID:        "E1",
		Order:         o,
		ClOrdID:       "C1",
		OrdStatus:     model.OrderStatusPartiallyFilled,
		ExecType:      model.ExecTypePartialFill,
		ExecTransType: model.ExecTransTypeNew,
		LeavesQty:     50,
		CumQty:        50,
		AvgPx:         dec("150.00"),
		LastShares:    50,
		LastPx:        dec("150.00"),
	}

	// the order moves on before the report reaches the wire
	o.Status = model.OrderStatusCanceled
	o.ClOrdID = "C2"

	msg := encodeExecution(exec, 4)
	if v, _ := msg.GetOrdStatus(); v != enum.OrdStatus_PARTIALLY_FILLED {
		t.Errorf("OrdStatus = %s, want PARTIALLY_FILLED from the record", v)
	}
	if v, _ := msg.GetClOrdID(); v != "C1" {
		t.Errorf("ClOrdID = %s, want C1 from the record", v)
	}
}

func TestEncodeExecutionBustCarriesRefID(t *testing.T) {
	o := testOrder()
	exec := &model.Execution{
		ExecID:        "E2",
		RefExecID:     "E1",
		Order:         o,
		ClOrdID:       "C1",
		OrdStatus:     model.OrderStatusNew,
		ExecType:      model.ExecTypeFill,
		ExecTransType: model.ExecTransTypeCancel,
		LastShares:    100,
		LastPx:        dec("150.00"),
	}

	msg := encodeExecution(exec, 4)
	if v, _ := msg.GetExecRefID(); v != "E1" {
		t.Errorf("ExecRefID = %s, want E1", v)
	}
	if v, _ := msg.GetExecTransType(); v != enum.ExecTransType_CANCEL {
		t.Errorf("ExecTransType = %s, want CANCEL", v)
	}
}

func TestEncodeCancelReject(t *testing.T) {
	o := testOrder()
	o.OrigClOrdID = "C0"
	o.Status = model.OrderStatusNew

	msg := encodeCancelReject(&model.CancelReject{
		Order:      o,
		ResponseTo: model.CxlRejResponseToCancelReplaceRequest,
	})

	if v, _ := msg.GetOrderID(); v != "O1" {
		t.Errorf("OrderID = %s", v)
	}
	if v, _ := msg.GetOrigClOrdID(); v != "C0" {
		t.Errorf("OrigClOrdID = %s", v)
	}
	if v, _ := msg.GetOrdStatus(); v != enum.OrdStatus_NEW {
		t.Errorf("OrdStatus = %s", v)
	}
	if v, _ := msg.GetCxlRejResponseTo(); v != enum.CxlRejResponseTo_ORDER_CANCEL_REPLACE_REQUEST {
		t.Errorf("CxlRejResponseTo = %s", v)
	}
}

func TestEncodeIOI(t *testing.T) {
	ioi := &model.IOI{
		ID:           "IOI1",
		RefID:        "IOI0",
		TransType:    model.IOITransTypeCancel,
		Side:         model.OrderSideSell,
		Quantity:     5000,
		Symbol:       "AAPL",
		SecurityID:   "037833100",
		IDSource:     "Cusip",
		SecurityDesc: "Apple Inc",
		Price:        dec("150.2575"),
		Natural:      true,
	}

	msg := encodeIOI(ioi, 4)

	if v, _ := msg.GetIOIid(); v != "IOI1" {
		t.Errorf("IOIid = %s", v)
	}
	if v, _ := msg.GetIOIRefID(); v != "IOI0" {
		t.Errorf("IOIRefID = %s", v)
	}
	if v, _ := msg.GetIOITransType(); v != enum.IOITransType_CANCEL {
		t.Errorf("IOITransType = %s", v)
	}
	if v, _ := msg.GetIOIShares(); v != "5000" {
		t.Errorf("IOIShares = %s", v)
	}
	if v, _ := msg.GetSecurityID(); v != "037833100" {
		t.Errorf("SecurityID = %s", v)
	}
	if v, _ := msg.GetIDSource(); v != enum.IDSource_CUSIP {
		t.Errorf("IDSource = %s", v)
	}
	if v, _ := msg.GetSecurityDesc(); v != "Apple Inc" {
		t.Errorf("SecurityDesc = %s", v)
	}
	// the full configured precision survives encoding
	if v, _ := msg.GetPrice(); !v.Equal(dec("150.2575")) {
		t.Errorf("Price = %s, want 150.2575", v)
	}
	if v, _ := msg.GetIOINaturalFlag(); !v {
		t.Error("IOINaturalFlag should be set")
	}
	if v, _ := msg.GetCurrency(); v != "USD" {
		t.Errorf("Currency = %s", v)
	}
	if !msg.Has(tag.ValidUntilTime) {
		t.Error("ValidUntilTime should be set")
	}
}

func TestEncodeIOIWithoutSecurityID(t *testing.T) {
	ioi := &model.IOI{
		ID:        "IOI1",
		TransType: model.IOITransTypeNew,
		Side:      model.OrderSideBuy,
		Quantity:  100,
		Symbol:    "AAPL",
		Price:     dec("150.00"),
	}

	msg := encodeIOI(ioi, 4)
	if msg.Has(tag.SecurityID) || msg.Has(tag.IDSource) || msg.Has(tag.SecurityDesc) {
		t.Error("security identifiers must be omitted when not populated")
	}
	if msg.Has(tag.IOIRefID) {
		t.Error("IOIRefID must be omitted on NEW")
	}
}

func TestDecodeNewOrder(t *testing.T) {
	nos := newordersingle.New(
		field.NewClOrdID("C1"),
		field.NewHandlInst(enum.HandlInst_AUTOMATED_EXECUTION_ORDER_PRIVATE_NO_BROKER_INTERVENTION),
		field.NewSymbol("AAPL"),
		field.NewSide(enum.Side_BUY),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT),
	)
	nos.SetOrderQty(decimal.NewFromInt(100), 0)
	nos.SetPrice(dec("150.00"), 2)
	nos.SetSecurityID("037833100")
	nos.SetIDSource(enum.IDSource_CUSIP)
	nos.SetString(tagCustomField, "blue")

	req := decodeNewOrder(nos)
	if req.ClOrdID != "C1" || req.Symbol != "AAPL" {
		t.Errorf("identity wrong: %+v", req)
	}
	if req.Side != model.OrderSideBuy || req.Type != model.OrderTypeLimit {
		t.Errorf("side/type wrong: %+v", req)
	}
	if req.Quantity != 100 || !req.Price.Equal(dec("150.00")) {
		t.Errorf("economics wrong: %+v", req)
	}
	if req.SecurityID != "037833100" || req.IDSource != "Cusip" {
		t.Errorf("security id wrong: %+v", req)
	}
	if req.CustomField != "blue" {
		t.Errorf("custom field = %q", req.CustomField)
	}
}

func TestDecodeCancelAndReplace(t *testing.T) {
	ocr := ordercancelrequest.New(
		field.NewOrigClOrdID("C1"),
		field.NewClOrdID("C2"),
		field.NewSymbol("AAPL"),
		field.NewSide(enum.Side_SELL),
		field.NewTransactTime(time.Now()),
	)
	cancel := decodeCancelRequest(ocr)
	if cancel.ClOrdID != "C2" || cancel.OrigClOrdID != "C1" || cancel.Side != model.OrderSideSell {
		t.Errorf("cancel decode wrong: %+v", cancel)
	}

	ocrr := ordercancelreplacerequest.New(
		field.NewOrigClOrdID("C2"),
		field.NewClOrdID("C3"),
		field.NewHandlInst(enum.HandlInst_AUTOMATED_EXECUTION_ORDER_PRIVATE_NO_BROKER_INTERVENTION),
		field.NewSymbol("AAPL"),
		field.NewSide(enum.Side_SELL),
		field.NewTransactTime(time.Now()),
		field.NewOrdType(enum.OrdType_LIMIT),
	)
	ocrr.SetOrderQty(decimal.NewFromInt(200), 0)
	ocrr.SetPrice(dec("151.00"), 2)

	replace := decodeReplaceRequest(ocrr)
	if replace.ClOrdID != "C3" || replace.OrigClOrdID != "C2" {
		t.Errorf("replace decode wrong: %+v", replace)
	}
	if replace.Quantity != 200 || !replace.Price.Equal(dec("151.00")) {
		t.Errorf("replace economics wrong: %+v", replace)
	}
}

func TestIDSourceFallback(t *testing.T) {
	if fixIDSource("Ticker") != enum.IDSource_EXCHANGE_SYMBOL {
		t.Error("Ticker should map to exchange symbol")
	}
	if fixIDSource("something-else") != idSourceUnknown {
		t.Error("unknown selectors should map to the private code")
	}
}
