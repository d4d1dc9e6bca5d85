package fix

import (
	"strconv"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix42/executionreport"
	"github.com/quickfixgo/fix42/indicationofinterest"
	"github.com/quickfixgo/fix42/newordersingle"
	"github.com/quickfixgo/fix42/ordercancelreject"
	"github.com/quickfixgo/fix42/ordercancelreplacerequest"
	"github.com/quickfixgo/fix42/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// tagCustomField is a user-defined tag echoed back on every execution report
// for the order that carried it.
const tagCustomField quickfix.Tag = 9999

const (
	ioiValidFor = 30 * time.Minute
	ioiCurrency = "USD"
)

var ordStatusToFIX = map[model.OrderStatus]enum.OrdStatus{
	model.OrderStatusUnknown:         enum.OrdStatus_NEW,
	model.OrderStatusNew:             enum.OrdStatus_NEW,
	model.OrderStatusPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
	model.OrderStatusFilled:          enum.OrdStatus_FILLED,
	model.OrderStatusDoneForDay:      enum.OrdStatus_DONE_FOR_DAY,
	model.OrderStatusCanceled:        enum.OrdStatus_CANCELED,
	model.OrderStatusReplaced:        enum.OrdStatus_REPLACED,
	model.OrderStatusPendingCancel:   enum.OrdStatus_PENDING_CANCEL,
	model.OrderStatusRejected:        enum.OrdStatus_REJECTED,
	model.OrderStatusPendingNew:      enum.OrdStatus_PENDING_NEW,
	model.OrderStatusPendingReplace:  enum.OrdStatus_PENDING_REPLACE,
}

var execTypeToFIX = map[model.ExecType]enum.ExecType{
	model.ExecTypeNew:            enum.ExecType_NEW,
	model.ExecTypePartialFill:    enum.ExecType_PARTIAL_FILL,
	model.ExecTypeFill:           enum.ExecType_FILL,
	model.ExecTypeDoneForDay:     enum.ExecType_DONE_FOR_DAY,
	model.ExecTypeCanceled:       enum.ExecType_CANCELED,
	model.ExecTypeReplaced:       enum.ExecType_REPLACED,
	model.ExecTypePendingCancel:  enum.ExecType_PENDING_CANCEL,
	model.ExecTypeRejected:       enum.ExecType_REJECTED,
	model.ExecTypePendingNew:     enum.ExecType_PENDING_NEW,
	model.ExecTypePendingReplace: enum.ExecType_PENDING_REPLACE,
}

var execTransTypeToFIX = map[model.ExecTransType]enum.ExecTransType{
	model.ExecTransTypeNew:     enum.ExecTransType_NEW,
	model.ExecTransTypeCancel:  enum.ExecTransType_CANCEL,
	model.ExecTransTypeCorrect: enum.ExecTransType_CORRECT,
}

var sideToFIX = map[model.OrderSide]enum.Side{
	model.OrderSideBuy:         enum.Side_BUY,
	model.OrderSideSell:        enum.Side_SELL,
	model.OrderSideSellShort:   enum.Side_SELL_SHORT,
	model.OrderSideUndisclosed: enum.Side_UNDISCLOSED,
}

var sideFromFIX = map[enum.Side]model.OrderSide{
	enum.Side_BUY:         model.OrderSideBuy,
	enum.Side_SELL:        model.OrderSideSell,
	enum.Side_SELL_SHORT:  model.OrderSideSellShort,
	enum.Side_UNDISCLOSED: model.OrderSideUndisclosed,
}

var idSourceToFIX = map[string]enum.IDSource{
	"Cusip":  enum.IDSource_CUSIP,
	"Sedol":  enum.IDSource_SEDOL,
	"RIC":    enum.IDSource_RIC_CODE,
	"Ticker": enum.IDSource_EXCHANGE_SYMBOL,
}

var idSourceFromFIX = map[enum.IDSource]string{
	enum.IDSource_CUSIP:           "Cusip",
	enum.IDSource_SEDOL:           "Sedol",
	enum.IDSource_RIC_CODE:        "RIC",
	enum.IDSource_EXCHANGE_SYMBOL: "Ticker",
}

// idSourceUnknown is sent for identifiers no FIX IDSource value covers.
const idSourceUnknown = enum.IDSource("100")

func fixIDSource(s string) enum.IDSource {
	if v, ok := idSourceToFIX[s]; ok {
		return v
	}
	return idSourceUnknown
}

// encodeExecution builds the wire form of an execution. Quantities carry no
// decimals; prices carry the configured precision. Status and ClOrdID come
// from the execution record, not the live order, so a transition racing the
// send cannot leak into the report.
func encodeExecution(e *model.Execution, precision int32) executionreport.ExecutionReport {
	o := e.Order
	msg := executionreport.New(
		field.NewOrderID(o.OrderID),
		field.NewExecID(e.ExecID),
		field.NewExecTransType(execTransTypeToFIX[e.ExecTransType]),
		field.NewExecType(execTypeToFIX[e.ExecType]),
		field.NewOrdStatus(ordStatusToFIX[e.OrdStatus]),
		field.NewSymbol(o.Symbol),
		field.NewSide(sideToFIX[o.Side]),
		field.NewLeavesQty(decimal.NewFromInt(e.LeavesQty), 0),
		field.NewCumQty(decimal.NewFromInt(e.CumQty), 0),
		field.NewAvgPx(e.AvgPx, precision),
	)

	msg.SetClOrdID(e.ClOrdID)
	msg.SetOrderQty(decimal.NewFromInt(o.Quantity), 0)
	if e.IsFill() {
		msg.SetLastShares(decimal.NewFromInt(e.LastShares), 0)
		msg.SetLastPx(e.LastPx, precision)
	}
	if e.RefExecID != "" {
		msg.SetExecRefID(e.RefExecID)
	}
	if o.SecurityID != "" && o.IDSource != "" {
		msg.SetSecurityID(o.SecurityID)
		msg.SetIDSource(fixIDSource(o.IDSource))
	}
	if o.CustomField != "" {
		msg.SetString(tagCustomField, o.CustomField)
	}
	return msg
}

func encodeCancelReject(r *model.CancelReject) ordercancelreject.OrderCancelReject {
	o := r.Order
	responseTo := enum.CxlRejResponseTo_ORDER_CANCEL_REQUEST
	if r.ResponseTo == model.CxlRejResponseToCancelReplaceRequest {
		responseTo = enum.CxlRejResponseTo_ORDER_CANCEL_REPLACE_REQUEST
	}
	return ordercancelreject.New(
		field.NewOrderID(o.OrderID),
		field.NewClOrdID(o.ClOrdID),
		field.NewOrigClOrdID(o.OrigClOrdID),
		field.NewOrdStatus(ordStatusToFIX[o.Status]),
		field.NewCxlRejResponseTo(responseTo),
	)
}

func encodeIOI(i *model.IOI, precision int32) indicationofinterest.IndicationofInterest {
	transType := enum.IOITransType_NEW
	switch i.TransType {
	case model.IOITransTypeCancel:
		transType = enum.IOITransType_CANCEL
	case model.IOITransTypeReplace:
		transType = enum.IOITransType_REPLACE
	}

	msg := indicationofinterest.New(
		field.NewIOIid(i.ID),
		field.NewIOITransType(transType),
		field.NewSymbol(i.Symbol),
		field.NewSide(sideToFIX[i.Side]),
		field.NewIOIShares(enum.IOIShares(strconv.FormatInt(i.Quantity, 10))),
	)

	if i.RefID != "" {
		msg.SetIOIRefID(i.RefID)
	}
	if i.SecurityID != "" {
		msg.SetSecurityID(i.SecurityID)
		msg.SetIDSource(fixIDSource(i.IDSource))
	}
	if i.SecurityDesc != "" {
		msg.SetSecurityDesc(i.SecurityDesc)
	}
	msg.SetPrice(i.Price, precision)
	msg.SetIOINaturalFlag(i.Natural)
	msg.SetValidUntilTime(time.Now().Add(ioiValidFor))
	msg.SetCurrency(ioiCurrency)
	return msg
}

// decodeNewOrder lifts an inbound NewOrderSingle into the engine's request
// form. Field-level decode problems fall back to zero values; the lifecycle
// engine rejects what it cannot work with.
func decodeNewOrder(msg newordersingle.NewOrderSingle) *model.NewOrderRequest {
	clOrdID, _ := msg.GetClOrdID()
	symbol, _ := msg.GetSymbol()
	side, _ := msg.GetSide()
	ordType, _ := msg.GetOrdType()
	price, _ := msg.GetPrice()
	orderQty, _ := msg.GetOrderQty()
	securityID, _ := msg.GetSecurityID()
	idSource, _ := msg.GetIDSource()
	transactTime, _ := msg.GetTransactTime()
	customField, _ := msg.GetString(tagCustomField)

	orderType := model.OrderTypeMarket
	if ordType == enum.OrdType_LIMIT {
		orderType = model.OrderTypeLimit
	}

	return &model.NewOrderRequest{
		ClOrdID:      clOrdID,
		Symbol:       symbol,
		SecurityID:   securityID,
		IDSource:     idSourceFromFIX[idSource],
		CustomField:  customField,
		Side:         sideFromFIX[side],
		Type:         orderType,
		Price:        price,
		Quantity:     orderQty.IntPart(),
		TransactTime: transactTime,
	}
}

func decodeCancelRequest(msg ordercancelrequest.OrderCancelRequest) *model.CancelRequest {
	clOrdID, _ := msg.GetClOrdID()
	origClOrdID, _ := msg.GetOrigClOrdID()
	symbol, _ := msg.GetSymbol()
	side, _ := msg.GetSide()

	return &model.CancelRequest{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		Symbol:      symbol,
		Side:        sideFromFIX[side],
	}
}

func decodeReplaceRequest(msg ordercancelreplacerequest.OrderCancelReplaceRequest) *model.ReplaceRequest {
	clOrdID, _ := msg.GetClOrdID()
	origClOrdID, _ := msg.GetOrigClOrdID()
	symbol, _ := msg.GetSymbol()
	side, _ := msg.GetSide()
	price, _ := msg.GetPrice()
	orderQty, _ := msg.GetOrderQty()

	return &model.ReplaceRequest{
		ClOrdID:     clOrdID,
		OrigClOrdID: origClOrdID,
		Symbol:      symbol,
		Side:        sideFromFIX[side],
		Price:       price,
		Quantity:    orderQty.IntPart(),
	}
}
