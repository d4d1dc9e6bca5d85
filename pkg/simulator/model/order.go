package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusUnknown is the state of an order before the engine has
	// taken any action on it.
	OrderStatusUnknown         OrderStatus = "<UNKNOWN>"
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusDoneForDay      OrderStatus = "DoneForDay"
	OrderStatusCanceled        OrderStatus = "Canceled"
	OrderStatusReplaced        OrderStatus = "Replaced"
	OrderStatusPendingCancel   OrderStatus = "PendingCancel"
	OrderStatusRejected        OrderStatus = "Rejected"
	OrderStatusPendingNew      OrderStatus = "PendingNew"
	OrderStatusPendingReplace  OrderStatus = "PendingReplace"
)

type OrderSide string

const (
	OrderSideBuy         OrderSide = "BUY"
	OrderSideSell        OrderSide = "SELL"
	OrderSideSellShort   OrderSide = "SHORT"
	OrderSideUndisclosed OrderSide = "UNDISCLOSED"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// Order is the authoritative record of a client's intent and its cumulative
// fill state. It is mutated only by the lifecycle engine while the order
// book's lock is held.
type Order struct {
	// identity
	OrderID     string
	ClOrdID     string
	OrigClOrdID string

	// instrument
	Symbol      string
	SecurityID  string
	IDSource    string
	CustomField string

	// economics
	Side     OrderSide
	Type     OrderType
	Quantity int64
	Limit    decimal.Decimal

	// mutable state
	Status   OrderStatus
	Open     int64
	Executed int64
	AvgPx    decimal.Decimal

	ReceivedOrder   bool
	ReceivedCancel  bool
	ReceivedReplace bool
}

var terminalStatuses = map[OrderStatus]bool{
	OrderStatusFilled:     true,
	OrderStatusCanceled:   true,
	OrderStatusRejected:   true,
	OrderStatusDoneForDay: true,
	OrderStatusReplaced:   true,
}

// IsTerminal reports whether the order forbids further state-mutating events
// other than bust or correct of past executions.
func (o *Order) IsTerminal() bool {
	return terminalStatuses[o.Status]
}
