package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewOrderRequest carries the decoded fields of an inbound NewOrderSingle.
type NewOrderRequest struct {
	ClOrdID      string
	Symbol       string
	SecurityID   string
	IDSource     string
	CustomField  string
	Side         OrderSide
	Type         OrderType
	Price        decimal.Decimal
	Quantity     int64
	TransactTime time.Time
}

// CancelRequest carries the decoded fields of an inbound OrderCancelRequest.
type CancelRequest struct {
	ClOrdID     string
	OrigClOrdID string
	Symbol      string
	Side        OrderSide
}

// ReplaceRequest carries the decoded fields of an inbound
// OrderCancelReplaceRequest.
type ReplaceRequest struct {
	ClOrdID     string
	OrigClOrdID string
	Symbol      string
	Side        OrderSide
	Price       decimal.Decimal
	Quantity    int64
}
