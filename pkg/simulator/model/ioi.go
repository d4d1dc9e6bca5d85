package model

import (
	"github.com/shopspring/decimal"
)

type IOITransType string

const (
	IOITransTypeNew     IOITransType = "NEW"
	IOITransTypeCancel  IOITransType = "CANCEL"
	IOITransTypeReplace IOITransType = "REPLACE"
)

// IOI is a synthetic indication of interest. RefID is required when
// TransType is CANCEL or REPLACE.
type IOI struct {
	ID    string
	RefID string

	TransType IOITransType
	Side      OrderSide
	Quantity  int64

	Symbol       string
	SecurityID   string
	IDSource     string
	SecurityDesc string

	Price   decimal.Decimal
	Natural bool
}

// NeedsRefID reports whether the transaction type references a prior IOI.
func (i *IOI) NeedsRefID() bool {
	return i.TransType == IOITransTypeCancel || i.TransType == IOITransTypeReplace
}
