package model

import (
	"github.com/shopspring/decimal"
)

type ExecType string

const (
	ExecTypeNew            ExecType = "New"
	ExecTypePartialFill    ExecType = "PartialFill"
	ExecTypeFill           ExecType = "Fill"
	ExecTypeDoneForDay     ExecType = "DoneForDay"
	ExecTypeCanceled       ExecType = "Canceled"
	ExecTypeReplaced       ExecType = "Replaced"
	ExecTypePendingCancel  ExecType = "PendingCancel"
	ExecTypeRejected       ExecType = "Rejected"
	ExecTypePendingNew     ExecType = "PendingNew"
	ExecTypePendingReplace ExecType = "PendingReplace"
)

type ExecTransType string

const (
	ExecTransTypeNew     ExecTransType = "New"
	ExecTransTypeCancel  ExecTransType = "Cancel"
	ExecTransTypeCorrect ExecTransType = "Correct"
)

// Execution is a single outbound execution-report record. ClOrdID and
// OrdStatus are captured when the transition runs, so a later transition on
// the same order cannot bleed into a report already on its way out. Once
// appended to the execution log a record mutates only via the Consumed and
// DKd flags.
type Execution struct {
	ExecID    string
	RefExecID string

	Order *Order

	ClOrdID   string
	OrdStatus OrderStatus

	ExecType      ExecType
	ExecTransType ExecTransType

	LeavesQty  int64
	CumQty     int64
	AvgPx      decimal.Decimal
	LastShares int64
	LastPx     decimal.Decimal

	// Consumed marks a fill that a bust or correct has already restated;
	// follow-up busts and corrects must reference the restating execution.
	Consumed bool

	DKd bool
}

// IsFill reports whether the execution describes a trade that bust and
// correct may reference.
func (e *Execution) IsFill() bool {
	return e.ExecType == ExecTypeFill || e.ExecType == ExecTypePartialFill
}

type CxlRejResponseTo string

const (
	CxlRejResponseToCancelRequest        CxlRejResponseTo = "OrderCancelRequest"
	CxlRejResponseToCancelReplaceRequest CxlRejResponseTo = "OrderCancelReplaceRequest"
)

// CancelReject is the engine-level form of an outbound OrderCancelReject.
type CancelReject struct {
	Order      *Order
	ResponseTo CxlRejResponseTo
}
