package simulator

import (
	"github.com/shopspring/decimal"

	"github.com/fiximulator/fiximulator/pkg/pricemath"
	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// LifecycleEngine is the state machine that advances an order and produces
// the execution record to emit. It owns no storage and does no I/O; callers
// hold the order book's lock across each call and dispatch the returned
// execution afterwards.
//
// Derivation rule: every returned execution carries LeavesQty, CumQty and
// AvgPx taken from the order after the state update.
type LifecycleEngine struct {
	execIDs   *IDAllocator
	precision func() int32
}

func NewLifecycleEngine(execIDs *IDAllocator, precision func() int32) *LifecycleEngine {
	return &LifecycleEngine{
		execIDs:   execIDs,
		precision: precision,
	}
}

func (e *LifecycleEngine) newExecution(o *model.Order, et model.ExecType, tt model.ExecTransType) *model.Execution {
	return &model.Execution{
		ExecID:        e.execIDs.Next(),
		Order:         o,
		ClOrdID:       o.ClOrdID,
		OrdStatus:     o.Status,
		ExecType:      et,
		ExecTransType: tt,
		LeavesQty:     o.Open,
		CumQty:        o.Executed,
		AvgPx:         o.AvgPx,
	}
}

// Acknowledge moves a freshly received or pending-new order to NEW.
func (e *LifecycleEngine) Acknowledge(o *model.Order) (*model.Execution, error) {
	if o.Status != model.OrderStatusUnknown && o.Status != model.OrderStatusPendingNew {
		return nil, errInvalidTransition
	}
	o.Status = model.OrderStatusNew
	o.ReceivedOrder = false
	return e.newExecution(o, model.ExecTypeNew, model.ExecTransTypeNew), nil
}

// Reject refuses an order that has not reached a terminal status.
func (e *LifecycleEngine) Reject(o *model.Order) (*model.Execution, error) {
	if o.IsTerminal() {
		return nil, errTerminalOrder
	}
	o.Status = model.OrderStatusRejected
	o.ReceivedOrder = false
	return e.newExecution(o, model.ExecTypeRejected, model.ExecTransTypeNew), nil
}

// PendingNew reports a received order as pending acceptance.
func (e *LifecycleEngine) PendingNew(o *model.Order) (*model.Execution, error) {
	if !o.ReceivedOrder {
		return nil, errInvalidTransition
	}
	o.Status = model.OrderStatusPendingNew
	return e.newExecution(o, model.ExecTypePendingNew, model.ExecTransTypeNew), nil
}

// DoneForDay closes out an order for the session. A fully filled order may
// still be closed, so the auto pipeline can report DONE_FOR_DAY after the
// final fill.
func (e *LifecycleEngine) DoneForDay(o *model.Order) (*model.Execution, error) {
	if o.IsTerminal() && o.Status != model.OrderStatusFilled {
		return nil, errTerminalOrder
	}
	o.Status = model.OrderStatusDoneForDay
	return e.newExecution(o, model.ExecTypeDoneForDay, model.ExecTransTypeNew), nil
}

// PendingCancel acknowledges a received cancel request.
func (e *LifecycleEngine) PendingCancel(o *model.Order) (*model.Execution, error) {
	if !o.ReceivedCancel {
		return nil, errInvalidTransition
	}
	o.Status = model.OrderStatusPendingCancel
	o.ReceivedCancel = false
	return e.newExecution(o, model.ExecTypePendingCancel, model.ExecTransTypeNew), nil
}

// Cancel finalizes a cancel on a non-terminal order.
func (e *LifecycleEngine) Cancel(o *model.Order) (*model.Execution, error) {
	if o.IsTerminal() {
		return nil, errTerminalOrder
	}
	o.Status = model.OrderStatusCanceled
	o.ReceivedCancel = false
	return e.newExecution(o, model.ExecTypeCanceled, model.ExecTransTypeNew), nil
}

// PendingReplace acknowledges a received cancel/replace request.
func (e *LifecycleEngine) PendingReplace(o *model.Order) (*model.Execution, error) {
	if !o.ReceivedReplace {
		return nil, errInvalidTransition
	}
	o.Status = model.OrderStatusPendingReplace
	o.ReceivedReplace = false
	return e.newExecution(o, model.ExecTypePendingReplace, model.ExecTransTypeNew), nil
}

// Replace finalizes a cancel/replace. The simulator emits only the REPLACED
// report; no successor working order is created.
func (e *LifecycleEngine) Replace(o *model.Order) (*model.Execution, error) {
	if o.IsTerminal() {
		return nil, errTerminalOrder
	}
	o.Status = model.OrderStatusReplaced
	o.ReceivedReplace = false
	return e.newExecution(o, model.ExecTypeReplaced, model.ExecTransTypeNew), nil
}

// RejectCancelReplace refuses a cancel or replace request. No execution is
// produced; the caller sends an OrderCancelReject instead. An order that has
// never been acknowledged reports NEW.
func (e *LifecycleEngine) RejectCancelReplace(o *model.Order, cancel bool) *model.CancelReject {
	o.ReceivedCancel = false
	o.ReceivedReplace = false
	if o.Status == model.OrderStatusUnknown {
		o.Status = model.OrderStatusNew
	}
	responseTo := model.CxlRejResponseToCancelReplaceRequest
	if cancel {
		responseTo = model.CxlRejResponseToCancelRequest
	}
	return &model.CancelReject{Order: o, ResponseTo: responseTo}
}

// Fill executes lastShares at lastPx against the order's open quantity.
// The requested quantity is clamped to the remaining open; a fill that
// covers the remainder reports FILL, anything less PARTIAL_FILL.
func (e *LifecycleEngine) Fill(o *model.Order, lastShares int64, lastPx decimal.Decimal) (*model.Execution, error) {
	if o.IsTerminal() {
		return nil, errTerminalOrder
	}
	if o.Open <= 0 {
		return nil, errNothingOpen
	}

	precision := e.precision()
	lastPx = pricemath.Round(lastPx, precision)

	execType := model.ExecTypePartialFill
	status := model.OrderStatusPartiallyFilled
	if lastShares >= o.Open {
		lastShares = o.Open
		execType = model.ExecTypeFill
		status = model.OrderStatusFilled
	}

	o.AvgPx = pricemath.WeightedAvg(o.Executed, o.AvgPx, lastShares, lastPx, precision)
	o.Executed += lastShares
	o.Open -= lastShares
	o.Status = status

	exec := e.newExecution(o, execType, model.ExecTransTypeNew)
	exec.LastShares = lastShares
	exec.LastPx = lastPx
	return exec, nil
}

// Bust retroactively cancels a previously reported fill. The emitted
// execution copies the referenced fill with ExecTransType CANCEL. A fill may
// be busted or corrected once; the restating execution is the new reference.
func (e *LifecycleEngine) Bust(ref *model.Execution) (*model.Execution, error) {
	if !ref.IsFill() || ref.ExecTransType == model.ExecTransTypeCancel {
		return nil, errNotAFill
	}
	if ref.Consumed {
		return nil, errExecutionConsumed
	}
	o := ref.Order
	q, p := ref.LastShares, ref.LastPx
	executed := o.Executed

	if q < executed {
		o.AvgPx = pricemath.BustAvg(executed, o.AvgPx, q, p, e.precision())
		o.Executed = executed - q
		o.Open = o.Quantity - o.Executed
		o.Status = model.OrderStatusPartiallyFilled
	} else {
		o.AvgPx = decimal.Zero
		o.Executed = 0
		o.Open = o.Quantity
		o.Status = model.OrderStatusNew
	}

	ref.Consumed = true
	exec := e.newExecution(o, ref.ExecType, model.ExecTransTypeCancel)
	exec.RefExecID = ref.ExecID
	exec.LastShares = q
	exec.LastPx = p
	return exec, nil
}

// Correct retroactively restates a previously reported fill as
// newShares@newPx. The emitted execution references the original with
// ExecTransType CORRECT.
func (e *LifecycleEngine) Correct(ref *model.Execution, newShares int64, newPx decimal.Decimal) (*model.Execution, error) {
	if !ref.IsFill() || ref.ExecTransType == model.ExecTransTypeCancel {
		return nil, errNotAFill
	}
	if ref.Consumed {
		return nil, errExecutionConsumed
	}
	o := ref.Order
	precision := e.precision()
	newPx = pricemath.Round(newPx, precision)
	executed := o.Executed
	newCum := executed - ref.LastShares + newShares

	if newCum <= 0 {
		o.AvgPx = decimal.Zero
		o.Executed = 0
		o.Open = o.Quantity
		o.Status = model.OrderStatusNew
	} else {
		o.AvgPx = pricemath.CorrectAvg(executed, o.AvgPx, ref.LastShares, ref.LastPx, newShares, newPx, precision)
		o.Executed = newCum
		if newCum < o.Quantity {
			o.Open = o.Quantity - newCum
			o.Status = model.OrderStatusPartiallyFilled
		} else {
			o.Open = 0
			o.Status = model.OrderStatusFilled
		}
	}

	ref.Consumed = true
	exec := e.newExecution(o, ref.ExecType, model.ExecTransTypeCorrect)
	exec.RefExecID = ref.ExecID
	exec.LastShares = newShares
	exec.LastPx = newPx
	return exec, nil
}
