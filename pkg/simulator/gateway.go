package simulator

import (
	"context"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// Gateway is the session layer the simulator talks through. Sends are
// fire-and-forget from the engine's perspective: a send error is reported
// back but engine state is never rolled back.
type Gateway interface {
	Start(ctx context.Context) error
	Stop()

	// Connected reports whether a counterparty session is logged on.
	Connected() bool

	// simulator to client
	SendExecution(e *model.Execution) error
	SendCancelReject(r *model.CancelReject) error
	SendIOI(i *model.IOI) error
}
