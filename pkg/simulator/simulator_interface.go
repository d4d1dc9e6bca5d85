package simulator

import (
	"context"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// ISimulator is the inbound surface the session gateway drives.
type ISimulator interface {
	AddOrder(ctx context.Context, req *model.NewOrderRequest)
	CancelOrder(ctx context.Context, req *model.CancelRequest)
	ReplaceOrder(ctx context.Context, req *model.ReplaceRequest)
	DontKnowTrade(ctx context.Context, execID string)

	SessionUp(sessionID string)
	SessionDown(sessionID string)
}
