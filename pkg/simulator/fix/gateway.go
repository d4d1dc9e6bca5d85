package fix

import (
	"sync"

	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/pkg/metrics"
	"github.com/fiximulator/fiximulator/pkg/simulator"
	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// Gateway is the quickfix-backed session layer. It decodes inbound business
// messages into simulator requests and encodes the simulator's executions,
// cancel rejects and IOIs back onto the wire.
type Gateway struct {
	cfgPath string
	sim     simulator.ISimulator
	policy  *simulator.AutoPolicy
	sink    MessageSink

	// UseShardQueue dispatches inbound messages across ClOrdID-keyed shards
	// instead of the single ordered dispatcher. Set before Start.
	UseShardQueue bool

	app      *Application
	acceptor *quickfix.Acceptor

	mu        sync.Mutex
	sessionID quickfix.SessionID
	connected bool

	log *zap.SugaredLogger
}

func NewGateway(cfgPath string, sim simulator.ISimulator, policy *simulator.AutoPolicy, sink MessageSink) *Gateway {
	if sink == nil {
		sink = NewZapSink()
	}
	return &Gateway{
		cfgPath: cfgPath,
		sim:     sim,
		policy:  policy,
		sink:    sink,
		log:     zap.S(),
	}
}

func (g *Gateway) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *Gateway) session() (quickfix.SessionID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID, g.connected
}

func (g *Gateway) onLogon(sessionID quickfix.SessionID) {
	g.mu.Lock()
	g.sessionID = sessionID
	g.connected = true
	g.mu.Unlock()
	g.sim.SessionUp(sessionID.String())
}

func (g *Gateway) onLogout(sessionID quickfix.SessionID) {
	g.mu.Lock()
	g.connected = false
	g.mu.Unlock()
	g.sim.SessionDown(sessionID.String())
}

// stampOnBehalfOf sets the OnBehalfOf header pair when the policy enables it
// and the session has values configured.
func (g *Gateway) stampOnBehalfOf(msg *quickfix.Message, sessionID quickfix.SessionID) {
	if g.policy.SendOnBehalfOfCompID() {
		if v, ok := g.policy.OnBehalfOfCompID(sessionID.String()); ok && v != "" {
			msg.Header.SetString(tag.OnBehalfOfCompID, v)
		}
	}
	if g.policy.SendOnBehalfOfSubID() {
		if v, ok := g.policy.OnBehalfOfSubID(sessionID.String()); ok && v != "" {
			msg.Header.SetString(tag.OnBehalfOfSubID, v)
		}
	}
}

func (g *Gateway) send(msg quickfix.Messagable) error {
	sessionID, connected := g.session()
	if !connected {
		metrics.SendFailures.Inc()
		return errNoSession
	}

	raw := msg.ToMessage()
	g.stampOnBehalfOf(raw, sessionID)

	if msgType, err := raw.Header.GetString(tag.MsgType); err == nil {
		g.sink.OnMessage(false, sessionID.String(), msgType, raw.String())
	}

	if err := quickfix.SendToTarget(raw, sessionID); err != nil {
		metrics.SendFailures.Inc()
		return err
	}
	return nil
}

func (g *Gateway) SendExecution(e *model.Execution) error {
	if err := g.send(encodeExecution(e, g.policy.PricePrecision())); err != nil {
		return err
	}
	metrics.ExecutionsSent.Inc()
	return nil
}

func (g *Gateway) SendCancelReject(r *model.CancelReject) error {
	if err := g.send(encodeCancelReject(r)); err != nil {
		return err
	}
	metrics.CancelRejectsSent.Inc()
	return nil
}

func (g *Gateway) SendIOI(i *model.IOI) error {
	if err := g.send(encodeIOI(i, g.policy.PricePrecision())); err != nil {
		return err
	}
	metrics.IOIsSent.Inc()
	return nil
}
