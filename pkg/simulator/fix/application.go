package fix

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/joripage/go_util/pkg/shardqueue"
	"github.com/quickfixgo/fix42/dontknowtrade"
	"github.com/quickfixgo/fix42/executionreport"
	"github.com/quickfixgo/fix42/indicationofinterest"
	"github.com/quickfixgo/fix42/newordersingle"
	"github.com/quickfixgo/fix42/ordercancelreject"
	"github.com/quickfixgo/fix42/ordercancelreplacerequest"
	"github.com/quickfixgo/fix42/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/quickfix/log/file"
	"github.com/quickfixgo/tag"
	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/pkg/logging"
	"github.com/fiximulator/fiximulator/pkg/metrics"
	"github.com/fiximulator/fiximulator/pkg/simulator"
)

var errNoSession = errors.New("no counterparty session logged on")

const (
	numShards = 16
	queueSize = 100_000
)

// Application implements the quickfix.Application interface and routes
// decoded business messages into the simulator off the session thread. The
// default single dispatcher preserves arrival order; the shard queue trades
// that for parallelism across ClOrdIDs.
type Application struct {
	*quickfix.MessageRouter
	gateway    *Gateway
	sim        simulator.ISimulator
	sink       MessageSink
	dispatcher chan *inboundMsg
	shardQueue *shardqueue.Shardqueue

	log *zap.SugaredLogger
}

type inboundMsg struct {
	msg       *quickfix.Message
	sessionID quickfix.SessionID
}

func newApplication(g *Gateway) *Application {
	app := &Application{
		MessageRouter: quickfix.NewMessageRouter(),
		gateway:       g,
		sim:           g.sim,
		sink:          g.sink,
		log:           zap.S(),
	}

	app.AddRoute(newordersingle.Route(app.onNewOrderSingle))
	app.AddRoute(ordercancelrequest.Route(app.onOrderCancelRequest))
	app.AddRoute(ordercancelreplacerequest.Route(app.onOrderCancelReplaceRequest))
	app.AddRoute(dontknowtrade.Route(app.onDontKnowTrade))

	// Counterparty echoes of our own message types are accepted and dropped
	// so they never bounce back as session rejects.
	app.AddRoute(executionreport.Route(app.ignoreExecutionReport))
	app.AddRoute(ordercancelreject.Route(app.ignoreOrderCancelReject))
	app.AddRoute(indicationofinterest.Route(app.ignoreIndicationOfInterest))

	if g.UseShardQueue {
		app.shardQueue = shardqueue.NewShardQueue(numShards, queueSize)
		app.shardQueue.Start(func(msg interface{}) error {
			if v, ok := msg.(*inboundMsg); ok {
				if err := app.Route(v.msg, v.sessionID); err != nil {
					app.log.Warnw("route error", "err", err)
				}
			}
			return nil
		})
	} else {
		app.dispatcher = make(chan *inboundMsg, queueSize)
		go app.runDispatcher()
	}
	return app
}

// Start parses the session config, builds the acceptor and begins listening.
func (g *Gateway) Start(ctx context.Context) error {
	raw, err := os.ReadFile(g.cfgPath)
	if err != nil {
		return err
	}
	appSettings, err := quickfix.ParseSettings(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	g.app = newApplication(g)

	logFactory, err := file.NewLogFactory(appSettings)
	if err != nil {
		return err
	}
	acceptor, err := quickfix.NewAcceptor(g.app, quickfix.NewMemoryStoreFactory(), appSettings, logFactory)
	if err != nil {
		return err
	}
	if err := acceptor.Start(); err != nil {
		return err
	}
	g.acceptor = acceptor
	g.log.Infow("fix acceptor started", "config", g.cfgPath)
	return nil
}

func (g *Gateway) Stop() {
	if g.acceptor != nil {
		g.acceptor.Stop()
		g.log.Info("fix acceptor stopped")
	}
}

func (a *Application) OnCreate(sessionID quickfix.SessionID) {}

func (a *Application) OnLogon(sessionID quickfix.SessionID) {
	a.gateway.onLogon(sessionID)
}

func (a *Application) OnLogout(sessionID quickfix.SessionID) {
	a.gateway.onLogout(sessionID)
}

func (a *Application) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}

func (a *Application) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}

func (a *Application) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// FromApp hands inbound application messages to the dispatcher; the session
// thread never blocks on engine work.
func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	if msgType, err := msg.Header.GetString(tag.MsgType); err == nil {
		a.sink.OnMessage(true, sessionID.String(), msgType, msg.String())
	}

	if a.shardQueue != nil {
		a.shardQueue.Shard(getRoutingKey(msg, sessionID), &inboundMsg{msg, sessionID})
		return nil
	}
	a.dispatcher <- &inboundMsg{msg, sessionID}
	return nil
}

func getRoutingKey(msg *quickfix.Message, sessionID quickfix.SessionID) string {
	if clOrdID, err := msg.Body.GetString(tag.ClOrdID); err == nil && clOrdID != "" {
		return clOrdID
	}

	if msgType, err := msg.Header.GetString(tag.MsgType); err == nil {
		return "MSGTYPE:" + msgType
	}

	return sessionID.String()
}

func (a *Application) runDispatcher() {
	for m := range a.dispatcher {
		if err := a.Route(m.msg, m.sessionID); err != nil {
			a.log.Warnw("route error", "err", err)
		}
	}
}

func (a *Application) onNewOrderSingle(msg newordersingle.NewOrderSingle, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	metrics.OrdersReceived.Inc()
	ctx := logging.WithRequestID(context.Background(), "")
	req := decodeNewOrder(msg)
	logging.For(ctx).Debugw("new order single", "clOrdID", req.ClOrdID, "symbol", req.Symbol)
	a.sim.AddOrder(ctx, req)
	return nil
}

func (a *Application) onOrderCancelRequest(msg ordercancelrequest.OrderCancelRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	metrics.CancelRequestsReceived.Inc()
	ctx := logging.WithRequestID(context.Background(), "")
	req := decodeCancelRequest(msg)
	logging.For(ctx).Debugw("order cancel request", "clOrdID", req.ClOrdID, "origClOrdID", req.OrigClOrdID)
	a.sim.CancelOrder(ctx, req)
	return nil
}

func (a *Application) onOrderCancelReplaceRequest(msg ordercancelreplacerequest.OrderCancelReplaceRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	metrics.ReplaceRequestsReceived.Inc()
	ctx := logging.WithRequestID(context.Background(), "")
	req := decodeReplaceRequest(msg)
	logging.For(ctx).Debugw("order cancel/replace request", "clOrdID", req.ClOrdID, "origClOrdID", req.OrigClOrdID)
	a.sim.ReplaceOrder(ctx, req)
	return nil
}

func (a *Application) onDontKnowTrade(msg dontknowtrade.DontKnowTrade, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	execID, _ := msg.GetExecID()
	ctx := logging.WithRequestID(context.Background(), "")
	logging.For(ctx).Debugw("dont know trade", "execID", execID)
	a.sim.DontKnowTrade(ctx, execID)
	return nil
}

func (a *Application) ignoreExecutionReport(msg executionreport.ExecutionReport, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

func (a *Application) ignoreOrderCancelReject(msg ordercancelreject.OrderCancelReject, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

func (a *Application) ignoreIndicationOfInterest(msg indicationofinterest.IndicationofInterest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}
