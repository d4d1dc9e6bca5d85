package fix

import (
	"go.uber.org/zap"
)

// MessageSink receives every application-level message crossing the session,
// in both directions, as raw FIX text. Implementations must not block the
// session thread for long.
type MessageSink interface {
	OnMessage(inbound bool, sessionID, msgType, raw string)
}

// ZapSink logs crossing messages at debug level.
type ZapSink struct {
	log *zap.SugaredLogger
}

func NewZapSink() *ZapSink {
	return &ZapSink{log: zap.S()}
}

func (s *ZapSink) OnMessage(inbound bool, sessionID, msgType, raw string) {
	dir := "out"
	if inbound {
		dir = "in"
	}
	s.log.Debugw("fix message", "dir", dir, "session", sessionID, "msgType", msgType, "raw", raw)
}

// multiSink fans a message out to several sinks.
type multiSink []MessageSink

func (m multiSink) OnMessage(inbound bool, sessionID, msgType, raw string) {
	for _, s := range m {
		s.OnMessage(inbound, sessionID, msgType, raw)
	}
}

// CombineSinks merges sinks, dropping nils.
func CombineSinks(sinks ...MessageSink) MessageSink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
