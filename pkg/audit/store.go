package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	storeQueueSize = 10_000
	flushBatch     = 200
	flushInterval  = time.Second
)

// Store buffers crossing messages and writes them to the repo in batches off
// the session thread. It satisfies the gateway's MessageSink interface.
type Store struct {
	repo   IMessageRepo
	in     chan *MessageRecord
	doneCh chan struct{}
	log    *zap.SugaredLogger
}

func NewStore(repo IMessageRepo) *Store {
	s := &Store{
		repo:   repo,
		in:     make(chan *MessageRecord, storeQueueSize),
		doneCh: make(chan struct{}),
		log:    zap.S(),
	}
	go s.run()
	return s
}

// OnMessage enqueues a message; when the queue is full the message is
// dropped rather than stalling the session.
func (s *Store) OnMessage(inbound bool, sessionID, msgType, raw string) {
	record := &MessageRecord{
		SessionID: sessionID,
		Inbound:   inbound,
		MsgType:   msgType,
		Raw:       raw,
		CreatedAt: time.Now(),
	}
	select {
	case s.in <- record:
	default:
		s.log.Warn("audit queue full, dropping message")
	}
}

// Close flushes pending records and stops the writer.
func (s *Store) Close() {
	close(s.in)
	<-s.doneCh
}

func (s *Store) run() {
	defer close(s.doneCh)

	batch := make([]*MessageRecord, 0, flushBatch)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if _, err := s.repo.BulkCreate(context.Background(), batch); err != nil {
			s.log.Errorw("audit flush failed", "count", len(batch), "err", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-s.in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, record)
			if len(batch) >= flushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
