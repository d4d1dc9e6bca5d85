package simulator

import (
	"sync"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// ExecutionLog is the append-only registry of executions keyed by ExecID.
type ExecutionLog struct {
	mu       sync.RWMutex
	byExecID map[string]*model.Execution
	seq      []*model.Execution
}

func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{
		byExecID: make(map[string]*model.Execution),
	}
}

func (l *ExecutionLog) Add(e *model.Execution) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byExecID[e.ExecID] = e
	l.seq = append(l.seq, e)
}

func (l *ExecutionLog) GetByExecID(execID string) (*model.Execution, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.byExecID[execID]
	return e, ok
}

// MarkDKd flags the referenced execution as DK'd by the counterparty.
func (l *ExecutionLog) MarkDKd(execID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byExecID[execID]
	if !ok {
		return false
	}
	e.DKd = true
	return true
}

func (l *ExecutionLog) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seq)
}

// Snapshot returns copies of all executions in insertion order.
func (l *ExecutionLog) Snapshot() []model.Execution {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Execution, 0, len(l.seq))
	for _, e := range l.seq {
		out = append(out, *e)
	}
	return out
}
