package simulator

import (
	"sync"

	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

// IOISet retains every dispatched IOI for inspection.
type IOISet struct {
	mu   sync.RWMutex
	byID map[string]*model.IOI
	seq  []*model.IOI
}

func NewIOISet() *IOISet {
	return &IOISet{
		byID: make(map[string]*model.IOI),
	}
}

func (s *IOISet) Add(i *model.IOI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[i.ID] = i
	s.seq = append(s.seq, i)
}

func (s *IOISet) GetByID(id string) (*model.IOI, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	return i, ok
}

func (s *IOISet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seq)
}

func (s *IOISet) Snapshot() []model.IOI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.IOI, 0, len(s.seq))
	for _, i := range s.seq {
		out = append(out, *i)
	}
	return out
}
