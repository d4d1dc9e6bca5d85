package simulator

import (
	"fmt"
	"sync/atomic"
	"time"
)

// IDAllocator hands out unique, monotone string identifiers. The wall-clock
// prefix keeps identifiers unique across restarts within the same session
// day; the zero-padded counter keeps lexicographic order aligned with
// creation order.
type IDAllocator struct {
	prefix string
	epoch  int64
	n      atomic.Uint64
}

func NewIDAllocator(prefix string) *IDAllocator {
	return &IDAllocator{
		prefix: prefix,
		epoch:  time.Now().Unix(),
	}
}

// Next returns the next identifier.
func (a *IDAllocator) Next() string {
	return fmt.Sprintf("%s%d-%08d", a.prefix, a.epoch, a.n.Add(1))
}
