package simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fiximulator/fiximulator/pkg/instrument"
	"github.com/fiximulator/fiximulator/pkg/pricemath"
	"github.com/fiximulator/fiximulator/pkg/simulator/model"
)

const missingIdentifier = "<MISSING>"

// IOISender periodically synthesizes a new indication of interest from a
// random catalog instrument while a counterparty is logged on. Which
// identifier feeds Symbol and which feeds SecurityID is configurable at
// runtime.
type IOISender struct {
	sim *Simulator

	mu            sync.Mutex
	delay         time.Duration
	symbolSrc     string
	securityIDSrc string
	running       bool
	stopCh        chan struct{}
	doneCh        chan struct{}

	log *zap.SugaredLogger
}

func NewIOISender(sim *Simulator, delay time.Duration) *IOISender {
	return &IOISender{
		sim:           sim,
		delay:         delay,
		symbolSrc:     instrument.SelectorTicker,
		securityIDSrc: instrument.SelectorCusip,
		log:           zap.S(),
	}
}

func (s *IOISender) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *IOISender) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// SetSymbolSource selects which instrument identifier fills IOI Symbol.
func (s *IOISender) SetSymbolSource(selector string) {
	s.mu.Lock()
	s.symbolSrc = selector
	s.mu.Unlock()
}

// SetSecurityIDSource selects which instrument identifier fills IOI
// SecurityID; it also determines the reported IDSource.
func (s *IOISender) SetSecurityIDSource(selector string) {
	s.mu.Lock()
	s.securityIDSrc = selector
	s.mu.Unlock()
}

func (s *IOISender) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	s.log.Info("ioi sender started")
	s.sim.observer.IOISenderStatus(true)
	go s.loop(stop, done)
}

func (s *IOISender) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.log.Info("ioi sender stopped")
	s.sim.observer.IOISenderStatus(false)
}

func (s *IOISender) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		if s.sim.Connected() {
			if ioi := s.synthesize(); ioi != nil {
				s.sim.SendIOI(ioi) // nolint:errcheck
			}
		}

		s.mu.Lock()
		delay := s.delay
		s.mu.Unlock()
		select {
		case <-stop:
			return
		case <-time.After(delay):
		}
	}
}

// synthesize builds a random IOI from a random catalog instrument. Missing
// identifiers are sent as <MISSING> so the receiving side can spot reference
// data gaps.
func (s *IOISender) synthesize() *model.IOI {
	instr := s.sim.catalog.Random()
	if instr == nil {
		s.log.Warn("ioi sender has no instruments to draw from")
		return nil
	}

	s.mu.Lock()
	symbolSrc, securityIDSrc := s.symbolSrc, s.securityIDSrc
	s.mu.Unlock()

	symbol := instr.Identifier(symbolSrc)
	if symbol == "" {
		symbol = missingIdentifier
	}
	securityID := instr.Identifier(securityIDSrc)
	idSource := securityIDSrc
	if securityID == "" {
		securityID = missingIdentifier
		idSource = "UNKNOWN"
	}

	side := model.OrderSideBuy
	if rand.Intn(2) == 0 {
		side = model.OrderSideSell
	}

	price := instr.Price
	if price.IsZero() {
		price = pricemath.Round(decimal.NewFromFloat(rand.Float64()*100), s.sim.policy.PricePrecision())
	}

	desc := instr.Name
	if desc == "" {
		desc = "Unknown security"
	}

	return &model.IOI{
		TransType:    model.IOITransTypeNew,
		Side:         side,
		Quantity:     int64(rand.Intn(1000))*100 + 100,
		Symbol:       symbol,
		SecurityID:   securityID,
		IDSource:     idSource,
		SecurityDesc: desc,
		Price:        price,
		Natural:      rand.Intn(2) == 0,
	}
}
