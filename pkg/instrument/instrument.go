// Package instrument provides the read-only security reference data the
// simulator draws on for fill prices and IOI synthesis.
package instrument

import (
	"math/rand"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Identifier selectors accepted by the IOI sender for Symbol / SecurityID.
const (
	SelectorTicker = "Ticker"
	SelectorRIC    = "RIC"
	SelectorSedol  = "Sedol"
	SelectorCusip  = "Cusip"
)

type Instrument struct {
	Symbol string          `yaml:"symbol"`
	Ticker string          `yaml:"ticker"`
	RIC    string          `yaml:"ric"`
	Sedol  string          `yaml:"sedol"`
	Cusip  string          `yaml:"cusip"`
	Name   string          `yaml:"name"`
	Price  decimal.Decimal `yaml:"price"`
}

// Identifier returns the instrument identifier named by the selector, or ""
// for an unknown selector.
func (i *Instrument) Identifier(selector string) string {
	switch selector {
	case SelectorTicker:
		return i.Ticker
	case SelectorRIC:
		return i.RIC
	case SelectorSedol:
		return i.Sedol
	case SelectorCusip:
		return i.Cusip
	}
	return ""
}

// Catalog is an immutable set of instruments keyed by symbol.
type Catalog struct {
	mu       sync.RWMutex
	list     []Instrument
	bySymbol map[string]*Instrument
}

type catalogFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

func NewCatalog(instruments []Instrument) *Catalog {
	c := &Catalog{
		list:     instruments,
		bySymbol: make(map[string]*Instrument, len(instruments)),
	}
	for i := range c.list {
		c.bySymbol[c.list[i].Symbol] = &c.list[i]
	}
	return c
}

// LoadCatalog reads an instrument file, expanding environment variables
// before parsing.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		zap.S().Errorf("failed to load instrument file %s: %v", path, err)
		return nil, err
	}
	raw = []byte(os.ExpandEnv(string(raw)))

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		zap.S().Errorf("failed to parse instrument file %s: %v", path, err)
		return nil, err
	}
	return NewCatalog(file.Instruments), nil
}

// Get returns the instrument for a symbol, or nil when unknown.
func (c *Catalog) Get(symbol string) *Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bySymbol[symbol]
}

// Random returns a uniformly chosen instrument, or nil for an empty catalog.
func (c *Catalog) Random() *Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.list) == 0 {
		return nil
	}
	return &c.list[rand.Intn(len(c.list))]
}

// Size returns the number of instruments.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.list)
}
