package simulator

import (
	"github.com/fiximulator/fiximulator/pkg/pricemath"
)

// Settings keys driving automatic responses. The names match the original
// FIXimulator configuration so existing deployments carry over.
const (
	keyAutoAcknowledge    = "FIXimulatorAutoAcknowledge"
	keyAutoPendingCancel  = "FIXimulatorAutoPendingCancel"
	keyAutoCancel         = "FIXimulatorAutoCancel"
	keyAutoPendingReplace = "FIXimulatorAutoPendingReplace"
	keyAutoReplace        = "FIXimulatorAutoReplace"
	keyUIEnabled          = "UiEnabled"
	keyDelayInSeconds     = "DelayInSeconds"
	keyPricePrecision     = "FIXimulatorPricePrecision"
	keySendOBOCompID      = "FIXimulatorSendOnBehalfOfCompID"
	keySendOBOSubID       = "FIXimulatorSendOnBehalfOfSubID"

	keyOnBehalfOfCompID = "OnBehalfOfCompID"
	keyOnBehalfOfSubID  = "OnBehalfOfSubID"
)

// AutoPolicy decides which inbound events are answered automatically and
// with what per-stage delay. It is a thin typed view over the settings map;
// missing keys fall back to the documented defaults.
type AutoPolicy struct {
	settings *Settings
}

func NewAutoPolicy(settings *Settings) *AutoPolicy {
	return &AutoPolicy{settings: settings}
}

func (p *AutoPolicy) AutoAcknowledge() bool {
	return p.settings.GetBool(keyAutoAcknowledge, false)
}

func (p *AutoPolicy) AutoPendingCancel() bool {
	return p.settings.GetBool(keyAutoPendingCancel, false)
}

func (p *AutoPolicy) AutoCancel() bool {
	return p.settings.GetBool(keyAutoCancel, false)
}

func (p *AutoPolicy) AutoPendingReplace() bool {
	return p.settings.GetBool(keyAutoPendingReplace, false)
}

func (p *AutoPolicy) AutoReplace() bool {
	return p.settings.GetBool(keyAutoReplace, false)
}

// UIEnabled reports whether an interactive frontend drives the simulator.
// When false the headless auto-pipeline handles every new order.
func (p *AutoPolicy) UIEnabled() bool {
	return p.settings.GetBool(keyUIEnabled, true)
}

// DelaySeconds is the pause between stages of the headless pipeline.
func (p *AutoPolicy) DelaySeconds() int {
	return p.settings.GetInt(keyDelayInSeconds, 0)
}

// PricePrecision is the number of fractional digits for price rounding.
func (p *AutoPolicy) PricePrecision() int32 {
	return int32(p.settings.GetInt(keyPricePrecision, int(pricemath.DefaultPrecision)))
}

func (p *AutoPolicy) SendOnBehalfOfCompID() bool {
	return p.settings.GetBool(keySendOBOCompID, false)
}

func (p *AutoPolicy) SendOnBehalfOfSubID() bool {
	return p.settings.GetBool(keySendOBOSubID, false)
}

// OnBehalfOfCompID returns the per-session comp id to stamp on outbound
// headers, if configured.
func (p *AutoPolicy) OnBehalfOfCompID(sessionID string) (string, bool) {
	return p.settings.SessionString(sessionID, keyOnBehalfOfCompID)
}

// OnBehalfOfSubID returns the per-session sub id to stamp on outbound
// headers, if configured.
func (p *AutoPolicy) OnBehalfOfSubID(sessionID string) (string, bool) {
	return p.settings.SessionString(sessionID, keyOnBehalfOfSubID)
}
