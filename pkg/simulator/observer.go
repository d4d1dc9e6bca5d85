package simulator

// Observer receives status and table change notifications. The engine never
// depends on an observer for correctness; the headless build installs
// NopObserver. Table callbacks fire after the change is visible in the
// corresponding registry; observers read snapshots, never live state.
type Observer interface {
	ConnectionStatus(connected bool)
	IOISenderStatus(running bool)
	ExecutorStatus(running bool)

	OrdersUpdated()
	ExecutionsUpdated()
	IOIsUpdated()
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) ConnectionStatus(bool) {}
func (NopObserver) IOISenderStatus(bool)  {}
func (NopObserver) ExecutorStatus(bool)   {}
func (NopObserver) OrdersUpdated()        {}
func (NopObserver) ExecutionsUpdated()    {}
func (NopObserver) IOIsUpdated()          {}
