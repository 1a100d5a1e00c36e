package galileo

// Messenger carries engine notifications back to the host application.
// Implementations must be safe for concurrent use: notifications arrive
// from worker goroutines.
type Messenger interface {
	// RequestRedraw signals that cached content changed and the next
	// frame will differ from the last. Hosts driving a render loop on
	// demand should schedule a compose; continuously rendering hosts
	// can ignore it.
	RequestRedraw()
}

// nopMessenger drops all notifications. Used when the host does not
// install a messenger.
type nopMessenger struct{}

func (nopMessenger) RequestRedraw() {}
