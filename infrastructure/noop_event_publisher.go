package infrastructure

import (
	"bingohall/domain/events"
)

// NoopEventPublisher feeds the in-process bus without broadcasting anywhere
type NoopEventPublisher struct {
	localBus *events.Bus
}

// NewNoopEventPublisher creates a publisher that only feeds the in-process bus, if any
func NewNoopEventPublisher(localBus *events.Bus) *NoopEventPublisher {
	return &NoopEventPublisher{localBus: localBus}
}

// Publish forwards to the local bus only
func (n *NoopEventPublisher) Publish(event events.Event) error {
	if n.localBus != nil {
		return n.localBus.Publish(event)
	}
	return nil
}
