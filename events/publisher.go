package events

import "github.com/go-monolith/mono"

// BusPublisher publishes task events on the mono event bus.
type BusPublisher struct {
	bus mono.EventBus
}

// NewBusPublisher creates a publisher for bus.
func NewBusPublisher(bus mono.EventBus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

// TaskCreated publishes a TaskCreated v1 event.
func (p *BusPublisher) TaskCreated(e TaskCreatedEvent) error {
	return TaskCreatedV1.Publish(p.bus, e, nil)
}

// TaskUpdated publishes a TaskUpdated v1 event.
func (p *BusPublisher) TaskUpdated(e TaskUpdatedEvent) error {
	return TaskUpdatedV1.Publish(p.bus, e, nil)
}

// TaskDeleted publishes a TaskDeleted v1 event.
func (p *BusPublisher) TaskDeleted(e TaskDeletedEvent) error {
	return TaskDeletedV1.Publish(p.bus, e, nil)
}
