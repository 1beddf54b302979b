package bus

import (
	"github.com/google/uuid"

	"github.com/zeusync/hazards/internal/core/physics"
)

// EventType is the routing key used to select handlers.
type EventType string

const (
	TypeHit           EventType = "hazard.hit"
	TypeBounce        EventType = "hazard.bounce"
	TypeExplode       EventType = "hazard.explode"
	TypeTick          EventType = "hazard.tick"
	TypeActiveChanged EventType = "hazard.active_changed"
	TypeDestroyed     EventType = "hazard.destroyed"
)

// Event is an immutable notification emitted by a hazard.
//
// Fields:
// - Type: routing key used to select handlers.
// - Source: instance ID of the emitting hazard.
// - Name: archetype name of the emitting hazard.
// - Step: simulation step during which the event was published.
// - Data: one of the *Data payloads below, matching Type.
type Event struct {
	Type   EventType
	Source uuid.UUID
	Name   string
	Step   uint64
	Data   any
}

type (
	HitData struct {
		Collider physics.Body
	}
	BounceData struct {
		Collider physics.Body
		Count    uint32
	}
	ExplodeData struct {
		Colliders []physics.Body
	}
	TickData struct {
		Collider physics.Body
		Distance float64
	}
	ActiveData struct {
		Active bool
	}
)

// Publisher accepts events for later delivery.
type Publisher interface {
	Publish(event Event)
}

// EventHandler is a user callback invoked per delivered event. If it returns an
// error, Flush aggregates and returns it.
type EventHandler func(event Event) error

// Subscription represents a registered handler.
// Use Cancel or Queue.Unsubscribe to stop receiving events.
type Subscription interface {
	// ID is a unique identifier for this subscription.
	ID() string
	// EventType returns the event type this subscription listens to; empty
	// for subscriptions to every type.
	EventType() EventType
	// IsActive reports whether this subscription is still registered.
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is notified about deliveries and errors. Observers should return
// quickly.
type Observer interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error)
}

// Metrics is a minimal set of counters; it is updated only when at least one
// observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Flushes           uint64
}
