package server

import (
	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/physics"
)

// Message is the JSON form of one hazard event on the feed.
type Message struct {
	Type      bus.EventType `json:"type"`
	Hazard    string        `json:"hazard"`
	Name      string        `json:"name"`
	Step      uint64        `json:"step"`
	Collider  string        `json:"collider,omitempty"`
	Colliders []string      `json:"colliders,omitempty"`
	Count     uint32        `json:"count,omitempty"`
	Active    *bool         `json:"active,omitempty"`
	Distance  float64       `json:"distance,omitempty"`
}

func NewMessage(e bus.Event) Message {
	m := Message{
		Type:   e.Type,
		Hazard: e.Source.String(),
		Name:   e.Name,
		Step:   e.Step,
	}
	switch d := e.Data.(type) {
	case bus.HitData:
		m.Collider = bodyName(d.Collider)
	case bus.BounceData:
		m.Collider = bodyName(d.Collider)
		m.Count = d.Count
	case bus.TickData:
		m.Collider = bodyName(d.Collider)
		m.Distance = d.Distance
	case bus.ExplodeData:
		m.Colliders = make([]string, 0, len(d.Colliders))
		for _, c := range d.Colliders {
			m.Colliders = append(m.Colliders, bodyName(c))
		}
	case bus.ActiveData:
		active := d.Active
		m.Active = &active
	}
	return m
}

func bodyName(b physics.Body) string {
	if b == nil {
		return ""
	}
	return b.Name()
}
