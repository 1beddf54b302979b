package hazard

import (
	"github.com/google/uuid"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/timer"
)

// lifecycle is embedded by every archetype.
type lifecycle struct {
	id   uuid.UUID
	name string
	kind Kind

	self  Hazard
	deps  Deps
	log   log.Log
	timer timer.Handle

	active     bool
	visible    bool
	processing bool
	freeOnUse  bool
	doomed     bool
	destroyed  bool

	onActivate func()
}

func newLifecycle(kind Kind, name string, freeOnUse bool, deps Deps) lifecycle {
	id := uuid.New()
	return lifecycle{
		id:        id,
		name:      name,
		kind:      kind,
		deps:      deps,
		freeOnUse: freeOnUse,
		log: deps.Logger.With(
			log.String("hazard", name),
			log.String("kind", string(kind)),
			log.Stringer("id", id),
		),
	}
}

// bind attaches the outer hazard and its governing timer and sets the initial
// state without emitting ActiveChanged.
func (l *lifecycle) bind(self Hazard, t timer.Handle, active bool, onActivate func()) {
	l.self = self
	l.timer = t
	l.onActivate = onActivate
	l.active = active
	l.visible = active
	l.processing = active
	l.syncBody()
}

func (l *lifecycle) ID() uuid.UUID    { return l.id }
func (l *lifecycle) Name() string     { return l.name }
func (l *lifecycle) Kind() Kind       { return l.kind }
func (l *lifecycle) Active() bool     { return l.active && !l.doomed && !l.destroyed }
func (l *lifecycle) Visible() bool    { return l.visible }
func (l *lifecycle) Processing() bool { return l.processing && !l.destroyed }
func (l *lifecycle) FreeOnUse() bool  { return l.freeOnUse }
func (l *lifecycle) Destroyed() bool  { return l.destroyed }

func (l *lifecycle) SetActive(active bool) {
	if l.doomed || l.destroyed || l.active == active {
		return
	}

	if active {
		l.timer.Start()
		if l.onActivate != nil {
			l.onActivate()
		}
	} else {
		l.timer.Stop()
	}

	l.active = active
	l.visible = active
	l.deps.Commit.Defer(func() {
		l.processing = l.active
		l.syncBody()
	})

	l.emit(bus.TypeActiveChanged, bus.ActiveData{Active: active})
}

// syncBody keeps the collision body in the world only while the hazard
// processes, so a pooled hazard is neither hit nor overlapped.
func (l *lifecycle) syncBody() {
	if l.destroyed {
		return
	}
	if k, ok := l.self.Body().(physics.Kinematic); ok && physics.Valid(k) {
		k.SetEnabled(l.processing)
	}
}

func (l *lifecycle) Finish() {
	l.finish()
}

// finish is the single completion path. A second call within the same step,
// e.g. a hit and a timeout together, is a no-op.
func (l *lifecycle) finish() {
	if !l.Active() {
		return
	}
	if l.freeOnUse {
		l.doomed = true
		l.visible = false
		l.timer.Stop()
		l.deps.Commit.Destroy(l.self)
		return
	}
	l.SetActive(false)
	l.deps.Commit.Release(l.self)
}

func (l *lifecycle) Dispose() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	l.active = false
	l.processing = false
	if l.timer != nil {
		l.timer.Close()
	}
	l.emit(bus.TypeDestroyed, nil)
}

func (l *lifecycle) emit(t bus.EventType, data any) {
	l.deps.Events.Publish(bus.Event{
		Type:   t,
		Source: l.id,
		Name:   l.name,
		Data:   data,
	})
}
