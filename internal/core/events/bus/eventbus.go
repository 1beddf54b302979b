package bus

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
)

var _ Publisher = (*Queue)(nil)

// subscription implements Subscription.
type subscription struct {
	id        string
	eventType EventType
	handler   EventHandler
	active    bool
	cancel    func()
}

func (s *subscription) ID() string           { return s.id }
func (s *subscription) EventType() EventType { return s.eventType }
func (s *subscription) IsActive() bool       { return s.active }
func (s *subscription) Cancel() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.active = false
	return nil
}

// Queue is an outbound event queue. Publish only buffers; Flush delivers the
// buffered events synchronously, in publish order, to every matching
// subscriber. Events published by handlers during a Flush are delivered by
// the next Flush.
type Queue struct {
	mu        sync.Mutex
	subs      []*subscription
	pending   []Event
	step      uint64
	metrics   Metrics
	observers map[Observer]struct{}
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		observers: make(map[Observer]struct{}),
	}
}

// SetStep sets the step number stamped on events published from now on.
func (q *Queue) SetStep(step uint64) {
	q.mu.Lock()
	q.step = step
	q.mu.Unlock()
}

func (q *Queue) Publish(event Event) {
	q.mu.Lock()
	if event.Step == 0 {
		event.Step = q.step
	}
	q.pending = append(q.pending, event)
	observing := len(q.observers) > 0
	if observing {
		q.metrics.Published++
	}
	obs := q.observerList()
	q.mu.Unlock()

	for _, o := range obs {
		o.OnPublish(event)
	}
}

// Subscribe registers a handler for one event type.
func (q *Queue) Subscribe(eventType EventType, handler EventHandler) (Subscription, error) {
	if eventType == "" {
		return nil, errors.New("bus: empty event type")
	}
	return q.subscribe(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (q *Queue) SubscribeAll(handler EventHandler) (Subscription, error) {
	return q.subscribe("", handler)
}

func (q *Queue) subscribe(eventType EventType, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("bus: nil handler")
	}
	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler, active: true}
	s.cancel = func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.subs = slices.DeleteFunc(q.subs, func(x *subscription) bool { return x == s })
	}

	q.mu.Lock()
	q.subs = append(q.subs, s)
	q.mu.Unlock()
	return s, nil
}

func (q *Queue) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

// Pending returns the number of buffered events.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush delivers every buffered event. Handler errors are joined.
func (q *Queue) Flush() error {
	q.mu.Lock()
	events := q.pending
	q.pending = nil
	subs := slices.Clone(q.subs)
	obs := q.observerList()
	q.mu.Unlock()

	var all error
	for _, e := range events {
		delivered := 0
		var errs error
		for _, s := range subs {
			if !s.active || (s.eventType != "" && s.eventType != e.Type) {
				continue
			}
			delivered++
			if err := s.handler(e); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		all = errors.Join(all, errs)

		if len(obs) > 0 {
			for _, o := range obs {
				o.OnDelivered(e, delivered, errs)
			}
			q.mu.Lock()
			q.metrics.DeliveredHandlers += uint64(delivered)
			if errs != nil {
				q.metrics.Errors++
			}
			q.mu.Unlock()
		}
	}

	if len(obs) > 0 {
		q.mu.Lock()
		q.metrics.Flushes++
		q.mu.Unlock()
	}
	return all
}

func (q *Queue) AddObserver(obs Observer) {
	q.mu.Lock()
	q.observers[obs] = struct{}{}
	q.mu.Unlock()
}

func (q *Queue) RemoveObserver(obs Observer) {
	q.mu.Lock()
	delete(q.observers, obs)
	q.mu.Unlock()
}

// GetMetrics returns a snapshot of accumulated metrics. Metrics are only
// collected while at least one observer is registered.
func (q *Queue) GetMetrics() Metrics {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.metrics
}

func (q *Queue) observerList() []Observer {
	if len(q.observers) == 0 {
		return nil
	}
	out := make([]Observer, 0, len(q.observers))
	for o := range q.observers {
		out = append(out, o)
	}
	return out
}
