package bus

import "github.com/zeusync/hazards/internal/core/observability/log"

var _ Observer = (*LogObserver)(nil)

// LogObserver logs every delivery that failed, with the event that caused it.
// Registering it also switches on the queue metrics.
type LogObserver struct {
	log log.Log
}

func NewLogObserver(logger log.Log) *LogObserver {
	if logger == nil {
		logger = log.NewNop()
	}
	return &LogObserver{log: logger}
}

func (o *LogObserver) OnPublish(Event) {}

func (o *LogObserver) OnDelivered(e Event, handlers int, err error) {
	if err == nil {
		return
	}
	o.log.Debug("event handler failed",
		log.String("type", string(e.Type)),
		log.String("hazard", e.Name),
		log.Uint64("step", e.Step),
		log.Int("handlers", handlers),
		log.Error(err),
	)
}
