package hazard

import "errors"

var (
	ErrUnsupportedShape = errors.New("unsupported detonation volume shape")
	ErrNilBody          = errors.New("hazard requires a body")
	ErrNoSpace          = errors.New("hazard requires a physics space")
	ErrNoScheduler      = errors.New("hazard requires a timer scheduler")
)
