package generic

// Pool is a LIFO free list. Unlike sync.Pool it never drops values, so a value
// returned with Put is the next one handed out by Get. It is not safe for
// concurrent use.
type Pool[T any] struct {
	free     []T
	generate func() (T, error)
}

func NewPool[T any](generate func() (T, error)) *Pool[T] {
	return &Pool[T]{generate: generate}
}

// NewHotPool prefills the pool with hotSize generated values.
func NewHotPool[T any](generate func() (T, error), hotSize int) (*Pool[T], error) {
	p := NewPool[T](generate)
	for i := 0; i < hotSize; i++ {
		v, err := generate()
		if err != nil {
			return nil, err
		}
		p.free = append(p.free, v)
	}
	return p, nil
}

// Get returns a pooled value, generating one when the pool is empty. The bool
// reports whether the value was reused.
func (p *Pool[T]) Get() (T, bool, error) {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		return v, true, nil
	}
	v, err := p.generate()
	return v, false, err
}

func (p *Pool[T]) Put(value T) {
	p.free = append(p.free, value)
}

func (p *Pool[T]) Len() int {
	return len(p.free)
}

// Drain empties the pool and returns what it held.
func (p *Pool[T]) Drain() []T {
	out := p.free
	p.free = nil
	return out
}
