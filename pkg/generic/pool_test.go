package generic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() func() (*int, error) {
	n := 0
	return func() (*int, error) {
		n++
		v := n
		return &v, nil
	}
}

func TestPoolReusesLastPut(t *testing.T) {
	p := NewPool(counter())

	a, reused, err := p.Get()
	require.NoError(t, err)
	assert.False(t, reused)
	b, _, _ := p.Get()

	p.Put(a)
	p.Put(b)
	assert.Equal(t, 2, p.Len())

	got, reused, err := p.Get()
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Same(t, b, got)

	got, _, _ = p.Get()
	assert.Same(t, a, got)

	got, reused, _ = p.Get()
	assert.False(t, reused)
	assert.Equal(t, 3, *got)
}

func TestHotPool(t *testing.T) {
	p, err := NewHotPool(counter(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	drained := p.Drain()
	assert.Len(t, drained, 3)
	assert.Zero(t, p.Len())
}

func TestPoolGenerateError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPool(func() (*int, error) { return nil, boom })

	_, _, err := p.Get()
	assert.ErrorIs(t, err, boom)

	_, err = NewHotPool(func() (*int, error) { return nil, boom }, 1)
	assert.ErrorIs(t, err, boom)
}
