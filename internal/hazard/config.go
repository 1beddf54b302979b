package hazard

import (
	"math"
	"time"

	"github.com/zeusync/hazards/internal/core/physics"
)

// ProjectileConfig carries the defaults a projectile restores on Reset.
type ProjectileConfig struct {
	Speed         float64
	Duration      time.Duration
	FreeOnUse     bool
	StartInactive bool

	// Optional strategies. Nil means linear motion and no bouncing.
	Bounce *BounceConfig
	Homing *HomingConfig
}

type BounceConfig struct {
	Mask      physics.Layer
	MaxBounce uint32
	// AngleThreshold is in radians.
	AngleThreshold float64
}

type HomingConfig struct {
	RotationSpeed float64
}

type BeamConfig struct {
	Length        float64
	TickInterval  time.Duration
	Mask          physics.Layer
	FreeOnUse     bool
	StartInactive bool
}

type GrenadeConfig struct {
	Radius       float64
	Fuse         time.Duration
	CoverCulling bool

	Shape       physics.ShapeKind
	ShapeHeight float64
	VolumeMask  physics.Layer

	FreeOnUse     bool
	StartInactive bool
}

func DefaultProjectileConfig() ProjectileConfig {
	return ProjectileConfig{
		Speed:    7.5,
		Duration: 3500 * time.Millisecond,
	}
}

func DefaultBounceConfig() BounceConfig {
	return BounceConfig{
		Mask:           1,
		MaxBounce:      2,
		AngleThreshold: math.Pi / 2,
	}
}

func DefaultHomingConfig() HomingConfig {
	return HomingConfig{RotationSpeed: 2.5}
}

func DefaultBeamConfig() BeamConfig {
	return BeamConfig{
		Length:       1,
		TickInterval: 500 * time.Millisecond,
		Mask:         1,
	}
}

func DefaultGrenadeConfig() GrenadeConfig {
	return GrenadeConfig{
		Radius:      3,
		Fuse:        4 * time.Second,
		Shape:       physics.ShapeSphere,
		ShapeHeight: 2,
		VolumeMask:  1,
	}
}

// normalize stores every default numeric as its absolute value.
func (c ProjectileConfig) normalize() ProjectileConfig {
	c.Speed = math.Abs(c.Speed)
	c.Duration = absDuration(c.Duration)
	if c.Bounce != nil {
		b := c.Bounce.normalize()
		c.Bounce = &b
	}
	if c.Homing != nil {
		h := c.Homing.normalize()
		c.Homing = &h
	}
	return c
}

func (c BounceConfig) normalize() BounceConfig {
	c.AngleThreshold = math.Abs(c.AngleThreshold)
	return c
}

func (c HomingConfig) normalize() HomingConfig {
	c.RotationSpeed = math.Abs(c.RotationSpeed)
	return c
}

func (c BeamConfig) normalize() BeamConfig {
	c.Length = math.Abs(c.Length)
	c.TickInterval = absDuration(c.TickInterval)
	return c
}

func (c GrenadeConfig) normalize() GrenadeConfig {
	c.Radius = math.Abs(c.Radius)
	c.Fuse = absDuration(c.Fuse)
	c.ShapeHeight = math.Abs(c.ShapeHeight)
	return c
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
