package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/hazard"
)

// DefaultBody is used when an archetype does not size its body.
var DefaultBody = BodySpec{Radius: 0.1, Layer: 2, Mask: 1}

func (a Archetype) kind() (hazard.Kind, error) {
	switch k := hazard.Kind(strings.ToLower(a.Type)); k {
	case hazard.KindProjectile, hazard.KindBeam, hazard.KindGrenade:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, a.Type)
	}
}

func (a Archetype) Validate() error {
	kind, err := a.kind()
	if err != nil {
		return err
	}

	if a.Body != nil && a.Body.Radius < 0 {
		return fmt.Errorf("%w: negative body radius %v", ErrInvalidValue, a.Body.Radius)
	}
	if a.Bounce != nil && a.Bounce.MaxBounce != nil && *a.Bounce.MaxBounce < 0 {
		return fmt.Errorf("%w: negative max_bounce %d", ErrInvalidValue, *a.Bounce.MaxBounce)
	}

	switch kind {
	case hazard.KindProjectile:
		_, err = a.ProjectileConfig()
	case hazard.KindBeam:
		_, err = a.BeamConfig()
	case hazard.KindGrenade:
		_, err = a.GrenadeConfig()
	}
	return err
}

// ProjectileConfig overlays the archetype on the projectile defaults.
func (a Archetype) ProjectileConfig() (hazard.ProjectileConfig, error) {
	cfg := hazard.DefaultProjectileConfig()
	cfg.FreeOnUse = a.FreeOnUse
	cfg.StartInactive = a.StartInactive
	setFloat(&cfg.Speed, a.Speed)
	if a.Duration != nil {
		cfg.Duration = a.Duration.Duration()
	}

	if b := a.Bounce; b != nil {
		bc := hazard.DefaultBounceConfig()
		if b.Mask != nil {
			bc.Mask = physics.Layer(*b.Mask)
		}
		if b.MaxBounce != nil {
			if *b.MaxBounce < 0 {
				return cfg, fmt.Errorf("%w: negative max_bounce %d", ErrInvalidValue, *b.MaxBounce)
			}
			bc.MaxBounce = uint32(*b.MaxBounce)
		}
		if b.Angle != nil {
			bc.AngleThreshold = mgl64.DegToRad(*b.Angle)
		}
		cfg.Bounce = &bc
	}

	if h := a.Homing; h != nil {
		hc := hazard.DefaultHomingConfig()
		setFloat(&hc.RotationSpeed, h.RotationSpeed)
		cfg.Homing = &hc
	}
	return cfg, nil
}

// BeamConfig overlays the archetype on the beam defaults.
func (a Archetype) BeamConfig() (hazard.BeamConfig, error) {
	cfg := hazard.DefaultBeamConfig()
	cfg.FreeOnUse = a.FreeOnUse
	cfg.StartInactive = a.StartInactive
	setFloat(&cfg.Length, a.Length)
	if a.Tick != nil {
		cfg.TickInterval = a.Tick.Duration()
	}
	if a.Mask != nil {
		cfg.Mask = physics.Layer(*a.Mask)
	}
	return cfg, nil
}

// GrenadeConfig overlays the archetype on the grenade defaults.
func (a Archetype) GrenadeConfig() (hazard.GrenadeConfig, error) {
	cfg := hazard.DefaultGrenadeConfig()
	cfg.FreeOnUse = a.FreeOnUse
	cfg.StartInactive = a.StartInactive
	setFloat(&cfg.Radius, a.Radius)
	setFloat(&cfg.ShapeHeight, a.ShapeHeight)
	if a.Fuse != nil {
		cfg.Fuse = a.Fuse.Duration()
	}
	if a.CoverCulling != nil {
		cfg.CoverCulling = *a.CoverCulling
	}
	if a.Volume != nil {
		cfg.VolumeMask = physics.Layer(a.Volume.Mask)
	}
	if a.Shape != "" {
		kind, err := physics.ParseShapeKind(a.Shape)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		// A hull needs its points, which a config file cannot carry. Convex
		// volumes are attached in code with hazard.WithVolume instead.
		if kind == physics.ShapeConvex {
			return cfg, fmt.Errorf("%w: %s volume needs points", hazard.ErrUnsupportedShape, kind)
		}
		cfg.Shape = kind
	}
	return cfg, nil
}

func (a Archetype) body() BodySpec {
	if a.Body == nil {
		return DefaultBody
	}
	return *a.Body
}

// Build creates a hazard named name. Projectiles and grenades get a new
// kinematic body from bodies.
func (a Archetype) Build(name string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error) {
	kind, err := a.kind()
	if err != nil {
		return nil, err
	}

	newBody := func() physics.Kinematic {
		spec := a.body()
		return bodies.NewKinematic(physics.KinematicSpec{
			Name:      name,
			Transform: physics.Identity(),
			Radius:    math.Abs(spec.Radius),
			Layer:     physics.Layer(spec.Layer),
			Mask:      physics.Layer(spec.Mask),
		})
	}

	switch kind {
	case hazard.KindProjectile:
		cfg, err := a.ProjectileConfig()
		if err != nil {
			return nil, err
		}
		body := newBody()
		p, err := hazard.NewProjectile(name, body, cfg, deps)
		if err != nil {
			bodies.RemoveBody(body)
			return nil, err
		}
		return p, nil
	case hazard.KindBeam:
		cfg, err := a.BeamConfig()
		if err != nil {
			return nil, err
		}
		b, err := hazard.NewBeam(name, cfg, deps)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		cfg, err := a.GrenadeConfig()
		if err != nil {
			return nil, err
		}
		body := newBody()
		g, err := hazard.NewGrenade(name, body, cfg, deps)
		if err != nil {
			bodies.RemoveBody(body)
			return nil, err
		}
		return g, nil
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
