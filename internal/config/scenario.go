package config

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/zeusync/hazards/internal/core/observability/log"
	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/core/physics/world"
	"github.com/zeusync/hazards/internal/sim"
)

// BodyConfig places a static collider in the scenario world.
type BodyConfig struct {
	Name   string  `json:"name" yaml:"name"`
	Shape  string  `json:"shape" yaml:"shape"`
	Origin Vec     `json:"origin" yaml:"origin"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	// HalfExtents sizes a box.
	HalfExtents Vec    `json:"half_extents,omitempty" yaml:"half_extents,omitempty"`
	Layer       uint32 `json:"layer" yaml:"layer"`
	Mask        uint32 `json:"mask" yaml:"mask"`
}

// SpawnConfig spawns an archetype, optionally after a delay on the simulation
// clock. Target, Exception and Mount name scenario bodies.
type SpawnConfig struct {
	Archetype string   `json:"archetype" yaml:"archetype"`
	At        Vec      `json:"at" yaml:"at"`
	Dir       *Vec     `json:"dir,omitempty" yaml:"dir,omitempty"`
	Delay     *Seconds `json:"delay,omitempty" yaml:"delay,omitempty"`
	Target    string   `json:"target,omitempty" yaml:"target,omitempty"`
	Exception string   `json:"exception,omitempty" yaml:"exception,omitempty"`
	Mount     string   `json:"mount,omitempty" yaml:"mount,omitempty"`
}

func (b BodyConfig) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: body without name", ErrInvalidValue)
	}
	switch strings.ToLower(b.Shape) {
	case "sphere", "":
		if b.Radius <= 0 {
			return fmt.Errorf("%w: body %s needs a positive radius", ErrInvalidValue, b.Name)
		}
	case "box":
		if b.HalfExtents == (Vec{}) {
			return fmt.Errorf("%w: body %s needs half_extents", ErrInvalidValue, b.Name)
		}
	default:
		return fmt.Errorf("%w: body %s shape %q", ErrInvalidValue, b.Name, b.Shape)
	}
	return nil
}

func (s SpawnConfig) transform() physics.Transform {
	dir := physics.Forward
	if s.Dir != nil {
		dir = s.Dir.Vec3()
	}
	return physics.At(s.At.Vec3(), dir)
}

// Populate adds the scenario bodies to w, fills the prewarmed pools and
// schedules the spawns on s. Spawns without a delay happen immediately; a delayed spawn that fails is
// logged.
func (c *Config) Populate(s *sim.Simulation, w *world.World, logger log.Log) error {
	bodies := make(map[string]*world.Body, len(c.Bodies))
	for _, b := range c.Bodies {
		layer, mask := physics.Layer(b.Layer), physics.Layer(b.Mask)
		if strings.EqualFold(b.Shape, "box") {
			bodies[b.Name] = w.AddBox(b.Name, b.Origin.Vec3(), b.HalfExtents.Vec3(), layer, mask)
		} else {
			bodies[b.Name] = w.AddSphere(b.Name, b.Origin.Vec3(), math.Abs(b.Radius), layer, mask)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Prewarm)) {
		if err := s.Prewarm(name, c.Prewarm[name]); err != nil {
			return fmt.Errorf("prewarm %s: %w", name, err)
		}
	}

	for i, sp := range c.Spawns {
		opts, err := sp.options(bodies)
		if err != nil {
			return fmt.Errorf("spawn %d: %w", i, err)
		}

		spawn := func() error {
			_, err := s.Spawn(sp.Archetype, sp.transform(), opts...)
			return err
		}
		if sp.Delay == nil || sp.Delay.Duration() <= 0 {
			if err := spawn(); err != nil {
				return fmt.Errorf("spawn %d: %w", i, err)
			}
			continue
		}

		t := s.Clock().CreateTimer(sp.Delay.Duration(), false, true)
		t.OnTimeout(func() {
			defer t.Close()
			if err := spawn(); err != nil {
				logger.Error("delayed spawn failed", log.Int("spawn", i), log.Error(err))
			}
		})
	}
	return nil
}

func (s SpawnConfig) options(bodies map[string]*world.Body) ([]sim.SpawnOption, error) {
	lookup := func(name string) (*world.Body, error) {
		b, ok := bodies[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBody, name)
		}
		return b, nil
	}

	var opts []sim.SpawnOption
	if s.Target != "" {
		b, err := lookup(s.Target)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithTarget(b))
	}
	if s.Exception != "" {
		b, err := lookup(s.Exception)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithCollisionException(b))
	}
	if s.Mount != "" {
		b, err := lookup(s.Mount)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithMount(b))
	}
	return opts, nil
}
