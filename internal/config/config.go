// Package config loads hazard archetypes and scenarios from YAML or JSON and
// builds hazards from them.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/hazards/internal/core/physics"
)

// Config is a unified structure able to describe archetypes and a scenario in
// JSON or YAML.
type Config struct {
	Archetypes map[string]Archetype `json:"archetypes" yaml:"archetypes"`
	Bodies     []BodyConfig         `json:"bodies,omitempty" yaml:"bodies,omitempty"`
	Spawns     []SpawnConfig        `json:"spawns,omitempty" yaml:"spawns,omitempty"`
	// Prewarm builds this many pooled hazards per archetype before any spawn.
	Prewarm map[string]int `json:"prewarm,omitempty" yaml:"prewarm,omitempty"`
}

// Archetype describes one buildable hazard. Unset fields keep the built-in
// defaults of the hazard type.
type Archetype struct {
	Type          string    `json:"type" yaml:"type"`
	FreeOnUse     bool      `json:"free_on_use,omitempty" yaml:"free_on_use,omitempty"`
	StartInactive bool      `json:"start_inactive,omitempty" yaml:"start_inactive,omitempty"`
	Body          *BodySpec `json:"body,omitempty" yaml:"body,omitempty"`

	// projectile
	Speed    *float64    `json:"speed,omitempty" yaml:"speed,omitempty"`
	Duration *Seconds    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Bounce   *BounceSpec `json:"bounce,omitempty" yaml:"bounce,omitempty"`
	Homing   *HomingSpec `json:"homing,omitempty" yaml:"homing,omitempty"`

	// beam
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Tick   *Seconds `json:"tick,omitempty" yaml:"tick,omitempty"`
	Mask   *uint32  `json:"mask,omitempty" yaml:"mask,omitempty"`

	// grenade
	Radius       *float64    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Fuse         *Seconds    `json:"fuse,omitempty" yaml:"fuse,omitempty"`
	CoverCulling *bool       `json:"cover_culling,omitempty" yaml:"cover_culling,omitempty"`
	Shape        string      `json:"shape,omitempty" yaml:"shape,omitempty"`
	ShapeHeight  *float64    `json:"shape_height,omitempty" yaml:"shape_height,omitempty"`
	Volume       *VolumeSpec `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// BodySpec sizes the kinematic body a projectile or grenade moves.
type BodySpec struct {
	Radius float64 `json:"radius" yaml:"radius"`
	Layer  uint32  `json:"layer" yaml:"layer"`
	Mask   uint32  `json:"mask" yaml:"mask"`
}

type BounceSpec struct {
	Mask      *uint32 `json:"mask,omitempty" yaml:"mask,omitempty"`
	MaxBounce *int    `json:"max_bounce,omitempty" yaml:"max_bounce,omitempty"`
	// Angle is the bounce angle threshold in degrees.
	Angle *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

type HomingSpec struct {
	RotationSpeed *float64 `json:"rotation_speed,omitempty" yaml:"rotation_speed,omitempty"`
}

// VolumeSpec sets what the detonation volume reports. The grenade's own
// layer is its body's layer.
type VolumeSpec struct {
	Mask uint32 `json:"mask" yaml:"mask"`
}

// Vec is written as [x, y, z].
type Vec [3]float64

func (v Vec) Vec3() physics.Vec3 { return physics.Vec3(v) }

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode json config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile picks the decoder from the file extension; anything but .json is
// read as YAML.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Validate checks every archetype and that spawns reference known
// archetypes or built-in presets, and known bodies.
func (c *Config) Validate() error {
	for name, a := range c.Archetypes {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("archetype %s: %w", name, err)
		}
	}

	bodies := make(map[string]struct{}, len(c.Bodies))
	for i, b := range c.Bodies {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		bodies[b.Name] = struct{}{}
	}

	defaults := Default()
	known := func(name string) bool {
		if _, ok := c.Archetypes[name]; ok {
			return true
		}
		_, ok := defaults.Lookup(name)
		return ok
	}
	for name, n := range c.Prewarm {
		if !known(name) {
			return fmt.Errorf("prewarm: %w: %s", ErrUnknownArchetype, name)
		}
		if n < 0 {
			return fmt.Errorf("prewarm %s: %w: negative count %d", name, ErrInvalidValue, n)
		}
	}
	for i, s := range c.Spawns {
		if !known(s.Archetype) {
			return fmt.Errorf("spawn %d: %w: %s", i, ErrUnknownArchetype, s.Archetype)
		}
		for _, ref := range []string{s.Target, s.Exception, s.Mount} {
			if ref == "" {
				continue
			}
			if _, ok := bodies[ref]; !ok {
				return fmt.Errorf("spawn %d: %w: %s", i, ErrUnknownBody, ref)
			}
		}
	}
	return nil
}

// Registry returns the built-in presets overridden by the archetypes of c.
func (c *Config) Registry() (*Registry, error) {
	r := Default()
	for name, a := range c.Archetypes {
		if err := r.Register(name, a); err != nil {
			return nil, err
		}
	}
	return r, nil
}
