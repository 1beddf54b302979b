package config

// Built-in preset names.
const (
	Linear  = "linear"
	Bouncy  = "bouncy"
	Homing  = "homing"
	Beam    = "beam"
	Grenade = "grenade"
)

// Default returns a registry holding the built-in presets. Every preset
// leaves its numbers unset so it carries the hazard type's defaults.
func Default() *Registry {
	r := NewRegistry()
	presets := map[string]Archetype{
		Linear:  {Type: "projectile"},
		Bouncy:  {Type: "projectile", Bounce: &BounceSpec{}},
		Homing:  {Type: "projectile", Homing: &HomingSpec{}},
		Beam:    {Type: "beam"},
		Grenade: {Type: "grenade", Body: &BodySpec{Radius: 0.1, Layer: 1, Mask: 1}},
	}
	for name, a := range presets {
		if err := r.Register(name, a); err != nil {
			panic(err)
		}
	}
	return r
}
