package physics

// Layer is a collision bit mask. A body is hit by a query when its layer
// shares at least one bit with the query mask.
type Layer uint32

// Matches reports whether any bit of l is set in mask.
func (l Layer) Matches(mask Layer) bool { return l&mask != 0 }

// Body is anything the physics service can report from a query. Bodies are
// owned by the external world and may be removed at any time, so holders keep
// them as weak references and check Valid before use. Implementations must be
// comparable (pointer types): identity is checked with ==.
type Body interface {
	Name() string
	Layer() Layer
	Transform() Transform
	Valid() bool
}

// Kinematic is a body the engine moves itself. A disabled body stays valid
// but takes no part in queries, the way a pooled hazard sits out of the world
// until it is spawned again.
type Kinematic interface {
	Body
	Mask() Layer
	SetTransform(Transform)
	Enabled() bool
	SetEnabled(bool)
}

// Valid reports whether b is set and still alive.
func Valid(b Body) bool {
	return b != nil && b.Valid()
}

// Contact is the first blocking contact of a swept move.
type Contact struct {
	Collider Body
	Normal   Vec3
	Point    Vec3
}

// RayHit is the nearest intersection of a ray query.
type RayHit struct {
	Collider Body
	Point    Vec3
	Normal   Vec3
}

// Space is the physics query service consumed by the hazard engine.
type Space interface {
	// MoveAndCollide sweeps body by motion and stops at the first contact,
	// ignoring the bodies in exclude. The body is left at the furthest safe
	// position.
	MoveAndCollide(body Kinematic, motion Vec3, exclude ...Body) (Contact, bool)
	// Overlap returns every body on mask intersecting shape placed at xf.
	Overlap(shape Shape, xf Transform, mask Layer) []Body
	// Raycast returns the nearest body on mask along the segment from -> to.
	// A ray starting inside a body does not report that body.
	Raycast(from, to Vec3, mask Layer, exclude ...Body) (RayHit, bool)
}

// KinematicSpec describes a body the engine asks the world to create.
type KinematicSpec struct {
	Name      string
	Transform Transform
	Radius    float64
	Layer     Layer
	Mask      Layer
}

// BodyFactory creates and removes engine-owned bodies.
type BodyFactory interface {
	NewKinematic(spec KinematicSpec) Kinematic
	RemoveBody(b Body)
}
