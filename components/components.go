// Package components defines ECS components for the presentation layer.
// The physics core owns body state; these mirror it for rendering and
// selection.
package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Star links an entity to its body in the physics core.
type Star struct {
	BodyID int32   `inspect:"label"`
	Mass   float32 `inspect:"label,fmt:%.2f"`
	Radius float32 `inspect:"label,fmt:%.1f"` // draw radius in world units
	Band   uint8   `inspect:"label"`          // colour band index by mass
}

// Glow drives the halo drawn around a star. Pulse is set when the star
// absorbs another and decays each frame.
type Glow struct {
	Intensity float32 `inspect:"bar"`
	Pulse     float32 `inspect:"bar"`
}
