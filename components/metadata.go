package components

import (
	"fmt"
	"math"
)

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float32 // Minimum value (for bars)
	Max    float32 // Maximum value (for bars)
	IsBar  bool    // True to render as progress bar
	Group  string  // Logical grouping
}

// StarFieldDescriptors returns metadata for the selected-star panel.
// maxMass scales the mass bar.
func StarFieldDescriptors(maxMass float32) []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "id", Label: "Body", Format: "%d", Group: "identity"},
		{ID: "mass", Label: "Mass", Format: "%.2f", Min: 0, Max: maxMass, IsBar: true, Group: "stats"},
		{ID: "speed", Label: "Speed", Format: "%.2f", Group: "stats"},
		{ID: "band", Label: "Band", Format: "%d", Group: "stats"},
		{ID: "glow", Label: "Glow", Format: "%.2f", Min: 0, Max: 1, IsBar: true, Group: "render"},
	}
}

// FieldValue formats the value of field id for a star.
func FieldValue(d FieldDescriptor, s Star, v Velocity, g Glow) (string, float32) {
	switch d.ID {
	case "id":
		return fmt.Sprintf(d.Format, s.BodyID), 0
	case "mass":
		return fmt.Sprintf(d.Format, s.Mass), s.Mass
	case "speed":
		sp := v.X*v.X + v.Y*v.Y
		return fmt.Sprintf(d.Format, math.Sqrt(float64(sp))), 0
	case "band":
		return fmt.Sprintf(d.Format, s.Band), 0
	case "glow":
		return fmt.Sprintf(d.Format, g.Intensity), g.Intensity
	default:
		return "", 0
	}
}
