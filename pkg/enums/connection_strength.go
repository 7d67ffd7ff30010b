package enums

// ConnectionStrength classifies how active a follow edge is.
type ConnectionStrength string

const (
	ConnectionStrengthWeak     ConnectionStrength = "weak"
	ConnectionStrengthModerate ConnectionStrength = "moderate"
	ConnectionStrengthStrong   ConnectionStrength = "strong"
)

// IsValid checks whether the strength matches the canonical enum.
func (s ConnectionStrength) IsValid() bool {
	switch s {
	case ConnectionStrengthWeak, ConnectionStrengthModerate, ConnectionStrengthStrong:
		return true
	}
	return false
}

// StrengthForInteractions derives the coarse classification from the
// interaction counter on the edge.
func StrengthForInteractions(count int) ConnectionStrength {
	switch {
	case count >= 50:
		return ConnectionStrengthStrong
	case count >= 10:
		return ConnectionStrengthModerate
	default:
		return ConnectionStrengthWeak
	}
}
