package enums

import "strings"

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection accepts left/right as well as the pass/like aliases used by the clients.
func ParseDirection(value string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "pass", "nope", "dislike":
		return DirectionLeft, true
	case "right", "like":
		return DirectionRight, true
	default:
		return "", false
	}
}

func (d Direction) IsLike() bool {
	return d == DirectionRight
}
