// Package gesture holds pose predicates and the frame consumers built on them.
package gesture

import (
	"github.com/banshee-data/bodytrack/internal/body"
)

// Predicate classifies one body's pose for the current frame.
type Predicate func(k body.Kinematics) bool

// HandsAboveHead reports whether both hands are higher than the head.
func HandsAboveHead(k body.Kinematics) bool {
	head := k.Position(body.Head).Y
	return k.Position(body.HandLeft).Y > head && k.Position(body.HandRight).Y > head
}

// AnyHandAboveHead reports whether at least one hand is higher than the head.
func AnyHandAboveHead(k body.Kinematics) bool {
	head := k.Position(body.Head).Y
	return k.Position(body.HandLeft).Y > head || k.Position(body.HandRight).Y > head
}

// Count returns how many bodies satisfy pred.
func Count(bodies []*body.Record, pred Predicate) int {
	n := 0
	for _, r := range bodies {
		if pred(r) {
			n++
		}
	}
	return n
}

// Fraction returns the share of bodies satisfying pred, or 0 with no bodies.
func Fraction(bodies []*body.Record, pred Predicate) float64 {
	if len(bodies) == 0 {
		return 0
	}
	return float64(Count(bodies, pred)) / float64(len(bodies))
}
