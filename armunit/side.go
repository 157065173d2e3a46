// Package armunit sets up the two-link arms of the robot: which hand holds the customer's hand,
// the pose presets of each side and the inverse kinematics of the active arm.
package armunit

import (
	"fmt"
)

// Side names an arm. The hand-holding side is the arm driven by inverse kinematics.
type Side string

const (
	// SideRight is the robot's right arm.
	SideRight Side = "right"
	// SideLeft is the robot's left arm.
	SideLeft Side = "left"
)

// Sides lists both arms, right first.
var Sides = []Side{SideRight, SideLeft}

// ParseSide converts "right" or "left" to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideRight, SideLeft:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown arm side %q, expected %q or %q", s, SideRight, SideLeft)
}

// Opposite returns the other arm.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Pose names a preset of initial arm rotations.
type Pose string

const (
	// PoseHandHolding raises the arm to hold a customer's hand.
	PoseHandHolding Pose = "hand_holding"
	// PoseCatering bends the elbow to carry a tray.
	PoseCatering Pose = "catering"
)

// ParsePose converts a pose name to a Pose. The empty string is the hand-holding pose.
func ParsePose(s string) (Pose, error) {
	switch Pose(s) {
	case "":
		return PoseHandHolding, nil
	case PoseHandHolding, PoseCatering:
		return Pose(s), nil
	}
	return "", fmt.Errorf("unknown pose %q", s)
}
