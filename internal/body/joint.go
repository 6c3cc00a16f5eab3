package body

import (
	"fmt"
)

// JointKind enumerates the skeletal landmarks reported for each body.
type JointKind uint8

const (
	SpineBase JointKind = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight

	// JointCount is the number of joint kinds. Not a valid joint.
	JointCount
)

var jointNames = [JointCount]string{
	SpineBase:     "SpineBase",
	SpineMid:      "SpineMid",
	Neck:          "Neck",
	Head:          "Head",
	ShoulderLeft:  "ShoulderLeft",
	ElbowLeft:     "ElbowLeft",
	WristLeft:     "WristLeft",
	HandLeft:      "HandLeft",
	ShoulderRight: "ShoulderRight",
	ElbowRight:    "ElbowRight",
	WristRight:    "WristRight",
	HandRight:     "HandRight",
	HipLeft:       "HipLeft",
	KneeLeft:      "KneeLeft",
	AnkleLeft:     "AnkleLeft",
	FootLeft:      "FootLeft",
	HipRight:      "HipRight",
	KneeRight:     "KneeRight",
	AnkleRight:    "AnkleRight",
	FootRight:     "FootRight",
	SpineShoulder: "SpineShoulder",
	HandTipLeft:   "HandTipLeft",
	ThumbLeft:     "ThumbLeft",
	HandTipRight:  "HandTipRight",
	ThumbRight:    "ThumbRight",
}

// Valid reports whether j names a real joint.
func (j JointKind) Valid() bool {
	return j < JointCount
}

func (j JointKind) String() string {
	if !j.Valid() {
		return fmt.Sprintf("JointKind(%d)", uint8(j))
	}
	return jointNames[j]
}

// MarshalText encodes the joint by name so it can key JSON objects.
func (j JointKind) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint kind %d", uint8(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText decodes a joint name produced by MarshalText.
func (j *JointKind) UnmarshalText(text []byte) error {
	k, err := ParseJointKind(string(text))
	if err != nil {
		return err
	}
	*j = k
	return nil
}

// ParseJointKind returns the joint with the given name.
func ParseJointKind(name string) (JointKind, error) {
	for i, n := range jointNames {
		if n == name {
			return JointKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint kind %q", name)
}

// ParseJointKinds parses a list of joint names, failing on the first unknown name.
func ParseJointKinds(names []string) ([]JointKind, error) {
	out := make([]JointKind, 0, len(names))
	for _, n := range names {
		k, err := ParseJointKind(n)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// HandJoints is the joint set used by the hand velocity displays.
var HandJoints = []JointKind{HandLeft, HandRight}
