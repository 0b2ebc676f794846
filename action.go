package robotroute

import (
	"fmt"
	"strconv"
)

// Action is a unit step, one of eight headings 45 degrees apart. Angles grow
// counter-clockwise from east; y grows downward. The zero Action is
// NoDirection.
type Action int

const (
	// NoDirection marks a position that was not produced by a move.
	NoDirection Action = iota

	East      // 0°
	NorthEast // 45°
	North     // 90°
	NorthWest // 135°
	West      // 180°
	SouthWest // 225°
	South     // 270°
	SouthEast // 315°
)

// AllActions lists every action in ascending angle order. Index i holds the
// action with angle 45*i, which is also the index of the matching entry in
// NeighborWalls.
var AllActions = [8]Action{East, NorthEast, North, NorthWest, West, SouthWest, South, SouthEast}

var actionDeltas = [8][2]int{
	{+1, 0},
	{+1, -1},
	{0, -1},
	{-1, -1},
	{-1, 0},
	{-1, +1},
	{0, +1},
	{+1, +1},
}

var actionNames = [8]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}

// Valid reports whether the action is one of the eight moves.
func (action Action) Valid() bool {
	return action >= East && action <= SouthEast
}

// Index returns the position of the action in AllActions, or -1.
func (action Action) Index() int {
	if !action.Valid() {
		return -1
	}
	return int(action - East)
}

// Angle returns the heading in degrees, or -1 for NoDirection.
func (action Action) Angle() int {
	if index := action.Index(); index >= 0 {
		return 45 * index
	}
	return -1
}

// ActionFromAngle maps 0, 45, ... 315 to the matching action.
func ActionFromAngle(angle int) (Action, bool) {
	if angle < 0 || angle >= 360 || angle%45 != 0 {
		return NoDirection, false
	}
	return AllActions[angle/45], true
}

// Delta returns the coordinate offset of the move. Invalid actions do not move.
func (action Action) Delta() (dx, dy int) {
	index := action.Index()
	if index < 0 {
		return 0, 0
	}
	return actionDeltas[index][0], actionDeltas[index][1]
}

// Opposite returns the action pointing back the way this one came.
func (action Action) Opposite() Action {
	if !action.Valid() {
		return NoDirection
	}
	return AllActions[(action.Index()+4)%len(AllActions)]
}

// Name returns the compass abbreviation, e.g. "NE".
func (action Action) Name() string {
	if index := action.Index(); index >= 0 {
		return actionNames[index]
	}
	return "none"
}

func (action Action) String() string {
	if index := action.Index(); index >= 0 {
		return fmt.Sprintf("%d°(%s)", action.Angle(), actionNames[index])
	}
	return "none"
}

// ParseAction accepts either the angle ("45") or the compass name ("NE").
func ParseAction(text string) (Action, error) {
	for index, name := range actionNames {
		if text == name {
			return AllActions[index], nil
		}
	}
	if angle, err := strconv.Atoi(text); err == nil {
		if action, ok := ActionFromAngle(angle); ok {
			return action, nil
		}
	}
	return NoDirection, fmt.Errorf("unknown action %q", text)
}
