package robotroute

import "fmt"

// Location is the identity of a robot state. Search algorithms key their
// frontier and explored sets by Location, never by Position.
type Location struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (location Location) String() string {
	return fmt.Sprintf("(%d,%d)", location.X, location.Y)
}

// Step returns the location reached by applying the action's delta.
func (location Location) Step(action Action) Location {
	dx, dy := action.Delta()
	return Location{X: location.X + dx, Y: location.Y + dy}
}

// NeighborWalls holds the occupancy of the eight surrounding cells, indexed
// like AllActions: entry i is the cell reached by the action with angle 45*i.
type NeighborWalls [8]bool

// Blocked reports whether the neighbor in the action's direction is a wall.
func (walls NeighborWalls) Blocked(action Action) bool {
	index := action.Index()
	return index < 0 || walls[index]
}

// SnapshotWalls samples the grid around (x, y).
func SnapshotWalls(grid *Grid, x, y int) NeighborWalls {
	var walls NeighborWalls
	for index, action := range AllActions {
		dx, dy := action.Delta()
		walls[index] = grid.IsWall(x+dx, y+dy)
	}
	return walls
}

// Position is the robot state: where it stands, the move that brought it
// there and the walls around it. The wall snapshot is taken from the grid by
// NewPosition and cannot be changed afterwards.
//
// Two positions are the same state when their locations match; direction and
// walls are auxiliary. The zero Position stands at (0,0) with no direction and
// no snapshot.
type Position struct {
	x         int
	y         int
	direction Action
	walls     NeighborWalls
	sampled   bool
}

// NewPosition builds a position and takes its wall snapshot from grid.
func NewPosition(grid *Grid, x, y int, direction Action) Position {
	return Position{
		x:         x,
		y:         y,
		direction: direction,
		walls:     SnapshotWalls(grid, x, y),
		sampled:   true,
	}
}

func (position Position) X() int            { return position.x }
func (position Position) Y() int            { return position.y }
func (position Position) Direction() Action { return position.direction }

// Walls returns the snapshot taken when the position was built.
func (position Position) Walls() NeighborWalls { return position.walls }

// Sampled reports whether the position carries a wall snapshot, which only
// positions built by NewPosition do.
func (position Position) Sampled() bool { return position.sampled }

func (position Position) Location() Location {
	return Location{X: position.x, Y: position.y}
}

// LocationEquals compares x and y only.
func (position Position) LocationEquals(other Position) bool {
	return position.x == other.x && position.y == other.y
}

func (position Position) String() string {
	return fmt.Sprintf("(%d,%d) %s", position.x, position.y, position.direction)
}
