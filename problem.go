package robotroute

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// RouteProblem is the problem of moving the robot from one location of a grid
// to another. It satisfies search.Problem[Position, Action, Location].
type RouteProblem struct {
	grid    *Grid
	initial Position
	goal    Location
}

// ProblemOption customizes a RouteProblem.
type ProblemOption func(*problemOptions)

type problemOptions struct {
	initialDirection Action
}

// WithInitialDirection sets the direction the robot is considered to have
// arrived from at the start, which forbids its reverse on the first move.
func WithInitialDirection(direction Action) ProblemOption {
	return func(options *problemOptions) { options.initialDirection = direction }
}

// NewRouteProblem checks that start and goal are free cells of grid.
func NewRouteProblem(grid *Grid, start, goal Location, options ...ProblemOption) (*RouteProblem, error) {
	problemConfig := problemOptions{initialDirection: NoDirection}
	for _, option := range options {
		option(&problemConfig)
	}

	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidConfiguration)
	}
	if grid.IsWall(start.X, start.Y) {
		return nil, fmt.Errorf("%w: start %s is not a free cell", ErrOutOfBounds, start)
	}
	if grid.IsWall(goal.X, goal.Y) {
		return nil, fmt.Errorf("%w: goal %s is not a free cell", ErrOutOfBounds, goal)
	}
	if problemConfig.initialDirection != NoDirection && !problemConfig.initialDirection.Valid() {
		return nil, fmt.Errorf("%w: initial direction %d", ErrInvalidConfiguration, int(problemConfig.initialDirection))
	}

	return &RouteProblem{
		grid:    grid,
		initial: NewPosition(grid, start.X, start.Y, problemConfig.initialDirection),
		goal:    goal,
	}, nil
}

func (problem *RouteProblem) Grid() *Grid       { return problem.grid }
func (problem *RouteProblem) Initial() Position { return problem.initial }
func (problem *RouteProblem) Goal() Location    { return problem.goal }

// Actions returns the legal moves from state in ascending angle order: every
// move whose target cell is free, minus the reverse of the move that produced
// state. A position without a snapshot is sampled from the problem's grid.
func (problem *RouteProblem) Actions(state Position) []Action {
	walls := state.walls
	if !state.sampled {
		walls = SnapshotWalls(problem.grid, state.x, state.y)
	}
	forbidden := state.direction.Opposite()
	actions := make([]Action, 0, len(AllActions))
	for index, action := range AllActions {
		if walls[index] || action == forbidden {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}

// Result applies action to state. It does not check legality; callers pass
// actions obtained from Actions.
func (problem *RouteProblem) Result(state Position, action Action) Position {
	dx, dy := action.Delta()
	return NewPosition(problem.grid, state.x+dx, state.y+dy, action)
}

func (problem *RouteProblem) GoalTest(state Position) bool {
	return state.x == problem.goal.X && state.y == problem.goal.Y
}

// Key projects a state onto its identity.
func (problem *RouteProblem) Key(state Position) Location {
	return state.Location()
}

// StepCost is 1 for every move, diagonal or not.
func (problem *RouteProblem) StepCost(Position, Action, Position) float64 {
	return 1
}

// --- Heuristics ---

// Manhattan overestimates whenever a diagonal move is available, so A* with it
// may settle on a longer route.
func (problem *RouteProblem) Manhattan(state Position) float64 {
	dx, dy := problem.offset(state)
	return float64(dx + dy)
}

func (problem *RouteProblem) Euclidean(state Position) float64 {
	dx, dy := problem.offset(state)
	return math.Sqrt(float64(dx*dx + dy*dy))
}

// Chebyshev is the number of moves needed on an empty grid when diagonal moves
// cost the same as straight ones.
func (problem *RouteProblem) Chebyshev(state Position) float64 {
	dx, dy := problem.offset(state)
	return float64(max(dx, dy))
}

// Zero ignores the state; best-first search with it degrades to uniform cost.
func (problem *RouteProblem) Zero(Position) float64 { return 0 }

func (problem *RouteProblem) offset(state Position) (dx, dy int) {
	dx = problem.goal.X - state.x
	dy = problem.goal.Y - state.y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx, dy
}

// HeuristicNames lists the names accepted by HeuristicByName.
var HeuristicNames = []string{"manhattan", "euclidean", "chebyshev", "none"}

// IsHeuristicName reports whether HeuristicByName accepts name. The empty name
// selects manhattan.
func IsHeuristicName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == "" || slices.Contains(HeuristicNames, name)
}

// HeuristicByName resolves a heuristic for configuration and command-line use.
func (problem *RouteProblem) HeuristicByName(name string) (func(Position) float64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manhattan", "":
		return problem.Manhattan, nil
	case "euclidean":
		return problem.Euclidean, nil
	case "chebyshev":
		return problem.Chebyshev, nil
	case "none":
		return problem.Zero, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
}
