package search

import (
	"context"
	"errors"
	"fmt"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[StateType any, ActionType any, KeyType comparable] struct {
	Current       StateType
	HasCurrent    bool
	Open          map[KeyType]bool
	Closed        map[KeyType]bool
	Done          bool
	Found         bool
	Path          []StateType
	Actions       []ActionType
	StepIndex     int
	ExpandedNodes int
}

// Stepper provides a step-by-step orchestrator over the concurrent workers
type Stepper[StateType any, ActionType any, KeyType comparable] struct {
	ctx    context.Context
	cancel context.CancelFunc
	engine *bestFirstEngine[StateType, ActionType, KeyType]

	stepCount int
	done      bool
	found     bool
	goalNode  *Node[StateType, ActionType]
}

// NewStepper creates a new stepper using the same worker-based expansion logic
// as BestFirst. A nil evaluation fails with ErrMissingHeuristic.
func NewStepper[StateType any, ActionType any, KeyType comparable](
	parent context.Context,
	problem Problem[StateType, ActionType, KeyType],
	evaluation Evaluation[StateType, ActionType],
	options ...Option,
) (*Stepper[StateType, ActionType, KeyType], error) {
	if evaluation == nil {
		return nil, ErrMissingHeuristic
	}
	searchOptions := applyOptions(options)

	ctx, cancel := context.WithCancel(parent)
	return &Stepper[StateType, ActionType, KeyType]{
		ctx:    ctx,
		cancel: cancel,
		engine: newBestFirstEngine(ctx, problem, evaluation, searchOptions.NumberOfWorkers),
	}, nil
}

// NewAStarStepper is NewStepper with the A* evaluation.
func NewAStarStepper[StateType any, ActionType any, KeyType comparable](
	parent context.Context,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (*Stepper[StateType, ActionType, KeyType], error) {
	if heuristic == nil {
		return nil, ErrMissingHeuristic
	}
	return NewStepper(parent, problem, func(node *Node[StateType, ActionType]) float64 {
		return node.PathCost + heuristic(node.State)
	}, options...)
}

// NewStrategyStepper steps one of the best-first strategies: uniform cost,
// greedy or A*. Other strategies fail with ErrUnknownStrategy.
func NewStrategyStepper[StateType any, ActionType any, KeyType comparable](
	parent context.Context,
	strategy Strategy,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (*Stepper[StateType, ActionType, KeyType], error) {
	switch strategy {
	case UniformCostStrategy:
		return NewStepper(parent, problem, func(node *Node[StateType, ActionType]) float64 {
			return node.PathCost
		}, options...)
	case GreedyStrategy:
		if heuristic == nil {
			return nil, ErrMissingHeuristic
		}
		return NewStepper(parent, problem, func(node *Node[StateType, ActionType]) float64 {
			return heuristic(node.State)
		}, options...)
	case AStarStrategy:
		return NewAStarStepper(parent, problem, heuristic, options...)
	default:
		return nil, fmt.Errorf("%w: %q cannot be stepped, use ucs, greedy or astar", ErrUnknownStrategy, strategy)
	}
}

// Close stops the workers
func (s *Stepper[StateType, ActionType, KeyType]) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Done reports whether the search has finished.
func (s *Stepper[StateType, ActionType, KeyType]) Done() bool { return s.done }

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper[StateType, ActionType, KeyType]) Step() (StepSnapshot[StateType, ActionType, KeyType], error) {
	if s.done {
		return s.snapshot(nil), nil
	}

	s.stepCount++
	current, found, err := s.engine.step(s.ctx)
	switch {
	case errors.Is(err, ErrNoSolution):
		s.done = true
		return s.snapshot(nil), nil
	case err != nil:
		s.done = true
		return StepSnapshot[StateType, ActionType, KeyType]{Done: true, StepIndex: s.stepCount}, err
	case found:
		s.done = true
		s.found = true
		s.goalNode = current
	}
	return s.snapshot(current), nil
}

func (s *Stepper[StateType, ActionType, KeyType]) snapshot(current *Node[StateType, ActionType]) StepSnapshot[StateType, ActionType, KeyType] {
	snapshot := StepSnapshot[StateType, ActionType, KeyType]{
		Open:          s.engine.openKeys(),
		Closed:        s.engine.closedKeys(),
		Done:          s.done,
		Found:         s.found,
		StepIndex:     s.stepCount,
		ExpandedNodes: s.engine.expandedNodes,
	}
	if current != nil {
		snapshot.Current = current.State
		snapshot.HasCurrent = true
	}
	if s.goalNode != nil {
		result := foundResult(s.goalNode, s.engine.expandedNodes)
		snapshot.Path = result.States
		snapshot.Actions = result.Actions
	}
	return snapshot
}
