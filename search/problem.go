package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"

	"github.com/pdrpinto/robotroute/internal"
)

var (
	ErrNoSolution       = errors.New("no path found")
	ErrBudgetExceeded   = errors.New("expansion budget exceeded")
	ErrCutoff           = errors.New("depth limit reached without a solution")
	ErrUnknownStrategy  = errors.New("unknown search strategy")
	ErrMissingHeuristic = errors.New("strategy requires a heuristic")
)

// Problem is the contract a search problem offers to the algorithms.
// StateType values are treated as immutable; KeyType is the identity used for
// de-duplication.
type Problem[StateType any, ActionType any, KeyType comparable] interface {
	Initial() StateType
	Actions(state StateType) []ActionType
	Result(state StateType, action ActionType) StateType
	GoalTest(state StateType) bool
	Key(state StateType) KeyType
	StepCost(from StateType, action ActionType, to StateType) float64
}

// Heuristic estimates the remaining cost from state to the goal.
type Heuristic[StateType any] func(state StateType) float64

// Node is a state in the search tree together with how it was reached.
type Node[StateType any, ActionType any] struct {
	State    StateType
	Parent   *Node[StateType, ActionType]
	Action   ActionType
	PathCost float64
	Depth    int
}

func rootNode[StateType any, ActionType any](state StateType) *Node[StateType, ActionType] {
	return &Node[StateType, ActionType]{State: state}
}

func childNode[StateType any, ActionType any, KeyType comparable](
	problem Problem[StateType, ActionType, KeyType],
	parent *Node[StateType, ActionType],
	action ActionType,
) *Node[StateType, ActionType] {
	next := problem.Result(parent.State, action)
	return &Node[StateType, ActionType]{
		State:    next,
		Parent:   parent,
		Action:   action,
		PathCost: parent.PathCost + problem.StepCost(parent.State, action, next),
		Depth:    parent.Depth + 1,
	}
}

// Path returns the nodes from the root to this node.
func (node *Node[StateType, ActionType]) Path() []*Node[StateType, ActionType] {
	return internal.ReconstructPath(node, func(current *Node[StateType, ActionType]) (*Node[StateType, ActionType], bool) {
		return current.Parent, current.Parent != nil
	})
}

// Solution returns the actions taken from the root to reach this node.
func (node *Node[StateType, ActionType]) Solution() []ActionType {
	path := node.Path()
	actions := make([]ActionType, 0, len(path)-1)
	for _, step := range path[1:] {
		actions = append(actions, step.Action)
	}
	return actions
}

// Result contains the outcome of a search
type Result[StateType any, ActionType any] struct {
	Actions       []ActionType
	States        []StateType
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

func foundResult[StateType any, ActionType any](node *Node[StateType, ActionType], expandedNodes int) Result[StateType, ActionType] {
	path := node.Path()
	states := make([]StateType, 0, len(path))
	for _, step := range path {
		states = append(states, step.State)
	}
	return Result[StateType, ActionType]{
		Actions:       node.Solution(),
		States:        states,
		TotalCost:     node.PathCost,
		ExpandedNodes: expandedNodes,
		Found:         true,
	}
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	MaxExpansions   int
	MaxDepth        int
	Logger          *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines should expand neighbors in
// best-first search.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithMaxExpansions stops the search with ErrBudgetExceeded after that many
// node expansions. Zero means unbounded.
func WithMaxExpansions(maxExpansions int) Option {
	return func(options *Options) { options.MaxExpansions = maxExpansions }
}

// WithMaxDepth bounds depth-limited and iterative-deepening search.
func WithMaxDepth(maxDepth int) Option {
	return func(options *Options) { options.MaxDepth = maxDepth }
}

func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

const defaultMaxDepth = 64

func applyOptions(options []Option) Options {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
		MaxDepth:        defaultMaxDepth,
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return searchOptions
}

// checkBudget is called before every expansion.
func (options Options) checkBudget(contextObject context.Context, expandedNodes int) error {
	if err := contextObject.Err(); err != nil {
		return err
	}
	if options.MaxExpansions > 0 && expandedNodes >= options.MaxExpansions {
		return ErrBudgetExceeded
	}
	return nil
}
