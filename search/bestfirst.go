package search

import (
	"container/heap"
	"context"
)

// Evaluation scores a node; best-first search expands the lowest score first.
type Evaluation[StateType any, ActionType any] func(node *Node[StateType, ActionType]) float64

// AStar orders the frontier by path cost plus heuristic. The result is optimal
// when the heuristic never overestimates the remaining cost.
func AStar[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	if heuristic == nil {
		return Result[StateType, ActionType]{}, ErrMissingHeuristic
	}
	return BestFirst(contextObject, problem, func(node *Node[StateType, ActionType]) float64 {
		return node.PathCost + heuristic(node.State)
	}, options...)
}

// Greedy orders the frontier by heuristic alone.
func Greedy[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	heuristic Heuristic[StateType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	if heuristic == nil {
		return Result[StateType, ActionType]{}, ErrMissingHeuristic
	}
	return BestFirst(contextObject, problem, func(node *Node[StateType, ActionType]) float64 {
		return heuristic(node.State)
	}, options...)
}

// UniformCost orders the frontier by path cost.
func UniformCost[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	return BestFirst(contextObject, problem, func(node *Node[StateType, ActionType]) float64 {
		return node.PathCost
	}, options...)
}

// BestFirst executes a concurrent best-first graph search: the orchestrator
// owns the frontier while workers build and score successors.
func BestFirst[StateType any, ActionType any, KeyType comparable](
	parentContext context.Context,
	problem Problem[StateType, ActionType, KeyType],
	evaluation Evaluation[StateType, ActionType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	searchOptions := applyOptions(options)

	contextObject, cancel := context.WithCancel(parentContext)
	defer cancel()

	engine := newBestFirstEngine(contextObject, problem, evaluation, searchOptions.NumberOfWorkers)

	// --- Orchestrator loop ---
	for {
		if err := searchOptions.checkBudget(contextObject, engine.expandedNodes); err != nil {
			return Result[StateType, ActionType]{ExpandedNodes: engine.expandedNodes}, err
		}

		currentNode, found, err := engine.step(contextObject)
		if err != nil {
			return Result[StateType, ActionType]{ExpandedNodes: engine.expandedNodes}, err
		}
		if found {
			searchOptions.Logger.Debug("best-first goal reached",
				"depth", currentNode.Depth, "cost", currentNode.PathCost, "expanded", engine.expandedNodes)
			return foundResult(currentNode, engine.expandedNodes), nil
		}
	}
}

type bestFirstEngine[StateType any, ActionType any, KeyType comparable] struct {
	problem Problem[StateType, ActionType, KeyType]
	pool    *expansionPool[StateType, ActionType, KeyType]

	openSet       PriorityQueue[StateType, ActionType, KeyType]
	openSetMap    map[KeyType]*PriorityQueueItem[StateType, ActionType, KeyType]
	closedSet     map[KeyType]bool
	sequence      int
	expandedNodes int
}

func newBestFirstEngine[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	evaluation Evaluation[StateType, ActionType],
	workers int,
) *bestFirstEngine[StateType, ActionType, KeyType] {
	engine := &bestFirstEngine[StateType, ActionType, KeyType]{
		problem:    problem,
		pool:       newExpansionPool(problem, evaluation, workers),
		openSet:    make(PriorityQueue[StateType, ActionType, KeyType], 0),
		openSetMap: make(map[KeyType]*PriorityQueueItem[StateType, ActionType, KeyType]),
		closedSet:  make(map[KeyType]bool),
	}
	heap.Init(&engine.openSet)
	engine.pool.start(contextObject)

	startNode := rootNode[StateType, ActionType](problem.Initial())
	engine.push(startNode, problem.Key(startNode.State), evaluation(startNode))
	return engine
}

func (engine *bestFirstEngine[StateType, ActionType, KeyType]) push(node *Node[StateType, ActionType], key KeyType, fCost float64) {
	item := &PriorityQueueItem[StateType, ActionType, KeyType]{
		Node:     node,
		Key:      key,
		FCost:    fCost,
		Sequence: engine.sequence,
	}
	engine.sequence++
	heap.Push(&engine.openSet, item)
	engine.openSetMap[key] = item
}

// step pops the best node. A goal node is returned with found set and is not
// expanded; any other node is expanded and its successors relaxed.
func (engine *bestFirstEngine[StateType, ActionType, KeyType]) step(
	contextObject context.Context,
) (*Node[StateType, ActionType], bool, error) {
	if engine.openSet.Len() == 0 {
		return nil, false, ErrNoSolution
	}

	currentItem := heap.Pop(&engine.openSet).(*PriorityQueueItem[StateType, ActionType, KeyType])
	currentNode := currentItem.Node
	delete(engine.openSetMap, currentItem.Key)
	engine.closedSet[currentItem.Key] = true

	// Goal check
	if engine.problem.GoalTest(currentNode.State) {
		return currentNode, true, nil
	}
	engine.expandedNodes++

	proposals, err := engine.pool.expand(contextObject, currentNode, engine.problem.Actions(currentNode.State))
	if err != nil {
		return nil, false, err
	}
	for _, proposal := range proposals {
		if engine.closedSet[proposal.Key] {
			continue
		}
		existing, inOpen := engine.openSetMap[proposal.Key]
		switch {
		case !inOpen:
			engine.push(proposal.ToNode, proposal.Key, proposal.FCost)
		case proposal.FCost < existing.FCost,
			proposal.FCost == existing.FCost && proposal.ToNode.PathCost < existing.Node.PathCost:
			existing.Node = proposal.ToNode
			existing.FCost = proposal.FCost
			heap.Fix(&engine.openSet, existing.IndexInQueue)
		}
	}
	return currentNode, false, nil
}

func (engine *bestFirstEngine[StateType, ActionType, KeyType]) openKeys() map[KeyType]bool {
	keys := make(map[KeyType]bool, len(engine.openSetMap))
	for key := range engine.openSetMap {
		keys[key] = true
	}
	return keys
}

func (engine *bestFirstEngine[StateType, ActionType, KeyType]) closedKeys() map[KeyType]bool {
	keys := make(map[KeyType]bool, len(engine.closedSet))
	for key := range engine.closedSet {
		keys[key] = true
	}
	return keys
}
