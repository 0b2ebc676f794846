package search

import (
	"context"
	"errors"
)

// BreadthFirst expands the shallowest node first and tests the goal when a
// node is generated. With unit step costs the solution has the fewest moves.
func BreadthFirst[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	searchOptions := applyOptions(options)

	startNode := rootNode[StateType, ActionType](problem.Initial())
	if problem.GoalTest(startNode.State) {
		return foundResult(startNode, 0), nil
	}

	frontier := []*Node[StateType, ActionType]{startNode}
	reached := map[KeyType]bool{problem.Key(startNode.State): true}
	expandedNodes := 0

	for len(frontier) > 0 {
		if err := searchOptions.checkBudget(contextObject, expandedNodes); err != nil {
			return Result[StateType, ActionType]{ExpandedNodes: expandedNodes}, err
		}

		currentNode := frontier[0]
		frontier[0] = nil
		frontier = frontier[1:]
		expandedNodes++

		for _, action := range problem.Actions(currentNode.State) {
			child := childNode(problem, currentNode, action)
			key := problem.Key(child.State)
			if reached[key] {
				continue
			}
			if problem.GoalTest(child.State) {
				searchOptions.Logger.Debug("breadth-first goal reached",
					"depth", child.Depth, "expanded", expandedNodes)
				return foundResult(child, expandedNodes), nil
			}
			reached[key] = true
			frontier = append(frontier, child)
		}
	}

	return Result[StateType, ActionType]{ExpandedNodes: expandedNodes}, ErrNoSolution
}

// DepthFirst expands the deepest node first. Successors are explored in the
// order Actions returns them. The solution is not necessarily the shortest.
func DepthFirst[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	searchOptions := applyOptions(options)

	startNode := rootNode[StateType, ActionType](problem.Initial())
	frontier := []*Node[StateType, ActionType]{startNode}
	inFrontier := map[KeyType]bool{problem.Key(startNode.State): true}
	explored := make(map[KeyType]bool)
	expandedNodes := 0

	for len(frontier) > 0 {
		if err := searchOptions.checkBudget(contextObject, expandedNodes); err != nil {
			return Result[StateType, ActionType]{ExpandedNodes: expandedNodes}, err
		}

		currentNode := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		currentKey := problem.Key(currentNode.State)
		delete(inFrontier, currentKey)

		if problem.GoalTest(currentNode.State) {
			searchOptions.Logger.Debug("depth-first goal reached",
				"depth", currentNode.Depth, "expanded", expandedNodes)
			return foundResult(currentNode, expandedNodes), nil
		}
		explored[currentKey] = true
		expandedNodes++

		actions := problem.Actions(currentNode.State)
		// push in reverse so the first action is popped first
		for i := len(actions) - 1; i >= 0; i-- {
			child := childNode(problem, currentNode, actions[i])
			key := problem.Key(child.State)
			if explored[key] || inFrontier[key] {
				continue
			}
			inFrontier[key] = true
			frontier = append(frontier, child)
		}
	}

	return Result[StateType, ActionType]{ExpandedNodes: expandedNodes}, ErrNoSolution
}

// DepthLimited runs depth-first search that never expands nodes at depth
// limit. It returns ErrCutoff when the limit pruned part of the space and no
// solution was found, ErrNoSolution when the whole space was exhausted.
//
// A location already reached at the same or a smaller depth is not entered
// again, which keeps each run linear in the number of locations.
func DepthLimited[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	limit int,
	options ...Option,
) (Result[StateType, ActionType], error) {
	searchOptions := applyOptions(options)
	expandedNodes := 0
	return depthLimited(contextObject, problem, searchOptions, limit, &expandedNodes)
}

// IterativeDeepening runs DepthLimited with limits 0, 1, 2, ... up to the
// MaxDepth option.
func IterativeDeepening[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	options ...Option,
) (Result[StateType, ActionType], error) {
	searchOptions := applyOptions(options)
	expandedNodes := 0

	for limit := 0; limit <= searchOptions.MaxDepth; limit++ {
		result, err := depthLimited(contextObject, problem, searchOptions, limit, &expandedNodes)
		if errors.Is(err, ErrCutoff) {
			searchOptions.Logger.Debug("iterative deepening cutoff", "limit", limit, "expanded", expandedNodes)
			continue
		}
		return result, err
	}

	return Result[StateType, ActionType]{ExpandedNodes: expandedNodes}, ErrCutoff
}

func depthLimited[StateType any, ActionType any, KeyType comparable](
	contextObject context.Context,
	problem Problem[StateType, ActionType, KeyType],
	searchOptions Options,
	limit int,
	expandedNodes *int,
) (Result[StateType, ActionType], error) {
	startNode := rootNode[StateType, ActionType](problem.Initial())
	reachedDepth := map[KeyType]int{problem.Key(startNode.State): 0}

	var recurse func(node *Node[StateType, ActionType]) (*Node[StateType, ActionType], bool, error)
	recurse = func(node *Node[StateType, ActionType]) (*Node[StateType, ActionType], bool, error) {
		if problem.GoalTest(node.State) {
			return node, false, nil
		}
		if node.Depth >= limit {
			return nil, true, nil
		}
		if err := searchOptions.checkBudget(contextObject, *expandedNodes); err != nil {
			return nil, false, err
		}
		*expandedNodes++

		cutoff := false
		for _, action := range problem.Actions(node.State) {
			child := childNode(problem, node, action)
			key := problem.Key(child.State)
			if depth, seen := reachedDepth[key]; seen && depth <= child.Depth {
				continue
			}
			reachedDepth[key] = child.Depth

			found, childCutoff, err := recurse(child)
			if err != nil || found != nil {
				return found, false, err
			}
			cutoff = cutoff || childCutoff
		}
		return nil, cutoff, nil
	}

	found, cutoff, err := recurse(startNode)
	switch {
	case err != nil:
		return Result[StateType, ActionType]{ExpandedNodes: *expandedNodes}, err
	case found != nil:
		return foundResult(found, *expandedNodes), nil
	case cutoff:
		return Result[StateType, ActionType]{ExpandedNodes: *expandedNodes}, ErrCutoff
	default:
		return Result[StateType, ActionType]{ExpandedNodes: *expandedNodes}, ErrNoSolution
	}
}
