package search

import (
	"context"
	"sync"
)

// ExpandTask represents a request from the orchestrator to the workers.
type ExpandTask[StateType any, ActionType any] struct {
	Index    int
	FromNode *Node[StateType, ActionType]
	Action   ActionType
}

// RelaxProposal is the worker's suggestion for updating a path
type RelaxProposal[StateType any, ActionType any, KeyType comparable] struct {
	Index  int
	ToNode *Node[StateType, ActionType]
	Key    KeyType
	FCost  float64
}

// expansionPool generates and scores successors. With a single worker it runs
// inline on the caller's goroutine.
type expansionPool[StateType any, ActionType any, KeyType comparable] struct {
	problem    Problem[StateType, ActionType, KeyType]
	evaluation Evaluation[StateType, ActionType]
	workers    int

	expandTaskChannel    chan ExpandTask[StateType, ActionType]
	relaxProposalChannel chan RelaxProposal[StateType, ActionType, KeyType]
	startOnce            sync.Once
}

func newExpansionPool[StateType any, ActionType any, KeyType comparable](
	problem Problem[StateType, ActionType, KeyType],
	evaluation Evaluation[StateType, ActionType],
	workers int,
) *expansionPool[StateType, ActionType, KeyType] {
	return &expansionPool[StateType, ActionType, KeyType]{
		problem:              problem,
		evaluation:           evaluation,
		workers:              workers,
		expandTaskChannel:    make(chan ExpandTask[StateType, ActionType]),
		relaxProposalChannel: make(chan RelaxProposal[StateType, ActionType, KeyType]),
	}
}

func (pool *expansionPool[StateType, ActionType, KeyType]) propose(task ExpandTask[StateType, ActionType]) RelaxProposal[StateType, ActionType, KeyType] {
	child := childNode(pool.problem, task.FromNode, task.Action)
	return RelaxProposal[StateType, ActionType, KeyType]{
		Index:  task.Index,
		ToNode: child,
		Key:    pool.problem.Key(child.State),
		FCost:  pool.evaluation(child),
	}
}

// start launches the workers; they exit when contextObject is done.
func (pool *expansionPool[StateType, ActionType, KeyType]) start(contextObject context.Context) {
	if pool.workers <= 1 {
		return
	}
	pool.startOnce.Do(func() {
		for i := 0; i < pool.workers; i++ {
			go func() {
				for {
					select {
					case <-contextObject.Done():
						return
					case task := <-pool.expandTaskChannel:
						select {
						case pool.relaxProposalChannel <- pool.propose(task):
						case <-contextObject.Done():
							return
						}
					}
				}
			}()
		}
	})
}

// expand returns one proposal per action, in action order.
func (pool *expansionPool[StateType, ActionType, KeyType]) expand(
	contextObject context.Context,
	node *Node[StateType, ActionType],
	actions []ActionType,
) ([]RelaxProposal[StateType, ActionType, KeyType], error) {
	proposals := make([]RelaxProposal[StateType, ActionType, KeyType], len(actions))
	if pool.workers <= 1 || len(actions) <= 1 {
		for index, action := range actions {
			proposals[index] = pool.propose(ExpandTask[StateType, ActionType]{Index: index, FromNode: node, Action: action})
		}
		return proposals, nil
	}

	// Dispatch from a separate goroutine so workers never block on a full
	// proposal channel while the orchestrator is still sending.
	go func() {
		for index, action := range actions {
			select {
			case pool.expandTaskChannel <- ExpandTask[StateType, ActionType]{Index: index, FromNode: node, Action: action}:
			case <-contextObject.Done():
				return
			}
		}
	}()

	for received := 0; received < len(actions); received++ {
		select {
		case <-contextObject.Done():
			return nil, contextObject.Err()
		case proposal := <-pool.relaxProposalChannel:
			proposals[proposal.Index] = proposal
		}
	}
	return proposals, nil
}
