package search

type PriorityQueueItem[StateType any, ActionType any, KeyType comparable] struct {
	Node         *Node[StateType, ActionType]
	Key          KeyType
	FCost        float64
	Sequence     int
	IndexInQueue int
}

// PriorityQueue orders items by FCost, then by insertion so that ties pop
// first-in first-out.
type PriorityQueue[StateType any, ActionType any, KeyType comparable] []*PriorityQueueItem[StateType, ActionType, KeyType]

func (queue PriorityQueue[StateType, ActionType, KeyType]) Len() int { return len(queue) }
func (queue PriorityQueue[StateType, ActionType, KeyType]) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue PriorityQueue[StateType, ActionType, KeyType]) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue[StateType, ActionType, KeyType]) Push(x any) {
	item := x.(*PriorityQueueItem[StateType, ActionType, KeyType])
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue[StateType, ActionType, KeyType]) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
