package internal

// ReconstructPath follows predecessor links back from current until previous
// reports none, and returns the chain in first-to-current order.
func ReconstructPath[NodeType any](
	current NodeType,
	previous func(NodeType) (NodeType, bool),
) []NodeType {
	path := []NodeType{current}
	for {
		previousNode, exists := previous(current)
		if !exists {
			break
		}
		path = append(path, previousNode)
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
