package game

// AssignStartNode picks a start node for a new team: the least-used node
// wins, ties broken by the order the start nodes are given in. Pure over
// its inputs so concurrent team creation cannot skew a shared counter.
func AssignStartNode(startNodes []Node, teams []Team) string {
	if len(startNodes) == 0 {
		return ""
	}

	used := make(map[string]int, len(startNodes))
	for _, t := range teams {
		if t.StartNodeID != "" {
			used[t.StartNodeID]++
		}
	}

	best := startNodes[0].ID
	for _, n := range startNodes[1:] {
		if used[n.ID] < used[best] {
			best = n.ID
		}
	}
	return best
}
