package game

// progress is the state derived from a team's scan log. The log is the
// single source of truth; nothing here is ever stored back.
type progress struct {
	currentNodeID string
	nodesFound    int
	points        int // raw scan sum, before hint deductions
	finished      bool
	nextNodes     []Node
}

// deriveProgress replays a team's ordered scans against the game graph.
// edges must be the game's full edge list in (sort order, creation) order.
func deriveProgress(g Game, t Team, scans []Scan, nodes []Node, nodesByID map[string]Node, edges []Edge) progress {
	var p progress

	scanned := make(map[string]bool, len(scans))
	for _, sc := range scans {
		if !scanned[sc.NodeID] {
			scanned[sc.NodeID] = true
			p.nodesFound++
		}
		p.points += sc.Points
	}

	p.currentNodeID = t.StartNodeID
	if len(scans) > 0 {
		last := scans[len(scans)-1]
		p.currentNodeID = last.NodeID
		p.finished = p.nodesFound == len(nodes) && nodesByID[last.NodeID].IsEnd
	}

	if p.finished {
		return p
	}

	if g.Settings.RandomMode {
		// The graph degenerates to a flat pool: anything unscanned is next.
		for _, n := range nodes {
			if !scanned[n.ID] {
				p.nextNodes = append(p.nextNodes, n)
			}
		}
		return p
	}

	if len(scans) == 0 {
		// Before the first scan the only legal move is the assigned start.
		if start, ok := nodesByID[t.StartNodeID]; ok {
			p.nextNodes = []Node{start}
		}
		return p
	}

	// Outgoing edges of the current node; password-gated edges stay
	// undisclosed until the team produces the password.
	for _, e := range edges {
		if e.From != p.currentNodeID || e.Condition.Kind == ConditionPassword {
			continue
		}
		if n, ok := nodesByID[e.To]; ok {
			p.nextNodes = append(p.nextNodes, n)
		}
	}
	return p
}
