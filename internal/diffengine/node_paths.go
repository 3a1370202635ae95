package diffengine

import "github.com/marcus-qen/aivcs/internal/domain"

// NodeStep is a single node visit extracted from a run event stream.
type NodeStep struct {
	Seq    uint64
	NodeID string
}

// NodeDivergence is the divergence point between two node traversal paths.
type NodeDivergence struct {
	CommonPrefix []string
	TailA        []NodeStep
	TailB        []NodeStep
}

// NodePathDiff is the result of diffing two node traversal paths.
type NodePathDiff struct {
	Divergence *NodeDivergence
}

// IsEmpty reports whether the two paths never diverged.
func (d NodePathDiff) IsEmpty() bool { return d.Divergence == nil }

// ExtractNodePath extracts the ordered node traversal path from a run
// event stream. Only "node_entered" events are considered; events without
// a valid payload["node_id"] string are skipped.
func ExtractNodePath(events []domain.RunEvent) []NodeStep {
	var path []NodeStep
	for _, e := range events {
		if e.Kind != "node_entered" {
			continue
		}
		payload, ok := e.Payload.(map[string]any)
		if !ok {
			continue
		}
		nodeID, ok := payload["node_id"].(string)
		if !ok {
			continue
		}
		path = append(path, NodeStep{Seq: e.Seq, NodeID: nodeID})
	}
	return path
}

// DiffNodePaths extracts node traversal paths from two run event streams
// and walks them in lockstep to find the first divergence.
func DiffNodePaths(a, b []domain.RunEvent) NodePathDiff {
	pathA := ExtractNodePath(a)
	pathB := ExtractNodePath(b)

	var commonPrefix []string
	i := 0
	for i < len(pathA) && i < len(pathB) && pathA[i].NodeID == pathB[i].NodeID {
		commonPrefix = append(commonPrefix, pathA[i].NodeID)
		i++
	}

	if i == len(pathA) && i == len(pathB) {
		return NodePathDiff{}
	}

	tailA := append([]NodeStep{}, pathA[i:]...)
	tailB := append([]NodeStep{}, pathB[i:]...)
	return NodePathDiff{Divergence: &NodeDivergence{CommonPrefix: commonPrefix, TailA: tailA, TailB: tailB}}
}
