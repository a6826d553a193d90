package community

import (
	"sort"

	"github.com/bionetlab/interactome/internal/core/model"
)

// Detector groups the proteins of an interaction network into
// communities: densely connected clusters that in practice often line
// up with protein complexes or functional units.
//
// Nodes are protein identifiers; edges are undirected interactions
// between them. Edges touching identifiers outside the node list are
// ignored, so a detector can be pointed at a subnetwork.
type Detector interface {
	Detect(nodes []string, edges []model.Edge) ([][]string, error)
}

// NewDetector returns the default detector. Interaction networks tend
// to collapse into one giant connected component, so plain
// connectivity is useless as a clustering; label propagation is the
// default.
func NewDetector() Detector {
	return NewLabelPropagation()
}

// ConnectedComponents is the baseline detector: each connected part of
// the network forms one community. It mostly serves as a reference
// point for the label propagation results.
type ConnectedComponents struct{}

func (d *ConnectedComponents) Detect(nodes []string, edges []model.Edge) ([][]string, error) {
	known := make(map[string]bool, len(nodes))
	adj := make(map[string][]string)

	for _, id := range nodes {
		known[id] = true
	}

	for _, e := range edges {
		if !known[e.SourceID] || !known[e.TargetID] {
			continue
		}
		adj[e.SourceID] = append(adj[e.SourceID], e.TargetID)
		adj[e.TargetID] = append(adj[e.TargetID], e.SourceID)
	}

	visited := make(map[string]bool)
	var communities [][]string

	for _, id := range nodes {
		if visited[id] {
			continue
		}
		var component []string
		d.walk(id, adj, visited, &component)

		// Isolated proteins are not communities.
		if len(component) >= 2 {
			sort.Strings(component)
			communities = append(communities, component)
		}
	}

	sortCommunities(communities)
	return communities, nil
}

func (d *ConnectedComponents) walk(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.walk(v, adj, visited, component)
		}
	}
}

// sortCommunities orders communities largest first, ties broken by the
// first member, so downstream exports are stable run to run. Members
// are expected to be sorted already.
func sortCommunities(communities [][]string) {
	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i]) != len(communities[j]) {
			return len(communities[i]) > len(communities[j])
		}
		return communities[i][0] < communities[j][0]
	})
}
