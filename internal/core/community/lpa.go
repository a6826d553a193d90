package community

import (
	"sort"

	"github.com/bionetlab/interactome/internal/core/model"
)

// LabelPropagation clusters the network with the label propagation
// algorithm. Every protein starts in its own community and repeatedly
// adopts the label held by the weighted majority of its neighbours;
// after a few sweeps, densely connected regions agree on a single
// label.
//
// Edges are weighted by the number of upstream databases backing the
// interaction (the "source" property), so an interaction confirmed by
// three databases pulls three times as hard as one seen once.
type LabelPropagation struct {
	MaxIterations int
}

func NewLabelPropagation() *LabelPropagation {
	return &LabelPropagation{
		MaxIterations: 20,
	}
}

func (d *LabelPropagation) Detect(nodes []string, edges []model.Edge) ([][]string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	// Weighted undirected adjacency. Parallel edges accumulate.
	adj := make(map[string]map[string]int, len(nodes))
	for _, id := range nodes {
		adj[id] = make(map[string]int)
	}

	for _, e := range edges {
		if _, ok := adj[e.SourceID]; !ok {
			continue
		}
		if _, ok := adj[e.TargetID]; !ok {
			continue
		}
		w := edgeWeight(e)
		adj[e.SourceID][e.TargetID] += w
		adj[e.TargetID][e.SourceID] += w
	}

	// Each protein starts with its own identifier as label.
	labels := make(map[string]string, len(nodes))
	for _, id := range nodes {
		labels[id] = id
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0

		for _, u := range nodes {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			max := 0
			for v, weight := range neighbors {
				label := labels[v]
				counts[label] += weight
				if counts[label] > max {
					max = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == max {
					candidates = append(candidates, label)
				}
			}

			// Ties go to the lexicographically largest label so the
			// result is deterministic.
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[u] != best {
				labels[u] = best
				changed++
			}
		}

		if changed == 0 {
			break
		}
	}

	clusters := make(map[string][]string)
	for _, id := range nodes {
		label := labels[id]
		clusters[label] = append(clusters[label], id)
	}

	var communities [][]string
	for _, members := range clusters {
		if len(members) >= 2 {
			sort.Strings(members)
			communities = append(communities, members)
		}
	}

	sortCommunities(communities)
	return communities, nil
}

// edgeWeight counts the databases that reported the interaction. The
// merged "source" property is a list after splitting; a plain string or
// a missing property counts as one.
func edgeWeight(e model.Edge) int {
	switch v := e.Props["source"].(type) {
	case []string:
		if len(v) > 0 {
			return len(v)
		}
	}
	return 1
}
