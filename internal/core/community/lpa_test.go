package community

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bionetlab/interactome/internal/core/model"
)

func triangle(a, b, c string) []model.Edge {
	return []model.Edge{edge(a, b), edge(b, c), edge(c, a)}
}

func findCommunity(t *testing.T, communities [][]string, member string) []string {
	t.Helper()
	for _, c := range communities {
		for _, id := range c {
			if id == member {
				return c
			}
		}
	}
	t.Fatalf("no community contains %s", member)
	return nil
}

func TestLabelPropagation_DisconnectedComponents(t *testing.T) {
	// Two triangles with no edge between them.
	nodes := []string{
		"uniprot:A1", "uniprot:A2", "uniprot:A3",
		"uniprot:B1", "uniprot:B2", "uniprot:B3",
	}
	edges := append(
		triangle("uniprot:A1", "uniprot:A2", "uniprot:A3"),
		triangle("uniprot:B1", "uniprot:B2", "uniprot:B3")...,
	)

	detector := NewLabelPropagation()
	communities, err := detector.Detect(nodes, edges)
	assert.NoError(t, err)

	assert.Len(t, communities, 2)
	for _, c := range communities {
		assert.Len(t, c, 3)
	}
}

func TestLabelPropagation_BridgeEdge(t *testing.T) {
	// Two triangles joined by a single edge. The intra-triangle pull
	// beats the bridge, so the triangles stay separate communities.
	nodes := []string{
		"uniprot:A1", "uniprot:A2", "uniprot:A3",
		"uniprot:B1", "uniprot:B2", "uniprot:B3",
	}
	edges := append(
		triangle("uniprot:A1", "uniprot:A2", "uniprot:A3"),
		triangle("uniprot:B1", "uniprot:B2", "uniprot:B3")...,
	)
	edges = append(edges, edge("uniprot:A3", "uniprot:B1"))

	detector := NewLabelPropagation()
	communities, err := detector.Detect(nodes, edges)
	assert.NoError(t, err)

	assert.Len(t, communities, 2)
}

func TestLabelPropagation_Clique(t *testing.T) {
	nodes := []string{"uniprot:P1", "uniprot:P2", "uniprot:P3", "uniprot:P4", "uniprot:P5"}
	var edges []model.Edge
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, edge(nodes[i], nodes[j]))
		}
	}

	detector := NewLabelPropagation()
	communities, err := detector.Detect(nodes, edges)
	assert.NoError(t, err)

	assert.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLabelPropagation_SourceCountBreaksTies(t *testing.T) {
	// A0 sits between two triangles, one bridge each. Unweighted, the
	// tie falls to the lexicographically larger community label; when
	// the bridge into the A side carries two supporting databases, A0
	// follows the evidence instead.
	nodes := []string{
		"uniprot:A1", "uniprot:A2", "uniprot:A3",
		"uniprot:B1", "uniprot:B2", "uniprot:B3",
		"uniprot:A0",
	}
	base := append(
		triangle("uniprot:A1", "uniprot:A2", "uniprot:A3"),
		triangle("uniprot:B1", "uniprot:B2", "uniprot:B3")...,
	)

	plain := append(append([]model.Edge{}, base...),
		edge("uniprot:A0", "uniprot:A3"),
		edge("uniprot:A0", "uniprot:B3"),
	)
	weighted := append(append([]model.Edge{}, base...),
		model.Edge{
			SourceID: "uniprot:A0",
			TargetID: "uniprot:A3",
			Props:    map[string]interface{}{"source": []string{"IntAct", "BioGRID"}},
		},
		edge("uniprot:A0", "uniprot:B3"),
	)

	detector := NewLabelPropagation()

	communities, err := detector.Detect(nodes, plain)
	assert.NoError(t, err)
	assert.Contains(t, findCommunity(t, communities, "uniprot:A0"), "uniprot:B3")

	communities, err = detector.Detect(nodes, weighted)
	assert.NoError(t, err)
	assert.Contains(t, findCommunity(t, communities, "uniprot:A0"), "uniprot:A3")
}

func TestLabelPropagation_Empty(t *testing.T) {
	detector := NewLabelPropagation()
	communities, err := detector.Detect(nil, nil)
	assert.NoError(t, err)
	assert.Empty(t, communities)
}
