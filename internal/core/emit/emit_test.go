package emit

import (
	"fmt"
	"testing"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func testMerged(records ...model.Record) model.MergedDataset {
	return model.MergedDataset{
		Fields:  []string{"source", "pubmed_ids", "Interaction Type", "uniprot_a", "uniprot_b"},
		Records: records,
		Sources: []string{"Source1"},
	}
}

func testPrefixer(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

func collect(s *EdgeStream) []model.Edge {
	var out []model.Edge
	for s.Next() {
		out = append(out, s.Edge())
	}
	return out
}

func TestEdgeStream_ProjectsRecords(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "source": "IntAct", "pubmed_ids": "123"},
	)

	edges := collect(NewEdgeStream(merged, Options{
		Label:    "Protein_interacts_with_protein",
		Prefix:   "uniprot",
		Prefixer: testPrefixer,
	}))

	assert.Len(t, edges, 1)
	e := edges[0]
	assert.Equal(t, "uniprot:P1", e.SourceID)
	assert.Equal(t, "uniprot:P2", e.TargetID)
	assert.Equal(t, "Protein_interacts_with_protein", e.Label)
	assert.Equal(t, "IntAct", e.Props["source"])

	// Identifier columns never leak into the property map.
	assert.NotContains(t, e.Props, "uniprot_a")
	assert.NotContains(t, e.Props, "uniprot_b")
}

func TestEdgeStream_SplitsAggregatedValues(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "pubmed_ids": "111|222|333"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer}))
	assert.Equal(t, []string{"111", "222", "333"}, edges[0].Props["pubmed_ids"])
}

func TestEdgeStream_SkipsAbsentValues(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "source": "IntAct"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer}))
	assert.NotContains(t, edges[0].Props, "pubmed_ids")
}

func TestEdgeStream_SanitizesQuotes(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "source": "two's hybrid"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer}))
	assert.Equal(t, "two^s hybrid", edges[0].Props["source"])
}

func TestEdgeStream_NormalizesPropertyKeys(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "Interaction Type": "physical"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer}))
	assert.Equal(t, "physical", edges[0].Props["interaction_type"])
}

func TestEdgeStream_SkipsRecordsWithoutEndpoints(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "source": "IntAct"},
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2", "source": "IntAct"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer}))
	assert.Len(t, edges, 1)
}

func TestEdgeStream_NilPrefixerLeavesIdentifiersBare(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2"},
	)

	edges := collect(NewEdgeStream(merged, Options{Prefix: "uniprot"}))
	assert.Equal(t, "P1", edges[0].SourceID)
	assert.Equal(t, "P2", edges[0].TargetID)
}

func TestEdgeStream_SinglePass(t *testing.T) {
	merged := testMerged(
		model.Record{"uniprot_a": "P1", "uniprot_b": "P2"},
	)

	s := NewEdgeStream(merged, Options{Prefix: "uniprot", Prefixer: testPrefixer})
	assert.True(t, s.Next())
	assert.False(t, s.Next())
	assert.False(t, s.Next(), "an exhausted stream must stay exhausted")
}
