package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core/merge"
	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/logger"
	"github.com/bionetlab/interactome/internal/source"
	"github.com/bionetlab/interactome/internal/uniprot"
)

func testConfig(sources ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Pipeline.Organism = "9606"
	cfg.Pipeline.Sources = sources
	return cfg
}

// testCatalog covers three reviewed proteins; P3 carries no gene or
// organism annotation so the graph projection has a bare vertex to handle.
func testCatalog() *uniprot.Catalog {
	return &uniprot.Catalog{Entries: []uniprot.Entry{
		{Accession: "P1", GeneNames: []string{"AAA"}, GeneID: "11", OrganismID: "9606", OrganismName: "Homo sapiens"},
		{Accession: "P2", GeneNames: []string{"BBB"}, GeneID: "22", OrganismID: "9606", OrganismName: "Homo sapiens"},
		{Accession: "P3"},
	}}
}

func alphaClient() *mockClient {
	return &mockClient{
		name: "Alpha",
		spec: source.Spec{
			Fields: model.FieldTable{
				{Name: "src", Canonical: "source"},
				{Name: "pubs", Canonical: "pubmed_ids", Multivalued: true},
				{Name: "conf", Canonical: "alpha_score"},
				{Name: "sys", Canonical: "method", Multivalued: true},
				{Name: "a", Canonical: model.FieldIDA, Identity: true},
				{Name: "b", Canonical: model.FieldIDB, Identity: true},
			},
			Priority:       "conf",
			Provenance:     "src",
			Citations:      "pubs",
			Method:         "sys",
			FilterReviewed: true,
		},
		raw: model.RawRecordSet{
			Source: "Alpha",
			Fields: []string{"src", "pubs", "conf", "sys", "a", "b"},
			Records: []model.Record{
				{"src": "Alpha", "pubs": "111", "conf": "0.9", "sys": "two hybrid", "a": "P2", "b": "P1"},
				{"src": "Alpha", "pubs": "222", "conf": "0.5", "a": "P1", "b": "P3"},
			},
		},
	}
}

func betaClient() *mockClient {
	return &mockClient{
		name: "Beta",
		spec: source.Spec{
			Fields: model.FieldTable{
				{Name: "src", Canonical: "source"},
				{Name: "pubs", Canonical: "pubmed_ids", Multivalued: true},
				{Name: "score", Canonical: "beta_score", Integer: true},
				{Name: "a", Canonical: model.FieldIDA, Identity: true},
				{Name: "b", Canonical: model.FieldIDB, Identity: true},
			},
			Priority:       "score",
			Provenance:     "src",
			Citations:      "pubs",
			FilterReviewed: true,
		},
		raw: model.RawRecordSet{
			Source: "Beta",
			Fields: []string{"src", "pubs", "score", "a", "b"},
			Records: []model.Record{
				{"src": "Beta", "pubs": "333", "score": "700.0", "a": "P1", "b": "P2"},
				{"src": "Beta", "score": "8", "a": "P3", "b": "P2"},
			},
		},
	}
}

func newTestPipeline(t *testing.T, cfg *config.Config, clients ...*mockClient) *Pipeline {
	t.Helper()
	p := NewPipeline(cfg, logger.NewNop())
	p.Annotator = &mockAnnotator{catalog: testCatalog()}
	p.Clients = factoryFor(clients...)
	return p
}

func findEdge(t *testing.T, edges []model.Edge, sourceID, targetID string) model.Edge {
	t.Helper()
	for _, e := range edges {
		if e.SourceID == sourceID && e.TargetID == targetID {
			return e
		}
	}
	t.Fatalf("no edge %s -> %s", sourceID, targetID)
	return model.Edge{}
}

func TestRun_MergesSources(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha", "beta"), alphaClient(), betaClient())

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "Beta"}, res.MergedSources)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 3, res.Pairs)
	assert.Equal(t, "9606", res.Organism)

	merged := p.Merged()
	require.NotNil(t, merged)
	assert.Equal(t, []string{"Alpha", "Beta"}, merged.Sources)
	require.Len(t, merged.Records, 3)

	edges := p.Interactions()
	require.Len(t, edges, 3)

	// The pair both sources report: provenance joins, citations union,
	// per-source scores sit side by side and the integer score loses its
	// decimal drift. Endpoints come out in canonical order even though
	// Alpha reported the pair reversed.
	shared := findEdge(t, edges, "uniprot:P1", "uniprot:P2")
	assert.Equal(t, interactionLabel, shared.Label)
	assert.Equal(t, []string{"Alpha", "Beta"}, shared.Props["source"])
	assert.Equal(t, []string{"111", "333"}, shared.Props["pubmed_ids"])
	assert.Equal(t, "0.9", shared.Props["alpha_score"])
	assert.Equal(t, "700", shared.Props["beta_score"])
	assert.Equal(t, "two hybrid", shared.Props["method"])

	alphaOnly := findEdge(t, edges, "uniprot:P1", "uniprot:P3")
	assert.Equal(t, "Alpha", alphaOnly.Props["source"])
	assert.Equal(t, "222", alphaOnly.Props["pubmed_ids"])
	assert.NotContains(t, alphaOnly.Props, "beta_score")

	betaOnly := findEdge(t, edges, "uniprot:P2", "uniprot:P3")
	assert.Equal(t, "Beta", betaOnly.Props["source"])
	assert.Equal(t, "8", betaOnly.Props["beta_score"])
	assert.NotContains(t, betaOnly.Props, "alpha_score")

	// Three proteins, two genes, one organism from the annotation catalog.
	assert.Equal(t, 6, res.Nodes)
	// Three interactions plus two Encodes and two Belongs_To links.
	assert.Equal(t, 7, res.Edges)

	// The three pairs close a triangle.
	require.Len(t, p.Communities(), 1)
	assert.Equal(t, []string{"uniprot:P1", "uniprot:P2", "uniprot:P3"}, p.Communities()[0])
	assert.Equal(t, 1, res.Communities)
}

func TestRun_ContinuesWithoutUnavailableSource(t *testing.T) {
	beta := betaClient()
	beta.err = errors.New("upstream returned 503")
	p := newTestPipeline(t, testConfig("alpha", "beta"), alphaClient(), beta)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha"}, res.MergedSources)
	assert.Equal(t, []string{"Beta"}, res.Skipped)
	assert.Equal(t, 2, res.Pairs)

	var betaSummary SourceSummary
	for _, s := range res.Sources {
		if s.Name == "Beta" {
			betaSummary = s
		}
	}
	assert.Equal(t, "not_fetched", betaSummary.State)
	assert.Contains(t, betaSummary.Error, "503")
}

func TestRun_AllSourcesUnavailable(t *testing.T) {
	alpha := alphaClient()
	alpha.err = errors.New("timeout")
	beta := betaClient()
	beta.err = errors.New("timeout")
	p := newTestPipeline(t, testConfig("alpha", "beta"), alpha, beta)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	// Degraded, not empty: the skipped list tells the two apart.
	assert.Empty(t, res.MergedSources)
	assert.Equal(t, []string{"Alpha", "Beta"}, res.Skipped)
	assert.Equal(t, 0, res.Pairs)
	assert.Empty(t, p.Interactions())

	// Annotation vertices and links still load.
	assert.Equal(t, 6, res.Nodes)
	assert.Equal(t, 4, res.Edges)
	assert.Equal(t, 0, res.Communities)
}

func TestFetchAll_UnknownSourceAborts(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha", "gamma"), alphaClient())

	err := p.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gamma")
}

func TestFetchAll_AnnotationFailureAborts(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha"), alphaClient())
	p.Annotator = &mockAnnotator{err: errors.New("stream closed")}

	err := p.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotation catalog")
}

func TestRun_FiltersUnreviewedEndpoints(t *testing.T) {
	alpha := alphaClient()
	alpha.raw.Records = append(alpha.raw.Records,
		model.Record{"src": "Alpha", "conf": "1.0", "a": "P1", "b": "Q9"})
	p := newTestPipeline(t, testConfig("alpha"), alpha)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	// Q9 is not in the annotation catalog, so the record is dropped.
	assert.Equal(t, 2, res.Pairs)
	for _, e := range p.Interactions() {
		assert.NotEqual(t, "uniprot:Q9", e.SourceID)
		assert.NotEqual(t, "uniprot:Q9", e.TargetID)
	}
}

func TestBuildEdges_RequiresMerge(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha"), alphaClient())

	_, err := p.BuildEdges()
	require.Error(t, err)

	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestExport_RequiresBuild(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha"), alphaClient())

	_, err := p.Export()
	require.Error(t, err)

	var cfgErr *model.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestExport_WritesTables(t *testing.T) {
	cfg := testConfig("alpha", "beta")
	cfg.Export.Dir = t.TempDir()
	p := newTestPipeline(t, cfg, alphaClient(), betaClient())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	files, err := p.Export()
	require.NoError(t, err)
	require.Len(t, files, 5)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
	assert.Equal(t, []string{"Alpha.csv", "Beta.csv", "PPI.csv", "edges.csv", "communities.csv"}, names)
}

func TestLoad_OrdersIndicesNodesEdges(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha", "beta"), alphaClient(), betaClient())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	d := &MockDriver{}
	require.NoError(t, p.Load(context.Background(), d))

	assert.Equal(t, []string{"indices", "nodes", "edges"}, d.Calls)
	assert.Len(t, d.NodesLoaded, 6)
	assert.Len(t, d.EdgesLoaded, 7)
}

func TestLoad_StopsOnIndexFailure(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha"), alphaClient())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	d := &MockDriver{Err: errors.New("connection reset")}
	require.Error(t, p.Load(context.Background(), d))
	assert.Equal(t, []string{"indices"}, d.Calls)
}

func TestBuildRule_TakesFirstSourceColumnName(t *testing.T) {
	r, ok := buildRule(merge.KindJoin,
		map[string]string{"Beta": "source", "Alpha": "source"},
		[]string{"Alpha", "Beta"})
	require.True(t, ok)
	assert.Equal(t, "source", r.Merged)
	assert.Equal(t, merge.KindJoin, r.Kind)

	_, ok = buildRule(merge.KindUnion, nil, []string{"Alpha"})
	assert.False(t, ok)
}

func TestStatuses_SnapshotsStateMachine(t *testing.T) {
	p := newTestPipeline(t, testConfig("alpha", "beta"), alphaClient(), betaClient())

	require.NoError(t, p.FetchAll(context.Background()))
	for _, s := range p.Statuses() {
		assert.Equal(t, "fetched", s.State)
		assert.Equal(t, 2, s.Raw)
		assert.Zero(t, s.Pairs)
	}

	p.ProcessAll()
	for _, s := range p.Statuses() {
		assert.Equal(t, "processed", s.State)
		assert.Equal(t, 2, s.Pairs)
	}
}
