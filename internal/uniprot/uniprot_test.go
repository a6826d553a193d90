package uniprot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/source"
)

var uniprotTestHeader = strings.Repeat("x\t", len(returnFields)-1) + "x"

func tsvRow(cols ...string) string {
	padded := make([]string, len(returnFields))
	copy(padded, cols)

	return strings.Join(padded, "\t")
}

func p53Row() string {
	return tsvRow(
		"P04637",
		"Q15086; Q15087",
		"393",
		"43,653",
		"Homo sapiens (Human)",
		"9606",
		"Cellular tumor antigen p53 (Antigen NY-CO-13) (Tumor suppressor p53)",
		"TP53 P53",
		"7157;",
		"ENST00000269305.9 [P04637-1];",
		"hsa:7157;",
		"9606.ENSP00000269305;",
		"",
		"UP000005640: Chromosome 17",
		"",
	)
}

func mdm2Row() string {
	return tsvRow(
		"Q00987",
		"",
		"491",
		"55,233",
		"Homo sapiens (Human)",
		"9606",
		"E3 ubiquitin-protein ligase Mdm2 (EC 2.3.2.27)",
		"MDM2",
		"", // no GeneID xref
		"",
		"",
		"9606.ENSP00000417281;",
		"",
		"",
		"2.3.2.27",
	)
}

func fetchCatalog(t *testing.T, rows ...string) *Catalog {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, uniprotTestHeader+"\n"+strings.Join(rows, "\n")+"\n")
	}))
	t.Cleanup(server.Close)

	c := NewClient(Options{BaseURL: server.URL}, source.NewFetcher(server.Client(), 1, nil), nil)
	catalog, err := c.Fetch(context.Background())
	assert.NoError(t, err)

	return catalog
}

func TestFetchParsesEntries(t *testing.T) {
	catalog := fetchCatalog(t, p53Row(), mdm2Row())

	assert.Len(t, catalog.Entries, 2)

	e := catalog.Entries[0]
	assert.Equal(t, "P04637", e.Accession)
	assert.Equal(t, []string{"Q15086", "Q15087"}, e.SecondaryIDs)
	assert.Equal(t, "393", e.Length)
	assert.Equal(t, []string{"Cellular tumor antigen p53", "Antigen NY-CO-13", "Tumor suppressor p53"}, e.ProteinNames)
	assert.Equal(t, []string{"TP53", "P53"}, e.GeneNames)
	assert.Equal(t, "7157", e.GeneID)
	assert.Equal(t, []string{"7157"}, e.KeggIDs)
	assert.Equal(t, []string{"ENST00000269305.9"}, e.Transcripts)
	assert.Equal(t, "9606.ENSP00000269305;", e.StringXrefs)
}

func TestQueryRestrictsToReviewedOrganism(t *testing.T) {
	c := NewClient(Options{Organism: "9606"}, nil, nil)

	url := c.queryURL()
	assert.Contains(t, url, "reviewed%3Atrue")
	assert.Contains(t, url, "organism_id%3A9606")
	assert.Contains(t, url, "format=tsv")
}

func TestIDTableCoverage(t *testing.T) {
	catalog := fetchCatalog(t, p53Row(), mdm2Row())

	data := catalog.IDTable()
	assert.Equal(t, "TP53 P53", data.GeneNames["P04637"])
	assert.Equal(t, "9606", data.OrganismIDs["Q00987"])
	assert.Equal(t, "9606.ENSP00000269305;", data.StringXrefs["P04637"])
	assert.Equal(t, []string{"P04637", "Q00987"}, data.Reviewed)
}

func TestNodesBuildProteinGeneOrganism(t *testing.T) {
	catalog := fetchCatalog(t, p53Row())

	nodes := catalog.Nodes()
	assert.Len(t, nodes, 3)

	byID := map[string]model.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}

	protein := byID["uniprot:P04637"]
	assert.Equal(t, LabelProtein, protein.Label)
	assert.Equal(t, 393, protein.Props["length"])
	assert.Equal(t, 43653, protein.Props["mass"])
	assert.Equal(t, 9606, protein.Props["organism_id"])
	assert.Equal(t, []string{"Q15086", "Q15087"}, protein.Props["secondary_ids"])

	gene := byID["ncbigene:7157"]
	assert.Equal(t, LabelGene, gene.Label)
	assert.Equal(t, []string{"TP53", "P53"}, gene.Props["genes"])
	assert.Equal(t, "7157", gene.Props["kegg"])
	assert.Equal(t, "ENST00000269305.9", gene.Props["ensembl"])

	organism := byID["ncbitaxon:9606"]
	assert.Equal(t, LabelOrganism, organism.Label)
	assert.Equal(t, "Homo sapiens (Human)", organism.Props["organism"])
}

func TestNodesSkipGeneWithoutGeneID(t *testing.T) {
	catalog := fetchCatalog(t, mdm2Row())

	for _, n := range catalog.Nodes() {
		assert.NotEqual(t, LabelGene, n.Label)
	}
}

func TestNodesEmitSharedOrganismOnce(t *testing.T) {
	catalog := fetchCatalog(t, p53Row(), mdm2Row())

	organisms := 0
	for _, n := range catalog.Nodes() {
		if n.Label == LabelOrganism {
			organisms++
		}
	}
	assert.Equal(t, 1, organisms)
}

func TestEdgesLinkGenesAndOrganisms(t *testing.T) {
	catalog := fetchCatalog(t, p53Row(), mdm2Row())

	edges := catalog.Edges()

	// P04637 gets Encodes + Belongs_To, Q00987 (no GeneID) only Belongs_To.
	assert.Len(t, edges, 3)
	assert.Equal(t, model.Edge{
		SourceID: "ncbigene:7157",
		TargetID: "uniprot:P04637",
		Label:    EdgeEncodes,
	}, edges[0])
	assert.Equal(t, EdgeBelongsTo, edges[1].Label)
	assert.Equal(t, "uniprot:Q00987", edges[2].SourceID)
	assert.Equal(t, "ncbitaxon:9606", edges[2].TargetID)
}
