//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core"
	"github.com/bionetlab/interactome/internal/logger"
)

// moduleUpstreams serves a six-protein network shaped as two disjoint
// triangles, the smallest network with more than one functional module.
func moduleUpstreams(t *testing.T) *httptest.Server {
	t.Helper()

	var uniprot strings.Builder
	uniprot.WriteString("Entry\tSecondary accession\tLength\tMass\tOrganism\tOrganism (ID)\tProtein names\tGene Names\tGeneID\tEnsembl\tKEGG\tSTRING\tVirus hosts\tProteomes\tEC number\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&uniprot, "P1000%d\t\t100\t11000\tHomo sapiens (Human)\t9606\tProtein %d\t\t\t\t\t\t\t\t\n", i, i)
	}

	human := "taxid:9606(human)"
	pairs := [][2]string{
		{"P10001", "P10002"}, {"P10001", "P10003"}, {"P10002", "P10003"},
		{"P10004", "P10005"}, {"P10004", "P10006"}, {"P10005", "P10006"},
	}
	rows := []string{"#ID(s) interactor A\tID(s) interactor B"}
	for i, pair := range pairs {
		rows = append(rows, mitabRow(
			"uniprotkb:"+pair[0], "uniprotkb:"+pair[1],
			`psi-mi:"MI:0018"(two hybrid)`, fmt.Sprintf("pubmed:2000000%d", i),
			human, human, `psi-mi:"MI:0915"(physical association)`, "intact-miscore:0.60"))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/uniprot/stream", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, uniprot.String())
	})
	mux.HandleFunc("/intact/psimitab", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Join(rows, "\n")+"\n")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCommunityModules(t *testing.T) {
	upstream := moduleUpstreams(t)

	cfg := &config.Config{}
	cfg.Pipeline.Organism = "9606"
	cfg.Pipeline.Sources = []string{"intact"}
	cfg.Pipeline.Retries = 1
	cfg.Sources.IntAct.URL = upstream.URL + "/intact/psimitab"
	cfg.UniProt.BaseURL = upstream.URL + "/uniprot/stream"

	p := core.NewPipeline(cfg, logger.NewNop())
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, res.Pairs)
	assert.Equal(t, 2, res.Communities)

	communities := p.Communities()
	require.Len(t, communities, 2)
	assert.Equal(t, []string{"uniprot:P10001", "uniprot:P10002", "uniprot:P10003"}, communities[0])
	assert.Equal(t, []string{"uniprot:P10004", "uniprot:P10005", "uniprot:P10006"}, communities[1])
}
