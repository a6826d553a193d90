package kegg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const diseaseFlatFile = `ENTRY       H00001                      Disease
NAME        Acute lymphoblastic leukemia (ALL)
DESCRIPTION Acute lymphoblastic leukemia (ALL) is a clonal expansion of lymphoid blasts.
GENE        ABL1 [HSA:25] [KO:K06619]
DBLINKS     ICD-11: 2A85.0 2A85.1
            ICD-10: C91.0
            MeSH: D054198
REFERENCE   PMID:15804544
REFERENCE
REFERENCE   PMID:18039943
///
ENTRY       H00002                      Disease
NAME        T-cell acute lymphoblastic leukemia
DBLINKS     OMIM: 613065
///
`

func TestParseDiseaseEntries(t *testing.T) {
	entries := ParseDiseaseEntries(strings.Split(diseaseFlatFile, "\n"))

	assert.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, []string{"2A85.0", "2A85.1"}, first.DBLinks["ICD-11"])
	assert.Equal(t, []string{"C91.0"}, first.DBLinks["ICD-10"])
	assert.Equal(t, []string{"D054198"}, first.DBLinks["MeSH"])
	assert.Equal(t, []string{"PMID:15804544", "PMID:18039943"}, first.References)

	second := entries[1]
	assert.Equal(t, []string{"613065"}, second.DBLinks["OMIM"])
	assert.Empty(t, second.References)
}

func TestParseDiseaseEntriesStopsDBLinksAtNextSection(t *testing.T) {
	lines := []string{
		"DBLINKS     ICD-10: C91.0",
		"BRITE       Human diseases [BR:br08402]",
		"            Cancers",
		"///",
	}

	entries := ParseDiseaseEntries(lines)

	assert.Len(t, entries, 1)
	assert.Equal(t, map[string][]string{"ICD-10": {"C91.0"}}, entries[0].DBLinks)
}

func TestGetDiseasesParsesFetchedEntries(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"/get/H00001": diseaseFlatFile,
	})

	entries, err := c.GetDiseases(context.Background(), "H00001")

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, []string{"D054198"}, entries[0].DBLinks["MeSH"])
}
