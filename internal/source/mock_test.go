package source

// mockResolver is a canned id resolver for client tests.
type mockResolver struct {
	genes    map[string][]string // "SYMBOL|taxon" -> accessions
	xrefs    map[string][]string // STRING id -> accessions
	reviewed map[string]bool
}

func (m *mockResolver) GeneToAccessions(symbol, taxon string) []string {
	return m.genes[symbol+"|"+taxon]
}

func (m *mockResolver) StringToAccessions(stringID string) []string {
	return m.xrefs[stringID]
}

func (m *mockResolver) IsReviewed(accession string) bool {
	return m.reviewed[accession]
}
