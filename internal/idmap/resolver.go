package idmap

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// geneCacheSize bounds the memoized gene lookups; popular symbols repeat
// across millions of interaction rows.
const geneCacheSize = 4096

// Resolver maps source-native identifiers to stable reviewed accessions.
// A miss is an empty result, never an error.
type Resolver interface {
	// GeneToAccessions returns the reviewed accessions whose gene symbol
	// matches (case-insensitive) and whose organism matches taxon.
	GeneToAccessions(symbol, taxon string) []string
	// StringToAccessions returns the accessions cross-referenced by a
	// STRING protein identifier (the part after the taxon prefix).
	StringToAccessions(stringID string) []string
	// IsReviewed reports whether the accession is in the reviewed set.
	IsReviewed(accession string) bool
}

// TableData carries the raw per-accession attribute maps a Table is built
// from, in the shape the annotation bulk download produces.
type TableData struct {
	// GeneNames maps accession -> whitespace-separated gene symbols.
	GeneNames map[string]string
	// OrganismIDs maps accession -> NCBI taxon id.
	OrganismIDs map[string]string
	// StringXrefs maps accession -> ";"-separated STRING ids
	// ("9606.ENSP00000269305;").
	StringXrefs map[string]string
	// Reviewed lists every reviewed accession.
	Reviewed []string
}

// Table is the in-memory Resolver: inverted indexes over the bulk
// annotation tables, with an LRU cache on the gene-symbol path.
type Table struct {
	genes     map[string][]string
	organisms map[string]string
	stringIDs map[string][]string
	reviewed  map[string]struct{}

	geneCache *lru.Cache[string, []string]
}

func NewTable(data TableData) (*Table, error) {
	cache, err := lru.New[string, []string](geneCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gene lookup cache: %w", err)
	}

	t := &Table{
		genes:     make(map[string][]string),
		organisms: make(map[string]string, len(data.OrganismIDs)),
		stringIDs: make(map[string][]string),
		reviewed:  make(map[string]struct{}, len(data.Reviewed)),
		geneCache: cache,
	}

	for acc, names := range data.GeneNames {
		for _, symbol := range strings.Fields(names) {
			key := strings.ToUpper(symbol)
			t.genes[key] = append(t.genes[key], acc)
		}
	}
	for acc, taxon := range data.OrganismIDs {
		t.organisms[acc] = taxon
	}
	for acc, xrefs := range data.StringXrefs {
		for _, xref := range strings.Split(xrefs, ";") {
			if xref == "" {
				continue
			}
			// Strip the taxon prefix: "9606.ENSP00000269305" -> ENSP id.
			if i := strings.Index(xref, "."); i >= 0 {
				xref = xref[i+1:]
			}
			t.stringIDs[xref] = append(t.stringIDs[xref], acc)
		}
	}
	for _, acc := range data.Reviewed {
		t.reviewed[acc] = struct{}{}
	}

	return t, nil
}

func (t *Table) GeneToAccessions(symbol, taxon string) []string {
	key := strings.ToUpper(symbol) + "\x1f" + taxon
	if hit, ok := t.geneCache.Get(key); ok {
		return hit
	}

	var out []string
	for _, acc := range t.genes[strings.ToUpper(symbol)] {
		if t.organisms[acc] == taxon {
			out = append(out, acc)
		}
	}
	t.geneCache.Add(key, out)
	return out
}

func (t *Table) StringToAccessions(stringID string) []string {
	return t.stringIDs[stringID]
}

func (t *Table) IsReviewed(accession string) bool {
	_, ok := t.reviewed[accession]
	return ok
}

// ReviewedSet exposes the reviewed accessions as the projection allow-set.
// Callers must not mutate it.
func (t *Table) ReviewedSet() map[string]struct{} {
	return t.reviewed
}
