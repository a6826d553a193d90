package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/idmap"
	"github.com/bionetlab/interactome/internal/logger"
)

const (
	biogridName       = "BioGRID"
	biogridDefaultURL = "https://downloads.thebiogrid.org/Download/BioGRID/Latest-Release/BIOGRID-ALL-LATEST.tab3.zip"
)

// BioGRID tab3 header names used by the parser.
const (
	biogridColSymbolA = "Official Symbol Interactor A"
	biogridColSymbolB = "Official Symbol Interactor B"
	biogridColTaxA    = "Organism ID Interactor A"
	biogridColTaxB    = "Organism ID Interactor B"
	biogridColSystem  = "Experimental System"
	biogridColPub     = "Publication Source"
)

var biogridFields = model.FieldTable{
	{Name: "source", Canonical: "source"},
	{Name: "pmid", Canonical: "pubmed_ids", Multivalued: true},
	{Name: "experimental_system", Canonical: "method", Multivalued: true},
	{Name: "partner_a", Canonical: model.FieldIDA, Identity: true},
	{Name: "partner_b", Canonical: model.FieldIDB, Identity: true},
}

// BioGRIDOptions configures the BioGRID client.
type BioGRIDOptions struct {
	// URL overrides the tab3 dump location.
	URL string
	// Organism keeps only interactions where both partners carry this NCBI
	// taxonomy id. Empty keeps every organism.
	Organism string
	// SampleLimit truncates the parsed table, 0 keeps everything.
	SampleLimit int
}

// BioGRID downloads the BioGRID tab3 dump and parses it into raw interaction
// records. BioGRID identifies partners by gene symbol, so every row is pushed
// through the id resolver; rows whose symbols map to more than one accession
// are dropped as ambiguous.
type BioGRID struct {
	opts     BioGRIDOptions
	fetcher  *Fetcher
	resolver idmap.Resolver
	log      *logger.Logger
}

// NewBioGRID creates a BioGRID client backed by the given id resolver.
func NewBioGRID(opts BioGRIDOptions, fetcher *Fetcher, resolver idmap.Resolver, log *logger.Logger) *BioGRID {
	if opts.URL == "" {
		opts.URL = biogridDefaultURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0, log)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &BioGRID{opts: opts, fetcher: fetcher, resolver: resolver, log: log}
}

func (c *BioGRID) Name() string {
	return biogridName
}

func (c *BioGRID) Spec() Spec {
	return Spec{
		Fields:         biogridFields,
		Provenance:     "source",
		Citations:      "pmid",
		Method:         "experimental_system",
		FilterReviewed: true,
	}
}

// Fetch downloads the tab3 dump, maps gene symbols to UniProt accessions and
// returns the surviving rows.
func (c *BioGRID) Fetch(ctx context.Context) (model.RawRecordSet, error) {
	body, err := c.fetcher.Get(ctx, c.opts.URL)
	if err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to download BioGRID data: %w", err)
	}
	defer body.Close()

	set := model.RawRecordSet{
		Source: biogridName,
		Fields: biogridFields.SelectedFields(),
	}

	sc := ScanLines(body)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return model.RawRecordSet{}, fmt.Errorf("failed to read BioGRID data: %w", err)
		}
		return model.RawRecordSet{}, fmt.Errorf("BioGRID dump is empty")
	}

	header := newHeaderIndex(sc.Text())
	required := []string{biogridColSymbolA, biogridColSymbolB, biogridColTaxA, biogridColTaxB, biogridColSystem, biogridColPub}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return model.RawRecordSet{}, fmt.Errorf("BioGRID dump is missing column %q", col)
		}
	}

	ambiguous := 0
	for sc.Scan() {
		cols := strings.Split(sc.Text(), "\t")

		taxA := header.value(cols, biogridColTaxA)
		taxB := header.value(cols, biogridColTaxB)
		if c.opts.Organism != "" && (taxA != c.opts.Organism || taxB != c.opts.Organism) {
			continue
		}

		accA, ok := c.resolveSymbol(header.value(cols, biogridColSymbolA), taxA)
		if !ok {
			ambiguous++
			continue
		}
		accB, ok := c.resolveSymbol(header.value(cols, biogridColSymbolB), taxB)
		if !ok {
			ambiguous++
			continue
		}

		rec := model.Record{"source": biogridName}
		if accA != "" {
			rec["partner_a"] = accA
		}
		if accB != "" {
			rec["partner_b"] = accB
		}
		if pmid := biogridPubmed(header.value(cols, biogridColPub)); pmid != "" {
			rec["pmid"] = pmid
		}
		if system := header.value(cols, biogridColSystem); system != "" {
			rec["experimental_system"] = system
		}

		set.Records = append(set.Records, rec)
		if c.opts.SampleLimit > 0 && len(set.Records) >= c.opts.SampleLimit {
			c.log.Info("BioGRID sample limit reached", "limit", c.opts.SampleLimit)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to read BioGRID data: %w", err)
	}

	c.log.Info("BioGRID download complete", "records", len(set.Records), "ambiguous_dropped", ambiguous)
	return set, nil
}

// resolveSymbol maps one gene symbol to its UniProt accession. No match
// leaves the endpoint empty; more than one match marks the row ambiguous.
func (c *BioGRID) resolveSymbol(symbol, taxon string) (string, bool) {
	if symbol == "" || symbol == "-" {
		return "", true
	}

	accessions := c.resolver.GeneToAccessions(strings.ToUpper(symbol), taxon)
	switch len(accessions) {
	case 0:
		return "", true
	case 1:
		return accessions[0], true
	default:
		return "", false
	}
}

// biogridPubmed strips the namespace from values like "PUBMED:24457600".
// Non-PubMed citations (DOIs) yield nothing.
func biogridPubmed(value string) string {
	const prefix = "PUBMED:"
	if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		return value[len(prefix):]
	}

	return ""
}

// headerIndex maps tab-separated header names to their column positions.
type headerIndex map[string]int

func newHeaderIndex(line string) headerIndex {
	idx := headerIndex{}
	for i, name := range strings.Split(line, "\t") {
		idx[strings.TrimPrefix(name, "#")] = i
	}

	return idx
}

func (h headerIndex) value(cols []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(cols) {
		return ""
	}
	value := strings.TrimSpace(cols[i])
	if value == "-" {
		return ""
	}

	return value
}
