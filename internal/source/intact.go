package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/logger"
)

const (
	intactName       = "IntAct"
	intactDefaultURL = "https://ftp.ebi.ac.uk/pub/databases/intact/current/psimitab/intact.txt"
)

// PSI-MITAB column indexes used by the parser.
const (
	mitabColIDA     = 0
	mitabColIDB     = 1
	mitabColMethods = 6
	mitabColPubs    = 8
	mitabColTaxA    = 9
	mitabColTaxB    = 10
	mitabColTypes   = 11
	mitabColScores  = 14
)

var intactFields = model.FieldTable{
	{Name: "source", Canonical: "source"},
	{Name: "pubmeds", Canonical: "pubmed_ids", Multivalued: true},
	{Name: "mi_score", Canonical: "intact_score"},
	{Name: "methods", Canonical: "method", Multivalued: true},
	{Name: "interaction_types", Canonical: "interaction_type", Multivalued: true},
	{Name: "id_a", Canonical: model.FieldIDA, Identity: true},
	{Name: "id_b", Canonical: model.FieldIDB, Identity: true},
}

// IntActOptions configures the IntAct client.
type IntActOptions struct {
	// URL overrides the PSI-MITAB dump location.
	URL string
	// Organism keeps only interactions where both partners carry this NCBI
	// taxonomy id. Empty keeps every organism.
	Organism string
	// SampleLimit truncates the parsed table, 0 keeps everything.
	SampleLimit int
}

// IntAct downloads the IntAct PSI-MITAB dump and parses it into raw
// interaction records.
type IntAct struct {
	opts    IntActOptions
	fetcher *Fetcher
	log     *logger.Logger
}

// NewIntAct creates an IntAct client.
func NewIntAct(opts IntActOptions, fetcher *Fetcher, log *logger.Logger) *IntAct {
	if opts.URL == "" {
		opts.URL = intactDefaultURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0, log)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &IntAct{opts: opts, fetcher: fetcher, log: log}
}

func (c *IntAct) Name() string {
	return intactName
}

func (c *IntAct) Spec() Spec {
	return Spec{
		Fields:         intactFields,
		Priority:       "mi_score",
		Provenance:     "source",
		Citations:      "pubmeds",
		Method:         "methods",
		ScrubCitations: true,
		FilterReviewed: true,
	}
}

// Fetch downloads the PSI-MITAB dump and parses every row carrying UniProt
// accessions on both sides. Rows from other organisms are skipped when an
// organism filter is set.
func (c *IntAct) Fetch(ctx context.Context) (model.RawRecordSet, error) {
	body, err := c.fetcher.Get(ctx, c.opts.URL)
	if err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to download IntAct data: %w", err)
	}
	defer body.Close()

	set := model.RawRecordSet{
		Source: intactName,
		Fields: intactFields.SelectedFields(),
	}

	sc := ScanLines(body)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			// Header row.
			first = false
			if strings.HasPrefix(line, "#") {
				continue
			}
		}
		if line == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) <= mitabColScores {
			continue
		}
		if c.opts.Organism != "" {
			if mitabTaxon(cols[mitabColTaxA]) != c.opts.Organism || mitabTaxon(cols[mitabColTaxB]) != c.opts.Organism {
				continue
			}
		}

		rec := model.Record{"source": intactName}
		if id := mitabValue(cols[mitabColIDA], "uniprotkb:"); id != "" {
			rec["id_a"] = id
		}
		if id := mitabValue(cols[mitabColIDB], "uniprotkb:"); id != "" {
			rec["id_b"] = id
		}
		if pubs := mitabValues(cols[mitabColPubs], "pubmed:"); len(pubs) > 0 {
			rec["pubmeds"] = pubs
		}
		if score := mitabValue(cols[mitabColScores], "intact-miscore:"); score != "" {
			rec["mi_score"] = score
		}
		if methods := mitabLabels(cols[mitabColMethods]); len(methods) > 0 {
			rec["methods"] = methods
		}
		if types := mitabLabels(cols[mitabColTypes]); len(types) > 0 {
			rec["interaction_types"] = types
		}

		set.Records = append(set.Records, rec)
		if c.opts.SampleLimit > 0 && len(set.Records) >= c.opts.SampleLimit {
			c.log.Info("IntAct sample limit reached", "limit", c.opts.SampleLimit)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to read IntAct data: %w", err)
	}

	c.log.Info("IntAct download complete", "records", len(set.Records))
	return set, nil
}

// mitabValue returns the first value carrying the given namespace prefix in a
// "|"-separated MITAB field, e.g. "uniprotkb:P49418" -> "P49418".
func mitabValue(field, prefix string) string {
	for _, item := range strings.Split(field, "|") {
		if strings.HasPrefix(item, prefix) {
			return strings.TrimPrefix(item, prefix)
		}
	}

	return ""
}

// mitabValues returns every value carrying the given namespace prefix.
func mitabValues(field, prefix string) []string {
	var values []string
	for _, item := range strings.Split(field, "|") {
		if strings.HasPrefix(item, prefix) {
			values = append(values, strings.TrimPrefix(item, prefix))
		}
	}

	return values
}

// mitabLabels extracts the human-readable labels from controlled-vocabulary
// items, e.g. `psi-mi:"MI:0018"(two hybrid)` -> "two hybrid".
func mitabLabels(field string) []string {
	var labels []string
	for _, item := range strings.Split(field, "|") {
		open := strings.Index(item, "(")
		end := strings.LastIndex(item, ")")
		if open < 0 || end <= open {
			continue
		}
		if label := item[open+1 : end]; label != "" {
			labels = append(labels, label)
		}
	}

	return labels
}

// mitabTaxon extracts the numeric taxonomy id from fields shaped like
// "taxid:9606(human)".
func mitabTaxon(field string) string {
	value := mitabValue(field, "taxid:")
	if i := strings.Index(value, "("); i >= 0 {
		value = value[:i]
	}

	return value
}
