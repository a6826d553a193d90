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
	stringName               = "STRING"
	stringDefaultOrganism    = "9606"
	stringLinksURLFormat     = "https://stringdb-downloads.org/download/protein.links.v12.0/%s.protein.links.v12.0.txt.gz"
	stringPhysicalURLFormat  = "https://stringdb-downloads.org/download/protein.physical.links.v12.0/%s.protein.physical.links.v12.0.txt.gz"
	stringLinksColumns       = 3
	stringAccessionSeparator = ";"
)

var stringFields = model.FieldTable{
	{Name: "source", Canonical: "source"},
	{Name: "combined_score", Canonical: "string_combined_score", Integer: true},
	{Name: "physical_combined_score", Canonical: "string_physical_combined_score", Integer: true},
	{Name: "protein_a", Canonical: model.FieldIDA, Identity: true},
	{Name: "protein_b", Canonical: model.FieldIDB, Identity: true},
}

// StringDBOptions configures the STRING client.
type StringDBOptions struct {
	// URL overrides the protein links dump location.
	URL string
	// PhysicalURL overrides the physical-subnetwork links dump location.
	PhysicalURL string
	// Organism selects the per-organism dump, defaulting to human.
	Organism string
	// SampleLimit truncates the parsed table, 0 keeps everything.
	SampleLimit int
}

// StringDB downloads the STRING protein links dumps and parses them into raw
// interaction records. STRING identifies proteins by its own ids, so every
// row is resolved through the xref table; proteins mapping to several
// accessions keep all of them joined with ";".
type StringDB struct {
	opts     StringDBOptions
	fetcher  *Fetcher
	resolver idmap.Resolver
	log      *logger.Logger
}

// NewStringDB creates a STRING client backed by the given id resolver.
func NewStringDB(opts StringDBOptions, fetcher *Fetcher, resolver idmap.Resolver, log *logger.Logger) *StringDB {
	if opts.Organism == "" {
		opts.Organism = stringDefaultOrganism
	}
	if opts.URL == "" {
		opts.URL = fmt.Sprintf(stringLinksURLFormat, opts.Organism)
	}
	if opts.PhysicalURL == "" {
		opts.PhysicalURL = fmt.Sprintf(stringPhysicalURLFormat, opts.Organism)
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0, log)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &StringDB{opts: opts, fetcher: fetcher, resolver: resolver, log: log}
}

func (c *StringDB) Name() string {
	return stringName
}

func (c *StringDB) Spec() Spec {
	return Spec{
		Fields:     stringFields,
		Priority:   "combined_score",
		Provenance: "source",
	}
}

// Fetch downloads the physical-subnetwork scores, then streams the combined
// links dump and resolves both endpoints. Rows with an unmapped endpoint are
// skipped.
func (c *StringDB) Fetch(ctx context.Context) (model.RawRecordSet, error) {
	physical, err := c.fetchPhysicalScores(ctx)
	if err != nil {
		return model.RawRecordSet{}, err
	}

	body, err := c.fetcher.Get(ctx, c.opts.URL)
	if err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to download STRING links: %w", err)
	}
	defer body.Close()

	set := model.RawRecordSet{
		Source: stringName,
		Fields: stringFields.SelectedFields(),
	}

	unmapped := 0
	sc := ScanLines(body)
	first := true
	for sc.Scan() {
		cols := strings.Fields(sc.Text())
		if first {
			// Header row.
			first = false
			continue
		}
		if len(cols) < stringLinksColumns {
			continue
		}

		accA := c.resolveProtein(cols[0])
		accB := c.resolveProtein(cols[1])
		if accA == "" || accB == "" {
			unmapped++
			continue
		}

		rec := model.Record{
			"source":         stringName,
			"protein_a":      accA,
			"protein_b":      accB,
			"combined_score": cols[2],
		}
		if score, ok := physical[[2]string{cols[0], cols[1]}]; ok {
			rec["physical_combined_score"] = score
		}

		set.Records = append(set.Records, rec)
		if c.opts.SampleLimit > 0 && len(set.Records) >= c.opts.SampleLimit {
			c.log.Info("STRING sample limit reached", "limit", c.opts.SampleLimit)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return model.RawRecordSet{}, fmt.Errorf("failed to read STRING links: %w", err)
	}

	c.log.Info("STRING download complete", "records", len(set.Records), "unmapped_dropped", unmapped)
	return set, nil
}

// fetchPhysicalScores indexes the physical-subnetwork dump by directed
// protein id pair. The dump lists both directions of every link, so a direct
// lookup during the links pass finds its row.
func (c *StringDB) fetchPhysicalScores(ctx context.Context) (map[[2]string]string, error) {
	body, err := c.fetcher.Get(ctx, c.opts.PhysicalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download STRING physical links: %w", err)
	}
	defer body.Close()

	scores := map[[2]string]string{}
	sc := ScanLines(body)
	first := true
	for sc.Scan() {
		cols := strings.Fields(sc.Text())
		if first {
			first = false
			continue
		}
		if len(cols) < stringLinksColumns {
			continue
		}
		scores[[2]string{cols[0], cols[1]}] = cols[2]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read STRING physical links: %w", err)
	}

	return scores, nil
}

// resolveProtein maps a STRING protein id like "9606.ENSP00000272298" to its
// UniProt accessions. Several matches stay joined with ";".
func (c *StringDB) resolveProtein(id string) string {
	if i := strings.Index(id, "."); i >= 0 {
		id = id[i+1:]
	}

	return strings.Join(c.resolver.StringToAccessions(id), stringAccessionSeparator)
}
