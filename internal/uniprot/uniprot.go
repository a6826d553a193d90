package uniprot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bionetlab/interactome/internal/idmap"
	"github.com/bionetlab/interactome/internal/logger"
	"github.com/bionetlab/interactome/internal/source"
)

const defaultBaseURL = "https://rest.uniprot.org/uniprotkb/stream"

// Requested return fields, in column order. The stream endpoint echoes the
// requested order, so rows are parsed positionally.
var returnFields = []string{
	"accession",
	"sec_acc",
	"length",
	"mass",
	"organism_name",
	"organism_id",
	"protein_name",
	"gene_names",
	"xref_geneid",
	"xref_ensembl",
	"xref_kegg",
	"xref_string",
	"virus_hosts",
	"xref_proteomes",
	"ec",
}

const (
	colAccession = iota
	colSecondary
	colLength
	colMass
	colOrganismName
	colOrganismID
	colProteinNames
	colGeneNames
	colGeneID
	colEnsembl
	colKegg
	colString
	colVirusHosts
	colProteomes
	colEC
)

// Entry is one reviewed protein record with its parsed annotation fields.
type Entry struct {
	Accession    string
	SecondaryIDs []string
	Length       string
	Mass         string
	OrganismName string
	OrganismID   string
	ProteinNames []string
	GeneNames    []string
	GeneID       string
	KeggIDs      []string
	Transcripts  []string
	StringXrefs  string
	VirusHosts   []string
	Proteomes    []string
	ECNumbers    []string
}

// Catalog is the downloaded annotation set, ordered as served.
type Catalog struct {
	Entries []Entry
}

// Options configures the annotation client.
type Options struct {
	// BaseURL overrides the stream endpoint.
	BaseURL string
	// Organism restricts the download to one NCBI taxon. Empty keeps all.
	Organism string
	// Unreviewed lifts the default reviewed-only restriction.
	Unreviewed bool
	// SampleLimit truncates the parsed table, 0 keeps everything.
	SampleLimit int
}

// Client downloads protein annotations from the UniProtKB stream endpoint.
type Client struct {
	opts    Options
	fetcher *source.Fetcher
	log     *logger.Logger
}

func NewClient(opts Options, fetcher *source.Fetcher, log *logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(nil, 0, log)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{opts: opts, fetcher: fetcher, log: log}
}

// Fetch streams the TSV download and parses every row into an Entry.
func (c *Client) Fetch(ctx context.Context) (*Catalog, error) {
	body, err := c.fetcher.Get(ctx, c.queryURL())
	if err != nil {
		return nil, fmt.Errorf("failed to download UniProt annotations: %w", err)
	}
	defer body.Close()

	catalog := &Catalog{}
	sc := source.ScanLines(body)
	first := true
	for sc.Scan() {
		if first {
			// Header row.
			first = false
			continue
		}
		line := sc.Text()
		if line == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) <= colEC {
			continue
		}

		catalog.Entries = append(catalog.Entries, parseEntry(cols))
		if c.opts.SampleLimit > 0 && len(catalog.Entries) >= c.opts.SampleLimit {
			c.log.Info("UniProt sample limit reached", "limit", c.opts.SampleLimit)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read UniProt annotations: %w", err)
	}

	c.log.Info("UniProt download complete", "entries", len(catalog.Entries))
	return catalog, nil
}

func (c *Client) queryURL() string {
	terms := []string{}
	if !c.opts.Unreviewed {
		terms = append(terms, "reviewed:true")
	}
	if c.opts.Organism != "" {
		terms = append(terms, "organism_id:"+c.opts.Organism)
	}
	query := "*"
	if len(terms) > 0 {
		query = strings.Join(terms, " AND ")
	}

	params := url.Values{}
	params.Set("format", "tsv")
	params.Set("fields", strings.Join(returnFields, ","))
	params.Set("query", query)

	return c.opts.BaseURL + "?" + params.Encode()
}

func parseEntry(cols []string) Entry {
	return Entry{
		Accession:    cols[colAccession],
		SecondaryIDs: splitList(cols[colSecondary]),
		Length:       cols[colLength],
		Mass:         cols[colMass],
		OrganismName: sanitize(cols[colOrganismName]),
		OrganismID:   cols[colOrganismID],
		ProteinNames: SplitProteinNames(cols[colProteinNames]),
		GeneNames:    strings.Fields(sanitize(cols[colGeneNames])),
		GeneID:       firstListItem(cols[colGeneID]),
		KeggIDs:      splitPrefixedList(cols[colKegg]),
		Transcripts:  splitTranscripts(cols[colEnsembl]),
		StringXrefs:  cols[colString],
		VirusHosts:   SplitVirusHosts(cols[colVirusHosts]),
		Proteomes:    splitOn(cols[colProteomes], ","),
		ECNumbers:    splitList(cols[colEC]),
	}
}

// IDTable reshapes the catalog into the resolver's input maps. Every entry
// in a default download is reviewed, so the whole accession list lands in
// the reviewed set.
func (c *Catalog) IDTable() idmap.TableData {
	data := idmap.TableData{
		GeneNames:   make(map[string]string, len(c.Entries)),
		OrganismIDs: make(map[string]string, len(c.Entries)),
		StringXrefs: make(map[string]string, len(c.Entries)),
		Reviewed:    make([]string, 0, len(c.Entries)),
	}

	for _, e := range c.Entries {
		if len(e.GeneNames) > 0 {
			data.GeneNames[e.Accession] = strings.Join(e.GeneNames, " ")
		}
		if e.OrganismID != "" {
			data.OrganismIDs[e.Accession] = e.OrganismID
		}
		if e.StringXrefs != "" {
			data.StringXrefs[e.Accession] = e.StringXrefs
		}
		data.Reviewed = append(data.Reviewed, e.Accession)
	}

	return data
}
