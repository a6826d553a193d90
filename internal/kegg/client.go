package kegg

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/logger"
	"github.com/bionetlab/interactome/internal/source"
)

const defaultBaseURL = "https://rest.kegg.jp"

// Client talks to the KEGG REST API: list, conv, link, get and ddi
// operations over plain tab-separated responses.
type Client struct {
	baseURL string
	fetcher *source.Fetcher
	log     *logger.Logger
}

func NewClient(baseURL string, fetcher *source.Fetcher, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(nil, 0, log)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), fetcher: fetcher, log: log}
}

// lines runs one REST operation and returns the non-empty response lines.
func (c *Client) lines(ctx context.Context, op string, args ...string) ([]string, error) {
	url := c.baseURL + "/" + op
	for _, arg := range args {
		url += "/" + arg
	}

	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("kegg %s failed: %w", op, err)
	}
	defer body.Close()

	var lines []string
	sc := source.ScanLines(body)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("kegg %s response read failed: %w", op, err)
	}

	return lines, nil
}

// rows runs one REST operation and tab-splits every response line.
func (c *Client) rows(ctx context.Context, op string, args ...string) ([][]string, error) {
	lines, err := c.lines(ctx, op, args...)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, strings.Split(line, "\t"))
	}

	return rows, nil
}

// List returns the entry rows of a KEGG database, e.g. List(ctx, "pathway")
// or List(ctx, "hsa") for an organism's genes.
func (c *Client) List(ctx context.Context, database string, args ...string) ([][]string, error) {
	return c.rows(ctx, "list", append([]string{database}, args...)...)
}

// Get fetches flat-file entries, joining several ids into one request.
func (c *Client) Get(ctx context.Context, entries ...string) ([]string, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("kegg get needs at least one entry id")
	}

	return c.lines(ctx, "get", strings.Join(entries, "+"))
}

// Link returns the (source, target) id pairs connecting two databases. The
// REST path takes the target database first.
func (c *Client) Link(ctx context.Context, targetDB, sourceDB string) ([][2]string, error) {
	rows, err := c.rows(ctx, "link", targetDB, sourceDB)
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		pairs = append(pairs, [2]string{row[0], row[1]})
	}

	return pairs, nil
}

// ConvOptions control handle normalization on a conversion download.
type ConvOptions struct {
	// SplitSource and SplitTarget strip the database prefix from the
	// respective column, "up:P04637" -> "P04637".
	SplitSource bool
	SplitTarget bool
}

// ConversionTable maps one identifier space onto another. Values are lists;
// a KEGG gene can cross-reference several UniProt accessions.
type ConversionTable map[string][]string

// Get returns every mapping for id, nil when unknown.
func (t ConversionTable) Get(id string) []string {
	return t[id]
}

// First returns the first mapping for id, "" when unknown.
func (t ConversionTable) First(id string) string {
	if ids := t[id]; len(ids) > 0 {
		return ids[0]
	}

	return ""
}

// Conv downloads the conversion table between two databases. Response rows
// come as (source, target) while the REST path takes the target first.
func (c *Client) Conv(ctx context.Context, targetDB, sourceDB string, opts ConvOptions) (ConversionTable, error) {
	rows, err := c.rows(ctx, "conv", targetDB, sourceDB)
	if err != nil {
		return nil, err
	}

	table := ConversionTable{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		src, tgt := row[0], row[1]
		if opts.SplitSource {
			src = splitHandle(src)
		}
		if opts.SplitTarget {
			tgt = splitHandle(tgt)
		}
		table[src] = append(table[src], tgt)
	}

	return table, nil
}

// GeneToUniProt maps an organism's gene ids to UniProt accessions.
func (c *Client) GeneToUniProt(ctx context.Context, org string) (ConversionTable, error) {
	return c.Conv(ctx, "uniprot", org, ConvOptions{SplitTarget: true})
}

// GeneToNCBI maps an organism's gene ids to NCBI gene ids.
func (c *Client) GeneToNCBI(ctx context.Context, org string) (ConversionTable, error) {
	return c.Conv(ctx, "ncbi-geneid", org, ConvOptions{SplitTarget: true})
}

// DrugToChEBI maps drug ids to ChEBI ids.
func (c *Client) DrugToChEBI(ctx context.Context) (ConversionTable, error) {
	return c.Conv(ctx, "chebi", "drug", ConvOptions{SplitSource: true, SplitTarget: true})
}

// splitHandle strips the database prefix from a handle like "ds:H00001".
func splitHandle(handle string) string {
	if i := strings.Index(handle, ":"); i >= 0 {
		return handle[i+1:]
	}

	return handle
}
