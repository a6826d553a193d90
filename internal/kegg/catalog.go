package kegg

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Databases addressable by link sets.
const (
	DBGene     = "gene"
	DBPathway  = "pathway"
	DBDisease  = "disease"
	DBDrug     = "drug"
	DBCompound = "compound"
)

// Catalog maps normalized entry ids to display names for one KEGG database.
type Catalog map[string]string

var pathwayNumber = regexp.MustCompile(`\d+`)

// normalizePathway rewrites any pathway handle ("path:hsa04110",
// "path:map04110", "hsa04110") to its organism-independent map id.
func normalizePathway(handle string) string {
	if m := pathwayNumber.FindString(handle); m != "" {
		return "map" + m
	}

	return handle
}

// normalizeHandle maps a raw link/list handle into the id space the
// database's catalog is keyed by. Gene handles keep their organism prefix.
func normalizeHandle(db, handle string) string {
	switch db {
	case DBGene:
		return handle
	case DBPathway:
		return normalizePathway(handle)
	default:
		return splitHandle(handle)
	}
}

// Genes lists an organism's genes keyed by "org:id" handle. The name column
// carries "SYMBOL1, SYMBOL2; description"; the description part is kept.
func (c *Client) Genes(ctx context.Context, org string) (Catalog, error) {
	rows, err := c.List(ctx, org)
	if err != nil {
		return nil, err
	}

	catalog := make(Catalog, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := row[len(row)-1]
		if i := strings.LastIndex(name, ";"); i >= 0 {
			name = name[i+1:]
		}
		catalog[row[0]] = strings.TrimSpace(name)
	}

	return catalog, nil
}

// Pathways lists the reference pathways keyed by map id.
func (c *Client) Pathways(ctx context.Context) (Catalog, error) {
	return c.listCatalog(ctx, DBPathway)
}

// Diseases lists disease entries keyed by H number.
func (c *Client) Diseases(ctx context.Context) (Catalog, error) {
	return c.listCatalog(ctx, DBDisease)
}

// Drugs lists drug entries keyed by D number.
func (c *Client) Drugs(ctx context.Context) (Catalog, error) {
	return c.listCatalog(ctx, DBDrug)
}

// Compounds lists compound entries keyed by C number.
func (c *Client) Compounds(ctx context.Context) (Catalog, error) {
	return c.listCatalog(ctx, DBCompound)
}

func (c *Client) listCatalog(ctx context.Context, db string) (Catalog, error) {
	rows, err := c.List(ctx, db)
	if err != nil {
		return nil, err
	}

	catalog := make(Catalog, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		catalog[normalizeHandle(db, row[0])] = row[1]
	}

	return catalog, nil
}

// Organism resolves an organism code like "hsa" to its T number and name.
func (c *Client) Organism(ctx context.Context, code string) (id, name string, err error) {
	rows, err := c.List(ctx, "organism")
	if err != nil {
		return "", "", err
	}

	for _, row := range rows {
		if len(row) >= 3 && row[1] == code {
			return row[0], row[2], nil
		}
	}

	return "", "", fmt.Errorf("unknown organism code %q", code)
}

// catalog fetches the name catalog for one database; gene catalogs need the
// organism code.
func (c *Client) catalog(ctx context.Context, db, org string) (Catalog, error) {
	switch db {
	case DBGene:
		if org == "" {
			return nil, fmt.Errorf("gene catalog needs an organism code")
		}
		return c.Genes(ctx, org)
	case DBPathway:
		return c.Pathways(ctx)
	case DBDisease:
		return c.Diseases(ctx)
	case DBDrug:
		return c.Drugs(ctx)
	case DBCompound:
		return c.Compounds(ctx)
	default:
		return nil, fmt.Errorf("unsupported kegg database: %s", db)
	}
}

// linkColumn is the REST path segment addressing a database in link and
// conv operations; genes are addressed by organism code.
func linkColumn(db, org string) string {
	if db == DBGene {
		return org
	}

	return db
}
