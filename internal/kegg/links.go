package kegg

import (
	"context"
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
)

const keggSource = "KEGG"

// LinkSet downloads the directed relation between two KEGG databases as raw
// records: (source_id, source_name, target_id, target_name) plus ncbi-geneid
// and uniprot xrefs for the gene side and a chebi xref for the drug side.
// Duplicate pairs are kept once, in first-seen order.
func (c *Client) LinkSet(ctx context.Context, sourceDB, targetDB, org string) (model.RawRecordSet, error) {
	if sourceDB == targetDB {
		return model.RawRecordSet{}, fmt.Errorf("link set needs two distinct databases, got %s twice", sourceDB)
	}

	srcCatalog, err := c.catalog(ctx, sourceDB, org)
	if err != nil {
		return model.RawRecordSet{}, err
	}
	tgtCatalog, err := c.catalog(ctx, targetDB, org)
	if err != nil {
		return model.RawRecordSet{}, err
	}

	fields := []string{"source_id", "source_name", "target_id", "target_name"}

	var toNCBI, toUniProt ConversionTable
	if sourceDB == DBGene || targetDB == DBGene {
		if toNCBI, err = c.GeneToNCBI(ctx, org); err != nil {
			return model.RawRecordSet{}, err
		}
		if toUniProt, err = c.GeneToUniProt(ctx, org); err != nil {
			return model.RawRecordSet{}, err
		}
		fields = append(fields, "ncbi_gene_id", "uniprot_ids")
	}

	var toChEBI ConversionTable
	if sourceDB == DBDrug || targetDB == DBDrug {
		if toChEBI, err = c.DrugToChEBI(ctx); err != nil {
			return model.RawRecordSet{}, err
		}
		fields = append(fields, "chebi_id")
	}

	pairs, err := c.Link(ctx, linkColumn(targetDB, org), linkColumn(sourceDB, org))
	if err != nil {
		return model.RawRecordSet{}, err
	}

	set := model.RawRecordSet{Source: keggSource, Fields: fields}
	seen := map[[2]string]struct{}{}

	for _, pair := range pairs {
		srcID := normalizeHandle(sourceDB, pair[0])
		tgtID := normalizeHandle(targetDB, pair[1])
		if _, dup := seen[[2]string{srcID, tgtID}]; dup {
			continue
		}
		seen[[2]string{srcID, tgtID}] = struct{}{}

		rec := model.Record{"source_id": srcID, "target_id": tgtID}
		if name := srcCatalog[srcID]; name != "" {
			rec["source_name"] = name
		}
		if name := tgtCatalog[tgtID]; name != "" {
			rec["target_name"] = name
		}

		if geneID := pickSide(sourceDB, targetDB, DBGene, srcID, tgtID); geneID != "" {
			if ncbi := toNCBI.First(geneID); ncbi != "" {
				rec["ncbi_gene_id"] = ncbi
			}
			if accessions := toUniProt.Get(geneID); len(accessions) > 0 {
				rec["uniprot_ids"] = accessions
			}
		}
		if drugID := pickSide(sourceDB, targetDB, DBDrug, srcID, tgtID); drugID != "" {
			if chebi := toChEBI.First(drugID); chebi != "" {
				rec["chebi_id"] = chebi
			}
		}

		set.Records = append(set.Records, rec)
	}

	c.log.Info("KEGG link set complete",
		"source", sourceDB, "target", targetDB, "records", len(set.Records))
	return set, nil
}

// pickSide returns the id of whichever endpoint belongs to db, "" when
// neither does. Link sets never relate a database to itself.
func pickSide(sourceDB, targetDB, db, srcID, tgtID string) string {
	switch db {
	case sourceDB:
		return srcID
	case targetDB:
		return tgtID
	default:
		return ""
	}
}

// DrugInteractions downloads drug-drug interaction rows. With join set the
// ids are queried together and only their mutual interactions return;
// otherwise each drug's full interaction list is fetched.
func (c *Client) DrugInteractions(ctx context.Context, drugs []string, join bool) (model.RawRecordSet, error) {
	if len(drugs) == 0 {
		return model.RawRecordSet{}, fmt.Errorf("drug interaction query needs at least one drug id")
	}

	queries := drugs
	if join {
		queries = []string{strings.Join(drugs, "+")}
	}

	var rows [][]string
	for _, q := range queries {
		batch, err := c.rows(ctx, "ddi", q)
		if err != nil {
			return model.RawRecordSet{}, err
		}
		rows = append(rows, batch...)
	}

	names := newEntryNames(c)
	set := model.RawRecordSet{
		Source: keggSource,
		Fields: []string{
			"source_id", "source_name", "source_type",
			"target_id", "target_name", "target_type",
			"contraindication", "precaution",
		},
	}
	seen := map[[2]string]struct{}{}

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		srcID, srcType, ok := ddiEntry(row[0])
		if !ok {
			c.log.Warn("skipping interaction with unknown entry type", "entry", row[0])
			continue
		}
		tgtID, tgtType, ok := ddiEntry(row[1])
		if !ok {
			c.log.Warn("skipping interaction with unknown entry type", "entry", row[1])
			continue
		}
		if _, dup := seen[[2]string{srcID, tgtID}]; dup {
			continue
		}
		seen[[2]string{srcID, tgtID}] = struct{}{}

		labels := ""
		if len(row) > 2 {
			labels = row[2]
		}

		rec := model.Record{
			"source_id":   srcID,
			"source_type": srcType,
			"target_id":   tgtID,
			"target_type": tgtType,
		}
		if name, err := names.lookup(ctx, srcType, srcID); err != nil {
			return model.RawRecordSet{}, err
		} else if name != "" {
			rec["source_name"] = name
		}
		if name, err := names.lookup(ctx, tgtType, tgtID); err != nil {
			return model.RawRecordSet{}, err
		} else if name != "" {
			rec["target_name"] = name
		}
		if hasLabel(labels, "CI") {
			rec["contraindication"] = true
		}
		if hasLabel(labels, "P") {
			rec["precaution"] = true
		}

		set.Records = append(set.Records, rec)
	}

	return set, nil
}

// ddiEntry normalizes one ddi endpoint: "dr:D00001" and bare "D..." ids are
// drugs, "cpd:C00001" and bare "C..." ids are compounds.
func ddiEntry(handle string) (id, entryType string, ok bool) {
	prefix := ""
	if i := strings.Index(handle, ":"); i >= 0 {
		prefix = handle[:i]
	} else if handle != "" {
		prefix = handle[:1]
	}

	switch prefix {
	case "dr", "D":
		return splitHandle(handle), DBDrug, true
	case "cpd", "C":
		return splitHandle(handle), DBCompound, true
	default:
		return "", "", false
	}
}

func hasLabel(labels, label string) bool {
	for _, l := range strings.Split(labels, ",") {
		if strings.TrimSpace(l) == label {
			return true
		}
	}

	return false
}

// entryNames lazily loads the drug and compound catalogs; the compound list
// is only downloaded when an interaction actually names a compound.
type entryNames struct {
	client   *Client
	catalogs map[string]Catalog
}

func newEntryNames(c *Client) *entryNames {
	return &entryNames{client: c, catalogs: map[string]Catalog{}}
}

func (n *entryNames) lookup(ctx context.Context, db, id string) (string, error) {
	catalog, ok := n.catalogs[db]
	if !ok {
		var err error
		if catalog, err = n.client.catalog(ctx, db, ""); err != nil {
			return "", err
		}
		n.catalogs[db] = catalog
	}

	return catalog[id], nil
}
