package kegg

import (
	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/idmap"
)

// EdgeOptions shape how a link set becomes graph relationships.
type EdgeOptions struct {
	// Label is the relationship type, e.g. "gene_is_in_pathway".
	Label string
	// SourcePrefix and TargetPrefix are CURIE prefixes for the endpoint
	// ids. Empty leaves the id bare.
	SourcePrefix string
	TargetPrefix string
	// SourceXref substitutes a cross-reference field for the source
	// endpoint, so edges can anchor on identifiers another catalog already
	// contributed (e.g. ncbi_gene_id onto ncbigene gene nodes). Records
	// without the xref are skipped; the KEGG handle stays behind as a
	// property.
	SourceXref string
}

// PrefixFor returns the registry CURIE prefix for a KEGG database's ids.
func PrefixFor(db string) string {
	switch db {
	case DBGene:
		return "kegg.genes"
	case DBPathway:
		return "kegg.pathway"
	case DBDisease:
		return "kegg.disease"
	case DBDrug:
		return "kegg.drug"
	case DBCompound:
		return "kegg.compound"
	default:
		return ""
	}
}

// Edges turns a link set into directed relationships. Every field besides
// the endpoint ids rides along as a property; records missing an endpoint
// are skipped.
func Edges(set model.RawRecordSet, opts EdgeOptions) []model.Edge {
	srcField := "source_id"
	if opts.SourceXref != "" {
		srcField = opts.SourceXref
	}

	var edges []model.Edge

	for _, rec := range set.Records {
		srcID, okA := rec.Text(srcField)
		tgtID, okB := rec.Text("target_id")
		if !okA || !okB {
			continue
		}

		props := make(map[string]interface{}, len(set.Fields))
		for _, f := range set.Fields {
			if f == srcField || f == "target_id" {
				continue
			}
			if _, present := rec.Text(f); present {
				props[f] = rec[f]
			}
		}

		edges = append(edges, model.Edge{
			SourceID: prefixed(opts.SourcePrefix, srcID),
			TargetID: prefixed(opts.TargetPrefix, tgtID),
			Label:    opts.Label,
			Props:    props,
		})
	}

	return edges
}

func prefixed(prefix, id string) string {
	if prefix == "" {
		return id
	}

	return idmap.Prefix(prefix, id)
}
