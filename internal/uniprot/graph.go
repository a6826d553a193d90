package uniprot

import (
	"strconv"
	"strings"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/idmap"
)

// Graph vertex labels and relationship types contributed by UniProt.
const (
	LabelProtein  = "protein"
	LabelGene     = "gene"
	LabelOrganism = "organism"

	EdgeEncodes   = "Encodes"
	EdgeBelongsTo = "Belongs_To"
)

// Nodes builds the protein, gene and organism vertices. Gene nodes require
// both a gene symbol and a GeneID xref; organism and gene nodes shared by
// several proteins are emitted once.
func (c *Catalog) Nodes() []model.Node {
	var nodes []model.Node
	seen := map[string]struct{}{}

	add := func(n model.Node) {
		if _, ok := seen[n.ID]; ok {
			return
		}
		seen[n.ID] = struct{}{}
		nodes = append(nodes, n)
	}

	for _, e := range c.Entries {
		add(model.Node{
			ID:    idmap.Prefix("uniprot", e.Accession),
			Label: LabelProtein,
			Props: proteinProps(e),
		})

		if geneID := e.geneNodeID(); geneID != "" {
			add(model.Node{ID: geneID, Label: LabelGene, Props: geneProps(e)})
		}

		if e.OrganismID != "" {
			props := map[string]interface{}{}
			if e.OrganismName != "" {
				props["organism"] = e.OrganismName
			}
			add(model.Node{
				ID:    idmap.Prefix("ncbitaxon", e.OrganismID),
				Label: LabelOrganism,
				Props: props,
			})
		}
	}

	return nodes
}

// Edges links every gene to the protein it encodes and every protein to its
// organism.
func (c *Catalog) Edges() []model.Edge {
	var edges []model.Edge

	for _, e := range c.Entries {
		proteinID := idmap.Prefix("uniprot", e.Accession)

		if geneID := e.geneNodeID(); geneID != "" {
			edges = append(edges, model.Edge{
				SourceID: geneID,
				TargetID: proteinID,
				Label:    EdgeEncodes,
			})
		}
		if e.OrganismID != "" {
			edges = append(edges, model.Edge{
				SourceID: proteinID,
				TargetID: idmap.Prefix("ncbitaxon", e.OrganismID),
				Label:    EdgeBelongsTo,
			})
		}
	}

	return edges
}

func (e Entry) geneNodeID() string {
	if len(e.GeneNames) == 0 || e.GeneID == "" {
		return ""
	}

	return idmap.Prefix("ncbigene", e.GeneID)
}

func proteinProps(e Entry) map[string]interface{} {
	props := map[string]interface{}{}

	setList(props, "secondary_ids", e.SecondaryIDs)
	setInt(props, "length", e.Length)
	setInt(props, "mass", e.Mass)
	setList(props, "protein_names", e.ProteinNames)
	setList(props, "proteome", e.Proteomes)
	setList(props, "ec", e.ECNumbers)
	setList(props, "virus_hosts", e.VirusHosts)
	setInt(props, "organism_id", e.OrganismID)

	return props
}

func geneProps(e Entry) map[string]interface{} {
	props := map[string]interface{}{}

	setList(props, "genes", e.GeneNames)
	setList(props, "kegg", e.KeggIDs)
	setList(props, "ensembl", e.Transcripts)

	return props
}

// setList stores a multi-value property, collapsing single values to a
// scalar to match how the annotation fields are consumed downstream.
func setList(props map[string]interface{}, key string, values []string) {
	switch len(values) {
	case 0:
	case 1:
		props[key] = values[0]
	default:
		props[key] = values
	}
}

// setInt stores a numeric property, tolerating the thousands separators the
// mass column carries.
func setInt(props map[string]interface{}, key, value string) {
	if value == "" {
		return
	}
	n, err := strconv.Atoi(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return
	}
	props[key] = n
}
