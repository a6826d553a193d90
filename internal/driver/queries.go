package driver

// Cypher cannot parameterize labels or relationship types, so the batch
// queries are templates instantiated per label. Everything else rides in
// through $rows.
const (
	// upsertNodesTmpl merges one batch of same-label nodes on their CURIE
	// id and overlays the annotation properties.
	upsertNodesTmpl = `
		UNWIND $rows AS row
		MERGE (n:%s {id: row.id})
		SET n += row.props
	`

	// upsertEdgesTmpl merges one batch of same-type relationships. The
	// endpoints may carry different labels (gene to protein, protein to
	// organism), so they are matched on id alone; rows whose endpoints
	// were never loaded match nothing and drop out, which is what we want
	// for sources that reference entries the annotation catalog never
	// delivered.
	upsertEdgesTmpl = `
		UNWIND $rows AS row
		MATCH (a {id: row.source_id})
		MATCH (b {id: row.target_id})
		MERGE (a)-[e:%s]->(b)
		SET e += row.props
	`
)
