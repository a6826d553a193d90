package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/logger"
)

const defaultBatchSize = 1000

// MemgraphDriver loads built networks into Memgraph over the Bolt
// protocol. Writes are idempotent: nodes and edges merge on their CURIE
// identifiers, so a re-run refreshes properties instead of duplicating.
type MemgraphDriver struct {
	Driver    neo4j.DriverWithContext
	BatchSize int
	log       *logger.Logger
}

func NewMemgraphDriver(uri, username, password string, batchSize int, log *logger.Logger) (*MemgraphDriver, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Info("connected to Memgraph", "uri", uri)
	return &MemgraphDriver{Driver: driver, BatchSize: batchSize, log: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// LoadNodes upserts nodes grouped by label, one UNWIND batch at a time.
func (d *MemgraphDriver) LoadNodes(ctx context.Context, nodes []model.Node) error {
	byLabel := make(map[string][]map[string]interface{})
	var order []string

	for _, n := range nodes {
		label, err := safeLabel(n.Label)
		if err != nil {
			return err
		}
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], map[string]interface{}{
			"id":    n.ID,
			"props": copyProps(n.Props, ""),
		})
	}

	for _, label := range order {
		rows := byLabel[label]
		query := fmt.Sprintf(upsertNodesTmpl, label)
		if err := d.batched(ctx, query, rows); err != nil {
			return fmt.Errorf("failed to load %s nodes: %w", label, err)
		}
		d.log.Info("loaded nodes", "label", label, "count", len(rows))
	}
	return nil
}

// LoadEdges upserts relationships grouped by type, one UNWIND batch at a
// time. Nodes must be loaded first; edges against absent endpoints are
// dropped by the store.
func (d *MemgraphDriver) LoadEdges(ctx context.Context, edges []model.Edge) error {
	byLabel := make(map[string][]map[string]interface{})
	var order []string

	for _, e := range edges {
		label, err := safeLabel(e.Label)
		if err != nil {
			return err
		}
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], map[string]interface{}{
			"source_id": e.SourceID,
			"target_id": e.TargetID,
			"props":     copyProps(e.Props, e.ID),
		})
	}

	for _, label := range order {
		rows := byLabel[label]
		query := fmt.Sprintf(upsertEdgesTmpl, label)
		if err := d.batched(ctx, query, rows); err != nil {
			return fmt.Errorf("failed to load %s edges: %w", label, err)
		}
		d.log.Info("loaded edges", "label", label, "count", len(rows))
	}
	return nil
}

// BuildIndices creates the per-label id indices the batch loads merge on.
func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :protein(id);",
		"CREATE INDEX ON :gene(id);",
		"CREATE INDEX ON :organism(id);",
		"CREATE INDEX ON :pathway(id);",
		"CREATE INDEX ON :disease(id);",
		"CREATE INDEX ON :drug(id);",
		"CREATE INDEX ON :compound(id);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// The index may already exist.
			d.log.Warn("failed to create index", "query", q, "error", err)
		}
	}

	return nil
}

func (d *MemgraphDriver) batched(ctx context.Context, query string, rows []map[string]interface{}) error {
	for start := 0; start < len(rows); start += d.BatchSize {
		end := start + d.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		params := map[string]interface{}{"rows": rows[start:end]}
		if _, err := d.ExecuteQuery(ctx, query, params); err != nil {
			return err
		}
	}
	return nil
}

// copyProps clones a property map for a query row, folding an optional
// relationship accession in under "id". Rows always carry a map, never
// nil, because SET e += null is a Cypher error.
func copyProps(props map[string]interface{}, id string) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	if id != "" {
		out["id"] = id
	}
	return out
}

// safeLabel vets a label before it is spliced into a query template, since
// Cypher cannot take labels as parameters.
func safeLabel(label string) (string, error) {
	if label == "" {
		return "", fmt.Errorf("empty graph label")
	}
	for i, r := range label {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return "", fmt.Errorf("graph label %q must not start with a digit", label)
			}
		default:
			return "", fmt.Errorf("graph label %q contains unsupported character %q", label, r)
		}
	}
	return label, nil
}
