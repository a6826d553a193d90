package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bionetlab/interactome/internal/core/model"
)

// GraphDriver is the write surface for publishing a built network into a
// property-graph store.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	LoadNodes(ctx context.Context, nodes []model.Node) error
	LoadEdges(ctx context.Context, edges []model.Edge) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
