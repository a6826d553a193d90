package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core/model"
	"github.com/bionetlab/interactome/internal/source"
	"github.com/bionetlab/interactome/internal/uniprot"
)

type mockAnnotator struct {
	catalog *uniprot.Catalog
	err     error
}

func (m *mockAnnotator) Fetch(ctx context.Context) (*uniprot.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.catalog, nil
}

type mockClient struct {
	name string
	spec source.Spec
	raw  model.RawRecordSet
	err  error
}

func (m *mockClient) Name() string      { return m.name }
func (m *mockClient) Spec() source.Spec { return m.spec }

func (m *mockClient) Fetch(ctx context.Context) (model.RawRecordSet, error) {
	if m.err != nil {
		return model.RawRecordSet{}, m.err
	}
	return m.raw, nil
}

func factoryFor(clients ...*mockClient) ClientFactory {
	return func(name string, cfg *config.Config, deps source.Deps) (source.Client, error) {
		for _, c := range clients {
			if strings.EqualFold(c.name, name) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

type MockDriver struct {
	Calls       []string
	Queries     []string
	NodesLoaded []model.Node
	EdgesLoaded []model.Edge
	Err         error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Calls = append(m.Calls, "query")
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) LoadNodes(ctx context.Context, nodes []model.Node) error {
	m.Calls = append(m.Calls, "nodes")
	m.NodesLoaded = append(m.NodesLoaded, nodes...)
	return m.Err
}

func (m *MockDriver) LoadEdges(ctx context.Context, edges []model.Edge) error {
	m.Calls = append(m.Calls, "edges")
	m.EdgesLoaded = append(m.EdgesLoaded, edges...)
	return m.Err
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	m.Calls = append(m.Calls, "indices")
	return m.Err
}

func (m *MockDriver) Close(ctx context.Context) error { return nil }
