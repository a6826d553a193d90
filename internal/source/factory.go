package source

import (
	"fmt"
	"strings"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/idmap"
	"github.com/bionetlab/interactome/internal/logger"
)

// Deps carries the shared collaborators source clients are built around.
type Deps struct {
	Fetcher  *Fetcher
	Resolver idmap.Resolver
	Log      *logger.Logger
}

// NewClient builds the named source client from configuration.
func NewClient(name string, cfg *config.Config, deps Deps) (Client, error) {
	source := strings.ToLower(name)

	switch source {
	case "intact":
		opts := IntActOptions{
			URL:         cfg.Sources.IntAct.URL,
			Organism:    cfg.Pipeline.Organism,
			SampleLimit: cfg.Pipeline.SampleLimit,
		}
		return NewIntAct(opts, deps.Fetcher, deps.Log), nil

	case "biogrid":
		if deps.Resolver == nil {
			return nil, fmt.Errorf("source %s requires an id resolver", name)
		}
		opts := BioGRIDOptions{
			URL:         cfg.Sources.BioGRID.URL,
			Organism:    cfg.Pipeline.Organism,
			SampleLimit: cfg.Pipeline.SampleLimit,
		}
		return NewBioGRID(opts, deps.Fetcher, deps.Resolver, deps.Log), nil

	case "string":
		if deps.Resolver == nil {
			return nil, fmt.Errorf("source %s requires an id resolver", name)
		}
		opts := StringDBOptions{
			URL:         cfg.Sources.String.URL,
			PhysicalURL: cfg.Sources.String.PhysicalURL,
			Organism:    cfg.Pipeline.Organism,
			SampleLimit: cfg.Pipeline.SampleLimit,
		}
		return NewStringDB(opts, deps.Fetcher, deps.Resolver, deps.Log), nil

	default:
		return nil, fmt.Errorf("unsupported source: %s", name)
	}
}
