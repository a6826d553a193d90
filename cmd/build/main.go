package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bionetlab/interactome/internal/config"
	"github.com/bionetlab/interactome/internal/core"
	"github.com/bionetlab/interactome/internal/driver"
	"github.com/bionetlab/interactome/internal/logger"
)

func main() {
	cfgPath := flag.String("config", "config/config.toml", "path to the TOML configuration")
	sources := flag.String("sources", "", "comma-separated source subset, e.g. intact,biogrid")
	organism := flag.String("organism", "", "NCBI taxonomy id override")
	out := flag.String("out", "", "CSV export directory override")
	loadGraph := flag.Bool("load-graph", false, "publish the finished build into Memgraph")
	sample := flag.Int("sample", 0, "truncate every download to N records, 0 keeps everything")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *sources != "" {
		cfg.Pipeline.Sources = splitList(*sources)
	}
	if *organism != "" {
		cfg.Pipeline.Organism = *organism
		cfg.UniProt.Organism = *organism
	}
	if *out != "" {
		cfg.Export.Dir = *out
	}
	if *sample > 0 {
		cfg.Pipeline.SampleLimit = *sample
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	p := core.NewPipeline(cfg, lg)

	res, err := p.Run(ctx)
	if err != nil {
		lg.Fatal("build failed", "error", err)
	}
	lg.Info("build finished",
		"pairs", res.Pairs,
		"merged_sources", res.MergedSources,
		"skipped_sources", res.Skipped,
		"communities", res.Communities,
		"duration", res.Duration)

	if cfg.Export.Dir != "" {
		files, err := p.Export()
		if err != nil {
			lg.Fatal("export failed", "error", err)
		}
		lg.Info("export finished", "files", files)
	}

	if *loadGraph {
		uri := cfg.Memgraph.URI
		if uri == "" {
			uri = "bolt://localhost:7687"
		}
		d, err := driver.NewMemgraphDriver(uri, cfg.Memgraph.User, cfg.Memgraph.Password, cfg.Memgraph.BatchSize, lg)
		if err != nil {
			lg.Fatal("failed to connect to Memgraph", "error", err)
		}
		defer d.Close(ctx)

		if err := p.Load(ctx, d); err != nil {
			lg.Fatal("graph load failed", "error", err)
		}
		lg.Info("graph load finished", "nodes", len(p.Nodes()), "edges", len(p.Edges()))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
