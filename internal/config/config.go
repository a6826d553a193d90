package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
	Mode string `toml:"mode"`
}

type LogConfig struct {
	Mode string `toml:"mode"`
}

type PipelineConfig struct {
	Organism    string   `toml:"organism"`
	Sources     []string `toml:"sources"`
	SampleLimit int      `toml:"sample_limit"`
	Retries     int      `toml:"retries"`
}

type IntActConfig struct {
	URL string `toml:"url"`
}

type BioGRIDConfig struct {
	URL string `toml:"url"`
}

type StringConfig struct {
	URL         string `toml:"url"`
	PhysicalURL string `toml:"physical_url"`
}

type SourcesConfig struct {
	IntAct  IntActConfig  `toml:"intact"`
	BioGRID BioGRIDConfig `toml:"biogrid"`
	String  StringConfig  `toml:"string"`
}

type UniProtConfig struct {
	BaseURL  string `toml:"base_url"`
	Organism string `toml:"organism"`
}

type KeggConfig struct {
	BaseURL  string `toml:"base_url"`
	Organism string `toml:"organism"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type MemgraphConfig struct {
	URI       string `toml:"uri"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	BatchSize int    `toml:"batch_size"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Sources  SourcesConfig  `toml:"sources"`
	UniProt  UniProtConfig  `toml:"uniprot"`
	Kegg     KeggConfig     `toml:"kegg"`
	Export   ExportConfig   `toml:"export"`
	Memgraph MemgraphConfig `toml:"memgraph"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}
