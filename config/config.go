package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/metrics"
	"github.com/pollenops/pollenguard/core/strategy"
	"github.com/pollenops/pollenguard/infra/airquality"
	"github.com/pollenops/pollenguard/infra/explain"
	"github.com/pollenops/pollenguard/infra/geocode"
	"github.com/pollenops/pollenguard/infra/publish"
)

type Config struct {
	Server     ServerConfig      `json:"server"`
	Decision   strategy.Config   `json:"decision"`
	Fleet      fleet.Config      `json:"fleet"`
	Location   LocationConfig    `json:"location"`
	Simulation SimulationConfig  `json:"simulation"`
	Geocode    geocode.Config    `json:"geocode"`
	AirQuality airquality.Config `json:"airquality"`
	Explain    explain.Config    `json:"explain"`
	Metrics    metrics.Config    `json:"metrics"`
	Publisher  publish.Config    `json:"publisher"`
	History    HistoryConfig     `json:"history"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PG_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Decision.SetDefaults()
	cfg.Fleet.SetDefaults()
	cfg.Location.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Geocode.SetDefaults()
	cfg.AirQuality.SetDefaults()
	cfg.Explain.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Publisher.SetDefaults()
	cfg.History.SetDefaults()
	if err := cfg.Decision.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fleet.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Location.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Publisher.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section at its defaults, for
// one-shot CLI runs without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.SetDefaults()
	cfg.Decision.SetDefaults()
	cfg.Fleet.SetDefaults()
	cfg.Location.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Geocode.SetDefaults()
	cfg.AirQuality.SetDefaults()
	cfg.Explain.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Publisher.SetDefaults()
	cfg.History.SetDefaults()
	return cfg
}
