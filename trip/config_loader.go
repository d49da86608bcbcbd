package trip

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the tuned engine configuration.
func DefaultConfig() *Config {
	clustering := make(map[Category]ClusterParams, len(Categories))
	weights := make(Weights, len(Categories))
	for _, cat := range Categories {
		clustering[cat] = DefaultClusterParams(cat)
		weights[cat] = 3
	}
	return &Config{
		ScoringRadiusMeters: DefaultScoringRadius,
		Weights:             weights,
		Clustering:          clustering,
		Network: NetworkConfig{
			OverpassURL:      DefaultOverpassURL,
			FetchRadiusFloor: DefaultFetchRadiusFloor,
			TimeoutSeconds:   int(DefaultRouteTimeout.Seconds()),
		},
		Cache: CacheConfig{
			TTLMinutes:     int(DefaultCacheTTL.Minutes()),
			QuantizeMeters: DefaultQuantizeMeters,
		},
	}
}

// LoadConfig loads the engine configuration from a YAML file and
// validates it. Unset fields fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.ScoringRadiusMeters <= 0 {
		return fmt.Errorf("scoringRadiusMeters must be positive, got %.1f", config.ScoringRadiusMeters)
	}
	for cat, w := range config.Weights {
		if w < 0 {
			return fmt.Errorf("weights[%s] must be non-negative, got %.1f", cat, w)
		}
	}
	for cat, p := range config.Clustering {
		if p.EpsMeters <= 0 {
			return fmt.Errorf("clustering[%s].epsMeters must be positive, got %.1f", cat, p.EpsMeters)
		}
		if p.MinSamples < 1 {
			return fmt.Errorf("clustering[%s].minSamples must be at least 1, got %d", cat, p.MinSamples)
		}
	}
	if config.Network.OverpassURL == "" {
		return fmt.Errorf("network.overpassUrl is required")
	}
	if config.Network.SafetyMargin != nil && *config.Network.SafetyMargin < 0 {
		return fmt.Errorf("network.safetyMargin must be non-negative, got %.1f", *config.Network.SafetyMargin)
	}
	return nil
}
