// Package config holds the weatherbot configuration: the reusable core
// sections plus storage, city list and weather settings.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/weatherbot/core/config"
	coredatabase "github.com/m3rciful/weatherbot/core/database"
)

const (
	// StorageFile keeps profiles in a JSON file.
	StorageFile = "file"
	// StoragePostgres keeps profiles in PostgreSQL.
	StoragePostgres = "postgres"

	defaultProfilesPath   = "data/profiles.json"
	defaultWeatherTimeout = 10
)

// StorageConfig selects the profile store.
type StorageConfig struct {
	Driver       string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	ProfilesPath string `yaml:"profiles_path" envconfig:"PROFILES_PATH"`
	// ImportPath names a legacy profiles file merged into the store on startup.
	ImportPath string `yaml:"import_path" envconfig:"PROFILES_IMPORT_PATH"`
}

// CitiesConfig points at the city list; empty uses the built-in list.
type CitiesConfig struct {
	Path string `yaml:"path" envconfig:"CITIES_PATH"`
}

// WeatherConfig configures the weatherapi.com client.
type WeatherConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"WEATHER_API_KEY"`
	BaseURL        string `yaml:"base_url" envconfig:"WEATHER_BASE_URL"`
	Country        string `yaml:"country" envconfig:"WEATHER_COUNTRY"`
	Lang           string `yaml:"lang" envconfig:"WEATHER_LANG"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"WEATHER_TIMEOUT_SECONDS"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Cities   CitiesConfig        `yaml:"cities"`
	Weather  WeatherConfig       `yaml:"weather"`
}

// CoreConfig exposes the embedded core section to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// DatabaseConfig returns the database section when the postgres store is selected, nil otherwise.
func (c *Config) DatabaseConfig() *coredatabase.Config {
	if c == nil || c.Storage.Driver != StoragePostgres {
		return nil
	}
	db := c.Database
	return &db
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch cfg.Storage.Driver {
	case "", StorageFile:
		cfg.Storage.Driver = StorageFile
		if strings.TrimSpace(cfg.Storage.ProfilesPath) == "" {
			cfg.Storage.ProfilesPath = defaultProfilesPath
		}
	case StoragePostgres:
		if err := cfg.Database.Validate(); err != nil {
			return fmt.Errorf("storage.driver is 'postgres': %w", err)
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: file, postgres", cfg.Storage.Driver)
	}

	if strings.TrimSpace(cfg.Weather.APIKey) == "" {
		return fmt.Errorf("weather.api_key is required")
	}
	if cfg.Weather.TimeoutSeconds < 0 {
		return fmt.Errorf("weather.timeout_seconds must be >= 0")
	}
	if cfg.Weather.TimeoutSeconds == 0 {
		cfg.Weather.TimeoutSeconds = defaultWeatherTimeout
	}
	return nil
}
