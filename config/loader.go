package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// config.yml. A .env file, when present, is read first so environment
// overrides work in development the same way they do in deployment.
func LoadAppConfig() error {
	_ = godotenv.Load()

	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	return LoadFrom(data)
}

// LoadFrom parses, validates, and installs a configuration document.
func LoadFrom(data []byte) error {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}

	// The router key is a secret; the environment wins over the file.
	if key := os.Getenv("HERE_API_KEY"); key != "" {
		cfg.Walking.APIKey = key
	}

	applyDefaults(&cfg)
	Config = cfg
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Walking.TimeoutMS == 0 {
		cfg.Walking.TimeoutMS = 5000
	}
	if cfg.Walking.CacheSize == 0 {
		cfg.Walking.CacheSize = 2000
	}
	if cfg.Routing.OriginRadiusMiles == 0 {
		cfg.Routing.OriginRadiusMiles = 0.5
	}
	if cfg.Routing.DestRadiusMiles == 0 {
		cfg.Routing.DestRadiusMiles = 1.0
	}
	if cfg.Routing.Limit == 0 {
		cfg.Routing.Limit = 3
	}
	if cfg.Planner.WalkableMiles == 0 {
		cfg.Planner.WalkableMiles = 0.5
	}
	if cfg.Planner.MinutesPerStop == 0 {
		cfg.Planner.MinutesPerStop = 60
	}
	if cfg.Realtime.TimeoutMS == 0 {
		cfg.Realtime.TimeoutMS = 8000
	}
}
