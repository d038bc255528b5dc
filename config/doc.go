// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Secrets such as the walking-router API key can also arrive through the
// environment, with an optional .env file picked up at load time.
package config
