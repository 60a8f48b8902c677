package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-productform/pkg/navigation"
)

// Environment variables that override the config file.
const (
	EnvGraphQLEndpoint = "PRODUCTFORM_GRAPHQL_ENDPOINT"
	EnvGraphQLSecret   = "PRODUCTFORM_GRAPHQL_SECRET"
	EnvGraphQLTimeout  = "PRODUCTFORM_GRAPHQL_TIMEOUT"
	EnvDatabase        = "PRODUCTFORM_DATABASE"
	EnvSchema          = "PRODUCTFORM_SCHEMA"
)

// DefaultSecretHeader is the header carrying the GraphQL admin secret.
const DefaultSecretHeader = "x-hasura-admin-secret"

// Config holds the CLI settings.
type Config struct {
	// Schema is a path to a form document. Empty selects the embedded
	// product schema.
	Schema   string   `yaml:"schema"`
	GraphQL  GraphQL  `yaml:"graphql"`
	Database string   `yaml:"database"`
	Routes   Routes   `yaml:"routes"`
	Pictures Pictures `yaml:"pictures"`
}

// GraphQL configures the remote persistence endpoint.
type GraphQL struct {
	Endpoint     string            `yaml:"endpoint"`
	Secret       string            `yaml:"secret"`
	SecretHeader string            `yaml:"secretHeader"`
	Timeout      time.Duration     `yaml:"timeout"`
	Headers      map[string]string `yaml:"headers"`
	Columns      map[string]string `yaml:"columns"`
}

// Routes holds the navigation templates.
type Routes struct {
	Listing string `yaml:"listing"`
	Detail  string `yaml:"detail"`
}

// Pictures configures how the picture field maps to child records.
type Pictures struct {
	Field   string `yaml:"field"`
	WebShop *bool  `yaml:"webShop"`
}

// Default returns the built-in settings.
func Default() Config {
	webShop := true
	return Config{
		GraphQL: GraphQL{
			SecretHeader: DefaultSecretHeader,
			Timeout:      30 * time.Second,
		},
		Routes: Routes{
			Listing: navigation.DefaultListing,
			Detail:  navigation.DefaultDetail,
		},
		Pictures: Pictures{
			Field:   "photos",
			WebShop: &webShop,
		},
	}
}

// Load reads path (when not empty) over the defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v, ok := lookup(EnvGraphQLEndpoint); ok {
		cfg.GraphQL.Endpoint = v
	}
	if v, ok := lookup(EnvGraphQLSecret); ok {
		cfg.GraphQL.Secret = v
	}
	if v, ok := lookup(EnvGraphQLTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			if secs, convErr := strconv.Atoi(v); convErr == nil {
				d = time.Duration(secs) * time.Second
			} else {
				return Config{}, fmt.Errorf("config: %s: %w", EnvGraphQLTimeout, err)
			}
		}
		cfg.GraphQL.Timeout = d
	}
	if v, ok := lookup(EnvDatabase); ok {
		cfg.Database = v
	}
	if v, ok := lookup(EnvSchema); ok {
		cfg.Schema = v
	}

	if cfg.GraphQL.SecretHeader == "" {
		cfg.GraphQL.SecretHeader = DefaultSecretHeader
	}
	if cfg.Pictures.Field == "" {
		cfg.Pictures.Field = "photos"
	}
	return cfg, nil
}

// WebShop reports whether pictures are published to the web shop.
func (c Config) WebShop() bool {
	if c.Pictures.WebShop == nil {
		return true
	}
	return *c.Pictures.WebShop
}

// UseGraphQL reports whether a GraphQL endpoint is configured.
func (c Config) UseGraphQL() bool {
	return strings.TrimSpace(c.GraphQL.Endpoint) != ""
}
