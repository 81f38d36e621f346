// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads docseed settings from docseed.yaml, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kraklabs/docseed/pkg/embedding"
	"github.com/kraklabs/docseed/pkg/schema"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "docseed.yaml"

// DefaultTopic receives bootstrap events when Kafka is enabled.
const DefaultTopic = "docseed.bootstrap"

// Config is the docseed configuration.
type Config struct {
	Mongo     MongoConfig     `yaml:"mongo"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Events    EventsConfig    `yaml:"events"`
}

// MongoConfig holds the connection and database names.
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	SeedDatabase   string        `yaml:"seed_database"`
	MoviesDatabase string        `yaml:"movies_database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// EmbeddingConfig configures plot embedding generation.
type EmbeddingConfig struct {
	Provider string        `yaml:"provider"` // ollama, mock
	BaseURL  string        `yaml:"base_url"`
	Model    string        `yaml:"model"`
	Limit    int           `yaml:"limit"`
	Delay    time.Duration `yaml:"delay"`
}

// EventsConfig enables Kafka event publication when Brokers is non-empty.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DefaultConfig returns the settings used by the docker-compose demo stack.
func DefaultConfig() *Config {
	return &Config{
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			SeedDatabase:   schema.SeedDatabase,
			MoviesDatabase: schema.MoviesDatabase,
			ConnectTimeout: 10 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider: "ollama",
			BaseURL:  embedding.DefaultOllamaURL,
			Model:    embedding.DefaultModel,
			Limit:    100,
			Delay:    100 * time.Millisecond,
		},
		Events: EventsConfig{
			Topic: DefaultTopic,
		},
	}
}

// LoadConfig reads configPath (or ./docseed.yaml), then .env, then applies
// environment overrides. A missing default file is not an error; a missing
// explicit file is.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	path := configPath
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's config file
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && configPath == "":
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := getenv("MONGO_SEED_DB"); v != "" {
		c.Mongo.SeedDatabase = v
	}
	if v := getenv("MONGO_MOVIES_DB"); v != "" {
		c.Mongo.MoviesDatabase = v
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := getenv("OLLAMA_EMBED_MODEL"); v != "" {
		c.Embedding.Model = v
	}
	if v := getenv("EMBED_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMBED_LIMIT: %q is not a number", v)
		}
		c.Embedding.Limit = n
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = splitList(v)
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Topic = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	} else if !strings.HasPrefix(c.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Mongo.URI, "mongodb+srv://") {
		errs = append(errs, fmt.Errorf("mongo.uri %q must start with mongodb:// or mongodb+srv://", c.Mongo.URI))
	}
	if c.Mongo.SeedDatabase == "" {
		errs = append(errs, errors.New("mongo.seed_database is required"))
	}
	if c.Mongo.MoviesDatabase == "" {
		errs = append(errs, errors.New("mongo.movies_database is required"))
	}
	if c.Mongo.ConnectTimeout < 0 {
		errs = append(errs, errors.New("mongo.connect_timeout must not be negative"))
	}

	switch strings.ToLower(c.Embedding.Provider) {
	case "", "ollama":
		if u, err := url.Parse(c.Embedding.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("embedding.base_url %q is not a valid URL", c.Embedding.BaseURL))
		}
	case "mock":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider %q is not supported (ollama, mock)", c.Embedding.Provider))
	}
	if c.Embedding.Limit <= 0 {
		errs = append(errs, errors.New("embedding.limit must be positive"))
	}
	if c.Embedding.Delay < 0 {
		errs = append(errs, errors.New("embedding.delay must not be negative"))
	}

	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		errs = append(errs, errors.New("events.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// ProviderConfig returns the embedding provider settings.
func (c *Config) ProviderConfig() embedding.ProviderConfig {
	return embedding.ProviderConfig{
		Type:    c.Embedding.Provider,
		BaseURL: c.Embedding.BaseURL,
		Model:   c.Embedding.Model,
	}
}
