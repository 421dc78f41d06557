/*
 * Copyright 2025 easycancha.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"fmt"
	"os"
	"strconv"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/easycancha/api/auth"
	"github.com/easycancha/api/database"
)

// Config aggregates the storage and credential configuration. There is no
// global settings object: the loaded Config is handed to the constructors
// that need it.
type Config struct {
	Database database.Config `json:"database" yaml:"database"`
	Auth     auth.Config     `json:"auth" yaml:"auth"`
}

// DefaultConfig returns a Config with connection-pool and credential
// defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		Database: database.Config{
			ConnectionConfig: *database.DefaultConnectionConfig(),
		},
		Auth: *auth.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file and applies environment overrides. An
// empty path yields defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.overrideFromEnv()
	return cfg, nil
}

// overrideFromEnv applies the credential environment variables. Database
// variables (DB_HOST and friends) are handled by the database factory at
// connect time.
func (c *Config) overrideFromEnv() {
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if algorithm := os.Getenv("JWT_ALGORITHM"); algorithm != "" {
		c.Auth.JWTAlgorithm = algorithm
	}
	if minutes := os.Getenv("JWT_ACCESS_TOKEN_EXPIRE_MINUTES"); minutes != "" {
		if val, err := strconv.Atoi(minutes); err == nil {
			c.Auth.AccessTokenExpireMinutes = val
		}
	}
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		c.Auth.AdminEmail = email
	}
}

// Init connects the global database from cfg and bootstraps the schema when
// configured.
func Init(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return database.InitDB(&cfg.Database)
}

// Close releases the global database connection.
func Close() error {
	return database.CloseDB()
}
