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

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Bootstrapper creates tables for every registered model and applies the
// configured foreign key constraints. It is deliberately not a migration
// system: tables are created if missing, never diffed or altered.
type Bootstrapper struct {
	db     *bun.DB
	config *BootstrapConfig
	logger Logger
}

// NewBootstrapper constructs a Bootstrapper for the given database.
func NewBootstrapper(db *bun.DB, config *BootstrapConfig, logger Logger) *Bootstrapper {
	if config == nil {
		config = &BootstrapConfig{}
	}
	return &Bootstrapper{db: db, config: config, logger: logger}
}

// Run creates missing tables in model priority order and then applies
// foreign keys when enabled.
func (b *Bootstrapper) Run(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if b.config.CreateTablesOnStartup {
		if err := b.CreateTables(ctx); err != nil {
			return err
		}
	}

	if b.config.EnableForeignKey {
		fkm := NewForeignKeyManager(b.logger, b.config.ForeignKeyFile)
		if err := fkm.AddAllForeignKeys(ctx, b.db); err != nil {
			return fmt.Errorf("failed to apply foreign key constraints: %w", err)
		}
	}

	if b.logger != nil {
		b.logger.Info("Database bootstrap completed!")
	}
	return nil
}

// CreateTables issues CREATE TABLE IF NOT EXISTS for every registered model.
func (b *Bootstrapper) CreateTables(ctx context.Context) error {
	for _, model := range GetRegisteredModels() {
		instance := model.Instance()
		_, err := b.db.NewCreateTable().
			Model(instance).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", instance, err)
		}
		if b.logger != nil {
			b.logger.Debug("Ensured table exists", "model", fmt.Sprintf("%T", instance))
		}
	}
	return nil
}

// ResetTables drops and recreates every registered table; intended for tests
// and disposable environments only.
func (b *Bootstrapper) ResetTables(ctx context.Context) error {
	models := GetRegisteredModels()
	// Drop in reverse priority so join tables go first.
	for i := len(models) - 1; i >= 0; i-- {
		instance := models[i].Instance()
		if _, err := b.db.NewDropTable().Model(instance).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", instance, err)
		}
	}
	return b.CreateTables(ctx)
}
