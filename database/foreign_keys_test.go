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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyGenerateSQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "user_roles",
		Column:          "user_id",
		ReferenceTable:  "users",
		ReferenceColumn: "id",
		OnDelete:        "CASCADE",
	}
	assert.Equal(t, "fk_user_roles_user_id", fk.GenerateConstraintName())
	assert.Equal(t,
		"ALTER TABLE user_roles ADD CONSTRAINT fk_user_roles_user_id FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		fk.GenerateSQL())
}

func TestForeignKeyExplicitConstraintName(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:          "user_roles",
		Column:         "role_id",
		ConstraintName: "user_roles_role_id_fkey",
	}
	assert.Equal(t, "user_roles_role_id_fkey", fk.GenerateConstraintName())
}

func TestForeignKeyManagerLoadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign_keys.yaml")
	content := `foreign_keys:
  - table: user_roles
    column: user_id
    reference_table: users
    reference_column: id
    on_delete: CASCADE
  - table: user_roles
    column: role_id
    reference_table: roles
    reference_column: id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	manager := NewForeignKeyManager(nil, path)
	constraints := manager.ListAllConstraints()
	require.Len(t, constraints, 2)
	assert.Equal(t, "users", constraints[0].ReferenceTable)
	assert.Equal(t, "roles", constraints[1].ReferenceTable)
}

func TestForeignKeyManagerMissingFile(t *testing.T) {
	manager := NewForeignKeyManager(nil, "does/not/exist.yaml")
	assert.Empty(t, manager.ListAllConstraints())

	manager = NewForeignKeyManager(nil, "")
	assert.Empty(t, manager.ListAllConstraints())
}
