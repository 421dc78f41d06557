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

package models

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/easycancha/api/repository"
)

// Role is a named capability that can be attached to users.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull,unique" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// UserRole is the users<->roles join row.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	UserID int64 `bun:"user_id,pk" json:"user_id"`
	User   *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	RoleID int64 `bun:"role_id,pk" json:"role_id"`
	Role   *Role `bun:"rel:belongs-to,join:role_id=id" json:"-"`
}

// RoleCreate is the input for creating a role.
type RoleCreate struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleUpdate is a partial role patch.
type RoleUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RoleDescriptor binds Role to its table for the generic repository.
var RoleDescriptor = repository.Descriptor{
	Name:  "role",
	Table: "roles",
	PK:    "id",
}

// NewRoleRepository returns the role repository.
func NewRoleRepository() repository.Repository[Role] {
	return repository.New[Role](RoleDescriptor)
}
