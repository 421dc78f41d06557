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
	"github.com/easycancha/api/types"
)

// User is a registered account. The hashed password never serializes to JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64            `bun:"id,pk,autoincrement" json:"id"`
	Username       string           `bun:"username,notnull,unique" json:"username"`
	Email          string           `bun:"email,notnull,unique" json:"email"`
	HashedPassword string           `bun:"hashed_password,notnull" json:"-"`
	Status         UserStatus       `bun:"status,notnull,default:0" json:"status"`
	Preferences    types.JsonObject `bun:"preferences,nullzero" json:"preferences,omitempty"`
	CreatedAt      time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Roles []*Role `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
}

// UserCreate is the registration input carrying the plaintext password.
type UserCreate struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	RoleIDs  []int64 `json:"role_ids,omitempty"`
}

// UserCreateHashed is the create input after password hashing; this is what
// reaches the repository.
type UserCreateHashed struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"hashed_password"`
	RoleIDs        []int64 `json:"role_ids,omitempty"`
}

// UserUpdate is a partial profile patch: nil fields are left untouched.
// RoleIDs replaces the role set wholesale; empty or absent clears it.
type UserUpdate struct {
	Username    *string           `json:"username,omitempty"`
	Email       *string           `json:"email,omitempty"`
	Password    *string           `json:"password,omitempty"`
	Preferences *types.JsonObject `json:"preferences,omitempty"`
	RoleIDs     []int64           `json:"role_ids,omitempty"`
}

// UserDescriptor binds User to its table for the generic repository.
var UserDescriptor = repository.Descriptor{
	Name:  "user",
	Table: "users",
	PK:    "id",
}

// UserRolesRelation declares the users<->roles association through the
// user_roles join table; inputs address it as "role_ids".
var UserRolesRelation = repository.Relation{
	InputField:   "role_ids",
	EntityField:  "Roles",
	JoinTable:    "user_roles",
	SourceColumn: "user_id",
	TargetColumn: "role_id",
	TargetTable:  "roles",
	TargetPK:     "id",
}

// NewUserRepository returns the user repository with the roles relation wired.
func NewUserRepository() repository.Repository[User] {
	return repository.New[User](UserDescriptor, UserRolesRelation)
}
