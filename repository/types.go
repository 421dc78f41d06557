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

package repository

import (
	"context"

	"github.com/easycancha/api/database"
	"github.com/easycancha/api/types"
)

// Descriptor identifies the table an entity type maps to.
type Descriptor struct {
	Name  string // entity name used in log lines
	Table string // table name
	PK    string // primary key column; "id" when empty
}

// Relation declares one many-to-many association of an entity.
//
// InputField is the field name create/update inputs use to carry related
// identifiers (the "_ids" convention, e.g. "role_ids"); EntityField is the Go
// field on the entity struct that Bun loads the related records into. The
// remaining fields describe the join table so the repository can write and
// clear join rows directly.
type Relation struct {
	InputField   string // input field listing related ids, e.g. "role_ids"
	EntityField  string // entity field holding loaded records, e.g. "Roles"
	JoinTable    string // join table name, e.g. "user_roles"
	SourceColumn string // join column referencing the entity, e.g. "user_id"
	TargetColumn string // join column referencing the target, e.g. "role_id"
	TargetTable  string // related table name, e.g. "roles"
	TargetPK     string // related primary key column; "id" when empty
}

// CrudRepository defines session-scoped CRUD operations for a generic entity
// type. Every operation returns either the requested entities or a
// *types.Fault; raw storage errors never cross this boundary.
type CrudRepository[T any] interface {
	// GetOne returns the first entity matching the filters, or nil when no
	// record matches. Declared many-to-many relations are loaded.
	GetOne(ctx context.Context, session *database.Session, filters ...*types.QueryFilter) (*T, error)

	// GetMany returns matching entities with skip/limit pagination. A
	// non-positive limit defaults to 1000.
	GetMany(ctx context.Context, session *database.Session, skip, limit int, filters ...*types.QueryFilter) ([]*T, error)

	// Count returns the number of entities matching the filters.
	Count(ctx context.Context, session *database.Session, filters ...*types.QueryFilter) (int, error)

	// Create inserts a new entity from a structured input, resolving any
	// declared many-to-many id lists through the session. Unresolvable ids
	// are dropped silently.
	Create(ctx context.Context, session *database.Session, input any) (*T, error)

	// Update applies the non-nil fields of patch to the stored record.
	// Declared many-to-many relations are replaced wholesale; an empty or
	// absent id list clears the relation. existing itself is never mutated;
	// callers read the new state from the returned entity.
	Update(ctx context.Context, session *database.Session, existing *T, patch any) (*T, error)

	// Delete clears every many-to-many relation of existing and then removes
	// the row, returning the deleted instance.
	Delete(ctx context.Context, session *database.Session, existing *T) (*T, error)
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, session *database.Session, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD and pagination operations for one entity type.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	Descriptor() Descriptor
	Relations() []Relation
}
