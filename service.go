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
	"context"
	"sync"

	"github.com/easycancha/api/database"
	"github.com/easycancha/api/repository"
	"github.com/easycancha/api/types"
)

// WithSession runs fn inside a request-scoped session on the global database.
// The session is released unconditionally when fn returns; uncommitted work
// is rolled back.
func WithSession(ctx context.Context, fn func(session *database.Session) error) error {
	return database.RunInSession(ctx, database.GetDB(), fn)
}

// Service wraps the generic repository with per-call session handling: each
// operation acquires one session on the global database, uses it for the
// duration of the call, and releases it on exit.
type Service[T any] interface {
	// Get returns a single entity matching the filters, or nil.
	Get(ctx context.Context, filters ...*types.QueryFilter) (*T, error)

	// All returns every entity.
	All(ctx context.Context) ([]*T, error)

	// Find returns matching entities with skip/limit pagination.
	Find(ctx context.Context, skip, limit int, filters ...*types.QueryFilter) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Count returns the number of matching entities.
	Count(ctx context.Context, filters ...*types.QueryFilter) (int, error)

	// Save creates a new entity from a structured input.
	Save(ctx context.Context, input any) (*T, error)

	// Patch applies a partial update to an existing entity.
	Patch(ctx context.Context, existing *T, patch any) (*T, error)

	// Remove deletes an existing entity and returns the detached instance.
	Remove(ctx context.Context, existing *T) (*T, error)
}

type baseServiceImpl[T any] struct {
	desc      repository.Descriptor
	relations []repository.Relation
	repo      repository.Repository[T]
	once      sync.Once
}

// NewService returns a Service for the entity described by desc, backed by
// the global database connection.
func NewService[T any](desc repository.Descriptor, relations ...repository.Relation) Service[T] {
	return &baseServiceImpl[T]{desc: desc, relations: relations}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() { s.repo = repository.New[T](s.desc, s.relations...) })
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, filters ...*types.QueryFilter) (*T, error) {
	var entity *T
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		entity, err = s.baseRepo().GetOne(ctx, session, filters...)
		return err
	})
	return entity, err
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.Find(ctx, 0, 0)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, skip, limit int, filters ...*types.QueryFilter) ([]*T, error) {
	var entities []*T
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		entities, err = s.baseRepo().GetMany(ctx, session, skip, limit, filters...)
		return err
	})
	return entities, err
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	var pagination *types.Pagination[T]
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		pagination, err = s.baseRepo().Page(ctx, session, page)
		return err
	})
	return pagination, err
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filters ...*types.QueryFilter) (int, error) {
	var total int
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		total, err = s.baseRepo().Count(ctx, session, filters...)
		return err
	})
	return total, err
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, input any) (*T, error) {
	var entity *T
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		entity, err = s.baseRepo().Create(ctx, session, input)
		return err
	})
	return entity, err
}

func (s *baseServiceImpl[T]) Patch(ctx context.Context, existing *T, patch any) (*T, error) {
	var entity *T
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		entity, err = s.baseRepo().Update(ctx, session, existing, patch)
		return err
	})
	return entity, err
}

func (s *baseServiceImpl[T]) Remove(ctx context.Context, existing *T) (*T, error) {
	var entity *T
	err := WithSession(ctx, func(session *database.Session) error {
		var err error
		entity, err = s.baseRepo().Delete(ctx, session, existing)
		return err
	})
	return entity, err
}
