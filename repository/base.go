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
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/easycancha/api/database"
	"github.com/easycancha/api/types"
)

const defaultLimit = 1000

func storageFailureMessage(op string) string {
	switch op {
	case "create":
		return "Unexpected error while creating the record."
	case "update":
		return "Unexpected error while updating the record."
	case "delete":
		return "Unexpected error while deleting the record."
	default:
		return "Unexpected error while accessing the record."
	}
}

type baseRepositoryImpl[T any] struct {
	desc      Descriptor
	relations []Relation
	log       database.Logger
}

// New returns a generic repository for entity type T described by desc, with
// optional many-to-many relations.
func New[T any](desc Descriptor, relations ...Relation) Repository[T] {
	if desc.PK == "" {
		desc.PK = "id"
	}
	for i := range relations {
		if relations[i].TargetPK == "" {
			relations[i].TargetPK = "id"
		}
	}
	return &baseRepositoryImpl[T]{
		desc:      desc,
		relations: relations,
		log:       database.GetLogger(),
	}
}

func (r *baseRepositoryImpl[T]) Descriptor() Descriptor { return r.desc }

func (r *baseRepositoryImpl[T]) Relations() []Relation { return r.relations }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, session *database.Session, filters ...*types.QueryFilter) (*T, error) {
	var entity T
	query := session.Tx().NewSelect().Model(&entity)
	for _, rel := range r.relations {
		query = query.Relation(rel.EntityField)
	}
	for _, filter := range filters {
		if filter != nil {
			query = query.Where(filter.Schema, filter.Args...)
		}
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, r.fail(session, "get_one", err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetMany(ctx context.Context, session *database.Session, skip, limit int, filters ...*types.QueryFilter) ([]*T, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	entities := make([]*T, 0)
	query := session.Tx().NewSelect().Model(&entities)
	for _, rel := range r.relations {
		query = query.Relation(rel.EntityField)
	}
	for _, filter := range filters {
		if filter != nil {
			query = query.Where(filter.Schema, filter.Args...)
		}
	}
	if err := query.Offset(skip).Limit(limit).Scan(ctx); err != nil {
		return nil, r.fail(session, "get_many", err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, session *database.Session, filters ...*types.QueryFilter) (int, error) {
	var entity T
	query := session.Tx().NewSelect().Model(&entity)
	for _, filter := range filters {
		if filter != nil {
			query = query.Where(filter.Schema, filter.Args...)
		}
	}
	total, err := query.Count(ctx)
	if err != nil {
		return 0, r.fail(session, "count", err)
	}
	return total, nil
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, session *database.Session, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	entities := make([]*T, 0)
	query := session.Tx().NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil {
		return nil, r.fail(session, "page", err)
	}
	if total == 0 {
		return pagination, nil
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, r.fail(session, "page", err)
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

// Create inserts the scalar fields, commits to obtain the generated key, then
// writes join rows for every declared relation and commits again. The second
// commit is what makes relation assignment safe: join rows need the primary
// key produced by the first.
func (r *baseRepositoryImpl[T]) Create(ctx context.Context, session *database.Session, input any) (*T, error) {
	entity := new(T)
	relationIDs, err := applyInput(entity, input, r.relations)
	if err != nil {
		return nil, err
	}

	if _, err := session.Tx().NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, r.fail(session, "create", err)
	}
	if err := session.Commit(); err != nil {
		return nil, r.fail(session, "create", err)
	}

	pk, err := entityPK(entity)
	if err != nil {
		return nil, r.fail(session, "create", err)
	}

	for _, rel := range r.relations {
		ids := relationIDs[rel.InputField]
		if len(ids) == 0 {
			continue
		}
		if err := r.linkRelation(ctx, session.Tx(), rel, pk, ids); err != nil {
			return nil, r.fail(session, "create", err)
		}
	}
	if err := session.Commit(); err != nil {
		return nil, r.fail(session, "create", err)
	}

	return r.reload(ctx, session, pk)
}

// Update applies present, non-nil patch fields on top of existing and
// replaces every declared relation wholesale: an empty or absent id list
// clears it, a non-empty list becomes the new set. Commits once. The patch is
// applied to a copy, so on failure the caller's struct still matches the
// stored row; the reloaded entity carries the new state.
func (r *baseRepositoryImpl[T]) Update(ctx context.Context, session *database.Session, existing *T, patch any) (*T, error) {
	if existing == nil {
		return nil, types.NewValidationFault("Record to update cannot be empty.")
	}
	patched := *existing
	relationIDs, err := applyInput(&patched, patch, r.relations)
	if err != nil {
		return nil, err
	}
	touchUpdatedAt(&patched)

	pk, err := entityPK(&patched)
	if err != nil {
		return nil, r.fail(session, "update", err)
	}

	if _, err := session.Tx().NewUpdate().Model(&patched).WherePK().Exec(ctx); err != nil {
		return nil, r.fail(session, "update", err)
	}

	for _, rel := range r.relations {
		if err := r.clearRelation(ctx, session.Tx(), rel, pk); err != nil {
			return nil, r.fail(session, "update", err)
		}
		if ids := relationIDs[rel.InputField]; len(ids) > 0 {
			if err := r.linkRelation(ctx, session.Tx(), rel, pk, ids); err != nil {
				return nil, r.fail(session, "update", err)
			}
		}
	}
	if err := session.Commit(); err != nil {
		return nil, r.fail(session, "update", err)
	}

	return r.reload(ctx, session, pk)
}

// Delete clears every relation collection and commits, then removes the row
// and commits. The returned instance is detached and must not be reused for
// reads.
func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, session *database.Session, existing *T) (*T, error) {
	if existing == nil {
		return nil, types.NewValidationFault("Record to delete cannot be empty.")
	}
	pk, err := entityPK(existing)
	if err != nil {
		return nil, r.fail(session, "delete", err)
	}

	for _, rel := range r.relations {
		if err := r.clearRelation(ctx, session.Tx(), rel, pk); err != nil {
			return nil, r.fail(session, "delete", err)
		}
	}
	if err := session.Commit(); err != nil {
		return nil, r.fail(session, "delete", err)
	}

	if _, err := session.Tx().NewDelete().Model(existing).WherePK().Exec(ctx); err != nil {
		return nil, r.fail(session, "delete", err)
	}
	if err := session.Commit(); err != nil {
		return nil, r.fail(session, "delete", err)
	}
	return existing, nil
}

func (r *baseRepositoryImpl[T]) reload(ctx context.Context, session *database.Session, pk any) (*T, error) {
	filter := types.NewQueryFilter("? = ?", bun.Ident(r.desc.PK), pk)
	return r.GetOne(ctx, session, filter)
}

// resolveIDs maps the requested ids to the subset that exists in the target
// table. Unknown ids disappear here, which is exactly the "silently dropped"
// relation semantics.
func (r *baseRepositoryImpl[T]) resolveIDs(ctx context.Context, tx bun.IDB, rel Relation, ids []int64) ([]int64, error) {
	resolved := make([]int64, 0, len(ids))
	err := tx.NewSelect().
		TableExpr("?", bun.Ident(rel.TargetTable)).
		ColumnExpr("?", bun.Ident(rel.TargetPK)).
		Where("? IN (?)", bun.Ident(rel.TargetPK), bun.In(ids)).
		Scan(ctx, &resolved)
	if err != nil {
		return nil, err
	}
	if len(resolved) < len(ids) && r.log != nil {
		r.log.Debug("Dropped unresolvable relation ids",
			"entity", r.desc.Name, "relation", rel.InputField,
			"requested", len(ids), "resolved", len(resolved))
	}
	return resolved, nil
}

func (r *baseRepositoryImpl[T]) linkRelation(ctx context.Context, tx bun.IDB, rel Relation, pk any, ids []int64) error {
	resolved, err := r.resolveIDs(ctx, tx, rel, ids)
	if err != nil {
		return err
	}
	for _, id := range resolved {
		row := map[string]interface{}{
			rel.SourceColumn: pk,
			rel.TargetColumn: id,
		}
		if _, err := tx.NewInsert().Model(&row).TableExpr("?", bun.Ident(rel.JoinTable)).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) clearRelation(ctx context.Context, tx bun.IDB, rel Relation, pk any) error {
	_, err := tx.NewRaw("DELETE FROM ? WHERE ? = ?",
		bun.Ident(rel.JoinTable), bun.Ident(rel.SourceColumn), pk).Exec(ctx)
	return err
}

// fail rolls the session back and re-signals err as a Fault: integrity
// violations become translated constraint faults, everything else becomes a
// generic storage fault with the cause logged server-side only.
func (r *baseRepositoryImpl[T]) fail(session *database.Session, op string, err error) error {
	if rbErr := session.Rollback(); rbErr != nil && r.log != nil {
		r.log.Warn("Session rollback failed", "entity", r.desc.Name, "op", op, "error", rbErr.Error())
	}
	if ok, _ := database.IsIntegrityError(err); ok {
		message := database.TranslateIntegrityError(err)
		if r.log != nil {
			r.log.Warn("Integrity violation", "entity", r.desc.Name, "op", op, "error", err.Error())
		}
		return types.NewConstraintFault(message, err)
	}
	if r.log != nil {
		r.log.Error("Unexpected storage failure", "entity", r.desc.Name, "op", op, "error", err.Error())
	}
	return types.NewStorageFault(storageFailureMessage(op), err)
}
