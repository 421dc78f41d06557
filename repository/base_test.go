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

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easycancha/api/database"
	"github.com/easycancha/api/models"
	"github.com/easycancha/api/types"
)

func TestMain(m *testing.M) {
	cfg := &database.Config{
		ConnectionConfig: *database.DefaultConnectionConfig(),
		BootstrapConfig:  database.BootstrapConfig{CreateTablesOnStartup: true},
	}
	cfg.ConnectionConfig.Type = "sqlite"
	if _, err := database.InitDB(cfg); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	b := database.NewBootstrapper(database.GetDB(), &database.BootstrapConfig{CreateTablesOnStartup: true}, nil)
	require.NoError(t, b.ResetTables(context.Background()))
}

func newSession(t *testing.T) *database.Session {
	t.Helper()
	session, err := database.NewSession(context.Background(), database.GetDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func seedRoles(t *testing.T, session *database.Session, names ...string) []int64 {
	t.Helper()
	repo := models.NewRoleRepository()
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		role, err := repo.Create(context.Background(), session, &models.RoleCreate{Name: name})
		require.NoError(t, err)
		ids = append(ids, role.ID)
	}
	return ids
}

func joinRowCount(t *testing.T, userID int64) int {
	t.Helper()
	count, err := database.GetDB().NewSelect().
		Table("user_roles").
		Where("user_id = ?", userID).
		Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestCreateAssignsPrimaryKeyAndScalars(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()

	user, err := repo.Create(context.Background(), session, &models.UserCreateHashed{
		Username:       "alice",
		Email:          "alice@x.com",
		HashedPassword: "$2a$04$hash",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateResolvesRolesAndDropsUnknownIDs(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	roleIDs := seedRoles(t, session, "admin", "editor")
	repo := models.NewUserRepository()

	user, err := repo.Create(context.Background(), session, &models.UserCreateHashed{
		Username:       "bob",
		Email:          "bob@x.com",
		HashedPassword: "$2a$04$hash",
		RoleIDs:        append(roleIDs, 9999),
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Len(t, user.Roles, 2, "unknown role id must be dropped silently")
	assert.Equal(t, 2, joinRowCount(t, user.ID))
}

func TestCreateDuplicateEmailSignalsConstraintFault(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()

	_, err := repo.Create(context.Background(), session, &models.UserCreateHashed{
		Username: "carol", Email: "carol@x.com", HashedPassword: "h",
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), session, &models.UserCreateHashed{
		Username: "carol2", Email: "carol@x.com", HashedPassword: "h",
	})
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, types.FaultConstraint, fault.Kind)
	assert.Equal(t, 400, fault.Status)
	assert.Contains(t, fault.Message, "email")
}

func TestCreateRejectsMapInput(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()

	_, err := repo.Create(context.Background(), session, map[string]interface{}{"username": "x"})
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, types.FaultValidation, fault.Kind)
}

func TestGetOneAbsentReturnsNil(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()

	user, err := repo.GetOne(context.Background(), session, types.NewQueryFilter("email = ?", "nobody@x.com"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetManyPagination(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, session, &models.UserCreateHashed{
			Username:       fmt.Sprintf("user%d", i),
			Email:          fmt.Sprintf("user%d@x.com", i),
			HashedPassword: "h",
		})
		require.NoError(t, err)
	}

	page, err := repo.GetMany(ctx, session, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := repo.GetMany(ctx, session, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "non-positive limit falls back to the default")

	total, err := repo.Count(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, session, &models.UserCreateHashed{
		Username: "dora", Email: "dora@x.com", HashedPassword: "h",
	})
	require.NoError(t, err)

	username := "dorothea"
	updated, err := repo.Update(ctx, session, user, &models.UserUpdate{Username: &username})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "dorothea", updated.Username)
	assert.Equal(t, "dora@x.com", updated.Email, "absent patch field must survive")
}

func TestUpdateFailureLeavesCallerStructUntouched(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	repo := models.NewUserRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, session, &models.UserCreateHashed{
		Username: "gina", Email: "gina@x.com", HashedPassword: "h",
	})
	require.NoError(t, err)
	user, err := repo.Create(ctx, session, &models.UserCreateHashed{
		Username: "hugo", Email: "hugo@x.com", HashedPassword: "h",
	})
	require.NoError(t, err)
	before := *user

	taken := "gina"
	_, err = repo.Update(ctx, session, user, &models.UserUpdate{Username: &taken})
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, types.FaultConstraint, fault.Kind)
	assert.Equal(t, "hugo", user.Username, "rejected patch must not linger on the caller's struct")
	assert.Equal(t, before.UpdatedAt, user.UpdatedAt)
}

func TestUpdateReplacesRolesWholesale(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	roleIDs := seedRoles(t, session, "admin", "editor", "viewer")
	repo := models.NewUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, session, &models.UserCreateHashed{
		Username: "eve", Email: "eve@x.com", HashedPassword: "h",
		RoleIDs: roleIDs[:2],
	})
	require.NoError(t, err)
	require.Len(t, user.Roles, 2)

	// Non-empty list replaces the set; unknown ids vanish.
	updated, err := repo.Update(ctx, session, user, &models.UserUpdate{RoleIDs: []int64{roleIDs[2], 8888}})
	require.NoError(t, err)
	require.Len(t, updated.Roles, 1)
	assert.Equal(t, "viewer", updated.Roles[0].Name)

	// Empty list clears the relation.
	cleared, err := repo.Update(ctx, session, updated, &models.UserUpdate{RoleIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, cleared.Roles)
	assert.Equal(t, 0, joinRowCount(t, user.ID))
}

func TestDeleteClearsRelationsThenRow(t *testing.T) {
	resetTables(t)
	session := newSession(t)
	roleIDs := seedRoles(t, session, "admin")
	repo := models.NewUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, session, &models.UserCreateHashed{
		Username: "frank", Email: "frank@x.com", HashedPassword: "h",
		RoleIDs: roleIDs,
	})
	require.NoError(t, err)
	require.Equal(t, 1, joinRowCount(t, user.ID))

	deleted, err := repo.Delete(ctx, session, user)
	require.NoError(t, err)
	require.NotNil(t, deleted)

	assert.Equal(t, 0, joinRowCount(t, user.ID))

	found, err := repo.GetOne(ctx, session, types.NewQueryFilter("id = ?", user.ID))
	require.NoError(t, err)
	assert.Nil(t, found)
}
