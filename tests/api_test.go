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

package tests

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/easycancha/api"
	"github.com/easycancha/api/auth"
	"github.com/easycancha/api/database"
	"github.com/easycancha/api/models"
	"github.com/easycancha/api/types"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET_KEY", "e2e-secret")

	cfg, err := api.LoadConfig("")
	if err != nil {
		panic(err)
	}
	cfg.Database.ConnectionConfig.Type = "sqlite"
	cfg.Database.BootstrapConfig.CreateTablesOnStartup = true
	cfg.Auth.BcryptCost = 4

	if _, err := api.Init(cfg); err != nil {
		panic(err)
	}
	testConfig = cfg

	code := m.Run()
	_ = api.Close()
	os.Exit(code)
}

var testConfig *api.Config

func resetTables(t *testing.T) {
	t.Helper()
	b := database.NewBootstrapper(database.GetDB(), &database.BootstrapConfig{CreateTablesOnStartup: true}, nil)
	require.NoError(t, b.ResetTables(context.Background()))
}

func TestConfigEnvOverride(t *testing.T) {
	assert.Equal(t, "e2e-secret", testConfig.Auth.JWTSecret)
	assert.Equal(t, "HS256", testConfig.Auth.JWTAlgorithm)
	assert.Equal(t, "admin@example.com", testConfig.Auth.AdminEmail)
}

func TestHealthStatus(t *testing.T) {
	status := database.GetHealthStatus(context.Background())
	require.NotNil(t, status)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
}

func TestUserServiceFacade(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	roles := api.NewService[models.Role](models.RoleDescriptor)
	admin, err := roles.Save(ctx, &models.RoleCreate{Name: "admin"})
	require.NoError(t, err)

	users := api.NewService[models.User](models.UserDescriptor, models.UserRolesRelation)
	user, err := users.Save(ctx, &models.UserCreateHashed{
		Username:       "alice",
		Email:          "alice@x.com",
		HashedPassword: "$2a$04$hash",
		RoleIDs:        []int64{admin.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Len(t, user.Roles, 1)

	found, err := users.Get(ctx, types.NewQueryFilter("email = ?", "alice@x.com"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alice", found.Username)

	page, err := users.Page(ctx, types.NewDefaultPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	removed, err := users.Remove(ctx, found)
	require.NoError(t, err)
	require.NotNil(t, removed)

	total, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestAuthenticationEndToEnd(t *testing.T) {
	resetTables(t)
	ctx := context.Background()

	security := auth.NewSecurity(&testConfig.Auth)
	service := auth.NewService(models.NewUserRepository(), security)

	err := api.WithSession(ctx, func(session *database.Session) error {
		message, err := service.Register(ctx, session, &models.UserCreate{
			Username: "alice", Email: "a@x.com", Password: "p1",
		})
		require.NoError(t, err)
		assert.Equal(t, auth.MsgRegisterSuccess, message)

		// Same email again fails with the registration message.
		_, err = service.Register(ctx, session, &models.UserCreate{
			Username: "alice2", Email: "a@x.com", Password: "p1",
		})
		fault, ok := types.AsFault(err)
		require.True(t, ok)
		assert.Equal(t, auth.MsgEmailRegistered, fault.Message)

		token, err := service.Login(ctx, session, "a@x.com", "p1")
		require.NoError(t, err)

		header := "Bearer " + token
		user, err := service.CurrentUser(ctx, session, auth.BearerToken(header))
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		return nil
	})
	require.NoError(t, err)
}
