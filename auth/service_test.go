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

package auth_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easycancha/api/auth"
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

func newService(t *testing.T) *auth.Service {
	t.Helper()
	b := database.NewBootstrapper(database.GetDB(), &database.BootstrapConfig{CreateTablesOnStartup: true}, nil)
	require.NoError(t, b.ResetTables(context.Background()))

	security := auth.NewSecurity(&auth.Config{
		JWTSecret:                "test-secret",
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 5,
		BcryptCost:               4,
	})
	return auth.NewService(models.NewUserRepository(), security)
}

func newSession(t *testing.T) *database.Session {
	t.Helper()
	session, err := database.NewSession(context.Background(), database.GetDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func register(t *testing.T, service *auth.Service, session *database.Session, username, email, password string) {
	t.Helper()
	message, err := service.Register(context.Background(), session, &models.UserCreate{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	require.Equal(t, auth.MsgRegisterSuccess, message)
}

func TestRegisterAndLogin(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")

	token, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := service.Security().DecodeToken(token)
	require.NotNil(t, claims)
	assert.Equal(t, "a@x.com", claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")

	_, err := service.Register(ctx, session, &models.UserCreate{
		Username: "alice2", Email: "a@x.com", Password: "p2",
	})
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, 400, fault.Status)
	assert.Equal(t, auth.MsgEmailRegistered, fault.Message)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service := newService(t)
	session := newSession(t)

	register(t, service, session, "alice", "a@x.com", "p1")

	_, err := service.Register(context.Background(), session, &models.UserCreate{
		Username: "alice", Email: "a2@x.com", Password: "p2",
	})
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgUsernameRegistered, fault.Message)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")

	users := models.NewUserRepository()
	user, err := users.GetOne(ctx, session, types.NewQueryFilter("email = ?", "a@x.com"))
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEqual(t, "p1", user.HashedPassword)
	assert.True(t, service.Security().VerifyPassword("p1", user.HashedPassword))
}

func TestLoginUnknownEmail(t *testing.T) {
	service := newService(t)
	session := newSession(t)

	_, err := service.Login(context.Background(), session, "nobody@x.com", "p1")
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, 401, fault.Status)
	assert.Equal(t, auth.MsgEmailNotFound, fault.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	service := newService(t)
	session := newSession(t)

	register(t, service, session, "alice", "a@x.com", "p1")

	_, err := service.Login(context.Background(), session, "a@x.com", "wrong")
	require.Error(t, err)

	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, 401, fault.Status)
	assert.Equal(t, auth.MsgIncorrectPassword, fault.Message)
}

func TestCurrentUser(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")
	token, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)

	user, err := service.CurrentUser(ctx, session, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestCurrentUserFailures(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	_, err := service.CurrentUser(ctx, session, "")
	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgTokenNotFound, fault.Message)

	_, err = service.CurrentUser(ctx, session, "garbage")
	fault, ok = types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgInvalidToken, fault.Message)

	// Valid token whose subject no longer exists.
	token, err := service.Security().CreateAccessToken("ghost@x.com")
	require.NoError(t, err)
	_, err = service.CurrentUser(ctx, session, token)
	fault, ok = types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgUserNotFound, fault.Message)
}

func TestRequireAdmin(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "admin", "admin@example.com", "p1")
	register(t, service, session, "alice", "a@x.com", "p1")

	adminToken, err := service.Login(ctx, session, "admin@example.com", "p1")
	require.NoError(t, err)
	userToken, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)

	admin, err := service.RequireAdmin(ctx, session, adminToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)

	_, err = service.RequireAdmin(ctx, session, userToken)
	require.Error(t, err)
	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, 403, fault.Status)
	assert.Equal(t, auth.MsgForbidden, fault.Message)
}

func TestListUsersAdminOnly(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "admin", "admin@example.com", "p1")
	register(t, service, session, "alice", "a@x.com", "p1")

	adminToken, err := service.Login(ctx, session, "admin@example.com", "p1")
	require.NoError(t, err)

	users, err := service.ListUsers(ctx, session, adminToken, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	userToken, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)
	_, err = service.ListUsers(ctx, session, userToken, 0, 0)
	require.Error(t, err)
}

func TestUpdateProfileRehashesPassword(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")
	token, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)

	user, err := service.CurrentUser(ctx, session, token)
	require.NoError(t, err)

	newPassword := "p2"
	updated, err := service.UpdateProfile(ctx, session, user, &models.UserUpdate{Password: &newPassword})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.True(t, service.Security().VerifyPassword("p2", updated.HashedPassword))
	assert.False(t, service.Security().VerifyPassword("p1", updated.HashedPassword))

	_, err = service.Login(ctx, session, "a@x.com", "p2")
	require.NoError(t, err)
}

func TestDeleteProfile(t *testing.T) {
	service := newService(t)
	session := newSession(t)
	ctx := context.Background()

	register(t, service, session, "alice", "a@x.com", "p1")
	token, err := service.Login(ctx, session, "a@x.com", "p1")
	require.NoError(t, err)

	user, err := service.CurrentUser(ctx, session, token)
	require.NoError(t, err)

	message, err := service.DeleteProfile(ctx, session, user)
	require.NoError(t, err)
	assert.Equal(t, auth.MsgUserDeleted, message)

	_, err = service.CurrentUser(ctx, session, token)
	require.Error(t, err)
	fault, ok := types.AsFault(err)
	require.True(t, ok)
	assert.Equal(t, auth.MsgUserNotFound, fault.Message)
}
