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

package auth

import (
	"context"
	"strings"

	"github.com/easycancha/api/database"
	"github.com/easycancha/api/models"
	"github.com/easycancha/api/repository"
	"github.com/easycancha/api/types"
)

// Client-facing messages. Registration keeps the product's Spanish wording;
// the token pipeline speaks English.
const (
	MsgEmailRegistered    = "El correo ya está registrado."
	MsgUsernameRegistered = "El nombre de usuario ya está registrado."
	MsgRegisterSuccess    = "Registro exitoso"
	MsgRegisterFailed     = "Error al crear el usuario."
	MsgUserDeleted        = "User successfully deleted."
	MsgEmailNotFound      = "Email not found"
	MsgIncorrectPassword  = "Incorrect password"
	MsgTokenNotFound      = "Token not found"
	MsgInvalidToken       = "Invalid or expired token"
	MsgUserNotFound       = "User not found"
	MsgForbidden          = "You do not have permission to perform this action"
)

// Service is the authentication pipeline over the user repository. Every
// call is independent and stateless; there is no retry or lockout logic.
type Service struct {
	users    repository.Repository[models.User]
	security *Security
	log      database.Logger
}

// NewService wires the pipeline to a user repository and a credential
// service.
func NewService(users repository.Repository[models.User], security *Security) *Service {
	return &Service{
		users:    users,
		security: security,
		log:      database.GetLogger(),
	}
}

// Security exposes the underlying credential service.
func (s *Service) Security() *Security { return s.security }

// Register creates a new account after checking that neither the email nor
// the username is taken. No token is issued on registration.
func (s *Service) Register(ctx context.Context, session *database.Session, input *models.UserCreate) (string, error) {
	if input == nil {
		return "", types.NewValidationFault("Input cannot be empty.")
	}

	existing, err := s.users.GetOne(ctx, session, types.NewQueryFilter("email = ?", input.Email))
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", types.NewValidationFault(MsgEmailRegistered)
	}

	existing, err = s.users.GetOne(ctx, session, types.NewQueryFilter("username = ?", input.Username))
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", types.NewValidationFault(MsgUsernameRegistered)
	}

	hashed, err := s.security.HashPassword(input.Password)
	if err != nil {
		s.log.Error("Password hashing failed", "error", err.Error())
		return "", types.NewStorageFault(MsgRegisterFailed, err)
	}

	user, err := s.users.Create(ctx, session, &models.UserCreateHashed{
		Username:       input.Username,
		Email:          input.Email,
		HashedPassword: hashed,
		RoleIDs:        input.RoleIDs,
	})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", types.NewStorageFault(MsgRegisterFailed, nil)
	}

	s.log.Info("User registered", "email", user.Email)
	return MsgRegisterSuccess, nil
}

// Login authenticates by email and password and returns a signed access
// token keyed on the email subject.
func (s *Service) Login(ctx context.Context, session *database.Session, email, password string) (string, error) {
	user, err := s.authenticate(ctx, session, email, password)
	if err != nil {
		return "", err
	}
	token, err := s.security.CreateAccessToken(user.Email)
	if err != nil {
		s.log.Error("Token issuance failed", "error", err.Error())
		return "", types.NewStorageFault("Internal server error.", err)
	}
	return token, nil
}

func (s *Service) authenticate(ctx context.Context, session *database.Session, email, password string) (*models.User, error) {
	user, err := s.users.GetOne(ctx, session, types.NewQueryFilter("email = ?", email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, types.NewAuthFault(MsgEmailNotFound)
	}
	if !s.security.VerifyPassword(password, user.HashedPassword) {
		return nil, types.NewAuthFault(MsgIncorrectPassword)
	}
	return user, nil
}

// CurrentUser resolves the identity carried by a bearer token: decode the
// token, then look the subject up. Every failure is an auth fault.
func (s *Service) CurrentUser(ctx context.Context, session *database.Session, token string) (*models.User, error) {
	if token == "" {
		return nil, types.NewAuthFault(MsgTokenNotFound)
	}
	claims := s.security.DecodeToken(token)
	if claims == nil || claims.Subject == "" {
		return nil, types.NewAuthFault(MsgInvalidToken)
	}
	user, err := s.users.GetOne(ctx, session, types.NewQueryFilter("email = ?", claims.Subject))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, types.NewAuthFault(MsgUserNotFound)
	}
	return user, nil
}

// RequireAdmin resolves the current user and checks it against the
// configured admin identity.
func (s *Service) RequireAdmin(ctx context.Context, session *database.Session, token string) (*models.User, error) {
	user, err := s.CurrentUser(ctx, session, token)
	if err != nil {
		return nil, err
	}
	if user.Email != s.security.AdminEmail() {
		return nil, types.NewForbiddenFault(MsgForbidden)
	}
	return user, nil
}

// UpdateProfile applies a partial patch to user, re-hashing the password when
// the patch carries one.
func (s *Service) UpdateProfile(ctx context.Context, session *database.Session, user *models.User, patch *models.UserUpdate) (*models.User, error) {
	if patch == nil {
		return nil, types.NewValidationFault("Input cannot be empty.")
	}
	if patch.Password != nil && *patch.Password != "" {
		hashed, err := s.security.HashPassword(*patch.Password)
		if err != nil {
			s.log.Error("Password hashing failed", "error", err.Error())
			return nil, types.NewStorageFault("Internal server error.", err)
		}
		user.HashedPassword = hashed
	}
	return s.users.Update(ctx, session, user, patch)
}

// DeleteProfile removes the user's account and returns a confirmation
// message.
func (s *Service) DeleteProfile(ctx context.Context, session *database.Session, user *models.User) (string, error) {
	if _, err := s.users.Delete(ctx, session, user); err != nil {
		return "", err
	}
	return MsgUserDeleted, nil
}

// ListUsers returns all accounts; admin only.
func (s *Service) ListUsers(ctx context.Context, session *database.Session, token string, skip, limit int) ([]*models.User, error) {
	if _, err := s.RequireAdmin(ctx, session, token); err != nil {
		return nil, err
	}
	return s.users.GetMany(ctx, session, skip, limit)
}

// BearerToken extracts the token from an "Authorization: Bearer x" header
// value; it returns "" when the header does not carry a bearer token.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
