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
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultBcryptCost    = 12
	defaultTokenLifetime = 60 // minutes
	defaultAdminEmail    = "admin@example.com"
)

// Config holds credential and token settings.
type Config struct {
	JWTSecret                string `json:"jwt_secret_key" yaml:"jwt_secret_key"`
	JWTAlgorithm             string `json:"jwt_algorithm" yaml:"jwt_algorithm"`
	AccessTokenExpireMinutes int    `json:"jwt_access_token_expire_minutes" yaml:"jwt_access_token_expire_minutes"`
	BcryptCost               int    `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	AdminEmail               string `json:"admin_email" yaml:"admin_email"`
}

// DefaultConfig returns the credential defaults: HS256 tokens valid for one
// hour and bcrypt cost 12.
func DefaultConfig() *Config {
	return &Config{
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: defaultTokenLifetime,
		BcryptCost:               defaultBcryptCost,
		AdminEmail:               defaultAdminEmail,
	}
}

// TokenClaims is the payload of an issued access token: subject, expiry,
// issue instant, and a unique token id.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// Security issues and verifies credentials according to a Config.
type Security struct {
	config *Config
}

// NewSecurity builds a Security, filling zero config values with defaults.
func NewSecurity(config *Config) *Security {
	if config == nil {
		config = DefaultConfig()
	}
	if config.JWTAlgorithm == "" {
		config.JWTAlgorithm = "HS256"
	}
	if config.AccessTokenExpireMinutes <= 0 {
		config.AccessTokenExpireMinutes = defaultTokenLifetime
	}
	if config.BcryptCost <= 0 {
		config.BcryptCost = defaultBcryptCost
	}
	if config.AdminEmail == "" {
		config.AdminEmail = defaultAdminEmail
	}
	return &Security{config: config}
}

// AdminEmail returns the configured administrator identity.
func (s *Security) AdminEmail() string { return s.config.AdminEmail }

// HashPassword derives a one-way bcrypt hash of password.
func (s *Security) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// The comparison goes through bcrypt itself, never a generic equality check.
func (s *Security) VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// CreateAccessToken issues a signed token for subject using the configured
// lifetime.
func (s *Security) CreateAccessToken(subject string) (string, error) {
	return s.CreateAccessTokenWithTTL(subject, time.Duration(s.config.AccessTokenExpireMinutes)*time.Minute)
}

// CreateAccessTokenWithTTL issues a signed token for subject expiring after
// ttl. Claims carry the subject, expiry, issue instant, and a random token id.
func (s *Security) CreateAccessTokenWithTTL(subject string, ttl time.Duration) (string, error) {
	method, err := s.signingMethod()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// DecodeToken verifies signature and expiry and returns the claims, or nil on
// any failure. Expired, malformed, and badly signed tokens are all absent in
// the same way; callers must not distinguish.
func (s *Security) DecodeToken(token string) *TokenClaims {
	method, err := s.signingMethod()
	if err != nil {
		return nil
	}
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.config.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{method.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}

func (s *Security) signingMethod() (jwt.SigningMethod, error) {
	switch s.config.JWTAlgorithm {
	case "HS256", "":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", s.config.JWTAlgorithm)
	}
}
