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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// Session is a request-scoped unit of work over a single transaction.
//
// Unlike a plain bun.Tx, a Session survives its own Commit: committing opens a
// fresh transaction so a multi-step operation can persist intermediate state
// (for example, inserting a row, committing it, and then writing join rows
// that reference its generated key). Close releases whatever transaction is
// still open; it is idempotent and safe to defer unconditionally.
type Session struct {
	db     *bun.DB
	ctx    context.Context
	tx     bun.Tx
	active bool
	closed bool
}

// NewSession begins a transaction on db and wraps it in a Session.
func NewSession(ctx context.Context, db *bun.DB) (*Session, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Session{db: db, ctx: ctx, tx: tx, active: true}, nil
}

// Tx returns the current transaction as a bun.IDB for query building.
func (s *Session) Tx() bun.IDB {
	return s.tx
}

// Commit commits the current transaction and immediately begins a new one so
// the session remains usable.
func (s *Session) Commit() error {
	if s.closed || !s.active {
		return fmt.Errorf("session is closed")
	}
	if err := s.tx.Commit(); err != nil {
		s.active = false
		return err
	}
	return s.begin()
}

// Rollback discards the current transaction and begins a new one.
func (s *Session) Rollback() error {
	if s.closed || !s.active {
		return fmt.Errorf("session is closed")
	}
	if err := s.tx.Rollback(); err != nil {
		s.active = false
		return err
	}
	return s.begin()
}

func (s *Session) begin() error {
	tx, err := s.db.BeginTx(s.ctx, &sql.TxOptions{})
	if err != nil {
		s.active = false
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	s.active = true
	return nil
}

// Close rolls back the open transaction, if any, and marks the session done.
// Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.active {
		return nil
	}
	s.active = false
	return s.tx.Rollback()
}

// RunInSession opens a session, invokes fn, and guarantees release. fn is
// responsible for committing; anything uncommitted when fn returns is rolled
// back by Close.
func RunInSession(ctx context.Context, db *bun.DB, fn func(session *Session) error) error {
	session, err := NewSession(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	return fn(session)
}
