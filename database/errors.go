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
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// IntegrityErrorKind categorizes a storage-engine constraint violation.
type IntegrityErrorKind int

const (
	IntegrityUnknown IntegrityErrorKind = iota
	IntegrityDuplicateKey
	IntegrityForeignKey
	IntegrityNotNull
	IntegrityCheck
)

// Fallback messages when the diagnostic text does not match any known shape.
const (
	msgDuplicateGeneric  = "A record with duplicate values already exists."
	msgForeignKeyGeneric = "Invalid reference to another table. Please verify related data exists."
	msgIntegrityGeneric  = "Database integrity error."
)

// keyValuePattern matches the "(field)=(value)" fragment postgres puts in
// unique and foreign key diagnostics, e.g.
// `Key (email)=(a@x.com) already exists.`
var keyValuePattern = regexp.MustCompile(`\((?P<field>[^)]*)\)=\((?P<value>[^)]*)\)`)

// sqliteConstraintPattern matches sqlite's "table.column" constraint
// diagnostics, e.g. `UNIQUE constraint failed: users.email`. Some drivers
// prefix the message with a generic "constraint failed:", so the constraint
// kind is part of the pattern.
var sqliteConstraintPattern = regexp.MustCompile(`(?:unique|not null|check) constraint failed: (?:\w+\.)?(?P<field>\w+)`)

// IsIntegrityError reports whether err is a constraint violation raised by
// one of the supported engines, along with its kind. Driver-typed errors are
// preferred; message text is the fallback so the sqlite shim is covered too.
func IsIntegrityError(err error) (bool, IntegrityErrorKind) {
	if err == nil {
		return false, IntegrityUnknown
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return true, IntegrityDuplicateKey
		case 1216, 1217, 1451, 1452:
			return true, IntegrityForeignKey
		case 1048:
			return true, IntegrityNotNull
		case 3819:
			return true, IntegrityCheck
		default:
			return false, IntegrityUnknown
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return true, IntegrityDuplicateKey
		case "23503":
			return true, IntegrityForeignKey
		case "23502":
			return true, IntegrityNotNull
		case "23514":
			return true, IntegrityCheck
		default:
			if strings.HasPrefix(string(pqErr.Code), "23") {
				return true, IntegrityUnknown
			}
			return false, IntegrityUnknown
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return true, IntegrityDuplicateKey
	case strings.Contains(s, "violates foreign key constraint"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "sqlstate 23503"):
		return true, IntegrityForeignKey
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "sqlstate 23502"):
		return true, IntegrityNotNull
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, IntegrityCheck
	}
	return false, IntegrityUnknown
}

// TranslateIntegrityError turns a raw constraint violation into a
// human-readable, client-safe message. It is a best-effort classifier over
// engine diagnostic text: when extraction fails it degrades to a generic
// message, and it never fails itself.
func TranslateIntegrityError(err error) string {
	if err == nil {
		return msgIntegrityGeneric
	}

	_, kind := IsIntegrityError(err)
	text := diagnosticText(err)

	switch kind {
	case IntegrityDuplicateKey:
		if field, value, ok := extractKeyValue(text); ok {
			return "A record with " + field + ": '" + value + "' already exists."
		}
		if field, ok := extractSqliteField(text); ok {
			return "A record with " + field + ": '' already exists."
		}
		return msgDuplicateGeneric

	case IntegrityForeignKey:
		if column, _, ok := extractKeyValue(text); ok {
			return "The value of field '" + column + "' does not match any existing record."
		}
		if column, ok := extractSqliteField(text); ok {
			return "The value of field '" + column + "' does not match any existing record."
		}
		return msgForeignKeyGeneric

	default:
		return msgIntegrityGeneric
	}
}

// diagnosticText returns the richest diagnostic string available for err.
// lib/pq keeps the "(field)=(value)" fragment in the Detail field rather
// than the message, so it is appended when present.
func diagnosticText(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Detail != "" {
		return pqErr.Message + " " + pqErr.Detail
	}
	return err.Error()
}

func extractKeyValue(text string) (field, value string, ok bool) {
	m := keyValuePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	field = strings.ReplaceAll(m[1], "_", " ")
	return field, m[2], true
}

func extractSqliteField(text string) (string, bool) {
	m := sqliteConstraintPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], "_", " "), true
}
