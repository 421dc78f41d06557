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

package types

import (
	"errors"
	"net/http"
)

// FaultKind classifies a failure surfaced by the data-access or auth layers.
type FaultKind int

const (
	// FaultValidation means the caller passed malformed input.
	FaultValidation FaultKind = iota
	// FaultConstraint means a uniqueness or referential-integrity violation.
	FaultConstraint
	// FaultStorage means an unexpected storage failure; detail is logged, not exposed.
	FaultStorage
	// FaultAuth means a missing/invalid/expired token or wrong credential.
	FaultAuth
	// FaultForbidden means the caller is authenticated but lacks the required role.
	FaultForbidden
)

func (k FaultKind) String() string {
	switch k {
	case FaultValidation:
		return "validation"
	case FaultConstraint:
		return "constraint"
	case FaultStorage:
		return "storage"
	case FaultAuth:
		return "auth"
	case FaultForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Fault is the only error type that crosses the repository and auth boundaries.
// Raw engine or library errors never escape; they are wrapped as the cause and
// only the Message is safe to show to a client.
type Fault struct {
	Kind    FaultKind
	Status  int
	Message string
	cause   error
}

func (f *Fault) Error() string { return f.Message }

// Unwrap exposes the underlying cause for errors.Is/As; it is never rendered
// to clients.
func (f *Fault) Unwrap() error { return f.cause }

// AsFault unwraps err into a *Fault if one is in its chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// NewValidationFault reports malformed caller input (HTTP 400 equivalent).
func NewValidationFault(message string) *Fault {
	return &Fault{Kind: FaultValidation, Status: http.StatusBadRequest, Message: message}
}

// NewConstraintFault reports a translated integrity violation (HTTP 400
// equivalent). The raw engine error is kept as the cause.
func NewConstraintFault(message string, cause error) *Fault {
	return &Fault{Kind: FaultConstraint, Status: http.StatusBadRequest, Message: message, cause: cause}
}

// NewStorageFault reports an unexpected storage failure with a generic message
// (HTTP 500 equivalent).
func NewStorageFault(message string, cause error) *Fault {
	return &Fault{Kind: FaultStorage, Status: http.StatusInternalServerError, Message: message, cause: cause}
}

// NewAuthFault reports an authentication failure (HTTP 401 equivalent).
func NewAuthFault(message string) *Fault {
	return &Fault{Kind: FaultAuth, Status: http.StatusUnauthorized, Message: message}
}

// NewForbiddenFault reports an authorization failure (HTTP 403 equivalent).
func NewForbiddenFault(message string) *Fault {
	return &Fault{Kind: FaultForbidden, Status: http.StatusForbidden, Message: message}
}
