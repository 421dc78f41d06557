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

package models

import "github.com/easycancha/api/types"

// UserStatus is the account lifecycle state.
type UserStatus int

const (
	UserStatusActive UserStatus = iota
	UserStatusSuspended
	UserStatusDeleted
)

var _ types.BaseEnum = UserStatusActive

func (s UserStatus) IsValid() bool {
	return s >= UserStatusActive && s <= UserStatusDeleted
}

func (s UserStatus) Number() int { return int(s) }

func (s UserStatus) Name() string {
	switch s {
	case UserStatusActive:
		return "active"
	case UserStatusSuspended:
		return "suspended"
	case UserStatusDeleted:
		return "deleted"
	default:
		return types.IllegalName
	}
}

func (s UserStatus) String() string { return s.Name() }

func (s UserStatus) Desc() string {
	switch s {
	case UserStatusActive:
		return "account is active"
	case UserStatusSuspended:
		return "account is temporarily suspended"
	case UserStatusDeleted:
		return "account is soft deleted"
	default:
		return types.IllegalDesc
	}
}
