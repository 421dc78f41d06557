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

import "github.com/easycancha/api/database"

// Join tables carry the higher priority: bootstrap creates tables in
// ascending order so the endpoints exist first, while Bun model registration
// runs in descending order so the join model is known before the models
// whose m2m fields reference it.
func init() {
	database.RegisteredModel(database.NewModelAdapter((*User)(nil), 1))
	database.RegisteredModel(database.NewModelAdapter((*Role)(nil), 1))
	database.RegisteredModel(database.NewModelAdapter((*UserRole)(nil), 2))
}
