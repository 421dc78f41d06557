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

package repository

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/easycancha/api/types"
)

// applyInput copies the fields of the structured input src onto the entity
// dst and extracts the id lists of the declared many-to-many relations.
//
// src must be a struct or pointer to struct; untyped mappings are rejected
// with a validation fault. Pointer fields on src express optionality: a nil
// pointer means "not present" and leaves dst untouched, a non-nil pointer is
// dereferenced before assignment. Scalar fields are matched to dst by Go
// field name; relation fields are matched by their json name against
// Relation.InputField and returned instead of copied.
func applyInput(dst any, src any, relations []Relation) (map[string][]int64, error) {
	if src == nil {
		return nil, types.NewValidationFault("Input cannot be empty.")
	}

	srcValue := reflect.Indirect(reflect.ValueOf(src))
	if !srcValue.IsValid() {
		return nil, types.NewValidationFault("Input cannot be empty.")
	}
	if srcValue.Kind() == reflect.Map {
		return nil, types.NewValidationFault("Input must be a structured type, not a mapping.")
	}
	if srcValue.Kind() != reflect.Struct {
		return nil, types.NewValidationFault(fmt.Sprintf("Input must be a structured type, got %s.", srcValue.Kind()))
	}

	relationFields := make(map[string]bool, len(relations))
	for _, rel := range relations {
		relationFields[rel.InputField] = true
	}

	dstValue := reflect.Indirect(reflect.ValueOf(dst))
	srcType := srcValue.Type()
	relationIDs := make(map[string][]int64)

	for i := 0; i < srcType.NumField(); i++ {
		field := srcType.Field(i)
		if field.Anonymous || !field.IsExported() {
			continue
		}

		value := srcValue.Field(i)
		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}

		if name := jsonFieldName(field); relationFields[name] {
			ids, err := identifierSlice(name, value)
			if err != nil {
				return nil, err
			}
			relationIDs[name] = ids
			continue
		}

		target := dstValue.FieldByName(field.Name)
		if !target.IsValid() || !target.CanSet() {
			continue
		}
		if err := setValue(target, value); err != nil {
			return nil, types.NewValidationFault(fmt.Sprintf("Field '%s' has an incompatible type.", field.Name))
		}
	}
	return relationIDs, nil
}

func setValue(dst, src reflect.Value) error {
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Ptr && src.Type().AssignableTo(dst.Type().Elem()):
		ptr := reflect.New(dst.Type().Elem())
		ptr.Elem().Set(src)
		dst.Set(ptr)
	case src.Type().ConvertibleTo(dst.Type()) && isNumeric(src.Kind()) && isNumeric(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// identifierSlice converts a relation input value into []int64. Nil elements
// are dropped, not rejected.
func identifierSlice(name string, value reflect.Value) ([]int64, error) {
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil, types.NewValidationFault(fmt.Sprintf("Field '%s' must be a list of identifiers.", name))
	}
	ids := make([]int64, 0, value.Len())
	for i := 0; i < value.Len(); i++ {
		element := value.Index(i)
		if element.Kind() == reflect.Ptr {
			if element.IsNil() {
				continue
			}
			element = element.Elem()
		}
		switch {
		case isSignedInt(element.Kind()):
			ids = append(ids, element.Int())
		case isUnsignedInt(element.Kind()):
			ids = append(ids, int64(element.Uint()))
		default:
			return nil, types.NewValidationFault(fmt.Sprintf("Field '%s' must be a list of identifiers.", name))
		}
	}
	return ids, nil
}

func isSignedInt(kind reflect.Kind) bool {
	return kind >= reflect.Int && kind <= reflect.Int64
}

func isUnsignedInt(kind reflect.Kind) bool {
	return kind >= reflect.Uint && kind <= reflect.Uint64
}

// jsonFieldName returns the wire name of a struct field: the json tag when
// present, the Go name otherwise.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	if name := strings.Split(tag, ",")[0]; name != "" {
		return name
	}
	return field.Name
}

// entityPK returns the value of the entity's primary key field, located by
// the bun ",pk" tag with a fallback to a field named ID.
func entityPK(entity any) (any, error) {
	value := reflect.Indirect(reflect.ValueOf(entity))
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity must be a struct, got %s", value.Kind())
	}
	entityType := value.Type()
	for i := 0; i < entityType.NumField(); i++ {
		tag := entityType.Field(i).Tag.Get("bun")
		if strings.Contains(tag, ",pk") {
			return value.Field(i).Interface(), nil
		}
	}
	if field := value.FieldByName("ID"); field.IsValid() {
		return field.Interface(), nil
	}
	return nil, fmt.Errorf("no primary key field on %s", entityType.Name())
}

// touchUpdatedAt refreshes an UpdatedAt timestamp field when the entity has
// one.
func touchUpdatedAt(entity any) {
	value := reflect.Indirect(reflect.ValueOf(entity))
	if value.Kind() != reflect.Struct {
		return
	}
	field := value.FieldByName("UpdatedAt")
	if field.IsValid() && field.CanSet() && field.Type() == reflect.TypeOf(time.Time{}) {
		field.Set(reflect.ValueOf(time.Now()))
	}
}
