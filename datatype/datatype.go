// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datatype wraps arrow data types with the predicates the
// expression engine needs when deciding whether an operation applies
// to a column.
package datatype

import (
	"github.com/apache/arrow/go/v17/arrow"
)

// DataType is a thin wrapper around a concrete arrow.DataType.
// The zero value represents an unknown type.
type DataType struct {
	dt arrow.DataType
}

func New(dt arrow.DataType) DataType { return DataType{dt: dt} }

// Arrow returns the wrapped arrow type, or nil for the zero value.
func (d DataType) Arrow() arrow.DataType { return d.dt }

func (d DataType) ID() arrow.Type {
	if d.dt == nil {
		return arrow.NULL
	}
	return d.dt.ID()
}

func (d DataType) IsStruct() bool {
	_, ok := d.dt.(*arrow.StructType)
	return ok
}

func (d DataType) IsNested() bool {
	if d.dt == nil {
		return false
	}
	return arrow.IsNested(d.dt.ID())
}

func (d DataType) IsNumeric() bool {
	if d.dt == nil {
		return false
	}
	id := d.dt.ID()
	return arrow.IsInteger(id) || arrow.IsFloating(id)
}

func (d DataType) IsString() bool {
	id := d.ID()
	return id == arrow.STRING || id == arrow.LARGE_STRING
}

// Fields returns the child fields for nested types, nil otherwise.
func (d DataType) Fields() []arrow.Field {
	if nested, ok := d.dt.(arrow.NestedType); ok {
		return nested.Fields()
	}
	return nil
}

func (d DataType) Equal(other DataType) bool {
	if d.dt == nil || other.dt == nil {
		return d.dt == other.dt
	}
	return arrow.TypeEqual(d.dt, other.dt)
}

func (d DataType) String() string {
	if d.dt == nil {
		return "unknown"
	}
	return d.dt.String()
}
