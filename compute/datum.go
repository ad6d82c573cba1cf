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

package compute

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/scalar"
)

type DatumKind int

const (
	KindNone    DatumKind = iota // none
	KindScalar                   // scalar
	KindArray                    // array
	KindChunked                  // chunked_array
)

func (k DatumKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindChunked:
		return "chunked_array"
	}
	return "none"
}

const UnknownLength int64 = -1

// Datum is a variant for the value of a single evaluation step: a
// scalar, one realized chunk, or a whole chunked column.
type Datum interface {
	fmt.Stringer
	Kind() DatumKind
	Len() int64
	Type() arrow.DataType
	Equals(Datum) bool
	Release()
}

type EmptyDatum struct{}

func (EmptyDatum) String() string       { return "nullptr" }
func (EmptyDatum) Kind() DatumKind      { return KindNone }
func (EmptyDatum) Len() int64           { return UnknownLength }
func (EmptyDatum) Type() arrow.DataType { return nil }
func (EmptyDatum) Release()             {}
func (EmptyDatum) Equals(other Datum) bool {
	_, ok := other.(EmptyDatum)
	return ok
}

type ScalarDatum struct {
	Value scalar.Scalar
}

func (ScalarDatum) Kind() DatumKind         { return KindScalar }
func (ScalarDatum) Len() int64              { return 1 }
func (d *ScalarDatum) Type() arrow.DataType { return d.Value.DataType() }
func (d *ScalarDatum) String() string       { return d.Value.String() }

type releasable interface {
	Release()
}

func (d *ScalarDatum) Release() {
	if v, ok := d.Value.(releasable); ok {
		v.Release()
	}
}

func (d *ScalarDatum) Equals(other Datum) bool {
	if rhs, ok := other.(*ScalarDatum); ok {
		return scalar.Equals(d.Value, rhs.Value)
	}
	return false
}

type ArrayDatum struct {
	Value arrow.ArrayData
}

func (ArrayDatum) Kind() DatumKind          { return KindArray }
func (d *ArrayDatum) Type() arrow.DataType  { return d.Value.DataType() }
func (d *ArrayDatum) Len() int64            { return int64(d.Value.Len()) }
func (d *ArrayDatum) String() string        { return fmt.Sprintf("Array:{%s}", d.Value.DataType()) }
func (d *ArrayDatum) MakeArray() arrow.Array { return array.MakeFromData(d.Value) }

func (d *ArrayDatum) Release() {
	d.Value.Release()
	d.Value = nil
}

func (d *ArrayDatum) Equals(other Datum) bool {
	rhs, ok := other.(*ArrayDatum)
	if !ok {
		return false
	}

	left := d.MakeArray()
	defer left.Release()
	right := rhs.MakeArray()
	defer right.Release()

	return array.Equal(left, right)
}

type ChunkedDatum struct {
	Value *arrow.Chunked
}

func (ChunkedDatum) Kind() DatumKind         { return KindChunked }
func (d *ChunkedDatum) Type() arrow.DataType { return d.Value.DataType() }
func (d *ChunkedDatum) Len() int64           { return int64(d.Value.Len()) }
func (d *ChunkedDatum) String() string       { return fmt.Sprintf("Chunked:{%s}", d.Value.DataType()) }
func (d *ChunkedDatum) Chunks() []arrow.Array { return d.Value.Chunks() }

func (d *ChunkedDatum) Release() {
	d.Value.Release()
	d.Value = nil
}

func (d *ChunkedDatum) Equals(other Datum) bool {
	rhs, ok := other.(*ChunkedDatum)
	if !ok {
		return false
	}
	return array.ChunkedEqual(d.Value, rhs.Value)
}

// NewDatum wraps a value into the appropriate Datum, retaining any
// reference-counted input.
func NewDatum(value interface{}) Datum {
	switch v := value.(type) {
	case Datum:
		return v
	case arrow.Array:
		v.Data().Retain()
		return &ArrayDatum{Value: v.Data()}
	case *arrow.Chunked:
		v.Retain()
		return &ChunkedDatum{Value: v}
	case scalar.Scalar:
		return &ScalarDatum{Value: v}
	default:
		return &ScalarDatum{Value: scalar.MakeScalar(value)}
	}
}
