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

package compute_test

import (
	"hash/maphash"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/stretchr/testify/assert"

	"github.com/mansenfranzen/vaex/compute"
)

func TestFieldRefVariants(t *testing.T) {
	byName := compute.FieldRefName("col1")
	assert.True(t, byName.IsName())
	assert.False(t, byName.IsIndex())
	assert.Equal(t, "col1", byName.Name())
	assert.Equal(t, -1, byName.Index())
	assert.Equal(t, "'col1'", byName.String())

	byPos := compute.FieldRefIndex(2)
	assert.True(t, byPos.IsIndex())
	assert.False(t, byPos.IsName())
	assert.Equal(t, 2, byPos.Index())
	assert.Equal(t, "", byPos.Name())
	assert.Equal(t, "2", byPos.String())
}

func TestFieldRefEquals(t *testing.T) {
	assert.True(t, compute.FieldRefName("a").Equals(compute.FieldRefName("a")))
	assert.False(t, compute.FieldRefName("a").Equals(compute.FieldRefName("b")))
	assert.True(t, compute.FieldRefIndex(1).Equals(compute.FieldRefIndex(1)))
	assert.False(t, compute.FieldRefIndex(1).Equals(compute.FieldRefIndex(2)))
	assert.False(t, compute.FieldRefName("1").Equals(compute.FieldRefIndex(1)))
}

func TestFieldRefHash(t *testing.T) {
	seed := maphash.MakeSeed()
	assert.Equal(t,
		compute.FieldRefName("a").Hash(seed),
		compute.FieldRefName("a").Hash(seed))
	assert.NotEqual(t,
		compute.FieldRefName("a").Hash(seed),
		compute.FieldRefName("b").Hash(seed))
	assert.Equal(t,
		compute.FieldRefIndex(3).Hash(seed),
		compute.FieldRefIndex(3).Hash(seed))
}

func TestFieldRefFindAll(t *testing.T) {
	fields := []arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "a", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}

	assert.Equal(t, []int{0, 2}, compute.FieldRefName("a").FindAll(fields))
	assert.Equal(t, []int{1}, compute.FieldRefName("b").FindAll(fields))
	assert.Empty(t, compute.FieldRefName("c").FindAll(fields))

	assert.Equal(t, []int{1}, compute.FieldRefIndex(1).FindAll(fields))
	assert.Empty(t, compute.FieldRefIndex(3).FindAll(fields))
	assert.Empty(t, compute.FieldRefIndex(-1).FindAll(fields))
}
