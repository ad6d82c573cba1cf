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

package dataframe_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansenfranzen/vaex/compute"
	"github.com/mansenfranzen/vaex/dataframe"
)

func TestFormatCell(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ints := buildInt64(t, mem, []int64{7, 0}, []bool{true, false})
	defer ints.Release()

	assert.Equal(t, "7", dataframe.FormatCell(ints, 0))
	assert.Equal(t, dataframe.NullMarker, dataframe.FormatCell(ints, 1))
}

func TestFormatCellDuplicateLabels(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	first := buildInt64(t, mem, []int64{1}, nil)
	defer first.Release()
	second := buildInt64(t, mem, []int64{2}, nil)
	defer second.Release()

	arr, err := array.NewStructArray([]arrow.Array{first, second}, []string{"a", "a"})
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, "{'a(0)': 1, 'a(1)': 2}", dataframe.FormatCell(arr, 0))
}

func TestCell(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	c1 := buildInt64(t, mem, []int64{1, 2}, nil)
	defer c1.Release()
	c2 := buildInt64(t, mem, []int64{0}, []bool{false})
	defer c2.Release()
	col := chunkedOf(c1, c2)
	defer col.Release()

	df, err := dataframe.FromChunked(mem, newRegistry(), []string{"n"}, []*arrow.Chunked{col})
	require.NoError(t, err)
	defer df.Release()

	// row indices span chunk boundaries
	for row, want := range []string{"1", "2", "--"} {
		got, err := df.Cell("n", row)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = df.Cell("missing", 0)
	assert.ErrorIs(t, err, arrow.ErrKey)

	_, err = df.Cell("n", 3)
	assert.ErrorIs(t, err, compute.ErrIndexRange)

	_, err = df.Cell("n", -1)
	assert.ErrorIs(t, err, compute.ErrIndexRange)
}

func TestHead(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ints := buildInt64(t, mem, []int64{1, 0}, []bool{true, false})
	defer ints.Release()
	strs := buildString(t, mem, []string{"x", "y"}, nil)
	defer strs.Release()

	df, err := dataframe.FromArrays(mem, newRegistry(),
		[]string{"n", "s"}, []arrow.Array{ints, strs})
	require.NoError(t, err)
	defer df.Release()

	want := "#\tn\ts\n" +
		"0\t1\tx\n" +
		"1\t--\ty\n"
	assert.Equal(t, want, df.Head(5))
	assert.Equal(t, want, df.String())
	assert.Equal(t, "#\tn\ts\n0\t1\tx\n", df.Head(1))
}
