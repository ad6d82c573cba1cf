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

package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"

	"github.com/mansenfranzen/vaex/compute"
	"github.com/mansenfranzen/vaex/compute/structs"
)

// NullMarker is the textual rendering of a null cell.
const NullMarker = "--"

const previewRows = 10

// FormatCell renders a single cell of a realized column. Struct cells
// whose schema carries duplicate labels cannot round-trip through the
// generic conversion and are rendered with their positions spelled
// out; everything else uses the array's own string conversion.
func FormatCell(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return NullMarker
	}

	if st, ok := arr.(*array.Struct); ok {
		if structs.HasDuplicateLabels(st.DataType().(*arrow.StructType)) {
			return structs.FormatItem(st, i)
		}
	}
	return arr.ValueStr(i)
}

// chunkAt maps a column-wide row index to the owning chunk and the
// index within it.
func chunkAt(col *arrow.Chunked, row int) (arrow.Array, int) {
	for _, chunk := range col.Chunks() {
		if row < chunk.Len() {
			return chunk, row
		}
		row -= chunk.Len()
	}
	return nil, -1
}

// Cell renders the value at (name, row).
func (df *DataFrame) Cell(name string, row int) (string, error) {
	col, ok := df.column(name)
	if !ok {
		return "", fmt.Errorf("%w: no column named '%s'", arrow.ErrKey, name)
	}
	if row < 0 || int64(row) >= df.rows {
		return "", fmt.Errorf("%w: row %d for dataframe with %d rows", compute.ErrIndexRange, row, df.rows)
	}

	chunk, i := chunkAt(col, row)
	return FormatCell(chunk, i), nil
}

// Head renders the first n rows as a tab-separated preview table.
func (df *DataFrame) Head(n int) string {
	if int64(n) > df.rows {
		n = int(df.rows)
	}

	var b strings.Builder
	b.WriteByte('#')
	for _, name := range df.names {
		b.WriteByte('\t')
		b.WriteString(name)
	}
	b.WriteByte('\n')

	for row := 0; row < n; row++ {
		fmt.Fprintf(&b, "%d", row)
		for _, col := range df.cols {
			chunk, i := chunkAt(col, row)
			b.WriteByte('\t')
			b.WriteString(FormatCell(chunk, i))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (df *DataFrame) String() string { return df.Head(previewRows) }
