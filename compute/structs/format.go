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

package structs

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	json "github.com/goccy/go-json"
)

// HasDuplicateLabels reports whether st labels at least two fields
// with the same name. Generic struct-to-native conversions are not
// safe for such schemas; FormatItem is the rendering to use instead.
func HasDuplicateLabels(st *arrow.StructType) bool {
	seen := make(map[string]struct{}, st.NumFields())
	for _, f := range st.Fields() {
		seen[f.Name] = struct{}{}
	}
	return len(seen) < st.NumFields()
}

// FormatItem renders one struct row as "{'label(position)': value, ...}"
// with one entry per field in schema order and values encoded as JSON
// literals. Positions disambiguate entries when labels repeat. A row
// whose struct value is itself null renders as "null".
func FormatItem(arr *array.Struct, row int) string {
	if arr.IsNull(row) {
		return "null"
	}

	st := arr.DataType().(*arrow.StructType)

	parts := make([]string, st.NumFields())
	for i, f := range st.Fields() {
		child := arr.Field(i)

		enc, err := json.Marshal(child.GetOneForMarshal(row))
		if err != nil {
			enc = []byte(child.ValueStr(row))
		}
		parts[i] = fmt.Sprintf("'%s(%d)': %s", f.Name, i, enc)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
