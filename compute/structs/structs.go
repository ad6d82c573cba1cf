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

// Package structs implements field access and projection over struct
// columns: extracting one field as a new column, and projecting an
// ordered subset of fields into a new struct column. Field names are
// validated when an operation is built; positional identifiers are
// resolved only at evaluation time against the realized chunk.
package structs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/bitutil"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/exp/slices"

	"github.com/mansenfranzen/vaex/compute"
	"github.com/mansenfranzen/vaex/datatype"
	"github.com/mansenfranzen/vaex/internal/debug"
)

// Registered function names. The "struct." aliases expose the same
// functions under their namespaced form.
const (
	GetFuncName     = "struct_get"
	ProjectFuncName = "struct_project"

	GetAlias     = "struct.get"
	ProjectAlias = "struct.project"
)

var (
	ErrNotStruct     = errors.New("expression does not have a struct dtype")
	ErrUnknownFields = errors.New("invalid field names provided")
)

// FieldOptions carries the field identifiers of a struct operation.
type FieldOptions struct {
	Refs []compute.FieldRef
}

func (FieldOptions) TypeName() string { return "FieldOptions" }

func (f *FieldOptions) String() string {
	if len(f.Refs) == 1 {
		return f.Refs[0].String()
	}

	parts := make([]string, len(f.Refs))
	for i, ref := range f.Refs {
		parts[i] = ref.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// assertStructType confirms the expression's declared dtype is struct
// without materializing any data.
func assertStructType(e compute.Expression) (*arrow.StructType, error) {
	dt := datatype.New(e.Type())
	if !dt.IsStruct() {
		return nil, fmt.Errorf("%w: got %s", ErrNotStruct, dt)
	}
	return dt.Arrow().(*arrow.StructType), nil
}

// validateFields checks every name ref against the set of labels in
// the schema. Positional refs are resolved lazily and skipped here.
func validateFields(st *arrow.StructType, refs ...compute.FieldRef) error {
	valid := make(map[string]struct{}, st.NumFields())
	for _, f := range st.Fields() {
		valid[f.Name] = struct{}{}
	}

	missing := map[string]struct{}{}
	for _, ref := range refs {
		if !ref.IsName() {
			continue
		}
		if _, ok := valid[ref.Name()]; !ok {
			missing[ref.Name()] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %v, valid field names are %v",
		ErrUnknownFields, sortedNames(missing), sortedNames(valid))
}

func sortedNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ResolveLabel maps a field ref to its label in st. Name refs pass
// through unchanged without an existence check; positional refs fail
// when outside [0, NumFields()).
func ResolveLabel(st *arrow.StructType, ref compute.FieldRef) (string, error) {
	if ref.IsName() {
		return ref.Name(), nil
	}

	i := ref.Index()
	if i < 0 || i >= st.NumFields() {
		return "", fmt.Errorf("%w: field index %d for struct with %d fields",
			compute.ErrIndexRange, i, st.NumFields())
	}
	return st.Field(i).Name, nil
}

// FieldNames returns the labels of e's struct dtype in schema order.
func FieldNames(e compute.Expression) ([]string, error) {
	st, err := assertStructType(e)
	if err != nil {
		return nil, err
	}

	names := make([]string, st.NumFields())
	for i, f := range st.Fields() {
		names[i] = f.Name
	}
	return names, nil
}

// FieldTypes maps each field label of e's struct dtype to its dtype.
// Duplicate labels collapse to the last field carrying them; use
// FieldNames when positions matter.
func FieldTypes(e compute.Expression) (map[string]datatype.DataType, error) {
	st, err := assertStructType(e)
	if err != nil {
		return nil, err
	}

	types := make(map[string]datatype.DataType, st.NumFields())
	for _, f := range st.Fields() {
		types[f.Name] = datatype.New(f.Type)
	}
	return types, nil
}

// Get builds the expression extracting a single field from a struct
// expression. Name refs are validated immediately; positional refs are
// checked only once a chunk is realized, so an out-of-range position
// surfaces from evaluation rather than from here.
func Get(e compute.Expression, ref compute.FieldRef) (compute.Expression, error) {
	st, err := assertStructType(e)
	if err != nil {
		return nil, err
	}
	if err := validateFields(st, ref); err != nil {
		return nil, err
	}

	var dtype arrow.DataType
	if idx := ref.FindAll(st.Fields()); len(idx) > 0 {
		dtype = st.Field(idx[0]).Type
	}

	opts := &FieldOptions{Refs: []compute.FieldRef{ref}}
	return compute.NewCall(GetFuncName, []compute.Expression{e}, opts, dtype), nil
}

// Project builds the expression projecting an ordered list of fields
// into a new struct expression. Refs may repeat; the result schema then
// carries duplicate labels.
func Project(e compute.Expression, refs []compute.FieldRef) (compute.Expression, error) {
	st, err := assertStructType(e)
	if err != nil {
		return nil, err
	}
	if err := validateFields(st, refs...); err != nil {
		return nil, err
	}

	dtype := projectedType(st, refs)
	opts := &FieldOptions{Refs: slices.Clone(refs)}
	return compute.NewCall(ProjectFuncName, []compute.Expression{e}, opts, dtype), nil
}

// projectedType resolves the output schema eagerly when every ref is
// resolvable from the declared dtype; an out-of-range positional ref
// leaves the dtype undetermined until evaluation reports the error.
func projectedType(st *arrow.StructType, refs []compute.FieldRef) arrow.DataType {
	fields := make([]arrow.Field, len(refs))
	for i, ref := range refs {
		idx := ref.FindAll(st.Fields())
		if len(idx) == 0 {
			return nil
		}
		f := st.Field(idx[0])
		fields[i] = arrow.Field{Name: f.Name, Type: f.Type, Nullable: true}
	}
	return arrow.StructOf(fields...)
}

func structArg(d compute.Datum) (*array.Struct, error) {
	ad, ok := d.(*compute.ArrayDatum)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array datum, got %s", arrow.ErrInvalid, d.Kind())
	}

	arr := ad.MakeArray()
	st, ok := arr.(*array.Struct)
	if !ok {
		defer arr.Release()
		return nil, fmt.Errorf("%w: expected a struct array, got %s", ErrNotStruct, arr.DataType())
	}
	return st, nil
}

// extractField resolves ref against the chunk's schema and returns the
// resolved label together with the field's values. The parent struct's
// validity is merged into the output: a row is null when the parent row
// is null or the field's own value is null. The two null states stay
// untouched on the input.
func extractField(mem memory.Allocator, arr *array.Struct, ref compute.FieldRef) (string, arrow.Array, error) {
	st := arr.DataType().(*arrow.StructType)

	label, err := ResolveLabel(st, ref)
	if err != nil {
		return "", nil, err
	}

	idx := ref.FindAll(st.Fields())
	debug.Assert(len(idx) > 0, "resolved label with no matching field")

	child := arr.Field(idx[0])
	out, err := mergeParentValidity(mem, arr, child)
	if err != nil {
		return "", nil, err
	}
	return label, out, nil
}

// mergeParentValidity rebuilds the child's validity bitmap as the
// conjunction of parent and child validity, reusing the child's value
// buffers. A parent without nulls returns the child untouched.
func mergeParentValidity(mem memory.Allocator, parent *array.Struct, child arrow.Array) (arrow.Array, error) {
	if parent.NullN() == 0 {
		child.Retain()
		return child, nil
	}

	data := child.Data()
	length := data.Len()
	offset := data.Offset()

	validity := memory.NewResizableBuffer(mem)
	defer validity.Release()
	validity.Resize(int(bitutil.BytesForBits(int64(offset + length))))

	nulls := 0
	for i := 0; i < length; i++ {
		ok := parent.IsValid(i) && child.IsValid(i)
		bitutil.SetBitTo(validity.Bytes(), offset+i, ok)
		if !ok {
			nulls++
		}
	}

	bufs := make([]*memory.Buffer, len(data.Buffers()))
	copy(bufs, data.Buffers())
	bufs[0] = validity

	merged := array.NewData(data.DataType(), length, bufs, data.Children(), nulls, offset)
	defer merged.Release()
	return array.MakeFromData(merged), nil
}

func getExec(ctx context.Context, opts compute.FunctionOptions, args ...compute.Datum) (compute.Datum, error) {
	fo, ok := opts.(*FieldOptions)
	if !ok || len(fo.Refs) != 1 {
		return nil, fmt.Errorf("%w: %s requires FieldOptions with exactly one field ref", arrow.ErrInvalid, GetFuncName)
	}

	arr, err := structArg(args[0])
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	_, out, err := extractField(compute.GetAllocator(ctx), arr, fo.Refs[0])
	if err != nil {
		return nil, err
	}
	defer out.Release()

	return compute.NewDatum(out), nil
}

func projectExec(ctx context.Context, opts compute.FunctionOptions, args ...compute.Datum) (compute.Datum, error) {
	fo, ok := opts.(*FieldOptions)
	if !ok || len(fo.Refs) == 0 {
		return nil, fmt.Errorf("%w: %s requires FieldOptions with at least one field ref", arrow.ErrInvalid, ProjectFuncName)
	}

	arr, err := structArg(args[0])
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	mem := compute.GetAllocator(ctx)

	names := make([]string, len(fo.Refs))
	cols := make([]arrow.Array, len(fo.Refs))
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i, ref := range fo.Refs {
		label, col, err := extractField(mem, arr, ref)
		if err != nil {
			return nil, err
		}
		names[i] = label
		cols[i] = col
	}

	// The projected struct carries no row-level validity bitmap: a
	// source row with a null parent becomes a valid row whose fields
	// are all null, since every extraction merged the parent validity.
	out, err := array.NewStructArray(cols, names)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	return compute.NewDatum(out), nil
}

var (
	getDoc = compute.FunctionDoc{
		Summary:         "Return a single field from a struct array",
		Description:     "The field is identified by name or by position.\nNames are checked when the operation is built, positions when a\nchunk is evaluated.",
		ArgNames:        []string{"struct"},
		OptionsClass:    "FieldOptions",
		OptionsRequired: true,
	}
	projectDoc = compute.FunctionDoc{
		Summary:         "Project fields of a struct array to a new struct array",
		Description:     "Fields are picked in the order given and may repeat, in which\ncase the resulting struct carries duplicate labels.",
		ArgNames:        []string{"struct"},
		OptionsClass:    "FieldOptions",
		OptionsRequired: true,
	}
)

// RegisterFunctions adds struct_get and struct_project, plus their
// namespaced aliases, to reg. Call it while initializing the engine
// that owns the registry.
func RegisterFunctions(reg compute.FunctionRegistry) {
	for _, fn := range []*compute.ScalarFunction{
		compute.NewScalarFunction(GetFuncName, compute.Unary(), getDoc, getExec),
		compute.NewScalarFunction(ProjectFuncName, compute.Unary(), projectDoc, projectExec),
	} {
		if !reg.AddFunction(fn, false) {
			panic(fmt.Sprintf("function '%s' already registered", fn.Name()))
		}
	}

	reg.AddAlias(GetAlias, GetFuncName)
	reg.AddAlias(ProjectAlias, ProjectFuncName)
}
