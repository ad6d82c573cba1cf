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

// Package dataframe owns named chunked columns and evaluates lazy
// expressions over them, one chunk at a time across worker goroutines.
package dataframe

import (
	"context"
	"fmt"
	"runtime"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/arrow/scalar"
	"golang.org/x/sync/errgroup"

	"github.com/mansenfranzen/vaex/compute"
	"github.com/mansenfranzen/vaex/datatype"
)

type DataFrame struct {
	mem memory.Allocator
	reg compute.FunctionRegistry

	names []string
	cols  []*arrow.Chunked
	rows  int64
}

// FromArrays builds a dataframe from single-chunk columns. The arrays
// are retained; callers keep ownership of their own references.
func FromArrays(mem memory.Allocator, reg compute.FunctionRegistry, names []string, arrs []arrow.Array) (*DataFrame, error) {
	cols := make([]*arrow.Chunked, len(arrs))
	for i, arr := range arrs {
		cols[i] = arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
	}
	df, err := FromChunked(mem, reg, names, cols)
	for _, c := range cols {
		c.Release()
	}
	return df, err
}

// FromChunked builds a dataframe from chunked columns. All columns
// must have the same total length and identical chunk boundaries, so
// that expressions can be evaluated chunk by chunk across columns.
func FromChunked(mem memory.Allocator, reg compute.FunctionRegistry, names []string, cols []*arrow.Chunked) (*DataFrame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d column names for %d columns", arrow.ErrInvalid, len(names), len(cols))
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: dataframe requires at least one column", arrow.ErrInvalid)
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column name '%s'", arrow.ErrInvalid, name)
		}
		seen[name] = struct{}{}
	}

	for _, col := range cols[1:] {
		if err := sameChunking(cols[0], col); err != nil {
			return nil, err
		}
	}

	df := &DataFrame{
		mem:   mem,
		reg:   reg,
		names: append([]string(nil), names...),
		cols:  make([]*arrow.Chunked, len(cols)),
		rows:  int64(cols[0].Len()),
	}
	for i, col := range cols {
		col.Retain()
		df.cols[i] = col
	}
	return df, nil
}

func sameChunking(ref, col *arrow.Chunked) error {
	if col.Len() != ref.Len() {
		return fmt.Errorf("%w: columns have differing lengths: %d != %d", arrow.ErrInvalid, col.Len(), ref.Len())
	}
	if len(col.Chunks()) != len(ref.Chunks()) {
		return fmt.Errorf("%w: columns have differing chunk counts: %d != %d", arrow.ErrInvalid, len(col.Chunks()), len(ref.Chunks()))
	}
	for i, chunk := range col.Chunks() {
		if chunk.Len() != ref.Chunks()[i].Len() {
			return fmt.Errorf("%w: chunk %d length mismatch: %d != %d", arrow.ErrInvalid, i, chunk.Len(), ref.Chunks()[i].Len())
		}
	}
	return nil
}

func (df *DataFrame) Release() {
	for _, col := range df.cols {
		col.Release()
	}
	df.cols = nil
}

func (df *DataFrame) NumRows() int64 { return df.rows }
func (df *DataFrame) NumCols() int   { return len(df.names) }

func (df *DataFrame) ColumnNames() []string {
	return append([]string(nil), df.names...)
}

// DTypes maps every column name to its dtype.
func (df *DataFrame) DTypes() map[string]datatype.DataType {
	out := make(map[string]datatype.DataType, len(df.names))
	for i, name := range df.names {
		out[name] = datatype.New(df.cols[i].DataType())
	}
	return out
}

func (df *DataFrame) column(name string) (*arrow.Chunked, bool) {
	for i, n := range df.names {
		if n == name {
			return df.cols[i], true
		}
	}
	return nil, false
}

// Col returns a column expression carrying the column's dtype, ready
// for use with operations that type-check at call time.
func (df *DataFrame) Col(name string) (*compute.Column, error) {
	col, ok := df.column(name)
	if !ok {
		return nil, fmt.Errorf("%w: no column named '%s'", arrow.ErrKey, name)
	}
	return compute.NewColumn(name, col.DataType()), nil
}

// Evaluate materializes expr into a chunked column with the same chunk
// boundaries as the dataframe. Chunks of a function call are evaluated
// concurrently; output order always matches input order. The caller
// owns the returned column.
func (df *DataFrame) Evaluate(ctx context.Context, expr compute.Expression) (*arrow.Chunked, error) {
	ctx = compute.WithAllocator(ctx, df.mem)
	return df.evaluate(ctx, expr)
}

func (df *DataFrame) evaluate(ctx context.Context, expr compute.Expression) (*arrow.Chunked, error) {
	switch e := expr.(type) {
	case *compute.Column:
		col, ok := df.column(e.Name())
		if !ok {
			return nil, fmt.Errorf("%w: no column named '%s'", arrow.ErrKey, e.Name())
		}
		col.Retain()
		return col, nil
	case *compute.Literal:
		return df.broadcast(e.Value)
	case *compute.Call:
		return df.evaluateCall(ctx, e)
	}
	return nil, fmt.Errorf("%w: cannot evaluate expression %s", arrow.ErrNotImplemented, expr)
}

// broadcast repeats a scalar to the dataframe's chunk layout.
func (df *DataFrame) broadcast(sc scalar.Scalar) (*arrow.Chunked, error) {
	ref := df.cols[0].Chunks()
	chunks := make([]arrow.Array, len(ref))
	for i, c := range ref {
		arr, err := scalar.MakeArrayFromScalar(sc, c.Len(), df.mem)
		if err != nil {
			for _, a := range chunks[:i] {
				a.Release()
			}
			return nil, err
		}
		chunks[i] = arr
	}

	out := arrow.NewChunked(sc.DataType(), chunks)
	for _, a := range chunks {
		a.Release()
	}
	return out, nil
}

func (df *DataFrame) evaluateCall(ctx context.Context, call *compute.Call) (*arrow.Chunked, error) {
	argCols := make([]*arrow.Chunked, len(call.Args()))
	defer func() {
		for _, c := range argCols {
			if c != nil {
				c.Release()
			}
		}
	}()

	for i, arg := range call.Args() {
		col, err := df.evaluate(ctx, arg)
		if err != nil {
			return nil, err
		}
		argCols[i] = col
	}

	nchunks := 0
	if len(argCols) > 0 {
		nchunks = len(argCols[0].Chunks())
	}

	out := make([]arrow.Array, nchunks)
	releaseOut := func() {
		for _, a := range out {
			if a != nil {
				a.Release()
			}
		}
	}

	eg, cctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i := 0; i < nchunks; i++ {
		i := i
		eg.Go(func() error {
			args := make([]compute.Datum, len(argCols))
			for j, col := range argCols {
				args[j] = compute.NewDatum(col.Chunks()[i])
			}
			defer func() {
				for _, d := range args {
					d.Release()
				}
			}()

			res, err := compute.CallFunction(cctx, df.reg, call.FuncName(), call.Options(), args...)
			if err != nil {
				return err
			}
			defer res.Release()

			ad, ok := res.(*compute.ArrayDatum)
			if !ok {
				return fmt.Errorf("%w: function '%s' returned a %s datum for an array input",
					arrow.ErrInvalid, call.FuncName(), res.Kind())
			}
			out[i] = ad.MakeArray()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		releaseOut()
		return nil, err
	}

	// Chunk dtypes are authoritative over the eagerly resolved call
	// dtype, which may differ in field nullability.
	dtype := call.Type()
	if nchunks > 0 {
		dtype = out[0].DataType()
	}
	if dtype == nil {
		releaseOut()
		return nil, fmt.Errorf("%w: cannot determine dtype of '%s' without data", arrow.ErrInvalid, call.FuncName())
	}

	chunked := arrow.NewChunked(dtype, out)
	releaseOut()
	return chunked, nil
}
