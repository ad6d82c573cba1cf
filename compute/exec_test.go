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
	"context"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansenfranzen/vaex/compute"
)

func passthroughFn(name string, arity compute.Arity, doc compute.FunctionDoc) *compute.ScalarFunction {
	return compute.NewScalarFunction(name, arity, doc,
		func(ctx context.Context, opts compute.FunctionOptions, args ...compute.Datum) (compute.Datum, error) {
			return compute.EmptyDatum{}, nil
		})
}

func TestCallFunctionUnknown(t *testing.T) {
	reg := compute.NewRegistry()

	_, err := compute.CallFunction(context.Background(), reg, "nope", nil)
	assert.ErrorIs(t, err, arrow.ErrKey)
	assert.ErrorContains(t, err, "nope")
}

func TestCallFunctionArity(t *testing.T) {
	reg := compute.NewRegistry()
	require.True(t, reg.AddFunction(passthroughFn("unary", compute.Unary(), compute.EmptyFuncDoc), false))

	_, err := compute.CallFunction(context.Background(), reg, "unary", nil)
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	_, err = compute.CallFunction(context.Background(), reg, "unary", nil, compute.EmptyDatum{}, compute.EmptyDatum{})
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	_, err = compute.CallFunction(context.Background(), reg, "unary", nil, compute.EmptyDatum{})
	assert.NoError(t, err)
}

func TestCallFunctionOptionsRequired(t *testing.T) {
	doc := compute.FunctionDoc{
		Summary:         "Echo the input",
		ArgNames:        []string{"arg"},
		OptionsClass:    "stringerOpts",
		OptionsRequired: true,
	}

	reg := compute.NewRegistry()
	require.True(t, reg.AddFunction(passthroughFn("echo", compute.Unary(), doc), false))

	_, err := compute.CallFunction(context.Background(), reg, "echo", nil, compute.EmptyDatum{})
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	assert.ErrorContains(t, err, "cannot be called without options")

	_, err = compute.CallFunction(context.Background(), reg, "echo", &stringerOpts{Repr: "x"}, compute.EmptyDatum{})
	assert.NoError(t, err)
}

func TestContextAllocator(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, memory.DefaultAllocator, compute.GetAllocator(ctx))

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	ctx = compute.WithAllocator(ctx, mem)
	assert.Same(t, mem, compute.GetAllocator(ctx))
}

func TestValidateFunctionDocs(t *testing.T) {
	assert.ErrorIs(t, compute.ValidateFunctionSummary("ends with a point."), arrow.ErrInvalid)
	assert.ErrorIs(t, compute.ValidateFunctionSummary("has a\nnewline"), arrow.ErrInvalid)
	assert.NoError(t, compute.ValidateFunctionSummary("fine summary"))

	assert.ErrorIs(t, compute.ValidateFunctionDescription("trailing newline\n"), arrow.ErrInvalid)
	assert.NoError(t, compute.ValidateFunctionDescription("short description"))
}
