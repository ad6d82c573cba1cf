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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"

	"github.com/mansenfranzen/vaex/compute"
)

type mockFn struct {
	name string
}

func (m *mockFn) Name() string           { return m.name }
func (*mockFn) Kind() compute.FuncKind   { return compute.FuncScalar }
func (*mockFn) Arity() compute.Arity     { return compute.Unary() }
func (*mockFn) Doc() compute.FunctionDoc { return compute.EmptyFuncDoc }
func (*mockFn) Execute(context.Context, compute.FunctionOptions, ...compute.Datum) (compute.Datum, error) {
	return nil, errors.New("not implemented")
}
func (*mockFn) DefaultOptions() compute.FunctionOptions { return nil }
func (*mockFn) Validate() error                         { return nil }

func prefilledRegistry() compute.FunctionRegistry {
	reg := compute.NewRegistry()
	reg.AddFunction(&mockFn{name: "base1"}, false)
	reg.AddFunction(&mockFn{name: "base2"}, false)
	return reg
}

func TestRegistryBasics(t *testing.T) {
	base := prefilledRegistry()

	tests := []struct {
		name          string
		factory       func() compute.FunctionRegistry
		nfuncs        int
		expectedNames []string
	}{
		{"default", compute.NewRegistry, 0, []string{}},
		{"nested", func() compute.FunctionRegistry {
			return compute.NewChildRegistry(base)
		}, base.NumFunctions(), base.GetFunctionNames()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := tt.factory()
			assert.Equal(t, tt.nfuncs, registry.NumFunctions())

			fn := &mockFn{name: "f1"}
			assert.True(t, registry.AddFunction(fn, false))
			assert.Equal(t, tt.nfuncs+1, registry.NumFunctions())

			f1, ok := registry.GetFunction("f1")
			assert.True(t, ok)
			assert.Same(t, fn, f1)

			// non-existent
			_, ok = registry.GetFunction("f2")
			assert.False(t, ok)

			// name collision
			f2 := &mockFn{name: "f1"}
			assert.False(t, registry.AddFunction(f2, false))

			// allow overwriting
			assert.True(t, registry.AddFunction(f2, true))
			f1, ok = registry.GetFunction("f1")
			assert.True(t, ok)
			assert.Same(t, f2, f1)

			expected := append(tt.expectedNames, "f1")
			slices.Sort(expected)
			assert.Equal(t, expected, registry.GetFunctionNames())

			// aliases
			assert.False(t, registry.AddAlias("f33", "f3")) // doesn't exist
			assert.True(t, registry.AddAlias("f11", "f1"))
			f1, ok = registry.GetFunction("f11")
			assert.True(t, ok)
			assert.Same(t, f2, f1)
		})
	}
}

func TestRegistryChildIsolation(t *testing.T) {
	base := prefilledRegistry()
	nbase := base.NumFunctions()

	child := compute.NewChildRegistry(base)
	assert.True(t, child.AddFunction(&mockFn{name: "childonly"}, false))

	// additions stay local to the child
	_, ok := base.GetFunction("childonly")
	assert.False(t, ok)
	_, ok = child.GetFunction("childonly")
	assert.True(t, ok)
	assert.Equal(t, nbase, base.NumFunctions())

	// parent names resolve through the child
	_, ok = child.GetFunction("base1")
	assert.True(t, ok)

	// without overwrite a parent name cannot be shadowed
	assert.False(t, child.CanAddFunction(&mockFn{name: "base1"}, false))
	assert.False(t, child.AddFunction(&mockFn{name: "base1"}, false))

	// aliases may target functions owned by the parent
	assert.True(t, child.CanAddAlias("b1", "base1"))
	assert.True(t, child.AddAlias("b1", "base1"))
	_, ok = base.GetFunction("b1")
	assert.False(t, ok)
}

func TestRegistryShadowedNamesListedOnce(t *testing.T) {
	base := prefilledRegistry()
	child := compute.NewChildRegistry(base)
	assert.True(t, child.AddFunction(&mockFn{name: "base1"}, true))

	names := child.GetFunctionNames()
	assert.Equal(t, []string{"base1", "base2"}, names)
}
