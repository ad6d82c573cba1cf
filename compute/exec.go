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
	"context"
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

type ctxAllocKey struct{}

// WithAllocator returns a new context with the provided allocator
// embedded into the context for use by function kernels.
func WithAllocator(ctx context.Context, mem memory.Allocator) context.Context {
	return context.WithValue(ctx, ctxAllocKey{}, mem)
}

// GetAllocator retrieves the allocator from the context, or
// memory.DefaultAllocator if none was set.
func GetAllocator(ctx context.Context) memory.Allocator {
	mem, ok := ctx.Value(ctxAllocKey{}).(memory.Allocator)
	if !ok {
		return memory.DefaultAllocator
	}
	return mem
}

// CallFunction looks name up in the registry and executes it over the
// datums of one chunk. Errors from the function are propagated as-is.
func CallFunction(ctx context.Context, reg FunctionRegistry, name string, opts FunctionOptions, args ...Datum) (Datum, error) {
	fn, ok := reg.GetFunction(name)
	if !ok {
		return nil, fmt.Errorf("%w: function '%s' not found in registry", arrow.ErrKey, name)
	}

	return fn.Execute(ctx, opts, args...)
}
