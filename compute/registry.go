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
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/mansenfranzen/vaex/internal/debug"
)

func debugValidateFunction(fn Function) {
	debug.Assert(fn.Validate() == nil, func() string {
		return "invalid function doc for '" + fn.Name() + "'"
	})
}

// FunctionRegistry maps function names to their implementations. A
// registry is owned by whoever constructs the engine; nothing in this
// module registers functions at package load time. Child registries
// allow scoped additions without mutating the parent.
type FunctionRegistry interface {
	CanAddFunction(fn Function, allowOverwrite bool) bool
	AddFunction(fn Function, allowOverwrite bool) bool
	CanAddAlias(target, source string) bool
	AddAlias(target, source string) bool
	GetFunction(name string) (Function, bool)
	GetFunctionNames() []string
	NumFunctions() int
}

func NewRegistry() FunctionRegistry {
	return &funcRegistry{
		nameToFunction: make(map[string]Function),
	}
}

func NewChildRegistry(parent FunctionRegistry) FunctionRegistry {
	return &funcRegistry{
		parent:         parent.(*funcRegistry),
		nameToFunction: make(map[string]Function),
	}
}

type funcRegistry struct {
	mx sync.RWMutex

	parent         *funcRegistry
	nameToFunction map[string]Function
}

func (reg *funcRegistry) CanAddFunction(fn Function, allowOverwrite bool) bool {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	return reg.doAddFunction(fn, allowOverwrite, false)
}

func (reg *funcRegistry) AddFunction(fn Function, allowOverwrite bool) bool {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	return reg.doAddFunction(fn, allowOverwrite, true)
}

func (reg *funcRegistry) CanAddAlias(target, source string) bool {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	return reg.doAddAlias(target, source, false)
}

func (reg *funcRegistry) AddAlias(target, source string) bool {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	return reg.doAddAlias(target, source, true)
}

func (reg *funcRegistry) GetFunction(name string) (Function, bool) {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	if fn, ok := reg.nameToFunction[name]; ok {
		return fn, ok
	}

	if reg.parent != nil {
		return reg.parent.GetFunction(name)
	}
	return nil, false
}

func (reg *funcRegistry) GetFunctionNames() []string {
	// a child shadowing a parent name must not report it twice
	names := make(map[string]struct{})
	reg.collectNames(names)

	out := maps.Keys(names)
	slices.Sort(out)
	return out
}

func (reg *funcRegistry) collectNames(names map[string]struct{}) {
	if reg.parent != nil {
		reg.parent.collectNames(names)
	}

	reg.mx.RLock()
	defer reg.mx.RUnlock()
	for name := range reg.nameToFunction {
		names[name] = struct{}{}
	}
}

func (reg *funcRegistry) NumFunctions() (n int) {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	n = len(reg.nameToFunction)
	if reg.parent != nil {
		n += reg.parent.NumFunctions()
	}
	return
}

func (reg *funcRegistry) canAddFuncName(name string, allowOverwrite bool) bool {
	if reg.parent != nil {
		reg.parent.mx.RLock()
		defer reg.parent.mx.RUnlock()

		if !reg.parent.canAddFuncName(name, allowOverwrite) {
			return false
		}
	}

	if !allowOverwrite {
		_, ok := reg.nameToFunction[name]
		return !ok
	}
	return true
}

func (reg *funcRegistry) doAddFunction(fn Function, allowOverwrite, add bool) bool {
	debugValidateFunction(fn)

	name := fn.Name()
	if !reg.canAddFuncName(name, allowOverwrite) {
		return false
	}

	if add {
		reg.nameToFunction[name] = fn
	}
	return true
}

func (reg *funcRegistry) doAddAlias(target, source string, add bool) bool {
	// source must exist in this registry or a parent
	fn, ok := reg.getLocked(source)
	if !ok {
		return false
	}

	if !reg.canAddFuncName(target, false) {
		return false
	}

	if add {
		reg.nameToFunction[target] = fn
	}
	return true
}

func (reg *funcRegistry) getLocked(name string) (Function, bool) {
	if fn, ok := reg.nameToFunction[name]; ok {
		return fn, ok
	}
	if reg.parent != nil {
		return reg.parent.GetFunction(name)
	}
	return nil, false
}
