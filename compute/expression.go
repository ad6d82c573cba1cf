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
	"fmt"
	"hash/maphash"
	"reflect"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/scalar"
)

var hashSeed = maphash.MakeSeed()

// Expression is a lazy computation node. Its dtype is discoverable via
// Type without materializing any data; a nil Type means the dtype can
// only be determined at evaluation time.
type Expression interface {
	fmt.Stringer
	Type() arrow.DataType
	Hash() uint64
	Equals(Expression) bool
}

// Column refers to a named dataframe column. It carries the column's
// dtype so operations can be type-checked at call time.
type Column struct {
	name  string
	dtype arrow.DataType
}

func NewColumn(name string, dtype arrow.DataType) *Column {
	return &Column{name: name, dtype: dtype}
}

func (c *Column) Name() string         { return c.name }
func (c *Column) Type() arrow.DataType { return c.dtype }
func (c *Column) String() string       { return c.name }

func (c *Column) Hash() uint64 {
	h := maphash.Hash{}
	h.SetSeed(hashSeed)
	h.WriteString(c.name)
	return h.Sum64()
}

func (c *Column) Equals(other Expression) bool {
	rhs, ok := other.(*Column)
	if !ok {
		return false
	}
	return c.name == rhs.name && arrow.TypeEqual(c.dtype, rhs.dtype)
}

// Literal is a scalar constant. During evaluation it is broadcast to
// the row count of the surrounding chunk.
type Literal struct {
	Value scalar.Scalar
}

// NewLiteral wraps an arbitrary Go value via scalar conversion.
func NewLiteral(val interface{}) *Literal {
	if sc, ok := val.(scalar.Scalar); ok {
		return &Literal{Value: sc}
	}
	return &Literal{Value: scalar.MakeScalar(val)}
}

func (l *Literal) Type() arrow.DataType { return l.Value.DataType() }
func (l *Literal) String() string       { return l.Value.String() }
func (l *Literal) IsValid() bool        { return l.Value.IsValid() }

func (l *Literal) Hash() uint64 { return scalar.Hash(hashSeed, l.Value) }

func (l *Literal) Equals(other Expression) bool {
	rhs, ok := other.(*Literal)
	if !ok {
		return false
	}
	return scalar.Equals(l.Value, rhs.Value)
}

// Call applies a registered function to argument expressions. The
// output dtype is resolved when the call is constructed if the
// function's options permit; otherwise it stays nil until evaluation.
type Call struct {
	funcName string
	args     []Expression
	options  FunctionOptions
	dtype    arrow.DataType

	hash uint64
}

func NewCall(name string, args []Expression, opts FunctionOptions, dtype arrow.DataType) *Call {
	c := &Call{funcName: name, args: args, options: opts, dtype: dtype}

	var h maphash.Hash
	h.SetSeed(hashSeed)
	h.WriteString(c.funcName)
	c.hash = h.Sum64()
	for _, arg := range c.args {
		c.hash = hashCombine(c.hash, arg.Hash())
	}
	return c
}

func (c *Call) FuncName() string         { return c.funcName }
func (c *Call) Args() []Expression       { return c.args }
func (c *Call) Options() FunctionOptions { return c.options }
func (c *Call) Type() arrow.DataType     { return c.dtype }

func (c *Call) String() string {
	var b strings.Builder
	b.WriteString(c.funcName)
	b.WriteByte('(')
	for i, arg := range c.args {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	if s, ok := c.options.(fmt.Stringer); ok {
		if b.Len() > len(c.funcName)+1 {
			b.WriteString(", ")
		}
		b.WriteString(s.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Hash is precomputed at construction, so sharing a call across
// goroutines needs no synchronization.
func (c *Call) Hash() uint64 { return c.hash }

func (c *Call) Equals(other Expression) bool {
	rhs, ok := other.(*Call)
	if !ok {
		return false
	}

	if c.funcName != rhs.funcName || len(c.args) != len(rhs.args) {
		return false
	}

	for i := range c.args {
		if !c.args[i].Equals(rhs.args[i]) {
			return false
		}
	}
	return reflect.DeepEqual(c.options, rhs.options)
}

func hashCombine(seed, value uint64) uint64 {
	seed ^= value + 0x9e3779b9 + (seed << 6) + (seed >> 2)
	return seed
}
