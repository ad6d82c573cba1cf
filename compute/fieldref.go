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
	"encoding/binary"
	"errors"
	"hash/maphash"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
)

var (
	ErrIndexRange = errors.New("index out of range")
)

type refImpl interface {
	findAll(fields []arrow.Field) []int
	hash(h *maphash.Hash)
	String() string
}

type nameRef string

func (ref nameRef) findAll(fields []arrow.Field) []int {
	out := []int{}
	for i, f := range fields {
		if f.Name == string(ref) {
			out = append(out, i)
		}
	}
	return out
}

func (ref nameRef) hash(h *maphash.Hash) { h.WriteString(string(ref)) }
func (ref nameRef) String() string       { return "'" + string(ref) + "'" }

type posRef int

func (ref posRef) findAll(fields []arrow.Field) []int {
	if int(ref) < 0 || int(ref) >= len(fields) {
		return nil
	}
	return []int{int(ref)}
}

func (ref posRef) hash(h *maphash.Hash) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ref))
	h.Write(buf[:])
}

func (ref posRef) String() string { return strconv.Itoa(int(ref)) }

// FieldRef identifies one field of a struct column, either by its
// label or by its position in the schema. Positions always identify
// at most one field; labels may match several when a schema carries
// duplicate labels.
type FieldRef struct {
	impl refImpl
}

func FieldRefName(n string) FieldRef { return FieldRef{impl: nameRef(n)} }

func FieldRefIndex(i int) FieldRef { return FieldRef{impl: posRef(i)} }

func (f FieldRef) IsName() bool {
	_, ok := f.impl.(nameRef)
	return ok
}

func (f FieldRef) IsIndex() bool {
	_, ok := f.impl.(posRef)
	return ok
}

// Name returns the referenced label, or "" for positional refs.
func (f FieldRef) Name() string {
	n, _ := f.impl.(nameRef)
	return string(n)
}

// Index returns the referenced position, or -1 for name refs.
func (f FieldRef) Index() int {
	p, ok := f.impl.(posRef)
	if !ok {
		return -1
	}
	return int(p)
}

func (f FieldRef) String() string {
	if f.impl == nil {
		return "<invalid ref>"
	}
	return f.impl.String()
}

func (f FieldRef) Equals(other FieldRef) bool { return f.impl == other.impl }

func (f FieldRef) hash(h *maphash.Hash) { f.impl.hash(h) }

func (f FieldRef) Hash(seed maphash.Seed) uint64 {
	h := maphash.Hash{}
	h.SetSeed(seed)
	f.hash(&h)
	return h.Sum64()
}

// FindAll returns the positions in fields this ref resolves to: every
// position whose label matches for name refs, the position itself for
// in-range positional refs, and nothing otherwise.
func (f FieldRef) FindAll(fields []arrow.Field) []int {
	return f.impl.findAll(fields)
}
