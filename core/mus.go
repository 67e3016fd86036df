// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Chunk and Example are
// flat structs, so the serializers are written by hand on top of the
// mus-go primitive serializers rather than generated.

var vectorMUS = ord.NewSliceSer[float32](varint.Float32)

var (
	_ mus.Serializer[ID]      = IDMUS
	_ mus.Serializer[Chunk]   = ChunkMUS
	_ mus.Serializer[Example] = ExampleMUS
)

// IDMUS serializes ID values as varint-encoded uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// ChunkMUS serializes Chunk values. Field order is part of the stored
// format and must not change without a data migration.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.TaskName, bs[n:])
	n += ord.String.Marshal(c.Heading, bs[n:])
	n += ord.String.Marshal(c.URL, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.TaskName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Heading, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	return c, n + n1, err
}

func (chunkMUS) Size(c Chunk) int {
	return IDMUS.Size(c.Id) +
		ord.String.Size(c.TaskName) +
		ord.String.Size(c.Heading) +
		ord.String.Size(c.URL) +
		ord.String.Size(c.Text) +
		vectorMUS.Size(c.Vector)
}

func (chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for range 4 {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	n1, err = vectorMUS.Skip(bs[n:])
	return n + n1, err
}

// ExampleMUS serializes Example values. Field order is part of the stored
// format and must not change without a data migration.
var ExampleMUS = exampleMUS{}

type exampleMUS struct{}

func (exampleMUS) Marshal(e Example, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += ord.String.Marshal(e.TaskName, bs[n:])
	n += ord.String.Marshal(e.Title, bs[n:])
	n += ord.String.Marshal(e.Explanation, bs[n:])
	n += vectorMUS.Marshal(e.Vector, bs[n:])
	return n
}

func (exampleMUS) Unmarshal(bs []byte) (e Example, n int, err error) {
	var n1 int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.TaskName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.Explanation, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	return e, n + n1, err
}

func (exampleMUS) Size(e Example) int {
	return IDMUS.Size(e.Id) +
		ord.String.Size(e.TaskName) +
		ord.String.Size(e.Title) +
		ord.String.Size(e.Explanation) +
		vectorMUS.Size(e.Vector)
}

func (exampleMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for range 3 {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	n1, err = vectorMUS.Skip(bs[n:])
	return n + n1, err
}
