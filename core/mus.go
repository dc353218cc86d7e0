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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the four record collections. The record
// set is small and stable, so the serializers are maintained by hand instead
// of generated. Field order is part of the storage format: append new fields
// at the end only.

var (
	// IDMUS serializes IDs.
	IDMUS = idMUS{}
	// RoleMUS serializes message roles.
	RoleMUS = roleMUS{}
	// DocumentMUS serializes Document records.
	DocumentMUS = documentMUS{}
	// ChunkMUS serializes Chunk records.
	ChunkMUS = chunkMUS{}
	// ConversationMUS serializes Conversation records.
	ConversationMUS = conversationMUS{}
	// SourceMUS serializes Source attributions.
	SourceMUS = sourceMUS{}
	// MessageMUS serializes Message records.
	MessageMUS = messageMUS{}

	vectorMUS  = ord.NewSliceSer[float32](varint.Float32)
	sourcesMUS = ord.NewSliceSer[Source](SourceMUS)
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type roleMUS struct{}

func (s roleMUS) Marshal(v Role, bs []byte) int {
	return varint.Int.Marshal(int(v), bs)
}

func (s roleMUS) Unmarshal(bs []byte) (Role, int, error) {
	v, n, err := varint.Int.Unmarshal(bs)
	return Role(v), n, err
}

func (s roleMUS) Size(v Role) int {
	return varint.Int.Size(int(v))
}

func (s roleMUS) Skip(bs []byte) (int, error) {
	return varint.Int.Skip(bs)
}

// Timestamps are stored as Unix microseconds.

func marshalTime(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

func skipTime(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type documentMUS struct{}

func (s documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(v.OriginalName, bs[n:])
	n += ord.String.Marshal(v.FileType, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += IDMUS.Marshal(v.Fingerprint, bs[n:])
	n += ord.Bool.Marshal(v.Indexed, bs[n:])
	n += marshalTime(v.UploadedAt, bs[n:])
	return n
}

func (s documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.OriginalName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.FileType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Indexed, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UploadedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s documentMUS) Size(v Document) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Filename) +
		ord.String.Size(v.OriginalName) +
		ord.String.Size(v.FileType) +
		ord.String.Size(v.Content) +
		IDMUS.Size(v.Fingerprint) +
		ord.Bool.Size(v.Indexed) +
		sizeTime(v.UploadedAt)
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.Bool.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = skipTime(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type chunkMUS struct{}

func (s chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocumentId, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	return n
}

func (s chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.DocumentId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Position, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	// A failed embedding is stored as nil, never as an empty vector.
	if len(v.Vector) == 0 {
		v.Vector = nil
	}
	return v, n, nil
}

func (s chunkMUS) Size(v Chunk) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.DocumentId) +
		ord.String.Size(v.Content) +
		vectorMUS.Size(v.Vector) +
		varint.Int.Size(v.Position)
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = vectorMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type conversationMUS struct{}

func (s conversationMUS) Marshal(v Conversation, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (s conversationMUS) Unmarshal(bs []byte) (v Conversation, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s conversationMUS) Size(v Conversation) int {
	return IDMUS.Size(v.Id) + ord.String.Size(v.Title) + sizeTime(v.CreatedAt)
}

func (s conversationMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = skipTime(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type sourceMUS struct{}

func (s sourceMUS) Marshal(v Source, bs []byte) (n int) {
	n = IDMUS.Marshal(v.DocumentId, bs)
	n += ord.String.Marshal(v.OriginalName, bs[n:])
	n += ord.String.Marshal(v.FileType, bs[n:])
	return n
}

func (s sourceMUS) Unmarshal(bs []byte) (v Source, n int, err error) {
	var n1 int
	if v.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.OriginalName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.FileType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (s sourceMUS) Size(v Source) int {
	return IDMUS.Size(v.DocumentId) +
		ord.String.Size(v.OriginalName) +
		ord.String.Size(v.FileType)
}

func (s sourceMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type messageMUS struct{}

func (s messageMUS) Marshal(v Message, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ConversationId, bs[n:])
	n += RoleMUS.Marshal(v.Role, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += sourcesMUS.Marshal(v.Sources, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (s messageMUS) Unmarshal(bs []byte) (v Message, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.ConversationId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Role, n1, err = RoleMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Sources, n1, err = sourcesMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if len(v.Sources) == 0 {
		v.Sources = nil
	}
	return v, n, nil
}

func (s messageMUS) Size(v Message) int {
	return IDMUS.Size(v.Id) +
		IDMUS.Size(v.ConversationId) +
		RoleMUS.Size(v.Role) +
		ord.String.Size(v.Content) +
		sourcesMUS.Size(v.Sources) +
		sizeTime(v.CreatedAt)
}

func (s messageMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = RoleMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = sourcesMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = skipTime(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}
