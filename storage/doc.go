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


// Package storage provides the storage abstraction layer for docquery.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. Four record collections exist:
// documents, chunks, conversations, and messages. Each collection assigns
// integer IDs from its own monotonically increasing sequence.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return INTERFACE types to enforce
// abstraction and enable alternative storage backends:
//
//	docs, err := badger.NewDocumentRepository(backend)  // storage.DocumentRepository
//
// # Ownership
//
// Chunks belong to exactly one document and messages to exactly one
// conversation; both are resolved through the owning repository by ID, not
// by pointer, so no reference cycles exist between collections.
//
// # Vector Search
//
// ChunkRepository.FindSimilar is a brute-force cosine similarity scan over
// every chunk that carries an embedding. This is O(n) per query, which is
// appropriate for the target corpus size; an approximate-nearest-neighbor
// backend could replace it behind the same contract.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
