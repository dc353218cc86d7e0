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

// Package search provides retrieval of document passages relevant to a query.
//
// The Searcher type implements a two-tier retrieval strategy:
//   - Semantic search using vector embeddings over document chunks
//   - Keyword search over full document text when embeddings are unavailable
//
// Semantic search is always attempted first. When the query cannot be
// embedded (no embedding backend, or a transient failure), retrieval degrades
// to keyword matching instead of failing, so queries keep working against a
// chat-only AI backend.
package search
