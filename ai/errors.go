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

package ai

import "errors"

var (
	// ErrNoBackend indicates that no AI backend is configured at all.
	ErrNoBackend = errors.New("no AI backend configured")

	// ErrNoEmbeddingBackend indicates that the selected backend cannot
	// produce embeddings (for example a chat-only API).
	ErrNoEmbeddingBackend = errors.New("configured AI backend does not support embeddings")

	// ErrEmptyInput indicates that empty text was passed where content is required.
	ErrEmptyInput = errors.New("empty input text")

	// ErrEmbeddingFailed indicates that the embedding backend returned an error.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrGenerationFailed indicates that the text generation backend returned an error.
	ErrGenerationFailed = errors.New("text generation failed")
)
