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


package badger

import "github.com/poiesic/docquery/storage"

// MemoryRepositories bundles in-memory repositories for testing.
type MemoryRepositories struct {
	Documents     storage.DocumentRepository
	Chunks        storage.ChunkRepository
	Conversations storage.ConversationRepository
	Messages      storage.MessageRepository
	Backend       *Backend
}

// Close closes all repositories and the backend.
func (m *MemoryRepositories) Close() {
	m.Messages.Close()
	m.Conversations.Close()
	m.Chunks.Close()
	m.Documents.Close()
	m.Backend.Close()
}

// NewMemoryRepositories creates in-memory repositories for all four
// collections for testing. Caller must Close the bundle when done.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	conversations, err := NewConversationRepository(backend)
	if err != nil {
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	messages, err := NewMessageRepository(backend)
	if err != nil {
		conversations.Close()
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Documents:     documents,
		Chunks:        chunks,
		Conversations: conversations,
		Messages:      messages,
		Backend:       backend,
	}, nil
}
