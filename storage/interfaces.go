package storage

import (
	"context"

	"github.com/poiesic/docquery/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing documents.
type DocumentRepository interface {
	Repository

	// AddDocument adds a document to storage.
	// Generates a new ID from sequence and sets UploadedAt if not already set.
	// Returns the document with ID and timestamp populated.
	AddDocument(ctx context.Context, document *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves all documents, newest first.
	GetDocuments(ctx context.Context) ([]*core.Document, error)

	// FindDocumentByFingerprint retrieves the document with the given content
	// fingerprint. Returns ErrNotFound if no document matches.
	FindDocumentByFingerprint(ctx context.Context, fingerprint core.ID) (*core.Document, error)

	// SetIndexed updates the indexed flag of a document.
	// Returns ErrNotFound if the document doesn't exist.
	SetIndexed(ctx context.Context, id core.ID, indexed bool) error
}

// ChunkRepository provides operations for managing document chunks and
// vector similarity search over them.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// Generates new IDs from sequence in argument order, so insertion order
	// is recoverable from IDs. Returns the chunks with IDs populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document ordered by
	// position ascending.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// ListChunks retrieves up to limit chunks with ID greater than afterID,
	// ordered by ID ascending. Used to iterate the full chunk set in pages.
	ListChunks(ctx context.Context, afterID core.ID, limit int) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// FindSimilar finds the chunks most similar to the given vector using
	// cosine similarity over every chunk that carries an embedding. Chunks
	// without an embedding are never returned. Results are ordered by score
	// descending; ties break toward the earlier-inserted chunk. Returns up
	// to limit matches, fewer when fewer eligible chunks exist.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ChunkMatch, error)
}

// ConversationRepository provides operations for managing conversations.
type ConversationRepository interface {
	Repository

	// AddConversation adds a conversation to storage.
	// Generates a new ID from sequence and sets CreatedAt if not already set.
	AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error)

	// GetConversation retrieves a single conversation by ID.
	// Returns ErrNotFound if the conversation doesn't exist.
	GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error)

	// GetConversations retrieves all conversations, newest first.
	GetConversations(ctx context.Context) ([]*core.Conversation, error)

	// SetTitle assigns a conversation's title. A title is set at most once:
	// returns ErrTitleAlreadySet if the conversation is already titled, and
	// ErrNotFound if it doesn't exist.
	SetTitle(ctx context.Context, id core.ID, title string) error
}

// MessageRepository provides operations for managing conversation messages.
type MessageRepository interface {
	Repository

	// AddMessage adds a message to storage.
	// Generates a new ID from sequence and sets CreatedAt if not already set.
	AddMessage(ctx context.Context, message *core.Message) (*core.Message, error)

	// GetMessagesByConversation retrieves all messages of a conversation in
	// arrival order (oldest first).
	GetMessagesByConversation(ctx context.Context, conversationID core.ID) ([]*core.Message, error)

	// CountMessages returns the number of messages in a conversation.
	CountMessages(ctx context.Context, conversationID core.ID) (int, error)
}
