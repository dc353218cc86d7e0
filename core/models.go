package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain records.
// Each collection assigns IDs from its own monotonically increasing
// database sequence.
type ID uint64

// FingerprintText computes a deterministic fingerprint of text content using
// BLAKE2b hashing. Identical content always produces the same fingerprint,
// which is how duplicate uploads are detected.
func FingerprintText(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role int

const (
	// RoleUser represents the human asking questions.
	RoleUser Role = iota + 1
	// RoleAssistant represents the generated answer.
	RoleAssistant
)

// Document is an ingested file. Content is the extracted plain text; the
// original byte stream is discarded after extraction. Documents are
// immutable once ingested: only the Indexed flag is ever updated.
type Document struct {
	Id           ID
	Filename     string // stored upload artifact filename
	OriginalName string // filename as uploaded
	FileType     string // declared extension without the dot, e.g. "txt"
	Content      string
	Fingerprint  ID // BLAKE2b fingerprint of Content
	Indexed      bool
	UploadedAt   time.Time
}

// Chunk is a bounded slice of a document's text, the unit of retrieval.
// Vector is nil when embedding generation failed for this chunk; such
// chunks are reachable only through the keyword fallback path.
type Chunk struct {
	Id         ID
	DocumentId ID
	Content    string
	Vector     []float32
	Position   int // ordinal within the document, contiguous from 0
}

// Conversation groups an ordered exchange of messages. Title is empty
// until the first exchange completes and a title is generated; it is set
// at most once.
type Conversation struct {
	Id        ID
	Title     string
	CreatedAt time.Time
}

// Source attributes an assistant answer to a document whose chunks were
// retrieved for it.
type Source struct {
	DocumentId   ID
	OriginalName string
	FileType     string
}

// Message is a single turn in a conversation. Sources is populated only on
// assistant messages that used retrieval.
type Message struct {
	Id             ID
	ConversationId ID
	Role           Role
	Content        string
	Sources        []Source
	CreatedAt      time.Time
}

// ChunkMatch is a chunk hit from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}

// Exchange is the result of one completed conversation turn.
type Exchange struct {
	Conversation     *Conversation
	UserMessage      *Message
	AssistantMessage *Message
	Sources          []Source
}
