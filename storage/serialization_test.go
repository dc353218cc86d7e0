package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"fingerprint ID", core.FingerprintText("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	uploaded := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		document *core.Document
	}{
		{
			name: "indexed document",
			document: &core.Document{
				Id:           1,
				Filename:     "5f3a.txt",
				OriginalName: "handbook.txt",
				FileType:     "txt",
				Content:      "Employee handbook contents",
				Fingerprint:  core.FingerprintText("Employee handbook contents"),
				Indexed:      true,
				UploadedAt:   uploaded,
			},
		},
		{
			name: "pending document",
			document: &core.Document{
				Id:           2,
				Filename:     "9c1b.pdf",
				OriginalName: "policy.pdf",
				FileType:     "pdf",
				Content:      "refund policy",
				Fingerprint:  core.FingerprintText("refund policy"),
				Indexed:      false,
				UploadedAt:   uploaded,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalDocument(tt.document)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalDocument(data)
			require.NoError(t, err)
			assert.Equal(t, tt.document, decoded)
		})
	}
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "embedded chunk",
			chunk: &core.Chunk{
				Id:         1,
				DocumentId: 7,
				Content:    "chunk of text",
				Vector:     []float32{0.25, -0.5, 0.125},
				Position:   0,
			},
		},
		{
			name: "chunk without embedding",
			chunk: &core.Chunk{
				Id:         2,
				DocumentId: 7,
				Content:    "chunk whose embedding failed",
				Vector:     nil,
				Position:   1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			assert.Equal(t, tt.chunk, decoded)
		})
	}
}

func TestUnmarshalChunk_EmptyVectorBecomesNil(t *testing.T) {
	chunk := &core.Chunk{
		Id:         3,
		DocumentId: 7,
		Content:    "text",
		Vector:     []float32{},
		Position:   2,
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Nil(t, decoded.Vector)
}

func TestMarshalUnmarshalConversation(t *testing.T) {
	created := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name         string
		conversation *core.Conversation
	}{
		{
			name: "titled conversation",
			conversation: &core.Conversation{
				Id:        1,
				Title:     "Refund Policy Questions",
				CreatedAt: created,
			},
		},
		{
			name: "untitled conversation",
			conversation: &core.Conversation{
				Id:        2,
				Title:     "",
				CreatedAt: created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalConversation(tt.conversation)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalConversation(data)
			require.NoError(t, err)
			assert.Equal(t, tt.conversation, decoded)
		})
	}
}

func TestMarshalUnmarshalMessage(t *testing.T) {
	created := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		message *core.Message
	}{
		{
			name: "user message",
			message: &core.Message{
				Id:             1,
				ConversationId: 5,
				Role:           core.RoleUser,
				Content:        "what is the refund policy?",
				CreatedAt:      created,
			},
		},
		{
			name: "assistant message with sources",
			message: &core.Message{
				Id:             2,
				ConversationId: 5,
				Role:           core.RoleAssistant,
				Content:        "Returns are accepted within 30 days.",
				Sources: []core.Source{
					{DocumentId: 1, OriginalName: "policy.txt", FileType: "txt"},
					{DocumentId: 3, OriginalName: "faq.md", FileType: "md"},
				},
				CreatedAt: created,
			},
		},
		{
			name: "assistant message without sources",
			message: &core.Message{
				Id:             3,
				ConversationId: 5,
				Role:           core.RoleAssistant,
				Content:        "I could not find that in the documents.",
				Sources:        nil,
				CreatedAt:      created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalMessage(tt.message)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalMessage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.message, decoded)
		})
	}
}

func TestUnmarshalDocument_Truncated(t *testing.T) {
	data := MarshalDocument(&core.Document{
		Id:           1,
		OriginalName: "handbook.txt",
		FileType:     "txt",
		Content:      "contents",
		UploadedAt:   time.Now().UTC(),
	})

	_, err := UnmarshalDocument(data[:len(data)/2])
	assert.Error(t, err)
}
