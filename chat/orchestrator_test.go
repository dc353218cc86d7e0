package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/search"
	"github.com/poiesic/docquery/storage"
	"github.com/poiesic/docquery/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder implements ai.Embedder for testing.
type testEmbedder struct{}

func (m *testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (m *testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1, 0, 0}
	}
	return result, nil
}

// testGenerator implements ai.Generator for testing, with separately
// scriptable answer and title behavior.
type testGenerator struct {
	mu         sync.Mutex
	failAnswer bool
	failTitle  bool
	titleText  string
	titleCalls int
}

func (m *testGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if systemPrompt == titleSystemPrompt {
		m.titleCalls++
		if m.failTitle {
			return "", errors.New("title generation error")
		}
		if m.titleText != "" {
			return m.titleText, nil
		}
		return "Generated Title", nil
	}

	if m.failAnswer {
		return "", errors.New("answer generation error")
	}
	return "the answer", nil
}

func (m *testGenerator) TitleCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.titleCalls
}

// testAIProvider implements ai.Provider for testing.
type testAIProvider struct {
	generator *testGenerator
}

func (p *testAIProvider) Embedder() ai.Embedder   { return &testEmbedder{} }
func (p *testAIProvider) Generator() ai.Generator { return p.generator }
func (p *testAIProvider) Close() error            { return nil }

func setupTestOrchestrator(t *testing.T, generator *testGenerator) (*Orchestrator, *badger.MemoryRepositories) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := &testAIProvider{generator: generator}

	searcher, err := search.NewSearcher(repos.Documents, repos.Chunks, provider)
	require.NoError(t, err)

	orchestrator, err := NewOrchestrator(repos.Conversations, repos.Messages, searcher, provider)
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)

	return orchestrator, repos
}

func addIndexedDocument(t *testing.T, repos *badger.MemoryRepositories) *core.Document {
	t.Helper()
	ctx := context.Background()

	document, err := repos.Documents.AddDocument(ctx, &core.Document{
		Filename:     "handbook.txt",
		OriginalName: "handbook.txt",
		FileType:     "txt",
		Content:      "vacation policy content",
		Indexed:      true,
	})
	require.NoError(t, err)

	_, err = repos.Chunks.AddChunks(ctx, &core.Chunk{
		DocumentId: document.Id,
		Content:    "vacation policy content",
		Vector:     []float32{1, 0, 0},
		Position:   0,
	})
	require.NoError(t, err)

	return document
}

func TestNewOrchestrator(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := &testAIProvider{generator: &testGenerator{}}
	searcher, err := search.NewSearcher(repos.Documents, repos.Chunks, provider)
	require.NoError(t, err)

	t.Run("requires conversation repository", func(t *testing.T) {
		_, err := NewOrchestrator(nil, repos.Messages, searcher, provider)
		assert.ErrorIs(t, err, ErrConversationRepositoryRequired)
	})

	t.Run("requires message repository", func(t *testing.T) {
		_, err := NewOrchestrator(repos.Conversations, nil, searcher, provider)
		assert.ErrorIs(t, err, ErrMessageRepositoryRequired)
	})

	t.Run("requires searcher", func(t *testing.T) {
		_, err := NewOrchestrator(repos.Conversations, repos.Messages, nil, provider)
		assert.ErrorIs(t, err, ErrSearcherRequired)
	})

	t.Run("requires AI provider", func(t *testing.T) {
		_, err := NewOrchestrator(repos.Conversations, repos.Messages, searcher, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestOrchestratorAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("starts a conversation and answers with sources", func(t *testing.T) {
		orchestrator, repos := setupTestOrchestrator(t, &testGenerator{})
		addIndexedDocument(t, repos)

		exchange, err := orchestrator.Ask(ctx, 0, "what is the vacation policy?")
		require.NoError(t, err)

		require.NotNil(t, exchange.Conversation)
		assert.NotZero(t, exchange.Conversation.Id)

		assert.Equal(t, core.RoleUser, exchange.UserMessage.Role)
		assert.Equal(t, "what is the vacation policy?", exchange.UserMessage.Content)

		assert.Equal(t, core.RoleAssistant, exchange.AssistantMessage.Role)
		assert.Equal(t, "the answer", exchange.AssistantMessage.Content)

		require.Len(t, exchange.Sources, 1)
		assert.Equal(t, "handbook.txt", exchange.Sources[0].OriginalName)
		assert.Equal(t, exchange.Sources, exchange.AssistantMessage.Sources)

		messages, err := repos.Messages.GetMessagesByConversation(ctx, exchange.Conversation.Id)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, core.RoleUser, messages[0].Role)
		assert.Equal(t, core.RoleAssistant, messages[1].Role)
	})

	t.Run("rejects empty question", func(t *testing.T) {
		orchestrator, _ := setupTestOrchestrator(t, &testGenerator{})

		_, err := orchestrator.Ask(ctx, 0, "   ")
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("appends to an existing conversation", func(t *testing.T) {
		orchestrator, repos := setupTestOrchestrator(t, &testGenerator{})

		first, err := orchestrator.Ask(ctx, 0, "first question")
		require.NoError(t, err)

		second, err := orchestrator.Ask(ctx, first.Conversation.Id, "second question")
		require.NoError(t, err)
		assert.Equal(t, first.Conversation.Id, second.Conversation.Id)

		messages, err := repos.Messages.GetMessagesByConversation(ctx, first.Conversation.Id)
		require.NoError(t, err)
		assert.Len(t, messages, 4)
	})

	t.Run("unknown conversation fails", func(t *testing.T) {
		orchestrator, _ := setupTestOrchestrator(t, &testGenerator{})

		_, err := orchestrator.Ask(ctx, 9999, "question")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("generation failure keeps the user message", func(t *testing.T) {
		orchestrator, repos := setupTestOrchestrator(t, &testGenerator{failAnswer: true})

		conversation, err := repos.Conversations.AddConversation(ctx, &core.Conversation{})
		require.NoError(t, err)

		_, err = orchestrator.Ask(ctx, conversation.Id, "doomed question")
		require.Error(t, err)

		messages, err := repos.Messages.GetMessagesByConversation(ctx, conversation.Id)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, core.RoleUser, messages[0].Role)
		assert.Equal(t, "doomed question", messages[0].Content)
	})
}

// turnMonitor records that retrieval stages were observed during a turn.
type turnMonitor struct {
	started  bool
	finished bool
}

func (m *turnMonitor) Start(_ string)                           { m.started = true }
func (m *turnMonitor) AfterEmbedding(_ []float32)               {}
func (m *turnMonitor) AfterVectorSearch(_ []*core.ChunkMatch)   {}
func (m *turnMonitor) KeywordFallback(_ error)                  {}
func (m *turnMonitor) AfterKeywordSearch(_ []*search.KeywordResult) {}
func (m *turnMonitor) Finish(_ *search.Result)                  { m.finished = true }

func TestOrchestratorAsk_RetrievalMonitor(t *testing.T) {
	ctx := context.Background()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := &testAIProvider{generator: &testGenerator{}}
	searcher, err := search.NewSearcher(repos.Documents, repos.Chunks, provider)
	require.NoError(t, err)

	monitor := &turnMonitor{}
	orchestrator, err := NewOrchestrator(repos.Conversations, repos.Messages, searcher, provider,
		WithRetrievalMonitor(monitor))
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)

	addIndexedDocument(t, repos)

	_, err = orchestrator.Ask(ctx, 0, "what is the vacation policy?")
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.True(t, monitor.finished)
}

func TestOrchestratorTitles(t *testing.T) {
	ctx := context.Background()

	t.Run("titles the conversation after the first turn", func(t *testing.T) {
		generator := &testGenerator{titleText: "Vacation Policy Questions"}
		orchestrator, repos := setupTestOrchestrator(t, generator)

		exchange, err := orchestrator.Ask(ctx, 0, "what is the vacation policy?")
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			conversation, err := repos.Conversations.GetConversation(ctx, exchange.Conversation.Id)
			return err == nil && conversation.Title == "Vacation Policy Questions"
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("title failure leaves conversation untitled and intact", func(t *testing.T) {
		generator := &testGenerator{failTitle: true}
		orchestrator, repos := setupTestOrchestrator(t, generator)

		exchange, err := orchestrator.Ask(ctx, 0, "question")
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return generator.TitleCalls() > 0
		}, 5*time.Second, 10*time.Millisecond)

		conversation, err := repos.Conversations.GetConversation(ctx, exchange.Conversation.Id)
		require.NoError(t, err)
		assert.Empty(t, conversation.Title)

		messages, err := repos.Messages.GetMessagesByConversation(ctx, exchange.Conversation.Id)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("later turns do not retitle", func(t *testing.T) {
		generator := &testGenerator{}
		orchestrator, repos := setupTestOrchestrator(t, generator)

		first, err := orchestrator.Ask(ctx, 0, "first question")
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			conversation, err := repos.Conversations.GetConversation(ctx, first.Conversation.Id)
			return err == nil && conversation.Title != ""
		}, 5*time.Second, 10*time.Millisecond)

		_, err = orchestrator.Ask(ctx, first.Conversation.Id, "second question")
		require.NoError(t, err)

		assert.Equal(t, 1, generator.TitleCalls())
	})
}
