package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEmbedder implements ai.Embedder for testing.
type testEmbedder struct {
	shouldError bool
	errorOnText string
}

func (m *testEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.shouldError || (m.errorOnText != "" && strings.Contains(text, m.errorOnText)) {
		return nil, errors.New("embedder error")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *testEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := m.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vector
	}
	return result, nil
}

// testGenerator implements ai.Generator for testing.
type testGenerator struct{}

func (m *testGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	return "generated", nil
}

// testAIProvider implements ai.Provider for testing.
type testAIProvider struct {
	embedder  ai.Embedder
	generator ai.Generator
}

func (p *testAIProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *testAIProvider) Generator() ai.Generator {
	return p.generator
}

func (p *testAIProvider) Close() error {
	return nil
}

func newTestProvider(embedder ai.Embedder) ai.Provider {
	return &testAIProvider{embedder: embedder, generator: &testGenerator{}}
}

func setupTestPipeline(t *testing.T, embedder ai.Embedder, opts ...Option) (*Pipeline, *badger.MemoryRepositories) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	pipeline, err := NewPipeline(repos.Documents, repos.Chunks, newTestProvider(embedder), opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, repos
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewPipeline(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	t.Run("requires document repository", func(t *testing.T) {
		_, err := NewPipeline(nil, repos.Chunks, newTestProvider(&testEmbedder{}))
		assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)
	})

	t.Run("requires chunk repository", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, nil, newTestProvider(&testEmbedder{}))
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})

	t.Run("requires AI provider", func(t *testing.T) {
		_, err := NewPipeline(repos.Documents, repos.Chunks, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})
}

func TestPipelineIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("persists document and indexes asynchronously", func(t *testing.T) {
		pipeline, repos := setupTestPipeline(t, &testEmbedder{}, WithRemoveAfterIndex(false))
		path := writeUpload(t, "guide.txt", "alpha beta gamma")

		doc, err := pipeline.Ingest(ctx, path, "guide.txt")
		require.NoError(t, err)
		require.NotZero(t, doc.Id)
		assert.Equal(t, "guide.txt", doc.OriginalName)
		assert.Equal(t, "txt", doc.FileType)
		assert.False(t, doc.Indexed)

		assert.Eventually(t, func() bool {
			stored, err := repos.Documents.GetDocument(ctx, doc.Id)
			return err == nil && stored.Indexed
		}, 5*time.Second, 10*time.Millisecond)

		chunks, err := repos.Chunks.GetChunksByDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "alpha beta gamma", chunks[0].Content)
		assert.NotEmpty(t, chunks[0].Vector)
	})

	t.Run("rejects duplicate content", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t, &testEmbedder{}, WithRemoveAfterIndex(false))
		first := writeUpload(t, "a.txt", "same content here")
		second := writeUpload(t, "b.txt", "same content here")

		_, err := pipeline.Ingest(ctx, first, "a.txt")
		require.NoError(t, err)

		_, err = pipeline.Ingest(ctx, second, "b.txt")
		assert.ErrorIs(t, err, ErrDuplicateDocument)
	})

	t.Run("rejects unsupported file type", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t, &testEmbedder{})
		path := writeUpload(t, "data.csv", "a,b,c")

		_, err := pipeline.Ingest(ctx, path, "data.csv")
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t, &testEmbedder{})
		path := writeUpload(t, "empty.txt", "")

		_, err := pipeline.Ingest(ctx, path, "empty.txt")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("removes upload file after indexing", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t, &testEmbedder{})
		path := writeUpload(t, "tmp.txt", "transient content")

		_, err := pipeline.Ingest(ctx, path, "tmp.txt")
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			_, err := os.Stat(path)
			return os.IsNotExist(err)
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("removes upload file when ingestion fails", func(t *testing.T) {
		pipeline, _ := setupTestPipeline(t, &testEmbedder{})
		path := writeUpload(t, "empty.txt", "")

		_, err := pipeline.Ingest(ctx, path, "empty.txt")
		require.ErrorIs(t, err, ErrEmptyDocument)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestPipelineIndexDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns contiguous positions", func(t *testing.T) {
		pipeline, repos := setupTestPipeline(t, &testEmbedder{}, WithChunkWords(2))

		doc, err := repos.Documents.AddDocument(ctx, &core.Document{
			Filename:     "f.txt",
			OriginalName: "f.txt",
			FileType:     "txt",
			Content:      "one two three four five",
		})
		require.NoError(t, err)

		require.NoError(t, pipeline.IndexDocument(ctx, doc))

		chunks, err := repos.Chunks.GetChunksByDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Position)
		}
	})

	t.Run("stores failed chunk without vector and still marks indexed", func(t *testing.T) {
		embedder := &testEmbedder{errorOnText: "three"}
		pipeline, repos := setupTestPipeline(t, embedder, WithChunkWords(1))

		doc, err := repos.Documents.AddDocument(ctx, &core.Document{
			Filename:     "f.txt",
			OriginalName: "f.txt",
			FileType:     "txt",
			Content:      "one two three four five",
		})
		require.NoError(t, err)

		require.NoError(t, pipeline.IndexDocument(ctx, doc))

		stored, err := repos.Documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.True(t, stored.Indexed)

		chunks, err := repos.Chunks.GetChunksByDocument(ctx, doc.Id)
		require.NoError(t, err)
		require.Len(t, chunks, 5)

		embedded := 0
		for _, chunk := range chunks {
			if chunk.Content == "three" {
				assert.Nil(t, chunk.Vector)
			} else {
				assert.NotEmpty(t, chunk.Vector)
				embedded++
			}
		}
		assert.Equal(t, 4, embedded)
	})

	t.Run("all embeddings failing still indexes document", func(t *testing.T) {
		pipeline, repos := setupTestPipeline(t, &testEmbedder{shouldError: true}, WithChunkWords(2))

		doc, err := repos.Documents.AddDocument(ctx, &core.Document{
			Filename:     "f.txt",
			OriginalName: "f.txt",
			FileType:     "txt",
			Content:      "words without vectors",
		})
		require.NoError(t, err)

		require.NoError(t, pipeline.IndexDocument(ctx, doc))

		stored, err := repos.Documents.GetDocument(ctx, doc.Id)
		require.NoError(t, err)
		assert.True(t, stored.Indexed)

		matches, err := repos.Chunks.FindSimilar(ctx, []float32{0.1, 0.2, 0.3}, 5)
		require.NoError(t, err)
		assert.Empty(t, matches, "unembedded chunks must not appear in vector search")
	})
}
