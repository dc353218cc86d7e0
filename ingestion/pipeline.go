package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/extract"
	"github.com/poiesic/docquery/storage"
)

// Pipeline orchestrates the ingestion and indexing of uploaded documents.
// It manages concurrent chunking and embedding of document text.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	indexPool          *ants.Pool
	chunkWords         int
	removeAfterIndex   bool
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.indexPool != nil {
			p.indexPool.Release()
		}

		indexPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.indexPool = indexPool
		return nil
	}
}

// WithChunkWords sets the maximum number of words per chunk.
// Default is DefaultChunkWords.
func WithChunkWords(words int) Option {
	return func(p *Pipeline) error {
		if words < 1 {
			words = DefaultChunkWords
		}
		p.chunkWords = words
		return nil
	}
}

// WithRemoveAfterIndex controls whether the stored upload file is deleted
// once indexing completes. Default is true; tests disable it to inspect
// the file afterwards.
func WithRemoveAfterIndex(remove bool) Option {
	return func(p *Pipeline) error {
		p.removeAfterIndex = remove
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	indexPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           provider.Embedder(),
		indexPool:          indexPool,
		chunkWords:         DefaultChunkWords,
		removeAfterIndex:   true,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest registers a stored upload file as a document and schedules it for
// asynchronous indexing. The document is persisted immediately with
// Indexed=false; chunking and embedding happen on the worker pool and errors
// there are logged rather than returned.
//
// Duplicate content (same fingerprint as an existing document) fails with
// ErrDuplicateDocument and stores nothing.
func (p *Pipeline) Ingest(ctx context.Context, filePath, originalName string) (*core.Document, error) {
	document, err := p.ingest(ctx, filePath, originalName)
	if err != nil {
		// The artifact must not leak on the failure path either.
		p.removeUpload(filePath)
	}
	return document, err
}

func (p *Pipeline) ingest(ctx context.Context, filePath, originalName string) (*core.Document, error) {
	fileType, err := ValidateUpload(originalName)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	extractor, err := extract.ForType(fileType)
	if err != nil {
		return nil, err
	}

	content, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	fingerprint := core.FingerprintText(content)
	existing, err := p.documentRepository.FindDocumentByFingerprint(ctx, fingerprint)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already stored as %q", ErrDuplicateDocument, existing.OriginalName)
	}

	document := &core.Document{
		Filename:     filepath.Base(filePath),
		OriginalName: originalName,
		FileType:     fileType,
		Content:      content,
		Fingerprint:  fingerprint,
		Indexed:      false,
	}

	added, err := p.documentRepository.AddDocument(ctx, document)
	if err != nil {
		return nil, err
	}

	p.logger.Info("document ingested", "id", added.Id, "name", added.OriginalName,
		"type", added.FileType, "bytes", len(content))

	// Index on the pool so uploads return immediately.
	p.indexPool.Submit(func() {
		if err := p.IndexDocument(context.Background(), added); err != nil {
			p.logger.Error("error indexing document", "id", added.Id, "err", err)
		}
		p.removeUpload(filePath)
	})

	return added, nil
}

// removeUpload deletes a stored upload artifact when the pipeline owns it.
func (p *Pipeline) removeUpload(filePath string) {
	if !p.removeAfterIndex {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("error removing upload file", "path", filePath, "err", err)
	}
}

// IndexDocument chunks a document's content, embeds each chunk and persists
// the results, then marks the document indexed. A chunk whose embedding fails
// is stored without a vector so it stays reachable through keyword search;
// embedding failures never fail indexing. Positions are assigned contiguously
// from 0 in content order.
func (p *Pipeline) IndexDocument(ctx context.Context, document *core.Document) error {
	parts := SplitWords(document.Content, p.chunkWords)
	if len(parts) == 0 {
		return p.documentRepository.SetIndexed(ctx, document.Id, true)
	}

	chunks := make([]*core.Chunk, len(parts))
	embedded := 0
	for i, part := range parts {
		chunk := &core.Chunk{
			DocumentId: document.Id,
			Content:    part,
			Position:   i,
		}

		vector, err := p.embedder.EmbedText(ctx, part)
		if err != nil {
			p.logger.Warn("error embedding chunk, storing without vector",
				"document", document.Id, "position", i, "err", err)
		} else {
			chunk.Vector = vector
			embedded++
		}
		chunks[i] = chunk
	}

	if _, err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return err
	}

	if err := p.documentRepository.SetIndexed(ctx, document.Id, true); err != nil {
		return err
	}

	p.logger.Info("document indexed", "id", document.Id,
		"chunks", len(chunks), "embedded", embedded)
	return nil
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.indexPool != nil {
		p.indexPool.Release()
	}
}
