package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// DefaultLimit is the number of passages retrieved per query.
const DefaultLimit = 5

// Result is the outcome of a retrieval.
type Result struct {
	// Passages are the context texts to ground an answer on, most
	// relevant first.
	Passages []string

	// Sources identify the documents the passages came from, deduplicated
	// in first-occurrence order.
	Sources []core.Source

	// Fallback reports whether keyword search served this query because
	// the query could not be embedded.
	Fallback bool
}

// Searcher retrieves document passages relevant to a query.
type Searcher struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           provider.Embedder(),
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Retrieve finds up to limit passages relevant to the query.
// A limit below 1 uses DefaultLimit.
func (s *Searcher) Retrieve(ctx context.Context, query string, limit int) (*Result, error) {
	return s.RetrieveWithMonitor(ctx, query, limit, nil)
}

// RetrieveWithMonitor finds passages relevant to the query with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
//
// The query is embedded and matched against chunk vectors first. If embedding
// fails, retrieval degrades to keyword search over full document text instead
// of returning the error; only storage failures fail a retrieval.
func (s *Searcher) RetrieveWithMonitor(ctx context.Context, query string, limit int, monitor RetrievalMonitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Warn("error embedding query, falling back to keyword search", "err", err)
		monitor.KeywordFallback(err)

		result, err := s.keywordRetrieve(ctx, query, limit, monitor)
		if err != nil {
			return nil, err
		}
		monitor.Finish(result)
		return result, nil
	}
	monitor.AfterEmbedding(vector)

	matches, err := s.chunkRepository.FindSimilar(ctx, vector, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	result := &Result{
		Passages: make([]string, 0, len(matches)),
		Sources:  make([]core.Source, 0, len(matches)),
	}

	// Resolve parent documents, deduplicating sources in match order.
	seen := make(map[core.ID]bool, len(matches))
	for _, match := range matches {
		result.Passages = append(result.Passages, match.Chunk.Content)

		if seen[match.Chunk.DocumentId] {
			continue
		}
		document, err := s.documentRepository.GetDocument(ctx, match.Chunk.DocumentId)
		if err != nil {
			s.logger.Error("error resolving chunk document", "document", match.Chunk.DocumentId, "err", err)
			return nil, err
		}
		seen[match.Chunk.DocumentId] = true
		result.Sources = append(result.Sources, core.Source{
			DocumentId:   document.Id,
			OriginalName: document.OriginalName,
			FileType:     document.FileType,
		})
	}

	monitor.Finish(result)
	return result, nil
}

// keywordRetrieve serves a query from full document text.
func (s *Searcher) keywordRetrieve(ctx context.Context, query string, limit int, monitor RetrievalMonitor) (*Result, error) {
	documents, err := s.documentRepository.GetDocuments(ctx)
	if err != nil {
		s.logger.Error("error retrieving documents for keyword search", "err", err)
		return nil, err
	}

	hits := KeywordSearch(query, documents, limit)
	monitor.AfterKeywordSearch(hits)

	result := &Result{
		Passages: make([]string, 0, len(hits)),
		Sources:  make([]core.Source, 0, len(hits)),
		Fallback: true,
	}
	for _, hit := range hits {
		passage := strings.Join(hit.Excerpts, "\n\n")
		if passage == "" {
			// Matched document with no block long enough to excerpt.
			continue
		}
		result.Passages = append(result.Passages, passage)
		result.Sources = append(result.Sources, core.Source{
			DocumentId:   hit.Document.Id,
			OriginalName: hit.Document.OriginalName,
			FileType:     hit.Document.FileType,
		})
	}

	return result, nil
}
