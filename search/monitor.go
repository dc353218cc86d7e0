package search

import "github.com/poiesic/docquery/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(matches []*core.ChunkMatch)
	KeywordFallback(cause error)
	AfterKeywordSearch(results []*KeywordResult)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                          {}
func (n *noopMonitor) AfterEmbedding(_ []float32)              {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ChunkMatch)  {}
func (n *noopMonitor) KeywordFallback(_ error)                 {}
func (n *noopMonitor) AfterKeywordSearch(_ []*KeywordResult)   {}
func (n *noopMonitor) Finish(_ *Result)                        {}
