// Package ingestion provides pipeline orchestration for processing uploaded documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating and persisting uploaded files
//   - Extracting plain text per format
//   - Rejecting duplicate content via fingerprints
//   - Chunking text and generating embeddings asynchronously
//
// Indexing is performed on a worker pool so uploads return immediately.
// Errors during async indexing are logged but do not fail the ingestion
// operation; chunks whose embedding fails are stored without a vector and
// remain reachable through keyword search.
package ingestion
