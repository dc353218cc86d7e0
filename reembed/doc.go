// Package reembed provides functionality for reembedding stored document
// chunks with new or updated embedding models.
//
// This package supports batch processing of chunks, progress tracking, retry
// logic with exponential backoff, and vector normalization. Chunks stored
// without a vector (because their original embedding failed) are embedded
// too, so a reembed run also repairs earlier partial failures.
package reembed
