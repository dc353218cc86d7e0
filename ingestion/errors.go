package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrDuplicateDocument is returned when uploaded content matches an
	// already stored document's fingerprint.
	ErrDuplicateDocument = errors.New("duplicate document content")

	// ErrEmptyDocument is returned when extraction yields no text to index.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrFileTooLarge is returned when an upload exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file exceeds upload size limit")

	// ErrUnsupportedFileType is returned when an upload's extension is not allowed.
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
