package mock

import (
	"context"
	"hash/fnv"
)

// Fixed dimension for generated mock vectors, small enough to keep tests
// fast but large enough to make accidental collisions unlikely.
const mockVectorDim = 384

// MockEmbedder is a test double for ai.Embedder. Behavior is injected
// through the function fields; when a field is nil the embedder falls back
// to deterministic hash-derived vectors, so identical text always embeds
// identically within and across test runs.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with the deterministic default
// behavior. The concrete type is returned so tests can assert on call counts.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns an injected or deterministic embedding for text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return deterministicVector(text), nil
}

// EmbedTexts returns injected or deterministic embeddings for texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text)
	}
	return vectors, nil
}

// CallCount returns how many times either embed method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// deterministicVector derives a pseudo-random but stable vector from text:
// an FNV hash of the text seeds a linear congruential generator that fills
// the components. Magnitudes are arbitrary; similarity comparisons between
// mock vectors are only meaningful for equality of the source text.
func deterministicVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, mockVectorDim)
	var sumSquares float32
	for i := range vector {
		state = state*1664525 + 1013904223
		vector[i] = float32(state%1000) / 1000.0
		sumSquares += vector[i] * vector[i]
	}

	if sumSquares > 0 {
		scale := 1.0 / sumSquares
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector
}
