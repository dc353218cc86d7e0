// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// Config controls batching and retry behavior for a reembedding run.
type Config struct {
	// BatchSize is how many chunks are embedded per backend call.
	BatchSize int

	// ReportInterval is the number of chunks between progress reports.
	ReportInterval int

	// MaxRetries bounds retry attempts for a failing batch.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the vector for every chunk in the store. It is
// the recovery path after switching embedding backends, since vectors
// from different models are not comparable.
type Reembedder struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a reembedder writing progress to the given
// writer, typically os.Stderr. A nil config uses DefaultConfig.
func NewReembedder(chunks storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		chunks:   chunks,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run walks every stored chunk in insertion order, embeds each batch,
// and writes the normalized vectors back. The run stops at the first
// batch that still fails after the configured retries.
func (r *Reembedder) Run(ctx context.Context) error {
	iterator := NewChunkIterator(r.chunks, r.config.BatchSize)

	total, err := iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in database (0 chunks)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processor := NewBatchProcessor(r.chunks, r.embedder, r.config.MaxRetries, r.config.RetryDelay)

	done := 0
	err = iterator.ForEach(ctx, func(batch []*core.Chunk) error {
		if err := processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		done += len(batch)
		tracker.Update(done)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
