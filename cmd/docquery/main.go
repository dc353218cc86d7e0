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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docquery"
	"github.com/poiesic/docquery/chat"
	"github.com/poiesic/docquery/config"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/ingestion"
	"github.com/poiesic/docquery/reembed"
	"github.com/poiesic/docquery/search"
)

func main() {
	app := &cli.App{
		Name:  "docquery",
		Usage: "Question answering over your own documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   config.DefaultPath,
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more document files",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "index-timeout",
						Usage: "How long to wait for indexing to finish",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question against the ingested documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:    "conversation",
						Aliases: []string{"n"},
						Usage:   "Conversation ID to continue (omit to start a new one)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of passages to retrieve per question",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Log each retrieval stage to stderr",
					},
				},
			},
			{
				Name:   "documents",
				Usage:  "List ingested documents",
				Action: documentsCommand,
			},
			{
				Name:   "conversations",
				Usage:  "List conversations, or show one with --id",
				Action: conversationsCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Show the messages of a single conversation",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate embeddings for all stored chunks",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads .env if present and configures the default logger. A missing
// .env file is not an error: keys may come from the real environment or the
// YAML configuration file instead.
func setup(c *cli.Context) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase loads the file configuration and opens the database with the
// AI backend it selects.
func openDatabase(c *cli.Context) (config.FileConfig, *docquery.Database, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}

	db, err := docquery.NewDatabase(
		filepath.Join(cfg.DataDir, "docquery.db"),
		docquery.WithAIConfig(cfg.AIConfig()),
	)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}

	return cfg, db, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file to ingest is required")
	}

	ctx := context.Background()

	cfg, db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{ingestion.WithRemoveAfterIndex(true)}
	if cfg.ChunkWords > 0 {
		opts = append(opts, ingestion.WithChunkWords(cfg.ChunkWords))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	var pending []*core.Document
	for _, path := range c.Args().Slice() {
		document, err := ingestFile(ctx, cfg, pipeline, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		fmt.Printf("accepted %s (document %d)\n", document.OriginalName, document.Id)
		pending = append(pending, document)
	}

	if len(pending) == 0 {
		return fmt.Errorf("no documents were accepted")
	}

	return waitForIndexing(ctx, db, pending, c.Duration("index-timeout"))
}

// ingestFile copies a local file into the upload directory and hands the
// stored artifact to the pipeline, matching what a server upload would do.
func ingestFile(ctx context.Context, cfg config.FileConfig, pipeline *ingestion.Pipeline, path string) (*core.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	originalName := filepath.Base(path)
	stored, err := ingestion.SaveUpload(cfg.UploadDir, originalName, f)
	if err != nil {
		return nil, err
	}

	// The pipeline owns the stored artifact from here: it is removed on
	// both the success and failure paths.
	return pipeline.Ingest(ctx, stored, originalName)
}

// waitForIndexing polls until every pending document is indexed or the
// timeout elapses. Indexing runs on the pipeline's worker pool, so the
// process must stay alive until it finishes.
func waitForIndexing(ctx context.Context, db *docquery.Database, pending []*core.Document, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	remaining := make(map[core.ID]string, len(pending))
	for _, document := range pending {
		remaining[document.Id] = document.OriginalName
	}

	for len(remaining) > 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %d document(s) to index", len(remaining))
		}
		time.Sleep(200 * time.Millisecond)

		for id, name := range remaining {
			document, err := db.DocumentRepository().GetDocument(ctx, id)
			if err != nil {
				return fmt.Errorf("check indexing of %q: %w", name, err)
			}
			if document.Indexed {
				fmt.Printf("indexed %s\n", name)
				delete(remaining, id)
			}
		}
	}

	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}
	question := strings.Join(c.Args().Slice(), " ")

	ctx := context.Background()

	_, db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var chatOpts []chat.Option
	if limit := c.Int("limit"); limit > 0 {
		chatOpts = append(chatOpts, chat.WithRetrievalLimit(limit))
	}
	if c.Bool("verbose") {
		chatOpts = append(chatOpts, chat.WithRetrievalMonitor(&retrievalLogger{}))
	}

	orchestrator, err := db.NewOrchestrator(chatOpts...)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}
	defer orchestrator.Release()

	conversationID := core.ID(c.Uint64("conversation"))
	exchange, err := orchestrator.Ask(ctx, conversationID, question)
	if err != nil {
		return err
	}

	fmt.Println(exchange.AssistantMessage.Content)
	if len(exchange.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range exchange.Sources {
			fmt.Printf("  - %s (%s)\n", source.OriginalName, source.FileType)
		}
	}
	fmt.Printf("\nConversation: %d\n", exchange.Conversation.Id)

	// Title generation runs on a background worker. For a brand-new
	// conversation, give it a moment to land before the process exits.
	if conversationID == 0 {
		waitForTitle(ctx, db, exchange.Conversation.Id)
	}

	return nil
}

// retrievalLogger reports each retrieval stage to stderr for ask --verbose.
type retrievalLogger struct{}

func (r *retrievalLogger) Start(query string) {
	fmt.Fprintf(os.Stderr, "retrieving for %q\n", query)
}

func (r *retrievalLogger) AfterEmbedding(vector []float32) {
	fmt.Fprintf(os.Stderr, "query embedded (%d dimensions)\n", len(vector))
}

func (r *retrievalLogger) AfterVectorSearch(matches []*core.ChunkMatch) {
	for _, match := range matches {
		fmt.Fprintf(os.Stderr, "  chunk %d (document %d) score %.4f\n",
			match.Chunk.Id, match.Chunk.DocumentId, match.Score)
	}
}

func (r *retrievalLogger) KeywordFallback(cause error) {
	fmt.Fprintf(os.Stderr, "embedding unavailable (%v), using keyword search\n", cause)
}

func (r *retrievalLogger) AfterKeywordSearch(results []*search.KeywordResult) {
	for _, result := range results {
		fmt.Fprintf(os.Stderr, "  document %d (%s) score %d\n",
			result.Document.Id, result.Document.OriginalName, result.Score)
	}
}

func (r *retrievalLogger) Finish(result *search.Result) {
	fmt.Fprintf(os.Stderr, "retrieved %d passages from %d documents\n",
		len(result.Passages), len(result.Sources))
}

func waitForTitle(ctx context.Context, db *docquery.Database, id core.ID) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conversation, err := db.ConversationRepository().GetConversation(ctx, id)
		if err != nil {
			return
		}
		if conversation.Title != "" {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func documentsCommand(c *cli.Context) error {
	ctx := context.Background()

	_, db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	documents, err := db.DocumentRepository().GetDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Println("no documents ingested")
		return nil
	}

	indexed := 0
	for _, document := range documents {
		status := "pending"
		if document.Indexed {
			status = "indexed"
			indexed++
		}
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n",
			document.Id,
			document.OriginalName,
			document.FileType,
			status,
			document.UploadedAt.Format(time.RFC3339),
		)
	}
	fmt.Printf("\n%d documents, %d indexed\n", len(documents), indexed)

	return nil
}

func conversationsCommand(c *cli.Context) error {
	ctx := context.Background()

	_, db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if id := c.Uint64("id"); id != 0 {
		return showConversation(ctx, db, core.ID(id))
	}

	conversations, err := db.ConversationRepository().GetConversations(ctx)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	if len(conversations) == 0 {
		fmt.Println("no conversations")
		return nil
	}

	for _, conversation := range conversations {
		title := conversation.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d\t%s\t%s\n",
			conversation.Id,
			title,
			conversation.CreatedAt.Format(time.RFC3339),
		)
	}

	return nil
}

func showConversation(ctx context.Context, db *docquery.Database, id core.ID) error {
	conversation, err := db.ConversationRepository().GetConversation(ctx, id)
	if err != nil {
		return fmt.Errorf("get conversation %d: %w", id, err)
	}

	title := conversation.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("%s\n\n", title)

	messages, err := db.MessageRepository().GetMessagesByConversation(ctx, id)
	if err != nil {
		return fmt.Errorf("get messages: %w", err)
	}

	for _, message := range messages {
		role := "user"
		if message.Role == core.RoleAssistant {
			role = "assistant"
		}
		fmt.Printf("[%s] %s\n", role, message.Content)
		for _, source := range message.Sources {
			fmt.Printf("    source: %s (%s)\n", source.OriginalName, source.FileType)
		}
		fmt.Println()
	}

	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := db.NewReembedder(reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", cfg.DataDir)
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}
