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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/askit"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/reembed"
	"github.com/poiesic/askit/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "askit",
		Usage:  "Hybrid retrieval and intent classification over task documentation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Load documentation chunks and labeled examples into the store",
				Action: seedCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "chunks",
						Usage: "Path to a JSON file of documentation chunks",
					},
					&cli.StringFlag{
						Name:  "examples",
						Usage: "Path to a JSON file of labeled examples",
					},
				),
			},
			{
				Name:      "retrieve",
				Usage:     "Retrieve documents for a query",
				ArgsUsage: "<query>",
				Action:    retrieveCommand,
				Flags:     storeFlags(),
			},
			{
				Name:      "classify",
				Usage:     "Classify the intent of a query",
				ArgsUsage: "<query>",
				Action:    classifyCommand,
				Flags:     storeFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks and examples with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
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

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "judge-host",
			Usage: "Relevance judge service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "judge-model",
			Usage: "Relevance judge model name; empty disables judged reranking",
		},
	}
}

func openEngine(c *cli.Context) (*askit.Engine, error) {
	judgeHost := c.String("judge-host")
	if judgeHost == "" {
		judgeHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithJudgeHost(judgeHost),
		ai.WithJudgeModel(c.String("judge-model")),
	)

	engine, err := askit.NewEngine(c.String("db"), askit.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

// seedChunk is the JSON shape of a documentation chunk in a seed file.
type seedChunk struct {
	TaskName string    `json:"taskName"`
	Heading  string    `json:"heading"`
	URL      string    `json:"url"`
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector,omitempty"`
}

// seedExample is the JSON shape of a labeled example in a seed file.
type seedExample struct {
	TaskName    string    `json:"taskName"`
	Title       string    `json:"title"`
	Explanation string    `json:"explanation"`
	Vector      []float32 `json:"vector,omitempty"`
}

func seedCommand(c *cli.Context) error {
	chunksPath := c.String("chunks")
	examplesPath := c.String("examples")
	if chunksPath == "" && examplesPath == "" {
		return fmt.Errorf("at least one of --chunks or --examples is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if chunksPath != "" {
		var seeds []seedChunk
		if err := readJSONFile(chunksPath, &seeds); err != nil {
			return fmt.Errorf("failed to read chunks file: %w", err)
		}

		chunks := make([]*core.Chunk, len(seeds))
		for i, s := range seeds {
			chunks[i] = &core.Chunk{
				TaskName: s.TaskName,
				Heading:  s.Heading,
				URL:      s.URL,
				Text:     s.Text,
				Vector:   s.Vector,
			}
		}

		added, err := pipeline.IngestChunks(ctx, chunks...)
		if err != nil {
			return fmt.Errorf("failed to ingest chunks: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ingested %d chunks\n", len(added))
	}

	if examplesPath != "" {
		var seeds []seedExample
		if err := readJSONFile(examplesPath, &seeds); err != nil {
			return fmt.Errorf("failed to read examples file: %w", err)
		}

		examples := make([]*core.Example, len(seeds))
		for i, s := range seeds {
			examples[i] = &core.Example{
				TaskName:    s.TaskName,
				Title:       s.Title,
				Explanation: s.Explanation,
				Vector:      s.Vector,
			}
		}

		added, err := pipeline.IngestExamples(ctx, examples...)
		if err != nil {
			return fmt.Errorf("failed to ingest examples: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ingested %d examples\n", len(added))
	}

	return nil
}

func retrieveCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Retrieve(context.Background(), query)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	return printJSON(result)
}

func classifyCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	classification := engine.Classify(context.Background(), query)

	return printJSON(classification)
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create document repository: %w", err)
	}

	examples, err := badger.NewExampleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create example repository: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

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

	reembedder := reembed.NewReembedder(documents, examples, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
