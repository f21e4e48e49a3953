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
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/traingen"
	"github.com/poiesic/traingen/core"
	"github.com/poiesic/traingen/generation"
	"github.com/poiesic/traingen/ingestion"
	"github.com/poiesic/traingen/reindex"
)

func main() {
	app := &cli.App{
		Name:  "traingen",
		Usage: "AI training content generation for organizational knowledge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file before running",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents into an organization's knowledge base",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "org",
						Aliases:  []string{"o"},
						Usage:    "Organization identifier",
						Required: true,
					},
				},
			},
			{
				Name:   "generate",
				Usage:  "Generate a training module from a template",
				Action: generateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "org",
						Aliases:  []string{"o"},
						Usage:    "Organization identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "template",
						Aliases:  []string{"t"},
						Usage:    "Module template identifier (see the templates command)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Override the template title",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Override the template description",
					},
					&cli.StringFlag{
						Name:  "tone",
						Usage: "Content tone (formal, casual, professional)",
						Value: "professional",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the generated module JSON to this file instead of stdout",
					},
				},
			},
			{
				Name:   "templates",
				Usage:  "List the module template catalog",
				Action: templatesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only templates in this category",
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "Only templates matching this search query",
					},
					&cli.BoolFlag{
						Name:  "simulation",
						Usage: "Only templates that include a simulation",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search an organization's ingested content",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "org",
						Aliases:  []string{"o"},
						Usage:    "Organization identifier",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Maximum number of hits",
						Value: 5,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all records in a vector store namespace",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "namespace",
						Aliases:  []string{"n"},
						Usage:    "Vector store namespace to re-embed",
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
			{
				Name:   "validate",
				Usage:  "Check provider credentials and store connectivity",
				Action: validateCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	app, err := traingen.NewApp(c.String("org"))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	pipeline, err := app.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	docs := make([]ingestion.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, ingestion.Document{
			FileName: filepath.Base(path),
			MimeType: mime.TypeByExtension(filepath.Ext(path)),
			Data:     data,
		})
	}

	results := pipeline.ProcessBatch(context.Background(), c.String("org"), docs)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", res.FileName, res.Err)
			continue
		}
		fmt.Fprintf(os.Stderr, "ok      %s: %d chunks", res.FileName, res.ChunkCount)
		if res.Pages > 0 {
			fmt.Fprintf(os.Stderr, " (%d pages)", res.Pages)
		}
		fmt.Fprintln(os.Stderr)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func generateCommand(c *cli.Context) error {
	template, ok := generation.TemplateByID(c.String("template"))
	if !ok {
		return fmt.Errorf("unknown template %q; run the templates command to list the catalog", c.String("template"))
	}

	app, err := traingen.NewApp(c.String("org"))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	generator, err := app.NewGenerator()
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	defer generator.Release()

	fmt.Fprintf(os.Stderr, "Generating %q for organization %s\n", template.Title, c.String("org"))
	start := time.Now()

	module, err := generator.GenerateModule(context.Background(), template, c.String("org"), generation.GenerateOptions{
		CustomTitle:       c.String("title"),
		CustomDescription: c.String("description"),
		Tone:              c.String("tone"),
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Generated %d lessons, %d assessments in %s\n",
		len(module.Lessons), len(module.Assessments), time.Since(start).Round(time.Second))

	out, err := json.MarshalIndent(module, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode module: %w", err)
	}
	out = append(out, '\n')

	if path := c.String("out"); path != "" {
		return os.WriteFile(path, out, 0644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func templatesCommand(c *cli.Context) error {
	var templates []core.ModuleTemplate
	switch {
	case c.String("query") != "":
		templates = generation.SearchTemplates(c.String("query"))
	case c.String("category") != "":
		templates = generation.TemplatesByCategory(c.String("category"))
	case c.Bool("simulation"):
		templates = generation.TemplatesWithSimulation()
	default:
		templates = generation.Templates()
	}

	if len(templates) == 0 {
		fmt.Println("No templates match.")
		return nil
	}

	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Category != templates[j].Category {
			return templates[i].Category < templates[j].Category
		}
		return templates[i].ID < templates[j].ID
	})

	for _, t := range templates {
		sim := ""
		if t.HasSimulation {
			sim = fmt.Sprintf(" [%s]", t.SimulationType)
		}
		fmt.Printf("%-24s %-12s %-12s %3dm  %s%s\n",
			t.ID, t.Category, t.Difficulty, t.EstimatedDuration, t.Title, sim)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a search query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	app, err := traingen.NewApp(c.String("org"))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	searcher, err := app.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(context.Background(), c.String("org"), query, c.Int("top"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, hit.Chunk.Text, hit.Chunk.ID, hit.Score)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	app, err := traingen.NewApp("")
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	reindexer, err := app.NewReindexer(config, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Namespace: %s\n\n", c.String("namespace"))

	summary, err := reindexer.Run(context.Background(), c.String("namespace"))
	if err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Reindexed %d of %d records (%d skipped)\n",
		summary.Reindexed, summary.Total, summary.Skipped)
	return nil
}

func validateCommand(c *cli.Context) error {
	app, err := traingen.NewApp("")
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Store().Ping(ctx); err != nil {
		fmt.Printf("store: FAILED (%v)\n", err)
	} else {
		fmt.Println("store: ok")
	}

	status := app.LLM().ValidateProviders(ctx)
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := false
	for _, name := range names {
		if status[name] {
			fmt.Printf("%s: ok\n", name)
		} else {
			fmt.Printf("%s: FAILED\n", name)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more providers failed validation")
	}
	return nil
}

func setup(c *cli.Context) error {
	// Missing .env is fine; an explicitly named file must exist.
	if err := godotenv.Load(c.String("env-file")); err != nil && c.IsSet("env-file") {
		return fmt.Errorf("failed to load env file: %w", err)
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
