package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/yardlex/lexingest/internal/ai"
	"github.com/yardlex/lexingest/internal/config"
	"github.com/yardlex/lexingest/internal/db"
	"github.com/yardlex/lexingest/internal/filestore"
	"github.com/yardlex/lexingest/internal/handler"
	"github.com/yardlex/lexingest/internal/ingest"
	"github.com/yardlex/lexingest/internal/job"
	"github.com/yardlex/lexingest/internal/middleware"
	"github.com/yardlex/lexingest/internal/model"
	"github.com/yardlex/lexingest/internal/repo"
	"github.com/yardlex/lexingest/internal/schedule"
	"github.com/yardlex/lexingest/internal/scrape"
	"github.com/yardlex/lexingest/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lexingest",
		Short: "legal document ingestion pipeline",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		ingestCmd(&configPath),
		ingestFileCmd(&configPath),
		updateEmbeddingsCmd(&configPath),
		healthcheckCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

type services struct {
	ingest     *service.IngestService
	embeddings *service.EmbeddingService
	catalog    *service.CatalogService
	scrapeDeps *scrape.Deps
}

func buildServices(cfg *config.Config, conn *sql.DB) (*services, error) {
	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = cfg.AI
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.Model, cfg.AI.Dimensions)
	chunker := ai.NewChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)

	ingestSvc := service.NewIngestService(conn)
	embeddingSvc := service.NewEmbeddingService(conn, chunker, embedder, cfg.AI.BatchSize)

	archive, err := filestore.New(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("init archive store: %w", err)
	}

	return &services{
		ingest:     ingestSvc,
		embeddings: embeddingSvc,
		catalog:    service.NewCatalogService(conn),
		scrapeDeps: &scrape.Deps{
			Fetcher:    scrape.NewFetcher(cfg.Scrape),
			Parser:     ingest.NewParser(cfg.Scrape.Jurisdiction),
			Ingest:     ingestSvc,
			Embeddings: embeddingSvc,
			Archive:    archive,
			Config:     cfg.Scrape,
		},
	}, nil
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the ingestion server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			svcs, err := buildServices(cfg, conn)
			if err != nil {
				return err
			}
			return runServer(cfg, conn, svcs)
		},
	}
}

func runServer(cfg *config.Config, conn *sql.DB, svcs *services) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info("starting server", zap.Int("port", cfg.Port), zap.String("ai_provider", cfg.AI.Provider))

	deps := handler.RouterDeps{
		Health:    handler.NewHealthHandler(conn),
		Documents: handler.NewDocumentHandler(svcs.catalog),
		Jobs:      handler.NewJobHandler(svcs.catalog),
		Stats:     handler.NewStatsHandler(svcs.catalog),
		Ingest:    handler.NewIngestHandler(svcs.ingest, svcs.embeddings, svcs.scrapeDeps),
		Archive:   handler.NewArchiveHandler(svcs.scrapeDeps.Archive),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Schedule.IngestSpec != "" {
		if err := scheduler.AddJob(job.NewScrapeJob(svcs.ingest, svcs.scrapeDeps), cfg.Schedule.IngestSpec); err != nil {
			return err
		}
	}
	if cfg.Schedule.EmbeddingSpec != "" {
		if err := scheduler.AddJob(job.NewEmbeddingUpdateJob(svcs.embeddings), cfg.Schedule.EmbeddingSpec); err != nil {
			return err
		}
	}
	if cfg.Schedule.CacheSpec != "" {
		cleanup := job.NewEmbeddingCacheCleanupJob(repo.NewEmbeddingCacheRepo(conn), cfg.Schedule.CacheMaxAgeDays)
		if err := scheduler.AddJob(cleanup, cfg.Schedule.CacheSpec); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("server error", zap.Error(err))
		}
	}()
	rootLogger.Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	return nil
}

func ingestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <source>",
		Short: "scrape and ingest one source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			svcs, err := buildServices(cfg, conn)
			if err != nil {
				return err
			}
			scraper, err := scrape.New(args[0], svcs.scrapeDeps)
			if err != nil {
				return err
			}
			result, err := svcs.ingest.RunJob(cmd.Context(), args[0], scraper.Scrape)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func ingestFileCmd(configPath *string) *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:   "ingest-file <path>",
		Short: "ingest a single local document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			svcs, err := buildServices(cfg, conn)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			parsed := parseFile(svcs.scrapeDeps.Parser, args[0], string(content), model.DocumentType(strings.ToUpper(docType)))
			docID, isNew, err := svcs.ingest.Ingest(cmd.Context(), parsed, "file", "")
			if err != nil {
				return err
			}
			vectors, err := svcs.embeddings.ProcessDocument(cmd.Context(), docID)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"document_id": docID,
				"created":     isNew,
				"title":       parsed.Title,
				"sections":    len(parsed.Sections),
				"vectors":     vectors,
			})
		},
	}
	cmd.Flags().StringVar(&docType, "type", string(model.DocumentTypeOther), "document type (ACT, REGULATION, CASE, OTHER)")
	return cmd
}

func parseFile(parser *ingest.Parser, path, content string, docType model.DocumentType) *model.ParsedDocument {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return parser.ParseHTML(content, "", docType)
	case ".md", ".markdown":
		return parser.ParseMarkdown(content, "", docType)
	default:
		return parser.ParseText(content, "", docType)
	}
}

func updateEmbeddingsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update-embeddings",
		Short: "embed every chunk that has no vector yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			svcs, err := buildServices(cfg, conn)
			if err != nil {
				return err
			}
			stats, err := svcs.embeddings.UpdateAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func healthcheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "verify database, source and provider configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			report := map[string]interface{}{}
			if err := conn.PingContext(cmd.Context()); err != nil {
				report["database"] = err.Error()
			} else {
				report["database"] = "ok"
			}
			report["sources"] = map[string]bool{
				"acts":        cfg.Scrape.ActsBaseURL != "",
				"regulations": cfg.Scrape.RegulationsBaseURL != "",
				"cases":       cfg.Scrape.CasesBaseURL != "",
			}
			svcs, err := buildServices(cfg, conn)
			if err != nil {
				report["provider"] = err.Error()
			} else if _, err := svcs.scrapeDeps.Embeddings.Probe(cmd.Context()); err != nil {
				report["provider"] = err.Error()
			} else {
				report["provider"] = cfg.AI.Provider
			}
			return printJSON(report)
		},
	}
}

func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
