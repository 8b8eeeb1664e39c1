package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/config"
	dbRedis "github.com/kailas-cloud/facetsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/facetsearch/internal/logger"
	"github.com/kailas-cloud/facetsearch/internal/repository/catalog"
	"github.com/kailas-cloud/facetsearch/internal/usecase/ingest"
	"github.com/kailas-cloud/facetsearch/internal/version"
)

var (
	idField   string
	batchSize int
	workers   int

	rootCmd = &cobra.Command{
		Use:     "facetsearch-seed [products.jsonl | -]",
		Short:   "Create the search index and load a JSON Lines product feed",
		Long:    `Reads one JSON object per line, creates the configured index if it is missing and writes each product as a hash under the configured key prefix.`,
		Args:    cobra.ExactArgs(1),
		Version: version.String(),
		RunE:    runSeed,
	}
)

func init() {
	rootCmd.Flags().StringVar(&idField, "id-field", "id", "Record field holding the product ID")
	rootCmd.Flags().IntVar(&batchSize, "batch", 500, "Products per HSET round-trip")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "Parallel writers")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	in, closeIn, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeIn()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := catalog.New(store, catalog.Config{
		Index:      cfg.Search.Index,
		KeyPrefix:  cfg.Search.KeyPrefix,
		TitleField: cfg.Search.TitleField,
		Facets:     cfg.Search.Facets,
	})
	svc := ingest.New(repo, ingest.Config{
		IDField:    idField,
		TitleField: cfg.Search.TitleField,
		BatchSize:  batchSize,
		Workers:    workers,
	}, logger)

	logger.Info("Seeding catalog",
		zap.String("input", args[0]),
		zap.String("index", cfg.Search.Index),
		zap.String("key_prefix", cfg.Search.KeyPrefix),
		zap.Int("workers", workers),
	)

	res, err := svc.Run(ctx, in)
	logger.Info("Seed finished",
		zap.Bool("index_created", res.IndexCreated),
		zap.Int64("processed", res.Processed),
		zap.Int64("skipped", res.Skipped),
		zap.Duration("duration", res.Duration),
		zap.Error(err),
	)
	return err
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
