package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/batch"
	"github.com/Faultbox/facegen/internal/config"
	"github.com/Faultbox/facegen/internal/logger"
	"github.com/Faultbox/facegen/internal/material"
	"github.com/Faultbox/facegen/internal/pipeline"
	"github.com/Faultbox/facegen/internal/store"
)

// Version is the application version.
const Version = "0.3.0"

var errNoDatabase = errors.New("no database configured (set database.url or --db)")

var (
	flags config.Flags
	cfg   *config.Config
	// DB is opened on demand by commands that persist metadata.
	DB *store.Store
)

var rootCmd = &cobra.Command{
	Use:           "avatargen",
	Short:         "Generate 3D avatars (GLB) from facial landmarks",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flags)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		var fileCfg logger.FileConfig
		if cfg.Logging.LogFile != "" {
			fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
			fileCfg.JSON = cfg.Logging.JSONFile
		}
		if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger.Sugar.Debugf("Config: %+v", cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// The command context may already be cancelled.
			DB.Close(context.Background())
		}
		logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "Config file (YAML or TOML)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.StringVar(&flags.LogFile, "log-file", "", "Also write logs to this file (rotated)")
	pf.StringVarP(&flags.OutputDir, "out-dir", "o", "", "Directory for generated avatars")
	pf.IntVar(&flags.TextureSize, "texture-size", 0, "Face texture edge length in pixels")
	pf.StringVar(&flags.TextureFormat, "texture-format", "", "Embedded texture format: png or webp")
	pf.Uint64Var(&flags.Seed, "seed", 0, "Texture noise seed (0 = random)")
	pf.StringVar(&flags.DatabaseURL, "db", "", "PostgreSQL connection string for avatar metadata")
}

// newService builds the pipeline from the loaded configuration.
func newService() *pipeline.Service {
	format, err := material.ParseFormat(cfg.Generation.TextureFormat)
	if err != nil {
		// Load validated the format already.
		format = material.FormatPNG
	}
	return pipeline.New(pipeline.Config{
		TextureSize:   cfg.Generation.TextureSize,
		TextureFormat: format,
		Seed:          cfg.Generation.Seed,
		ModelVersion:  cfg.Generation.ModelVersion,
		Generator:     cfg.Generation.Generator,
	}, logger.Named("pipeline"))
}

// openStore connects to the metadata store. It returns nil when no database
// is configured and required is false.
func openStore(ctx context.Context, required bool) (*store.Store, error) {
	if cfg.Database.URL == "" {
		if required {
			return nil, errNoDatabase
		}
		return nil, nil
	}
	var err error
	DB, err = store.New(ctx, cfg.Database.URL, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return DB, nil
}

// saveTo returns a batch save hook that records metadata in db, or nil.
func saveTo(db *store.Store) func(ctx context.Context, item *batch.Item) error {
	if db == nil {
		return nil
	}
	return func(ctx context.Context, item *batch.Item) error {
		return db.SaveAvatar(ctx, item.Result.Metadata, item.Output.GLB)
	}
}

func batchOptions(db *store.Store) batch.Options {
	return batch.Options{
		Workers:       cfg.Batch.Workers,
		OutputDir:     cfg.Output.Dir,
		WriteMetadata: cfg.Output.WriteMetadata,
		Logger:        logger.Named("batch"),
		Save:          saveTo(db),
	}
}

func logFailure(msg string, err error) {
	logger.Error(msg, zap.Error(err))
}
