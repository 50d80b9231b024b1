// Command icp is a terminal client for the ICP builder. It drives the same
// builder the HTTP server uses, against the configured local store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/config"
	"github.com/BerylCAtieno/icp-builder/internal/logging"
	"github.com/BerylCAtieno/icp-builder/internal/profiler"
	"github.com/BerylCAtieno/icp-builder/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	storeDriver string
	storePath   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "icp",
	Short: "Build an Ideal Customer Profile through a guided conversation",
	Long: `icp interviews you about your ideal customer and records the answers
into a structured profile: firmographics, psychographics, strategy and
technology.

Set your Gemini API key once with 'icp key set', then run 'icp chat'.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "storage backend: bolt, sqlite or memory (default from STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "storage file (default from STORE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	keyCmd.AddCommand(keySetCmd, keyClearCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "markdown or json")
	exportCmd.Flags().BoolVar(&exportRender, "render", false, "render Markdown for the terminal")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to a file instead of stdout")

	rootCmd.AddCommand(chatCmd, statusCmd, exportCmd, resetCmd, keyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is an opened builder plus what must be released afterwards.
type session struct {
	builder *builder.Builder
	store   *store.Store
	logger  *zap.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func openSession(ctx context.Context) (*session, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = logging.New(cfg.LogLevel, "console"); err != nil {
			return nil, err
		}
	}

	kv, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	st := store.New(kv, logger)

	b := builder.New(ctx, st, profiler.Factory(cfg.GeminiModel, logger), logger,
		chat.WithTimeout(cfg.TurnTimeout),
		chat.WithMaxIterations(cfg.MaxToolIterations),
	)
	return &session{builder: b, store: st, logger: logger}, nil
}
