// cmd/trailhead/main.go
//
// trailhead – static site generator entry point.
//
// Command life-cycle
// ------------------
//
//  1. Resolve the root directory (--root, TRAILHEAD_ROOT, or discovery).
//
//  2. Load configuration (.env → YAML → env overrides → vault refs).
//
//  3. Start the daily rotating logger at the configured level (tees to
//     console when running in a TTY).
//
//  4. Open the content database and wire the engine, page builder, and
//     orchestrator (see app.go).
//
//  5. Run the subcommand, then flush metrics to the textfile collector.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/logger"
)

var (
	rootDir string
	cfg     *config.Config
)

func main() {
	root := &cobra.Command{
		Use:           "trailhead",
		Short:         "Build a static outdoors site from the content database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// ── 1. Root directory ──
			if rootDir == "" {
				rootDir = config.RootDir()
			}

			// ── 2. Configuration ──
			var err error
			if cfg, err = config.LoadFrom(rootDir); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// ── 3. Logger ──
			if _, err = logger.New(cfg.Paths.Root, cfg.Log.Level, logger.RunningInTTY()); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.S().Debugw("config loaded", "root", cfg.Paths.Root, "site", cfg.Site.Name)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&rootDir, "root", "", "project root holding conf/trailhead.yaml")

	root.AddCommand(
		generateCmd(),
		processCmd(),
		checkCmd(),
		codeCmd(),
		emailCmd(),
		migrateCmd(),
	)

	if err := root.Execute(); err != nil {
		zap.S().Errorw("command failed", "err", err)
		_ = zap.L().Sync()
		fmt.Fprintln(os.Stderr, "trailhead:", err)
		os.Exit(1)
	}
	_ = zap.L().Sync()
}
