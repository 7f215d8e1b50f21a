package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/gamereview"
)

var (
	// Global flags.
	enginePath string
	bookDir    string
	noDownload bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gamereview",
	Short: "Engine-backed move quality analysis for chess games",
	Long: `Gamereview grades every move of a chess game with a local engine:
each move gets a quality label (Brilliant, Great, Best, Excellent, Good,
Book, Inaccuracy, Mistake, Miss or Blunder), and per-side accuracy and
estimated ratings are derived from the win probability lost per move.

Without --engine-path a Stockfish binary is resolved automatically:
a cached download is reused, otherwise a release build is fetched, and
the system PATH is tried last.

Examples:
  # Analyze a game from a PGN file
  gamereview analyze game.pgn

  # Evaluate a single position
  gamereview eval "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

  # Run the HTTP analysis service
  gamereview serve --addr :8080`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&enginePath, "engine-path", "", "path to a UCI engine binary")
	rootCmd.PersistentFlags().StringVar(&bookDir, "book-dir", "", "directory with opening book TSV files")
	rootCmd.PersistentFlags().BoolVar(&noDownload, "no-download", false, "never download an engine binary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger builds the CLI logger honoring --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// analyzerOptions translates the global flags into client options.
func analyzerOptions(logger *zap.Logger) []gamereview.Option {
	opts := []gamereview.Option{gamereview.WithLogger(logger)}
	if enginePath != "" {
		opts = append(opts, gamereview.WithEnginePath(enginePath))
	}
	if bookDir != "" {
		opts = append(opts, gamereview.WithBookDir(bookDir))
	}
	if noDownload {
		opts = append(opts, gamereview.WithoutEngineDownload())
	}
	return opts
}

// newAnalyzer builds an analyzer from the global flags.
func newAnalyzer() (*gamereview.Analyzer, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	analyzer, err := gamereview.New(analyzerOptions(logger)...)
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}
	return analyzer, nil
}
