package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/gamereview"
)

var evalCmd = &cobra.Command{
	Use:   "eval [FEN]",
	Short: "Evaluate a single position",
	Long: `Run the engine on one position given in FEN notation and print the
evaluation, best move and optionally the top candidate lines.

By default scores are reported from the side to move's perspective;
pass --normalize to keep White's perspective.

Examples:
  # Starting position
  gamereview eval "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

  # Three candidate lines at depth 18
  gamereview eval "..." --depth 18 --lines 3`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

var (
	evalDepth     int
	evalLines     int
	evalNormalize bool
	evalJSON      bool
)

func init() {
	evalCmd.Flags().IntVar(&evalDepth, "depth", gamereview.DefaultDepth, "engine search depth")
	evalCmd.Flags().IntVar(&evalLines, "lines", 1, "number of candidate lines")
	evalCmd.Flags().BoolVar(&evalNormalize, "normalize", false, "report scores from White's perspective")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer analyzer.Close()

	report, err := analyzer.Evaluate(context.Background(), args[0], evalDepth, evalLines, evalNormalize)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if evalJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Eval: %+d\n", report.Evaluation)
	fmt.Printf("Best: %s\n", report.BestMove)
	for i, pv := range report.PVLines {
		fmt.Printf("PV %d: %+d %s\n", i+1, pv.Evaluation, strings.Join(pv.Moves, " "))
	}
	return nil
}
