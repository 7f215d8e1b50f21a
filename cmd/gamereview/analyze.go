package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/classify"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN-file]",
	Short: "Grade every move of a game",
	Long: `Analyze a game from a PGN file (or standard input when the file is "-")
and print a per-move quality report with accuracy and estimated ratings.

Examples:
  # Analyze a game at the default depth
  gamereview analyze game.pgn

  # Deeper analysis, JSON output
  gamereview analyze game.pgn --depth 18 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeDepth int
	analyzeJSON  bool
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", gamereview.DefaultDepth, "engine search depth")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pgnBytes, err := readInput(args[0])
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer analyzer.Close()

	report, err := analyzer.Analyze(context.Background(), string(pgnBytes), analyzeDepth)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func printReport(report *gamereview.GameReport) {
	fmt.Printf("%s (%s) vs %s (%s)  [%s]\n",
		report.WhitePlayer, report.WhiteElo,
		report.BlackPlayer, report.BlackElo,
		report.TimeControl)
	fmt.Printf("Accuracy: white %.1f%% (est. %d), black %.1f%% (est. %d)\n\n",
		report.WhiteAccuracy, report.WhiteRating,
		report.BlackAccuracy, report.BlackRating)

	for _, mv := range report.Moves {
		prefix := fmt.Sprintf("%d.", mv.MoveNumber)
		if !mv.IsWhite {
			prefix = fmt.Sprintf("%d...", mv.MoveNumber)
		}
		line := fmt.Sprintf("%-7s %-8s %-10s eval %+d", prefix, mv.SAN, mv.Classification, mv.Evaluation)
		if mv.BestMoveUCI != nil {
			line += fmt.Sprintf("  (best %s)", *mv.BestMoveUCI)
		}
		if mv.Clock != nil {
			line += fmt.Sprintf("  [%s]", *mv.Clock)
		}
		fmt.Println(line)
	}

	fmt.Println()
	printTally("White", report.WhiteClassifications)
	printTally("Black", report.BlackClassifications)
}

func printTally(side string, tally gamereview.Tally) {
	counts := map[classify.Label]int{
		classify.Brilliant:  tally.Brilliant,
		classify.Great:      tally.Great,
		classify.Best:       tally.Best,
		classify.Excellent:  tally.Excellent,
		classify.Good:       tally.Good,
		classify.Book:       tally.Book,
		classify.Inaccuracy: tally.Inaccuracy,
		classify.Mistake:    tally.Mistake,
		classify.Miss:       tally.Miss,
		classify.Blunder:    tally.Blunder,
	}
	fmt.Printf("%s:", side)
	for _, label := range classify.Labels() {
		if n := counts[label]; n > 0 {
			fmt.Printf(" %s=%d", label, n)
		}
	}
	fmt.Println()
}
