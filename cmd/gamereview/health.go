package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that an engine binary is available",
	Long: `Resolve an engine binary using the configured resolution order and
print its path. Exits non-zero when no engine is available.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer analyzer.Close()

	path, err := analyzer.Health(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("engine: %s\n", path)
	return nil
}
