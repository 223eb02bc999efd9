package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tripcraft/internal/ai"
	"tripcraft/internal/config"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tripcraft",
		Short:        "Tripcraft: travel itineraries and a travel assistant",
		Long:         "Tripcraft plans day-by-day itineraries and answers travel questions from the terminal.",
		SilenceUsage: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newChatCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tripcraft %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadModels builds a ready selector from the environment. It returns a nil
// selector, not an error, when no credential is configured.
func loadModels(ctx context.Context) (*ai.ModelSelector, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, err
	}
	registry, err := ai.NewRegistryFromCredentials(ctx, cfg.AI.Credentials())
	if err != nil {
		return nil, func() {}, err
	}
	if registry.Empty() {
		return nil, registry.Close, nil
	}
	selector := ai.NewModelSelector(cfg.AI.Models, registry)
	selector.Initialize()
	return selector, registry.Close, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
