// Command statsctl queries player stats from the terminal, without the HTTP
// server.
//
// Usage:
//
//	statsctl query "martinez l." --team inter
//	statsctl query vlahovic --explain
//	statsctl warm --categories standard,passing,keeper
//	statsctl aliases
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/fantacalcio-stats/internal/app"
	"github.com/riskibarqy/fantacalcio-stats/internal/config"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/playerstats"
	"github.com/riskibarqy/fantacalcio-stats/internal/domain/stattable"
	"github.com/riskibarqy/fantacalcio-stats/internal/platform/logging"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "statsctl",
		Short:        "Fantacalcio player stats CLI",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(queryCmd(&verbose))
	root.AddCommand(warmCmd(&verbose))
	root.AddCommand(aliasesCmd(&verbose))
	return root
}

func queryCmd(verbose *bool) *cobra.Command {
	var (
		team    string
		explain bool
		top     int
	)
	cmd := &cobra.Command{
		Use:   "query <player>",
		Short: "Resolve a player name and print the aggregated stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, *verbose, func(ctx context.Context, c *app.Container) error {
				name := args[0]
				out := cmd.OutOrStdout()

				if explain {
					if err := printRanking(ctx, out, c, name, team, top); err != nil {
						return err
					}
				}

				result, err := c.PlayerStats.GetPlayerStats(ctx, name, team)
				if err != nil {
					if qe, ok := playerstats.AsQueryError(err); ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", qe.Kind, qe.Message)
						if len(qe.AvailablePlayers) > 0 {
							fmt.Fprintf(cmd.ErrOrStderr(), "available: %s\n", strings.Join(qe.AvailablePlayers, ", "))
						}
					}
					return err
				}
				return writeJSON(out, result)
			})
		},
	}
	cmd.Flags().StringVar(&team, "team", "", "Team hint used to break ties")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the best scoring candidates before the result")
	cmd.Flags().IntVar(&top, "top", 5, "Number of candidates printed by --explain")
	return cmd
}

func printRanking(ctx context.Context, out io.Writer, c *app.Container, name, team string, top int) error {
	if !c.Datasets.Available() {
		return nil
	}
	standard := c.Datasets.Load(ctx, stattable.CategoryStandard)
	normalized := c.Matcher.Normalizer().Normalize(name)

	fmt.Fprintf(out, "query %q normalized to %q, %d players\n", name, normalized, standard.Len())
	for i, candidate := range c.Matcher.Rank(name, team, standard, top) {
		fmt.Fprintf(out, "%2d. %-32s %4d\n", i+1, candidate.Name, candidate.Score)
	}
	return nil
}

func warmCmd(verbose *bool) *cobra.Command {
	var categories []string
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Fetch category tables and print their row counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, *verbose, func(ctx context.Context, c *app.Container) error {
				if !c.Datasets.Available() {
					return fmt.Errorf("no stats provider configured")
				}

				selected := c.Config.StatsPreloadCategories
				if len(categories) > 0 {
					parsed, err := stattable.ParseCategories(categories)
					if err != nil {
						return err
					}
					selected = parsed
				}

				rows, err := c.Datasets.Preload(ctx, selected...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, category := range selected {
					fmt.Fprintf(out, "%-14s %5d\n", category, rows[category])
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&categories, "categories", nil,
		"Categories to load, any of "+categoryNames()+" (default STATS_PRELOAD_CATEGORIES)")
	return cmd
}

func categoryNames() string {
	all := stattable.AllCategories()
	names := make([]string, 0, len(all))
	for _, category := range all {
		names = append(names, category.String())
	}
	return strings.Join(names, ",")
}

func aliasesCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "aliases",
		Short: "Print the active player alias table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, *verbose, func(_ context.Context, c *app.Container) error {
				aliases := c.Matcher.Normalizer().Aliases()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version %s, %d aliases\n", aliases.Version, aliases.Len())
				for _, entry := range aliases.Entries() {
					fmt.Fprintf(out, "%-20s -> %s\n", entry[0], entry[1])
				}
				return nil
			})
		},
	}
}

func withContainer(cmd *cobra.Command, verbose bool, fn func(ctx context.Context, c *app.Container) error) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(cmd.ErrOrStderr(), level)
	defer func() { _ = logger.Sync() }()

	c, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}
	return fn(ctx, c)
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
