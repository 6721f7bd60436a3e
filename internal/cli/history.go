package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dm/portalmon/internal/client"
	"github.com/dm/portalmon/internal/engine"
	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/model"
	"github.com/dm/portalmon/internal/tui"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		last int
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "history [period]",
		Short: "Print the historical samples of a period",
		Long: `Fetch one historical range from the status service and print it as a table.

The period is 12h, 24h or today (default: the configured period).
With --all the three ranges are fetched concurrently.`,
		Example: `  portalmon history 12h
  portalmon history --last 0 today
  portalmon history --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.NoColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}

			periods := []model.Period{cfg.InitialPeriod()}
			switch {
			case all:
				periods = model.Periods
			case len(args) == 1:
				p, err := model.ParsePeriod(args[0])
				if err != nil {
					return pmerrors.WrapWithCode(err, pmerrors.ErrConfig,
						"Invalid period "+args[0],
						"Use one of 12h, 24h or today")
				}
				periods = []model.Period{p}
			}

			c, err := client.NewDefaultClient(client.ClientConfig{
				BaseURL:        cfg.BaseURL,
				RequestTimeout: cfg.RequestTimeout,
				Logger:         logger.NewEnvLogger("[client]"),
			})
			if err != nil {
				return pmerrors.WrapWithCode(err, pmerrors.ErrConfig, "Cannot create status client", "")
			}

			results, err := engine.FetchPeriods(cmd.Context(), c, periods)
			if err != nil {
				return err
			}

			blocks := make([]string, len(periods))
			for i, p := range periods {
				blocks[i] = tui.RenderHistory(p, results[i], last)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(blocks, "\n\n"))
			return nil
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 20, "show only the newest N samples (0 = all)")
	cmd.Flags().BoolVar(&all, "all", false, "fetch all periods")
	return cmd
}
