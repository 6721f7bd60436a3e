// Package cli wires configuration, the status client and the dashboard into
// the portalmon command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dm/portalmon/internal/config"
)

// rootOptions is shared by every command of one tree.
type rootOptions struct {
	configPath string
	v          *viper.Viper
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"base-url":        "base_url",
	"period":          "period",
	"request-timeout": "request_timeout",
	"metrics-addr":    "metrics_addr",
	"log-file":        "log_file",
	"no-color":        "no_color",
	"plain":           "plain",
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own config state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:   "portalmon",
		Short: "Live and historical health dashboard for the portal",
		Long: `portalmon shows the portal's availability and response time.

It loads the selected historical range from the status service and then
follows the live status stream, reconnecting on its own when the stream drops.
When stdout is not a terminal (or with --plain) it prints one line per sample.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ./.portalmon.yaml or ~/.config/portalmon/config.yaml)")
	flags.String("base-url", "", "status service base URL (default "+config.DefaultBaseURL+")")
	flags.String("period", "", "initial historical range: 12h, 24h or today")
	flags.Duration("request-timeout", 0, "timeout of a historical request")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	flags.String("log-file", "", "log file while the dashboard runs (default "+config.DefaultLogFile+")")
	flags.Bool("no-color", false, "disable colors")
	flags.Bool("plain", false, "print one line per sample instead of the dashboard")

	for flag, key := range flagKeys {
		// Lookup cannot fail for flags registered just above.
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.v, o.configPath)
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
