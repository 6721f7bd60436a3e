package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dm/portalmon/internal/client"
	"github.com/dm/portalmon/internal/config"
	"github.com/dm/portalmon/internal/dashboard"
	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/telemetry"
	"github.com/dm/portalmon/internal/tui"
)

const metricsShutdownTimeout = 5 * time.Second

// runDashboard runs the dashboard until the user quits or ctx ends.
func runDashboard(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	plain := cfg.Plain || !isTerminal(stdout)

	closeLog, err := redirectLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rec := telemetry.NewPromRecorder()
	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		ReconnectBase:  cfg.Reconnect.Base,
		MaxBackoff:     cfg.Reconnect.MaxBackoff,
		Logger:         logger.NewEnvLogger("[client]"),
		Recorder:       rec,
	})
	if err != nil {
		return pmerrors.WrapWithCode(err, pmerrors.ErrConfig, "Cannot create status client", "")
	}

	g, gctx := errgroup.WithContext(ctx)

	sub, err := c.OpenLiveChannel(gctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctrl := dashboard.New(c, sub, dashboard.Options{
		Period:   cfg.InitialPeriod(),
		Logger:   logger.NewEnvLogger("[dashboard]"),
		Recorder: rec,
	})

	opts := []tea.ProgramOption{tea.WithContext(gctx)}
	var m tea.Model
	if plain {
		m = tui.NewLineApp(ctrl, stdout)
		opts = append(opts, tea.WithoutRenderer(), tea.WithInput(nil), tea.WithOutput(stdout))
	} else {
		m = tui.NewApp(ctrl, c.BaseURL())
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, opts...)

	roll, err := dashboard.NewRollover(dashboard.RolloverSchedule, p.Send, logger.NewEnvLogger("[rollover]"))
	if err != nil {
		return err
	}
	roll.Start()
	defer roll.Stop()

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		srv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return pmerrors.WrapWithCode(err, pmerrors.ErrConfig,
					"Metrics server failed on "+cfg.MetricsAddr,
					"Pick a free address with --metrics-addr")
			}
			return nil
		})
	}

	g.Go(func() error {
		_, err := p.Run()
		if srv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}
		// Ctrl+C and cancellation by a failing sibling are normal exits here.
		if errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// redirectLog sends the standard logger to path, or discards it when path is
// empty. The dashboard owns the terminal, so nothing may go to stderr.
func redirectLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "portalmon")
	if err != nil {
		return nil, pmerrors.WrapWithCode(err, pmerrors.ErrConfig,
			"Cannot open log file "+path,
			"Set log_file to a writable path, or to \"\" to discard logs")
	}
	return func() { _ = f.Close() }, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
