package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ohara-cli/internal/api"
	"ohara-cli/internal/config"
	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/format"
	"ohara-cli/internal/logging"
	"ohara-cli/internal/reports"
	"ohara-cli/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	APIURL     string
	PrettyJSON bool
	Format     string
	Debug      bool

	cfg *config.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "ohara",
		Short:        "Touchpoint dashboard CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  ohara

  # Touchpoints from the last 30 days tagged go or docker
  ohara touchpoints list --days 30 --tag go --tag docker

  # Log a touchpoint
  ohara touchpoints add --description "Reviewed deploy script" --category Mentorship --people "Alice, Bob"

  # Render a report in the terminal
  ohara reports show 2024-06-weekly.md --render
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, errInvalidFlag("format", "must be one of "+strings.Join(format.Names, ", ")))
		}
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return writeErr(cmd, err)
		}
		if u := strings.TrimSpace(app.APIURL); u != "" {
			cfg.API.BaseURL = u
		}
		app.cfg = cfg
		app.log = logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, app.Debug)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("OHARA_CONFIG", ""), "Config file (default ~/.ohara/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Backend API base URL (overrides api.base_url)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("OHARA_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug logging")

	cmd.AddCommand(newTouchpointsCmd(app))
	cmd.AddCommand(newTimelineCmd(app))
	cmd.AddCommand(newMetadataCmd(app))
	cmd.AddCommand(newReportsCmd(app))

	return cmd
}

// runTUI starts the interactive dashboard. The TUI owns the terminal, so logs go
// to log.file (or nowhere) instead of stderr.
func runTUI(cmd *cobra.Command, app *App) error {
	w, err := logging.OpenFile(app.cfg.Log.File)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("open log file: %w", err))
	}
	defer w.Close()
	app.log = logging.Setup(w, app.cfg.Log.Level, app.Debug)

	style := reports.ResolveStyle(app.cfg.TUI.Theme, app.cfg.TUI.MarkdownStyle)
	return tui.Run(commandContext(cmd), tui.Options{
		Session:  app.session(),
		Viewer:   app.viewer(),
		Renderer: reports.NewTerminalRenderer(style),
		Theme:    app.cfg.TUI.Theme,
		Logger:   app.log,
	})
}

func (app *App) client(log zerolog.Logger) *api.Client {
	return api.New(app.cfg.API.BaseURL, api.WithTimeout(app.cfg.API.Timeout), api.WithLogger(log))
}

func (app *App) session() *dashboard.Session {
	return dashboard.NewSession(app.client(app.log), dashboard.WithLogger(app.log))
}

func (app *App) viewer() *reports.Viewer {
	return reports.NewViewer(app.client(app.log), reports.WithLogger(app.log))
}

// diagramRenderer returns nil when no renderer URL is configured.
func (app *App) diagramRenderer() reports.DiagramRenderer {
	if app.cfg.Diagrams.RendererURL == "" {
		return nil
	}
	return reports.NewKrokiRenderer(app.cfg.Diagrams.RendererURL, app.cfg.API.Timeout)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requestContext bounds one-shot commands. Long-running commands use commandContext.
func requestContext(cmd *cobra.Command, app *App) (context.Context, context.CancelFunc) {
	// Each command makes a few sequential calls; allow a few timeouts' worth.
	return context.WithTimeout(commandContext(cmd), 4*app.cfg.API.Timeout+time.Second)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
