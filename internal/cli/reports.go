package cli

import (
	"errors"
	"fmt"
	"time"

	"ohara-cli/internal/reports"

	"github.com/spf13/cobra"
)

func newReportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Markdown reports",
	}
	cmd.AddCommand(newReportsListCmd(app))
	cmd.AddCommand(newReportsShowCmd(app))
	cmd.AddCommand(newReportsUploadCmd(app))
	cmd.AddCommand(newReportsWatchCmd(app))
	return cmd
}

func newReportsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			entries, err := app.viewer().List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": entries, "meta": map[string]any{"count": len(entries)}})
		},
	}
}

func newReportsShowCmd(app *App) *cobra.Command {
	var (
		render   bool
		asHTML   bool
		diagrams bool
		width    int
	)

	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Fetch a report (raw, terminal-rendered or HTML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if render && asHTML {
				return writeErr(cmd, errors.New("--render and --html are mutually exclusive"))
			}
			if diagrams && !asHTML {
				return writeErr(cmd, errors.New("--diagrams requires --html"))
			}
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			rep, err := app.viewer().Open(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			switch {
			case render:
				tr := reports.NewTerminalRenderer(reports.ResolveStyle(app.cfg.TUI.Theme, app.cfg.TUI.MarkdownStyle))
				out, err := tr.Render(rep.Markdown, width)
				if err != nil {
					app.log.Warn().Err(err).Msg("terminal render failed; showing raw markdown")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err

			case asHTML:
				hr := reports.NewHTMLRenderer(nil)
				body, err := hr.Render(rep.Markdown)
				if err != nil {
					app.log.Warn().Err(err).Msg("markdown render failed")
				}
				if diagrams {
					dr := app.diagramRenderer()
					if dr == nil {
						return writeErr(cmd, errors.New("--diagrams needs diagrams.renderer_url (OHARA_DIAGRAM_URL)"))
					}
					res, err := reports.RenderDiagrams(ctx, body, dr)
					if err != nil {
						app.log.Warn().Err(err).Msg("diagram pass failed; keeping diagram source")
					}
					for _, f := range res.Failed {
						app.log.Warn().Err(f.Err).Int("diagram", f.Index+1).Msg("diagram render failed")
					}
					body = res.HTML
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), hr.Document(rep.Name, body))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": rep})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render as a standalone HTML page")
	cmd.Flags().BoolVar(&diagrams, "diagrams", false, "With --html: render diagram blocks through the diagram service")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

func uploadView(results []reports.UploadResult) ([]map[string]any, int) {
	out := make([]map[string]any, 0, len(results))
	failed := 0
	for _, r := range results {
		m := map[string]any{"path": r.Path, "filename": r.Filename, "ok": r.Err == nil}
		if r.Err != nil {
			failed++
			m["error"] = r.Message()
		}
		out = append(out, m)
	}
	return out, failed
}

func newReportsUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file|glob>...",
		Short: "Upload .md files (and .html, converted to Markdown); overwrites existing reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			results, err := app.viewer().UploadGlob(ctx, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			view, failed := uploadView(results)
			if err := writeOut(cmd, app, map[string]any{"data": view}); err != nil {
				return err
			}
			if failed > 0 {
				return writeErr(cmd, fmt.Errorf("%d of %d uploads failed", failed, len(results)))
			}
			return nil
		},
	}
}

func newReportsWatchCmd(app *App) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload report files under dir whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.viewer().NewWatcher(args[0], debounce)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := commandContext(cmd)
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			for res := range w.Results() {
				view, _ := uploadView([]reports.UploadResult{res})
				if err := writeOut(cmd, app, map[string]any{"data": view[0]}); err != nil {
					return err
				}
			}
			return <-done
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", reports.DefaultDebounce, "Quiet period before a changed file is uploaded")
	return cmd
}
