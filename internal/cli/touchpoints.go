package cli

import (
	"fmt"
	"strings"

	"ohara-cli/internal/dashboard"
	"ohara-cli/internal/model"

	"github.com/spf13/cobra"
)

func newTouchpointsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "touchpoints",
		Aliases: []string{"tp"},
		Short:   "Touchpoint commands",
	}
	cmd.AddCommand(newTouchpointsListCmd(app))
	cmd.AddCommand(newTouchpointsAddCmd(app))
	cmd.AddCommand(newTouchpointsEditCmd(app))
	cmd.AddCommand(newTouchpointsRmCmd(app))
	return cmd
}

// filterFlags are shared by list and timeline.
type filterFlags struct {
	category string
	tags     []string
	days     int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "Only this category (exact match)")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "Only touchpoints with any of these tags (repeatable)")
	cmd.Flags().IntVar(&f.days, "days", 0, "Only the last N days (0, 7, 30, 90 or 365; 0 = all time)")
}

func (f *filterFlags) state() (dashboard.FilterState, error) {
	r := dashboard.DateRange(f.days)
	valid := false
	var opts []string
	for _, x := range dashboard.DateRanges() {
		valid = valid || x == r
		opts = append(opts, fmt.Sprint(int(x)))
	}
	if !valid {
		return dashboard.FilterState{}, errInvalidFlag("days", "must be one of "+strings.Join(opts, ", "))
	}
	st := dashboard.FilterState{Category: strings.TrimSpace(f.category), Range: r}
	for _, t := range f.tags {
		if t = strings.TrimSpace(t); t != "" && !st.HasTag(t) {
			st.Tags = append(st.Tags, t)
		}
	}
	return st, nil
}

func newTouchpointsListCmd(app *App) *cobra.Command {
	var ff filterFlags
	var display bool
	var width int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List touchpoints, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := ff.state()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			opts := []dashboard.SessionOption{dashboard.WithLogger(app.log), dashboard.WithDescriptionWidth(width)}
			s := dashboard.NewSession(app.client(app.log), opts...)
			if err := s.Activate(ctx); err != nil {
				return writeErr(cmd, fmt.Errorf("load touchpoints: %w", err))
			}
			s.SetFilter(filter)

			if display {
				return writeOut(cmd, app, map[string]any{"data": s.Render()})
			}
			tps := s.Filtered()
			return writeOut(cmd, app, map[string]any{
				"data": tps,
				"meta": map[string]any{"count": len(tps), "total": len(s.Touchpoints().All()), "filter": s.Filter()},
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().BoolVar(&display, "display", false, "Output the dashboard display model (rows, selectors, timeline)")
	cmd.Flags().IntVar(&width, "width", dashboard.DefaultDescriptionWidth, "Description width for --display rows (0 = no truncation)")
	return cmd
}

// touchpointFlags are the editable fields for add/edit.
type touchpointFlags struct {
	description string
	category    string
	tags        []string
	people      string
	url         string
}

func (f *touchpointFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "What happened")
	cmd.Flags().StringVar(&f.category, "category", "", "Category (must exist in metadata)")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "Tag (repeatable; must exist in metadata)")
	cmd.Flags().StringVar(&f.people, "people", "", `People involved, comma separated ("Alice, Bob")`)
	cmd.Flags().StringVar(&f.url, "url", "", "Related link")
}

// apply copies the flags the user set onto the open form.
func (f *touchpointFlags) apply(cmd *cobra.Command, s *dashboard.Session) {
	changed := cmd.Flags().Changed
	s.Editor().Update(func(form *dashboard.Form) {
		if changed("description") {
			form.Description = f.description
		}
		if changed("category") {
			form.Category = strings.TrimSpace(f.category)
		}
		if changed("tag") {
			form.Tags = nil
			for _, t := range f.tags {
				if t = strings.TrimSpace(t); t != "" && !form.HasTag(t) {
					form.Tags = append(form.Tags, t)
				}
			}
		}
		if changed("people") {
			form.People = f.people
		}
		if changed("url") {
			form.URL = f.url
		}
	})
}

// checkVocabulary rejects a --category or --tag value missing from md. Values kept
// from an edited touchpoint are not re-checked.
func (f *touchpointFlags) checkVocabulary(cmd *cobra.Command, md model.Metadata) error {
	changed := cmd.Flags().Changed
	if c := strings.TrimSpace(f.category); changed("category") && c != "" && !md.HasCategory(c) {
		return errInvalidFlag("category", fmt.Sprintf("unknown category %q", c))
	}
	if changed("tag") {
		for _, t := range f.tags {
			if t = strings.TrimSpace(t); t != "" && !md.HasTag(t) {
				return errInvalidFlag("tag", fmt.Sprintf("unknown tag %q", t))
			}
		}
	}
	return nil
}

func newTouchpointsAddCmd(app *App) *cobra.Command {
	var tf touchpointFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a touchpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			s := app.session()
			s.BeginCreate()
			tf.apply(cmd, s)
			if err := s.Editor().Form().Validate(); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Activate(ctx); err != nil {
				return writeErr(cmd, fmt.Errorf("load metadata: %w", err))
			}
			if err := tf.checkVocabulary(cmd, s.Snapshot().Metadata); err != nil {
				return writeErr(cmd, err)
			}
			tp, err := s.SubmitEditor(ctx)
			if err != nil {
				return writeErr(cmd, userError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": tp})
		},
	}
	tf.register(cmd)
	return cmd
}

func newTouchpointsEditCmd(app *App) *cobra.Command {
	var tf touchpointFlags

	cmd := &cobra.Command{
		Use:   "edit <touchpoint-id>",
		Short: "Update a touchpoint (unset flags keep their current values)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			id := strings.TrimSpace(args[0])
			s := app.session()
			if err := s.Activate(ctx); err != nil {
				return writeErr(cmd, fmt.Errorf("load touchpoints: %w", err))
			}
			if err := s.BeginEdit(id); err != nil {
				return writeErr(cmd, errNotFound("touchpoint", id))
			}
			if err := tf.checkVocabulary(cmd, s.Snapshot().Metadata); err != nil {
				return writeErr(cmd, err)
			}
			tf.apply(cmd, s)
			tp, err := s.SubmitEditor(ctx)
			if err != nil {
				return writeErr(cmd, userError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": tp})
		},
	}
	tf.register(cmd)
	return cmd
}

func newTouchpointsRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <touchpoint-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a touchpoint (asks for confirmation unless --yes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			var c dashboard.Confirmer = stdinConfirmer{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
			if yes {
				c = dashboard.Confirmed
			}
			id := strings.TrimSpace(args[0])
			if err := app.session().DeleteTouchpoint(ctx, id, c); err != nil {
				return writeErr(cmd, userError(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newTimelineCmd(app *App) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Monthly activity for the last 12 months (follows the filter flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := ff.state()
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			s := app.session()
			if err := s.Activate(ctx); err != nil {
				return writeErr(cmd, fmt.Errorf("load touchpoints: %w", err))
			}
			s.SetFilter(filter)
			buckets := s.Timeline()
			return writeOut(cmd, app, map[string]any{
				"data": buckets,
				"meta": map[string]any{"peak": dashboard.TimelinePeak(buckets), "filter": s.Filter()},
			})
		},
	}
	ff.register(cmd)
	return cmd
}

func metadataView(md model.Metadata) map[string]any {
	cats := make([]map[string]any, 0, len(md.Categories))
	for _, c := range md.Categories {
		cats = append(cats, map[string]any{"name": c, "color": dashboard.CategoryColor(c, md)})
	}
	return map[string]any{"categories": cats, "tags": md.Tags}
}
