package cli

import (
	"context"
	"fmt"

	"ohara-cli/internal/dashboard"

	"github.com/spf13/cobra"
)

func newMetadataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Category and tag vocabulary",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show categories (with badge colors) and tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			s := app.session()
			if err := s.Metadata().Load(ctx); err != nil {
				return writeErr(cmd, fmt.Errorf("load metadata: %w", err))
			}
			md, _ := s.Metadata().Get()
			return writeOut(cmd, app, map[string]any{"data": metadataView(md)})
		},
	})
	cmd.AddCommand(newMetadataMutationCmd(app, "add-category", "Add a category", (*dashboard.Session).AddCategory))
	cmd.AddCommand(newMetadataMutationCmd(app, "rm-category", "Remove a category (touchpoints keep it)", (*dashboard.Session).RemoveCategory))
	cmd.AddCommand(newMetadataMutationCmd(app, "add-tag", "Add a tag", (*dashboard.Session).AddTag))
	cmd.AddCommand(newMetadataMutationCmd(app, "rm-tag", "Remove a tag (touchpoints keep it)", (*dashboard.Session).RemoveTag))
	return cmd
}

type metadataMutation func(s *dashboard.Session, ctx context.Context, name string) error

func newMetadataMutationCmd(app *App, use, short string, mutate metadataMutation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd, app)
			defer cancel()

			s := app.session()
			if err := mutate(s, ctx, args[0]); err != nil {
				return writeErr(cmd, userError(err))
			}
			md, err := s.Metadata().Get()
			if err != nil {
				return writeErr(cmd, fmt.Errorf("reload metadata: %w", err))
			}
			return writeOut(cmd, app, map[string]any{"data": metadataView(md)})
		},
	}
}
