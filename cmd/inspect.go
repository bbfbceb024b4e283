package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/route"
	"github.com/Bitlatte/folio/internal/view"
)

var (
	viewColor     = color.New(color.FgGreen)
	redirectColor = color.New(color.FgYellow)
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Prints the route table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout(), route.Default())
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Lists the configured posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := openRepository(cmd.Context(), appConfig, 0, appLog)
		if err != nil {
			return err
		}
		defer closeRepo()

		b := view.NewListBinding(cmd.Context(), repo, appLog)
		b.Activate()
		state, err := b.Wait(cmd.Context())
		if err != nil {
			return err
		}
		if state.Status == view.StatusUnavailable {
			return fmt.Errorf("cannot list posts: %w", state.Err)
		}
		return printPosts(cmd.OutOrStdout(), state.Posts)
	},
}

func printRoutes(out io.Writer, table route.Table) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tTARGET")
	for _, r := range table {
		target := viewColor.Sprint(r.View)
		if r.IsRedirect() {
			target = redirectColor.Sprint("-> " + r.RedirectTo)
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Path, target)
	}
	return tw.Flush()
}

func printPosts(out io.Writer, posts []model.Post) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tTITLE")
	for _, p := range posts {
		slug := p.Slug
		if slug == "" {
			slug = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, slug, p.Title)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(postsCmd)
}
