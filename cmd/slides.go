package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/slides"
)

func newSlidesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slides",
		Short: "Inspect and fill in Google Slides presentations",
		Long: `Inspect and fill in Google Slides presentations. PRESENTATION accepts a
presentation ID or URL.

Speaker notes may carry #hashtags that group slides, for example #appendix
on every optional slide. 'tags' lists them and 'delete-tagged' removes the
slides carrying one.`,
	}

	cmd.AddCommand(newSlidesGetCmd())
	cmd.AddCommand(newSlidesTagsCmd())
	cmd.AddCommand(newSlidesReplaceTextCmd())
	cmd.AddCommand(newSlidesDeleteTaggedCmd())
	return cmd
}

func newSlidesGetCmd() *cobra.Command {
	var (
		fields string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "get PRESENTATION",
		Short: "Print the slides with their speaker notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			p, err := a.slides().GetPresentation(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printPresentation(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVar(&fields, "fields", "", "Partial response field mask (default: "+slides.DefaultFields+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSlidesTagsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tags PRESENTATION",
		Short: "List the speaker-note hashtags and the slides carrying them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			p, err := a.slides().GetPresentation(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			tags := slides.TagsFromSpeakerNotes(p.Slides)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tags)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tag := range slides.SortedTags(tags) {
				fmt.Fprintf(tw, "%s\t%s\n", tag, strings.Join(tags[tag], ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSlidesReplaceTextCmd() *cobra.Command {
	var findText string

	cmd := &cobra.Command{
		Use:   "replace-text PRESENTATION NEW_TEXT",
		Short: "Replace a placeholder on every slide",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			n, err := a.slides().ReplaceText(cmd.Context(), args[0], args[1], findText)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced %d occurrences\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&findText, "find", slides.DefaultFindText, "Text to replace, matched case-insensitively")
	return cmd
}

func newSlidesDeleteTaggedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-tagged PRESENTATION TAG",
		Short: "Delete every slide whose speaker notes carry TAG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			deleted, err := a.slides().DeleteTaggedSlides(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if len(deleted) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No slides carry %s\n", args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d slides: %s\n", len(deleted), strings.Join(deleted, ", "))
			return nil
		},
	}
}

func printPresentation(w io.Writer, p *slides.Presentation) error {
	if p.Title != "" {
		fmt.Fprintf(w, "%s (%s)\n", p.Title, p.ID)
	} else {
		fmt.Fprintln(w, p.ID)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, s := range p.Slides {
		notes := strings.Join(strings.Fields(s.Notes), " ")
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, s.ObjectID, notes)
	}
	return tw.Flush()
}
