package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/docs"
	"github.com/teemow/handoff/internal/handoff"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Work with the submission document template",
	}
	cmd.AddCommand(newTemplateCheckCmd())
	return cmd
}

func newTemplateCheckCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare the template's placeholders with the ones submissions fill",
		Long: `Read the document template and list its {Placeholder} markers.
Markers submissions never fill stay verbatim in the PDF; supported markers
missing from the template are simply not rendered. With --strict either case
fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTemplate(&globals); err != nil {
				return err
			}

			provider, err := newTokenProvider(&globals)
			if err != nil {
				return err
			}
			client, err := docs.NewClient(cmd.Context(), provider, nil)
			if err != nil {
				return err
			}
			doc, err := client.GetDocument(cmd.Context(), globals.TemplateID)
			if err != nil {
				return err
			}

			found := docs.FindPlaceholders(docs.DocumentText(doc))
			unused, unknown := comparePlaceholders(found)
			printTemplateReport(cmd.OutOrStdout(), doc.Title, found, unused, unknown)

			if strict && (len(unused) > 0 || len(unknown) > 0) {
				return fmt.Errorf("template placeholders do not match the submission fields")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the placeholders do not match exactly")
	return cmd
}

// comparePlaceholders returns the supported tokens missing from found and
// the tokens in found that no submission fills.
func comparePlaceholders(found []string) (unused, unknown []string) {
	var supported []string
	for _, p := range handoff.Placeholders(handoff.Submission{}, "") {
		supported = append(supported, p.Token)
	}

	for _, token := range supported {
		if !slices.Contains(found, token) {
			unused = append(unused, token)
		}
	}
	for _, token := range found {
		if !slices.Contains(supported, token) {
			unknown = append(unknown, token)
		}
	}
	return unused, unknown
}

func printTemplateReport(w io.Writer, title string, found, unused, unknown []string) {
	fmt.Fprintf(w, "Template %q: %d placeholders\n", title, len(found))
	for _, token := range found {
		fmt.Fprintf(w, "  %s\n", token)
	}
	if len(unknown) > 0 {
		fmt.Fprintln(w, "Not filled by submissions (kept verbatim):")
		for _, token := range unknown {
			fmt.Fprintf(w, "  %s\n", token)
		}
	}
	if len(unused) > 0 {
		fmt.Fprintln(w, "Supported but not in the template:")
		for _, token := range unused {
			fmt.Fprintf(w, "  %s\n", token)
		}
	}
}
