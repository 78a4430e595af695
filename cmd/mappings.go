package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
)

func newMappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Inspect and administer the participant identity store",
		Long: `The identity store maps every Participant B email to the Drive folder
provisioned for the pair and the owner (Participant A) of that folder.
Emails are matched exactly as they appear in the calendar.`,
	}

	cmd.AddCommand(newMappingsListCmd())
	cmd.AddCommand(newMappingsGetCmd())
	cmd.AddCommand(newMappingsForgetCmd())
	return cmd
}

func newMappingsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every recorded participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, &globals)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mappings, err := store.List(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), mappings)
			}
			return writeMappingsTable(cmd.OutOrStdout(), mappings)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newMappingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email>",
		Short: "Show the folder record of a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, &globals)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rec, err := store.Lookup(ctx, args[0])
			if errors.Is(err, identity.ErrNotFound) {
				return fmt.Errorf("no folder recorded for %s", args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), identity.Mapping{ParticipantB: args[0], Record: rec})
		},
	}
}

func newMappingsForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <email>...",
		Short: "Remove the folder record of participants",
		Long: `Remove the folder record of one or more participants. The Drive folder
itself is kept; the next scan that sees the participant provisions a new one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, &globals)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			logger := newLogger(&globals)
			return forgetMappings(ctx, store, newAuditLogger(logger, &globals), cmd.OutOrStdout(), args)
		},
	}
}

// forgetMappings removes each participant's record; unknown participants are
// reported and make the command fail after the others were processed.
func forgetMappings(ctx context.Context, store *identity.Store, audit *instrumentation.AuditLogger, out io.Writer, emails []string) error {
	var missing int
	for _, email := range emails {
		rec, err := store.Lookup(ctx, email)
		if errors.Is(err, identity.ErrNotFound) {
			fmt.Fprintf(out, "%s: no folder recorded\n", email)
			missing++
			continue
		}
		if err != nil {
			return err
		}
		if err := store.Forget(ctx, email); err != nil {
			return err
		}
		audit.Record(ctx, instrumentation.SideEffect{
			Action:      instrumentation.ActionRecordPruned,
			Participant: email,
			Target:      rec.FolderID,
			Detail:      "mappings forget",
		})
		fmt.Fprintf(out, "%s: forgot folder %s\n", email, rec.FolderID)
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d participants had no record", missing, len(emails))
	}
	return nil
}

func writeMappingsTable(w io.Writer, mappings []identity.Mapping) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTICIPANT\tFOLDER\tOWNER")
	for _, m := range mappings {
		owner := m.OwnerEmail
		if owner == "" {
			owner = "(missing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ParticipantB, m.FolderID, owner)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
