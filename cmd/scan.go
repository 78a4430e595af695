package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/handoff"
)

// dateLayout is accepted besides RFC3339 for window bounds.
const dateLayout = "2006-01-02"

func newScanCmd() *cobra.Command {
	var (
		from string
		to   string
		days int
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Provision participant folders for calendar events",
		Long: `Scan the events of a calendar window and provision one shared Drive folder
per participant pair. Existing folders are reused; folders that were deleted
or trashed are recreated. The scan report is printed as JSON.

The window starts at --from (default: now) and ends at --to, or --days later
(default: 7). Both bounds accept RFC3339 times or dates (YYYY-MM-DD).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := globals.location()
			if err != nil {
				return err
			}
			window, err := scanWindow(time.Now(), from, to, days, cmd.Flags().Changed("days"), loc)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := newLogger(&globals)
			a, err := newApp(ctx, &globals, logger, nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			report, err := a.service.Scan(ctx, "", window)
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), report.JSON())
			}
			if err != nil {
				return fmt.Errorf("calendar scan failed: %w", err)
			}
			logger.Info("Calendar scan finished", "summary", report.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Window start, RFC3339 or YYYY-MM-DD (default: now)")
	cmd.Flags().StringVar(&to, "to", "", "Window end, RFC3339 or YYYY-MM-DD")
	cmd.Flags().IntVar(&days, "days", 7, "Window length in days when --to is not set")

	return cmd
}

// scanWindow builds the window from the scan flags.
func scanWindow(now time.Time, from, to string, days int, daysSet bool, loc *time.Location) (handoff.Window, error) {
	if to != "" && daysSet {
		return handoff.Window{}, fmt.Errorf("use either --to or --days, not both")
	}
	if days <= 0 {
		return handoff.Window{}, fmt.Errorf("--days must be positive")
	}

	start := now
	if from != "" {
		t, err := parseTimeFlag(from, loc)
		if err != nil {
			return handoff.Window{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}

	window := handoff.NewWindow(start, time.Duration(days)*24*time.Hour)
	if to != "" {
		t, err := parseTimeFlag(to, loc)
		if err != nil {
			return handoff.Window{}, fmt.Errorf("invalid --to: %w", err)
		}
		window.End = t
	}

	if err := window.Validate(); err != nil {
		return handoff.Window{}, err
	}
	return window, nil
}

// parseTimeFlag parses an RFC3339 time or a date at midnight in loc.
func parseTimeFlag(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", value)
	}
	return t, nil
}
