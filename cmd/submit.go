package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/handoff/internal/handoff"
)

func newSubmitCmd() *cobra.Command {
	var (
		file       string
		respondent string
		answers    []string
		timestamp  string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Process one form submission",
		Long: `Fill the document template with a form submission, file the PDF in the
respondent's folder, email it to the respondent and notify the folder owner.

The submission is read from a JSON file (--file, "-" for stdin):

  {"respondentEmail": "bob@example.com",
   "timestamp": "2025-02-04T10:00:00Z",
   "answers": [{"question": "Question 1", "value": "..."}]}

or given with flags:

  handoff submit --respondent bob@example.com --answer "Question 1=yes"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sub handoff.Submission
			var err error
			if file != "" {
				if respondent != "" || len(answers) > 0 || timestamp != "" {
					return fmt.Errorf("--file cannot be combined with --respondent, --answer or --timestamp")
				}
				sub, err = readSubmission(file, cmd.InOrStdin())
			} else {
				sub, err = submissionFromFlags(respondent, answers, timestamp)
			}
			if err != nil {
				return err
			}
			if err := requireTemplate(&globals); err != nil {
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

			result, err := a.service.ProcessSubmission(ctx, sub)
			if result != nil {
				out, _ := json.MarshalIndent(result, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			if err != nil {
				return fmt.Errorf("failed to process submission: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `Submission JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&respondent, "respondent", "", "Respondent email address")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, `Answer as "Question title=value" (repeatable)`)
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Submission time in RFC3339 (default: now)")

	return cmd
}

// readSubmission decodes a submission document from path or stdin.
func readSubmission(path string, stdin io.Reader) (handoff.Submission, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return handoff.Submission{}, fmt.Errorf("failed to open submission file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var sub handoff.Submission
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return handoff.Submission{}, fmt.Errorf("failed to parse submission: %w", err)
	}
	return sub, nil
}

// submissionFromFlags builds a submission from --respondent and --answer.
func submissionFromFlags(respondent string, answers []string, timestamp string) (handoff.Submission, error) {
	sub := handoff.Submission{RespondentEmail: respondent}

	for _, a := range answers {
		question, value, ok := strings.Cut(a, "=")
		question = strings.TrimSpace(question)
		if !ok || question == "" {
			return handoff.Submission{}, fmt.Errorf(`invalid --answer %q (expected "Question title=value")`, a)
		}
		sub.Answers = append(sub.Answers, handoff.Answer{Question: question, Value: value})
	}

	if timestamp != "" {
		t, err := time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return handoff.Submission{}, fmt.Errorf("invalid --timestamp: %w", err)
		}
		sub.Timestamp = t
	}
	return sub, nil
}
