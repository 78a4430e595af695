package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the handoff application
var rootCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Provisions shared Drive folders from calendar events and files form submissions",
	Long: `handoff runs a two-step office workflow on Google Workspace:

  1. Calendar scan: every event pairs its organizer (Participant A) with the
     first other attendee (Participant B); each pair gets one shared Drive
     folder, recorded in the identity store.
  2. Submission processing: a form submission from Participant B fills the
     document template, the PDF is filed in the pair's folder and emailed to
     Participant B with a notice to Participant A.

It can run as:
  - One-shot CLI commands (scan, submit)
  - A long-running server with periodic scans, a webhook and MCP tools (serve)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvVars(cmd, &globals)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "handoff version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	bindGlobalFlags(rootCmd, &globals)

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newMappingsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
