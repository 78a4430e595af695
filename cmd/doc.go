// Package cmd implements the command-line interface for handoff.
//
// This package provides the following commands:
//   - scan: Provision participant folders for the events of a calendar window
//   - submit: Process one form submission
//   - mappings: Inspect and administer the participant identity store
//   - auth: Authorize a Google account and cache its token
//   - template: Check the placeholders of the document template
//   - serve: Run periodic scans, the webhook server and the MCP tools
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Every flag falls back to an environment variable when it is not set on
// the command line.
package cmd
