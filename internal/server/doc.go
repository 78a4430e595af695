// Package server hosts the long-running handoff service.
//
// # Key Components
//
// ServerContext carries the handoff workflow, the observability handles and
// the state of the most recent calendar scan. It is shared by the HTTP
// handlers, the scheduler and the MCP tools.
//
// HTTPServer serves:
//   - POST /submissions: process one form submission (JSON body)
//   - POST /scans: run a calendar scan now
//   - /mcp: MCP tools over streamable HTTP (when an MCP server is attached)
//   - /healthz, /readyz, /healthz/detailed: Kubernetes probes
//
// Webhook and MCP endpoints require "Authorization: Bearer <token>" when a
// token is configured.
//
// Scheduler runs calendar scans periodically. MetricsServer exposes
// Prometheus metrics on a dedicated port.
package server
