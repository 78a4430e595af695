package server

import (
	"context"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultHTTPAddr is the default address of the webhook server.
	DefaultHTTPAddr = ":8080"

	// DefaultMCPEndpoint is the path of the streamable HTTP MCP endpoint.
	DefaultMCPEndpoint = "/mcp"

	// requestTimeout bounds one webhook request; a submission makes several
	// Google API calls.
	requestTimeout = 2 * time.Minute
)

// HTTPConfig configures the HTTPServer.
type HTTPConfig struct {
	Addr string

	// Token is the bearer token required on webhook and MCP endpoints.
	Token string

	// MCPServer is served at DefaultMCPEndpoint when set.
	MCPServer *mcpserver.MCPServer
}

// HTTPServer serves the webhook, health and MCP endpoints.
type HTTPServer struct {
	sc         *ServerContext
	health     *HealthChecker
	httpServer *http.Server
}

// NewHTTPServer creates the server and registers its routes.
func NewHTTPServer(sc *ServerContext, config HTTPConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}

	s := &HTTPServer{
		sc:     sc,
		health: NewHealthChecker(sc),
	}

	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)

	metrics := sc.Metrics()
	mux.Handle("/submissions", InstrumentHTTP(metrics, "/submissions",
		RequireBearerToken(config.Token, SubmissionHandler(sc))))
	mux.Handle("/scans", InstrumentHTTP(metrics, "/scans",
		RequireBearerToken(config.Token, ScanHandler(sc))))

	if config.MCPServer != nil {
		streamable := mcpserver.NewStreamableHTTPServer(config.MCPServer,
			mcpserver.WithEndpointPath(DefaultMCPEndpoint),
		)
		mux.Handle(DefaultMCPEndpoint, InstrumentHTTP(metrics, DefaultMCPEndpoint,
			RequireBearerToken(config.Token, streamable)))
	}

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return sc.RequestContext() },
	}
	return s
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Health returns the health checker, to flip readiness during shutdown.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string {
	return s.httpServer.Addr
}

// Start serves until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.sc.Logger().Info("Starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}
