package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rfpvault/internal/logger"
)

// Version is the MCP server version.
const Version = "0.2.0"

// DefaultHost keeps the HTTP transport on the loopback interface.
const DefaultHost = "127.0.0.1"

const shutdownTimeout = 5 * time.Second

const instructions = `rfpvault holds anonymized tender documents grouped by project.
Text returned by search and by the chunk resources never contains confidential
values: people, companies, codes, contacts and amounts appear as placeholders
such as [PERSONNE_1] or [CODE_PROJET_2], stable within a project.
Keep placeholders intact when drafting; call deanonymize on the final text
only when the user asks for the real values.`

var mcpLog = logger.For("mcp")

// Option configures a Server.
type Option func(*Server)

// WithoutReveal withholds the deanonymize tool, so connected assistants only
// ever see placeholders.
func WithoutReveal() Option {
	return func(s *Server) { s.reveal = false }
}

// WithShutdownTimeout bounds how long RunHTTP waits for open sessions.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// Server exposes rfpvault to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server

	reveal          bool
	shutdownTimeout time.Duration
}

// NewServer creates a server over ports. Search and anonymization are
// required; documents and ingestion add resources and the progress tool.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:           ports,
		reveal:          true,
		shutdownTimeout: shutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "rfpvault", Version: Version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves a single client over stdio until ctx is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	mcpLog.Info("serving over stdio (reveal=%t)", s.reveal)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			mcpLog.Warn("shutdown: %v", err)
		}
	}()

	mcpLog.Info("serving over http on %s (reveal=%t)", addr, s.reveal)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr joins host and port, DefaultHost when host is empty.
func ListenAddr(host string, port int) string {
	if host == "" {
		host = DefaultHost
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
