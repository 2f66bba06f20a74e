package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes filing questions to MCP clients. ask and the history tools
// are always registered; classify, retrieve and the plan resource need the
// classifier and retrieval ports, the catalog resource needs ingest.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "filings",
		Version: Version,
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(impl, &mcp.ServerOptions{Instructions: s.Instructions()})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Instructions tells clients which tools the configured ports support.
func (s *Server) Instructions() string {
	tools := []string{"ask"}
	if s.ports.Classifier != nil {
		tools = append(tools, "classify")
	}
	if s.ports.Retrieval != nil {
		tools = append(tools, "retrieve")
	}
	tools = append(tools, "history", "clear_history")

	var b strings.Builder
	b.WriteString("Answers questions about ingested company filings (10-K, 10-Q). ")
	b.WriteString("Tools: " + strings.Join(tools, ", ") + ". ")
	b.WriteString("Pass the same conversation_id across calls so follow-up questions are classified with context.")
	if s.ports.Ingest != nil {
		b.WriteString(" Read " + uriScheme + "filings for the ingested filings.")
	}
	return b.String()
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr until ctx is cancelled.
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
