package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for filings resources.
	uriScheme = "filings://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the ingest catalog.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "filings",
		Name:        "filings",
		Description: "Filings ingested into the index",
		MIMEType:    "application/json",
	}, s.handleFilingsResource)

	// Template for retrieval plans.
	if s.ports.Retrieval != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "plans/{category}",
			Name:        "retrieval-plan",
			Description: "Retrieval plan used for a question category",
			MIMEType:    "application/json",
		}, s.handlePlanResource)
	}
}

// handleFilingsResource returns the catalog of ingested filings.
func (s *Server) handleFilingsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	records := []domain.FilingRecord{}
	if s.ports.Ingest != nil {
		list, err := s.ports.Ingest.Filings(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing filings: %w", err)
		}
		records = list
	}
	return jsonResource(req.Params.URI, records)
}

// handlePlanResource returns the plan for the category named in the URI.
func (s *Server) handlePlanResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	category, ok := domain.ParseQueryCategory(extractCategory(req.Params.URI))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, s.ports.Retrieval.Plan(category))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCategory extracts the category from a URI like filings://plans/{category}.
func extractCategory(uri string) string {
	const prefix = uriScheme + "plans/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
