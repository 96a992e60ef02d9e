package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Cartographer resources.
	uriScheme = "cartographer://"

	// historyLimit caps the records returned by the history resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "clients",
		Name:        "clients",
		Description: "Client folders and their subtypes",
		MIMEType:    "application/json",
	}, s.handleClientsResource)

	if s.ports.History != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "history/{client}",
			Name:        "client-history",
			Description: "Recent extraction runs for a client",
			MIMEType:    "application/json",
		}, s.handleHistoryResource)
	}
}

// handleClientsResource returns every client folder.
func (s *Server) handleClientsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	clients, err := s.ports.Scan.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	if clients == nil {
		clients = []domain.ClientInfo{}
	}
	return jsonResource(req.Params.URI, clients)
}

// handleHistoryResource returns the recent history of one client.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	client := extractHistoryClient(req.Params.URI)
	if client == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.History.List(ctx, client, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	if records == nil {
		records = []domain.ExtractionRecord{}
	}
	return jsonResource(req.Params.URI, records)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractHistoryClient extracts the client from a URI like cartographer://history/{client}.
func extractHistoryClient(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	client := strings.TrimPrefix(uri, prefix)
	if strings.Contains(client, "/") {
		return ""
	}
	return client
}
