package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

// ListClientsInput is the input schema for the list_clients tool.
type ListClientsInput struct{}

// ListClientsOutput is the output schema for the list_clients tool.
type ListClientsOutput struct {
	Clients []domain.ClientInfo `json:"clients"`
	Count   int                 `json:"count"`
}

// ScanInput is the input schema for the scan_client tool.
type ScanInput struct {
	Client   string   `json:"client" jsonschema:"the client folder name under the input directory"`
	Subtypes []string `json:"subtypes,omitempty" jsonschema:"subtypes to include (default all)"`
}

// SubtypeSummary describes one scanned document set.
type SubtypeSummary struct {
	Subtype           string   `json:"subtype"`
	Documents         int      `json:"documents"`
	Pairs             int      `json:"pairs"`
	Tokens            int      `json:"tokens"`
	Languages         []string `json:"languages"`
	LanguageSituation string   `json:"language_situation"`
}

// ScanOutput is the output schema for the scan_client tool.
type ScanOutput struct {
	Client         string           `json:"client"`
	Subtypes       []SubtypeSummary `json:"subtypes"`
	TotalDocuments int              `json:"total_documents"`
	TotalTokens    int              `json:"total_tokens"`
}

// AnalyzeInput is the input schema for the analyze_files tool.
type AnalyzeInput struct {
	Paths   []string `json:"paths,omitempty" jsonschema:"files on disk to analyse"`
	FileIDs []string `json:"file_ids,omitempty" jsonschema:"ids of previously cached uploads to analyse"`
}

// EstimateInput is the input schema for the estimate_cost tool.
type EstimateInput struct {
	Client   string   `json:"client" jsonschema:"the client folder name"`
	Subtypes []string `json:"subtypes,omitempty" jsonschema:"subtypes to include (default all)"`
	Batch    bool     `json:"batch,omitempty" jsonschema:"estimate a single call covering every subtype"`
}

// EstimateOutput is the output schema for the estimate_cost tool.
type EstimateOutput struct {
	domain.CostEstimate
	Formatted string `json:"formatted"`
}

// ExtractInput is the input schema for the extract tool.
type ExtractInput struct {
	Client   string   `json:"client" jsonschema:"the client folder name"`
	Subtypes []string `json:"subtypes,omitempty" jsonschema:"subtypes to extract (default all)"`
	Batch    bool     `json:"batch,omitempty" jsonschema:"send every subtype in one model call"`
	Debug    bool     `json:"debug,omitempty" jsonschema:"write prompts to the debug folder instead of calling the model"`
	Save     bool     `json:"save,omitempty" jsonschema:"write client_rules.js and guidelines.md to the output folder"`
}

// SubtypeResult is the outcome of one subtype extraction.
type SubtypeResult struct {
	Subtype      string   `json:"subtype"`
	ClientRules  string   `json:"client_rules,omitempty"`
	Guidelines   string   `json:"guidelines,omitempty"`
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// ExtractOutput is the output schema for the extract tool.
type ExtractOutput struct {
	RunID   string            `json:"run_id"`
	Results []SubtypeResult   `json:"results"`
	Totals  *domain.RunTotals `json:"totals,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_clients",
		Description: "List client folders and their subtypes",
	}, s.handleListClients)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_client",
		Description: "Parse a client's documents and summarise each subtype",
	}, s.handleScanClient)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "estimate_cost",
		Description: "Estimate tokens and USD cost of extracting a client",
	}, s.handleEstimateCost)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract",
		Description: "Generate client rules and guidelines for a client",
	}, s.handleExtract)

	if s.ports.Analysis != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "analyze_files",
			Description: "Detect languages and translation pairs in a set of files",
		}, s.handleAnalyzeFiles)
	}
}

// handleListClients handles the list_clients tool invocation.
func (s *Server) handleListClients(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListClientsInput,
) (*mcp.CallToolResult, ListClientsOutput, error) {
	clients, err := s.ports.Scan.ListClients(ctx)
	if err != nil {
		return nil, ListClientsOutput{}, err
	}
	if clients == nil {
		clients = []domain.ClientInfo{}
	}
	return nil, ListClientsOutput{Clients: clients, Count: len(clients)}, nil
}

// handleScanClient handles the scan_client tool invocation.
func (s *Server) handleScanClient(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanInput,
) (*mcp.CallToolResult, ScanOutput, error) {
	sets, err := s.scan(ctx, input.Client, input.Subtypes)
	if err != nil {
		return nil, ScanOutput{}, err
	}

	output := ScanOutput{
		Client:         input.Client,
		Subtypes:       make([]SubtypeSummary, len(sets)),
		TotalDocuments: domain.TotalDocuments(sets),
		TotalTokens:    domain.TotalTokens(sets),
	}
	for i := range sets {
		output.Subtypes[i] = SubtypeSummary{
			Subtype:           sets[i].Subtype,
			Documents:         sets[i].DocumentCount(),
			Pairs:             len(sets[i].PairedDocuments()),
			Tokens:            sets[i].TotalTokens,
			Languages:         sets[i].Languages(),
			LanguageSituation: sets[i].LanguageSituation(),
		}
	}
	return nil, output, nil
}

// handleAnalyzeFiles handles the analyze_files tool invocation.
func (s *Server) handleAnalyzeFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, domain.AnalysisReport, error) {
	var (
		report *domain.AnalysisReport
		err    error
	)
	switch {
	case len(input.Paths) > 0 && len(input.FileIDs) > 0:
		return nil, domain.AnalysisReport{}, fmt.Errorf("%w: give either paths or file_ids", domain.ErrInvalidInput)
	case len(input.FileIDs) > 0:
		report, err = s.ports.Analysis.AnalyzeCached(ctx, input.FileIDs)
	default:
		report, err = s.ports.Analysis.AnalyzePaths(ctx, input.Paths)
	}
	if err != nil {
		return nil, domain.AnalysisReport{}, err
	}
	return nil, *report, nil
}

// handleEstimateCost handles the estimate_cost tool invocation.
func (s *Server) handleEstimateCost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EstimateInput,
) (*mcp.CallToolResult, EstimateOutput, error) {
	sets, err := s.scan(ctx, input.Client, input.Subtypes)
	if err != nil {
		return nil, EstimateOutput{}, err
	}

	estimate := s.ports.Extraction.Estimate(sets, input.Batch)
	return nil, EstimateOutput{
		CostEstimate: estimate,
		Formatted:    domain.FormatCost(estimate.Cost),
	}, nil
}

// handleExtract handles the extract tool invocation. Failed subtypes are
// reported in the output rather than failing the call.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	sets, err := s.scan(ctx, input.Client, input.Subtypes)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	var output ExtractOutput
	failures := make(map[string]string)
	sink := func(ev domain.ExtractionEvent) {
		switch ev.Type {
		case domain.EventStarted:
			output.RunID = ev.RunID
		case domain.EventError:
			failures[ev.Subtype] = ev.Err.Error()
		case domain.EventComplete:
			output.Totals = ev.Totals
		}
	}

	results, runErr := s.ports.Extraction.Run(ctx, domain.ExtractionRequest{
		ClientName: input.Client,
		Sets:       sets,
		Batch:      input.Batch,
		Debug:      input.Debug,
	}, driving.EventSink(sink))
	if runErr != nil && results.Len() == 0 {
		return nil, ExtractOutput{}, runErr
	}

	for i := range sets {
		subtype := sets[i].Subtype
		res, ok := results.Get(subtype)
		if !ok {
			msg := failures[subtype]
			if msg == "" {
				msg = failures["batch"]
			}
			if msg == "" && runErr != nil {
				msg = runErr.Error()
			}
			output.Results = append(output.Results, SubtypeResult{Subtype: subtype, Error: msg})
			continue
		}

		sr := SubtypeResult{
			Subtype:      subtype,
			ClientRules:  res.ClientRules,
			Guidelines:   res.Guidelines,
			InputTokens:  res.InputTokens,
			OutputTokens: res.OutputTokens,
		}
		if input.Save {
			files, err := s.ports.Extraction.Save(ctx, input.Client, subtype, res)
			if err != nil {
				sr.Error = err.Error()
			}
			sr.Files = files
		}
		output.Results = append(output.Results, sr)
	}
	return nil, output, nil
}

// scan parses a client folder, rejecting a blank client name.
func (s *Server) scan(ctx context.Context, client string, subtypes []string) ([]domain.DocumentSet, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return nil, fmt.Errorf("%w: client is required", domain.ErrInvalidInput)
	}
	return s.ports.Scan.ScanClient(ctx, client, driving.ScanOptions{Subtypes: subtypes})
}
