package driving

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// ScanService turns client input folders into document sets.
type ScanService interface {
	// ListClients returns the client folders under the input directory, sorted.
	ListClients(ctx context.Context) ([]domain.ClientInfo, error)

	// ScanClient parses every supported file of a client into one set per subtype.
	// Returns a *domain.ClientNotFoundError when the folder does not exist and a
	// *domain.NoDocumentsFoundError when no file could be parsed.
	ScanClient(ctx context.Context, client string, opts ScanOptions) ([]domain.DocumentSet, error)

	// ParseFile extracts, detects and counts a single file on disk.
	ParseFile(ctx context.Context, path string) (domain.Document, error)
}

// ScanOptions narrows a scan.
type ScanOptions struct {
	// Subtypes limits the scan to the named subtypes. Empty means all.
	Subtypes []string

	// NoPair leaves pair ids unset and keeps file order.
	NoPair bool
}
