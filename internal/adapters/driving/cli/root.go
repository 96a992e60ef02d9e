// Package cli provides the cobra commands of the cartographer binary.
package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// version is set at build time.
var version = "dev"

// skipBootstrap marks commands that run without loading settings or services.
const skipBootstrap = "skip-bootstrap"

// Services are the core services driven by the commands.
type Services struct {
	Settings   domain.Settings
	Scan       driving.ScanService
	Analysis   driving.AnalysisService
	Extraction driving.ExtractionService
	Cache      driving.CacheService
	History    driving.HistoryService

	// Metrics is served at /metrics by "mcp serve --port" when set.
	Metrics http.Handler

	// Close releases stores held by the services. May be nil.
	Close func() error
}

// Bootstrap loads settings from configPath ("" for the default lookup) and
// builds the services.
type Bootstrap func(ctx context.Context, configPath string) (*Services, error)

// ConfigInitializer writes a starter config file to path and the template
// examples, returning the written paths.
type ConfigInitializer func(path string, force bool) ([]string, error)

var (
	configPath string
	verbose    bool

	bootstrap         Bootstrap
	configInitializer ConfigInitializer

	settings          domain.Settings
	scanService       driving.ScanService
	analysisService   driving.AnalysisService
	extractionService driving.ExtractionService
	cacheService      driving.CacheService
	historyService    driving.HistoryService
	metricsHandler    http.Handler
	closeServices     func() error
)

var rootCmd = &cobra.Command{
	Use:   "cartographer",
	Short: "Extract localisation rules and style guidelines from client copy",
	Long: `Cartographer reads a client's copy documents, pairs source and target
translations, and asks Claude to produce client_rules.js validation rules and a
guidelines.md style guide for each content subtype.

Input is organised as <input_dir>/<client>/<subtype>/<files>. Supported formats
are .txt, .md, .docx and .pdf.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default cartographer.toml, then .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug and info logs")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetConfigInitializer sets the writer used by "config init".
func SetConfigInitializer(f ConfigInitializer) {
	configInitializer = f
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settings = s.Settings
	scanService = s.Scan
	analysisService = s.Analysis
	extractionService = s.Extraction
	cacheService = s.Cache
	historyService = s.History
	metricsHandler = s.Metrics
	closeServices = s.Close
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("Failed to close services: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil || scanService != nil {
		return nil
	}

	svcs, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	SetServices(svcs)
	return nil
}

// isInteractive reports whether prompts can be drawn with the TUI.
var isInteractive = func(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(out.Fd())) && term.IsTerminal(int(in.Fd()))
}
