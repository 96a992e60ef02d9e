package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var (
	analyzeFormat string
	analyzeCached bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Detect languages and translation pairs in arbitrary files",
	Long: `Parses the given files, detects each file's language from its name or
content and matches translation pairs by base name.

With --cached the arguments are ids returned by "cache put" instead of paths.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().BoolVar(&analyzeCached, "cached", false, "treat arguments as cached file ids")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	var report *domain.AnalysisReport
	if analyzeCached {
		report, err = analysisService.AnalyzeCached(cmd.Context(), args)
	} else {
		report, err = analysisService.AnalyzePaths(cmd.Context(), args)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd, format, report)
	}

	rows := make([][]string, len(report.Files))
	for i, f := range report.Files {
		pair := f.PairID
		if pair == "" {
			pair = "-"
		}
		rows[i] = []string{f.Filename, f.Language, f.Source, f.BaseName, pair, strconv.Itoa(f.Tokens)}
	}
	cmd.Println(renderTable([]string{"File", "Language", "From", "Base name", "Pair", "Tokens"}, rows))

	if len(report.Pairs) > 0 {
		cmd.Println()
		cmd.Println(outputStyles.Subtitle.Render("Pairs"))
		for _, p := range report.Pairs {
			cmd.Printf("  %s: %s -> %s\n", p.PairID, p.Source, p.Target)
		}
	}

	cmd.Println()
	cmd.Println(keyValue("Paired", strconv.Itoa(report.PairedCount)))
	cmd.Println(keyValue("Unpaired", strconv.Itoa(report.UnpairedCount)))
	return nil
}
