package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driving"
)

var (
	scanFormat   string
	scanWatch    bool
	scanNoPair   bool
	scanSubtypes []string
)

var scanCmd = &cobra.Command{
	Use:   "scan <client>",
	Short: "Parse a client's documents and show detected languages and pairs",
	Long: `Parses every supported document of a client, detects each document's
language and matches translation pairs by base name, then prints one table per
subtype. No model call is made.

With --watch the client folder is rescanned whenever its files change.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "text", "output format: text, json or yaml")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "rescan when files change")
	scanCmd.Flags().BoolVar(&scanNoPair, "no-pair", false, "skip translation pair matching")
	scanCmd.Flags().StringSliceVarP(&scanSubtypes, "subtype", "s", nil, "limit to these subtypes")
	rootCmd.AddCommand(scanCmd)
}

// scanReport is the structured form of a scan, without document text.
type scanReport struct {
	Client         string          `json:"client" yaml:"client"`
	Subtypes       []subtypeReport `json:"subtypes" yaml:"subtypes"`
	TotalDocuments int             `json:"total_documents" yaml:"total_documents"`
	TotalTokens    int             `json:"total_tokens" yaml:"total_tokens"`
}

type subtypeReport struct {
	Subtype           string      `json:"subtype" yaml:"subtype"`
	Documents         []docReport `json:"documents" yaml:"documents"`
	Pairs             int         `json:"pairs" yaml:"pairs"`
	Tokens            int         `json:"tokens" yaml:"tokens"`
	Languages         []string    `json:"languages" yaml:"languages"`
	LanguageSituation string      `json:"language_situation" yaml:"language_situation"`
}

type docReport struct {
	Filename string `json:"filename" yaml:"filename"`
	Language string `json:"language" yaml:"language"`
	PairID   string `json:"pair_id,omitempty" yaml:"pair_id,omitempty"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
}

func newScanReport(client string, sets []domain.DocumentSet) scanReport {
	r := scanReport{
		Client:         client,
		Subtypes:       make([]subtypeReport, len(sets)),
		TotalDocuments: domain.TotalDocuments(sets),
		TotalTokens:    domain.TotalTokens(sets),
	}
	for i := range sets {
		set := &sets[i]
		docs := make([]docReport, len(set.Documents))
		for j, d := range set.Documents {
			docs[j] = docReport{Filename: d.Filename, Language: d.Language, PairID: d.PairID, Tokens: d.Tokens}
		}
		r.Subtypes[i] = subtypeReport{
			Subtype:           set.Subtype,
			Documents:         docs,
			Pairs:             len(set.PairedDocuments()),
			Tokens:            set.TotalTokens,
			Languages:         set.Languages(),
			LanguageSituation: set.LanguageSituation(),
		}
	}
	return r
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(scanFormat)
	if err != nil {
		return err
	}
	if scanService == nil {
		return errors.New("scan service not configured")
	}

	client := args[0]
	if err := scanOnce(cmd, client, format); err != nil {
		return err
	}
	if !scanWatch {
		return nil
	}

	dir := settings.ClientDir(client)
	cmd.Printf("\nWatching %s for changes (Ctrl+C to stop)...\n", dir)
	return watchTree(cmd.Context(), dir, watchDebounce, func() {
		cmd.Println()
		if err := scanOnce(cmd, client, format); err != nil {
			cmd.PrintErrf("Rescan failed: %v\n", err)
		}
	})
}

func scanOnce(cmd *cobra.Command, client string, format outputFormat) error {
	sets, err := scanClient(cmd.Context(), client, scanSubtypes, scanNoPair)
	if err != nil {
		return err
	}

	report := newScanReport(client, sets)
	if format != formatText {
		return writeStructured(cmd, format, report)
	}
	printScanReport(cmd, report)
	return nil
}

func scanClient(ctx context.Context, client string, subtypes []string, noPair bool) ([]domain.DocumentSet, error) {
	sets, err := scanService.ScanClient(ctx, client, driving.ScanOptions{Subtypes: subtypes, NoPair: noPair})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", client, err)
	}
	return sets, nil
}

func printScanReport(cmd *cobra.Command, r scanReport) {
	cmd.Println(outputStyles.Title.Render(fmt.Sprintf("Client: %s", r.Client)))
	for _, st := range r.Subtypes {
		cmd.Println()
		cmd.Println(outputStyles.Subtitle.Render(st.Subtype) + "  " + outputStyles.Muted.Render(fmt.Sprintf(
			"%d documents, %d pairs, %s tokens, %s",
			len(st.Documents), st.Pairs, domain.FormatTokens(st.Tokens), st.LanguageSituation,
		)))

		rows := make([][]string, len(st.Documents))
		for i, d := range st.Documents {
			pair := d.PairID
			if pair == "" {
				pair = "-"
			}
			rows[i] = []string{d.Filename, d.Language, pair, strconv.Itoa(d.Tokens)}
		}
		cmd.Println(renderTable([]string{"File", "Language", "Pair", "Tokens"}, rows))
	}
	cmd.Println()
	cmd.Println(keyValue("Subtypes", strconv.Itoa(len(r.Subtypes))))
	cmd.Println(keyValue("Documents", strconv.Itoa(r.TotalDocuments)))
	cmd.Println(keyValue("Tokens", domain.FormatTokens(r.TotalTokens)))
}

// subtypeSummaryRows renders one row per set for summary tables.
func subtypeSummaryRows(sets []domain.DocumentSet) [][]string {
	rows := make([][]string, len(sets))
	for i := range sets {
		rows[i] = []string{
			sets[i].Subtype,
			strconv.Itoa(sets[i].DocumentCount()),
			strconv.Itoa(len(sets[i].PairedDocuments())),
			domain.FormatTokens(sets[i].TotalTokens),
			strings.Join(sets[i].Languages(), ", "),
		}
	}
	return rows
}

var subtypeSummaryHeaders = []string{"Subtype", "Documents", "Pairs", "Tokens", "Languages"}
