package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history [client]",
	Short: "Show recent extraction runs",
	Long: `Lists recent extraction runs from the local ledger, newest first.
Each row is one subtype of a run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(historyFormat)
	if err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history service not configured")
	}

	client := ""
	if len(args) == 1 {
		client = args[0]
	}

	records, err := historyService.List(cmd.Context(), client, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if format != formatText {
		if records == nil {
			records = []domain.ExtractionRecord{}
		}
		return writeStructured(cmd, format, records)
	}

	if len(records) == 0 {
		cmd.Println("No extraction runs recorded.")
		return nil
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		status := string(r.Status)
		switch r.Status {
		case domain.RunSucceeded:
			status = outputStyles.Success.Render(status)
		case domain.RunFailed:
			status = outputStyles.Error.Render(status)
		}
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ClientName,
			r.Subtype,
			r.Mode.String(),
			status,
			domain.FormatTokens(r.InputTokens) + " / " + domain.FormatTokens(r.OutputTokens),
			domain.FormatCost(r.Cost),
		}
	}
	cmd.Println(renderTable([]string{"When", "Client", "Subtype", "Mode", "Status", "Tokens in/out", "Cost"}, rows))
	return nil
}
