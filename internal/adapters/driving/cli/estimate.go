package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var (
	estimateSubtypes []string
	estimateBatch    bool
	estimateFormat   string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <client>",
	Short: "Estimate the token usage and cost of an extraction",
	Long: `Scans a client and estimates the prompt tokens, expected output tokens
and USD cost of extracting it, without calling the model. The cost is rounded
up to the next five cents.`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringSliceVarP(&estimateSubtypes, "subtype", "s", nil, "limit to these subtypes")
	estimateCmd.Flags().BoolVarP(&estimateBatch, "batch", "b", false, "estimate a single call covering every subtype")
	estimateCmd.Flags().StringVarP(&estimateFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(estimateFormat)
	if err != nil {
		return err
	}
	if scanService == nil || extractionService == nil {
		return errors.New("extraction service not configured")
	}

	sets, err := scanClient(cmd.Context(), args[0], estimateSubtypes, false)
	if err != nil {
		return err
	}

	estimate := extractionService.Estimate(sets, estimateBatch || settings.BatchProcessing)
	if format != formatText {
		return writeStructured(cmd, format, estimate)
	}

	cmd.Println(renderTable(subtypeSummaryHeaders, subtypeSummaryRows(sets)))
	cmd.Println()
	printEstimate(cmd, estimate)
	return nil
}

func printEstimate(cmd *cobra.Command, e domain.CostEstimate) {
	cmd.Println(keyValue("Model", e.Model))
	cmd.Println(keyValue("Mode", e.Mode.String()))
	cmd.Println(keyValue("API calls", strconv.Itoa(e.Calls)))
	cmd.Println(keyValue("Input tokens", domain.FormatTokens(e.InputTokens)))
	cmd.Println(keyValue("Output tokens", domain.FormatTokens(e.OutputTokens)+" (estimated)"))
	cmd.Println(keyValue("Estimated cost", outputStyles.Warning.Render(domain.FormatCost(e.Cost))))
}
