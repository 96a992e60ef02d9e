package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// previewLines is how many lines of each artifact are shown after a run.
const previewLines = 15

var (
	extractSubtypes []string
	extractBatch    bool
	extractDebug    bool
	extractYes      bool
	extractNoSave   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [client]",
	Short: "Generate client rules and guidelines for a client",
	Long: `Scans a client, shows the documents and the estimated cost, then asks
Claude to produce client_rules.js and guidelines.md for each subtype.

Without a client argument the client is chosen from a list. Subtypes are
processed one call at a time unless --batch is given, in which case every
subtype is sent in a single call. With --debug the prompts are written to the
debug directory and no call is made.

Results are saved to <output_dir>/<client>/<subtype>/ after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringSliceVarP(&extractSubtypes, "subtype", "s", nil, "limit to these subtypes")
	extractCmd.Flags().BoolVarP(&extractBatch, "batch", "b", false, "send every subtype in one call")
	extractCmd.Flags().BoolVarP(&extractDebug, "debug", "d", false, "write prompts instead of calling the model")
	extractCmd.Flags().BoolVarP(&extractYes, "yes", "y", false, "skip confirmations")
	extractCmd.Flags().BoolVar(&extractNoSave, "no-save", false, "do not write results to the output directory")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	err := extract(cmd, args)
	if errors.Is(err, tui.ErrCancelled) {
		cmd.Println("Extraction cancelled.")
		return nil
	}
	return err
}

func extract(cmd *cobra.Command, args []string) error {
	if scanService == nil || extractionService == nil {
		return errors.New("extraction service not configured")
	}
	ctx := cmd.Context()
	ask := newPrompter(cmd)

	client, err := chooseClient(cmd, ask, args)
	if err != nil {
		return err
	}

	sets, err := scanClient(ctx, client, extractSubtypes, false)
	if err != nil {
		return err
	}
	if len(extractSubtypes) == 0 && len(sets) > 1 && !extractYes {
		if sets, err = chooseSubtypes(ask, sets); err != nil {
			return err
		}
	}

	batch := extractBatch || settings.BatchProcessing
	debug := extractDebug || settings.DebugMode

	cmd.Println(outputStyles.Title.Render(fmt.Sprintf("Client: %s", client)))
	cmd.Println(renderTable(subtypeSummaryHeaders, subtypeSummaryRows(sets)))
	cmd.Println()

	if debug {
		cmd.Println(outputStyles.Warning.Render("Debug mode: prompts will be written to " + settings.DebugDir))
	} else {
		if err := settings.Validate(); err != nil {
			return err
		}
		printEstimate(cmd, extractionService.Estimate(sets, batch))
		cmd.Println()
		if !extractYes {
			ok, err := ask.Confirm("Proceed with extraction?", true)
			if err != nil {
				return err
			}
			if !ok {
				cmd.Println("Extraction cancelled.")
				return nil
			}
		}
	}

	results, totals, runErr := runWithProgress(cmd, client, sets, batch, debug)
	if results.Len() == 0 {
		if runErr == nil {
			return errors.New("extraction produced no results")
		}
		return fmt.Errorf("extraction failed: %w", runErr)
	}

	printPreviews(cmd, results, debug)
	printTotals(cmd, totals, debug)

	if debug || extractNoSave {
		return runErr
	}
	if !extractYes {
		ok, err := ask.Confirm(fmt.Sprintf("Save results to %s?", settings.OutputDir), true)
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Results not saved.")
			return runErr
		}
	}
	if err := saveResults(cmd, client, results); err != nil {
		return err
	}
	return runErr
}

func chooseClient(cmd *cobra.Command, ask prompter, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	clients, err := scanService.ListClients(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to list clients: %w", err)
	}
	if len(clients) == 0 {
		return "", fmt.Errorf("%w: no client folders in %s", domain.ErrClientNotFound, settings.InputDir)
	}

	options := make([]list.Option, len(clients))
	for i, c := range clients {
		options[i] = list.Option{Label: c.Name, Detail: pluralise(len(c.Subtypes), "subtype")}
	}
	i, err := ask.Select("Select a client", options)
	if err != nil {
		return "", err
	}
	return clients[i].Name, nil
}

func chooseSubtypes(ask prompter, sets []domain.DocumentSet) ([]domain.DocumentSet, error) {
	options := make([]list.Option, len(sets))
	for i := range sets {
		options[i] = list.Option{
			Label:  sets[i].Subtype,
			Detail: fmt.Sprintf("%s, %s tokens", pluralise(sets[i].DocumentCount(), "document"), domain.FormatTokens(sets[i].TotalTokens)),
		}
	}
	chosen, err := ask.MultiSelect("Select subtypes to extract", options)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, fmt.Errorf("%w: no subtypes selected", domain.ErrInvalidInput)
	}
	out := make([]domain.DocumentSet, len(chosen))
	for i, idx := range chosen {
		out[i] = sets[idx]
	}
	return out, nil
}

func runWithProgress(
	cmd *cobra.Command, client string, sets []domain.DocumentSet, batch, debug bool,
) (*domain.Results, *domain.RunTotals, error) {
	rep := newReporter(cmd, fmt.Sprintf("Extracting %s for %s", pluralise(len(sets), "subtype"), client))
	totals := &domain.RunTotals{Subtypes: len(sets)}

	sink := func(ev domain.ExtractionEvent) {
		switch ev.Type {
		case domain.EventProgress:
			rep.Status(ev.Message, ev.Index, ev.Total)
		case domain.EventSubtypeComplete:
			rep.Println(outputStyles.Success.Render("✓ ") + fmt.Sprintf("%s: %d chars rules, %d chars guidelines",
				ev.Subtype, len(ev.Result.ClientRules), len(ev.Result.Guidelines)))
		case domain.EventError:
			rep.Fail(outputStyles.Error.Render("✗ ") + fmt.Sprintf("%s: %v", ev.Subtype, ev.Err))
		case domain.EventComplete:
			if ev.Totals != nil {
				totals = ev.Totals
			}
		}
	}

	results, err := extractionService.Run(cmd.Context(), domain.ExtractionRequest{
		ClientName: client,
		Sets:       sets,
		Batch:      batch,
		Debug:      debug,
	}, sink)

	summary := fmt.Sprintf("Extraction complete: %d succeeded, %d failed", totals.Succeeded, totals.Failed)
	if stopErr := rep.Stop(summary, err); stopErr != nil {
		cmd.PrintErrf("progress display: %v\n", stopErr)
	}
	if results == nil {
		results = domain.NewResults()
	}
	return results, totals, err
}

func printPreviews(cmd *cobra.Command, results *domain.Results, debug bool) {
	if debug {
		cmd.Printf("\nPrompts and token analyses written to %s\n", settings.DebugDir)
		return
	}
	for subtype, res := range results.All() {
		cmd.Println()
		cmd.Println(outputStyles.Subtitle.Render(subtype))
		cmd.Println(outputStyles.Muted.Render("client_rules.js"))
		cmd.Println(outputStyles.Preview.Render(preview(res.ClientRules, previewLines)))
		cmd.Println(outputStyles.Muted.Render("guidelines.md"))
		cmd.Println(outputStyles.Preview.Render(preview(res.Guidelines, previewLines)))
	}
}

func printTotals(cmd *cobra.Command, totals *domain.RunTotals, debug bool) {
	cmd.Println()
	cmd.Println(keyValue("Succeeded", fmt.Sprintf("%d/%d", totals.Succeeded, totals.Subtypes)))
	if totals.Failed > 0 {
		cmd.Println(keyValue("Failed", outputStyles.Error.Render(strconv.Itoa(totals.Failed))))
	}
	cmd.Println(keyValue("Input tokens", domain.FormatTokens(totals.InputTokens)))
	if !debug {
		cmd.Println(keyValue("Output tokens", domain.FormatTokens(totals.OutputTokens)))
		cmd.Println(keyValue("Cost", domain.FormatCost(totals.Cost)))
	}
}

func saveResults(cmd *cobra.Command, client string, results *domain.Results) error {
	cmd.Println()
	for subtype, res := range results.All() {
		paths, err := extractionService.Save(cmd.Context(), client, subtype, res)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", subtype, err)
		}
		for _, p := range paths {
			cmd.Println(outputStyles.Success.Render("saved ") + p)
		}
	}
	return nil
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
