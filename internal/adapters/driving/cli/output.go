package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// outputFormat selects how commands print results.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

var outputStyles = styles.DefaultStyles()

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "":
		return formatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json or yaml)", domain.ErrInvalidInput, s)
	}
}

// writeStructured prints v as indented JSON or YAML.
func writeStructured(cmd *cobra.Command, format outputFormat, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Println(string(data))
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		cmd.Print(string(data))
	default:
		return fmt.Errorf("%w: %s is not a structured format", domain.ErrInvalidInput, format)
	}
	return nil
}

// renderTable draws a bordered table with a styled header row.
func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(outputStyles.TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return outputStyles.TableHeader
			}
			return outputStyles.TableCell
		})
	return t.String()
}

// keyValue renders "label  value" with a fixed-width muted label.
func keyValue(label, value string) string {
	return outputStyles.Label.Render(label) + value
}

// preview returns the first maxLines lines of text, noting how many were cut.
func preview(text string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-maxLines)
}
