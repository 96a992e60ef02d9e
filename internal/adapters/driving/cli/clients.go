package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var clientsFormat string

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List client folders",
	Long: `Lists the client folders under the input directory together with
their subtype folders. A client with files directly in its folder has the
single subtype "general".`,
	Args: cobra.NoArgs,
	RunE: runClients,
}

func init() {
	clientsCmd.Flags().StringVarP(&clientsFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(clientsCmd)
}

func runClients(cmd *cobra.Command, _ []string) error {
	format, err := parseFormat(clientsFormat)
	if err != nil {
		return err
	}
	if scanService == nil {
		return errors.New("scan service not configured")
	}

	clients, err := scanService.ListClients(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd, format, clients)
	}

	if len(clients) == 0 {
		cmd.Printf("No client folders found in %s\n", settings.InputDir)
		return nil
	}

	rows := make([][]string, len(clients))
	for i, c := range clients {
		rows[i] = []string{c.Name, strconv.Itoa(len(c.Subtypes)), strings.Join(c.Subtypes, ", ")}
	}
	cmd.Println(renderTable([]string{"Client", "Subtypes", "Names"}, rows))
	return nil
}
