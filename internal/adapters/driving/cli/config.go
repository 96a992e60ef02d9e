package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// defaultConfigFile is written by "config init" without --config.
const defaultConfigFile = "cartographer.toml"

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Settings are read from cartographer.toml (or the file given with
--config, which may be TOML, YAML or .env) and can be overridden by environment
variables such as ANTHROPIC_API_KEY, MODEL and INPUT_DIR.`,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a starter config file and template examples",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipBootstrap: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if configInitializer == nil {
		return errors.New("config initializer not configured")
	}

	path := configPath
	if path == "" {
		path = defaultConfigFile
	}

	written, err := configInitializer(path, configForce)
	if err != nil {
		return fmt.Errorf("failed to initialise config: %w", err)
	}
	for _, p := range written {
		cmd.Println(outputStyles.Success.Render("wrote ") + p)
	}
	cmd.Println("Set ANTHROPIC_API_KEY in the config file or the environment before extracting.")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s := settings
	excludes := "-"
	if len(s.ExcludePatterns) > 0 {
		excludes = strings.Join(s.ExcludePatterns, ", ")
	}

	cmd.Println(keyValue("API key", s.MaskedAPIKey()))
	cmd.Println(keyValue("Model", s.Model))
	cmd.Println(keyValue("Input dir", s.InputDir))
	cmd.Println(keyValue("Output dir", s.OutputDir))
	cmd.Println(keyValue("Templates dir", s.TemplatesDir))
	cmd.Println(keyValue("Instructions", s.InstructionsDir))
	cmd.Println(keyValue("Debug dir", s.DebugDir))
	cmd.Println(keyValue("Debug mode", strconv.FormatBool(s.DebugMode)))
	cmd.Println(keyValue("Batch", strconv.FormatBool(s.BatchProcessing)))
	cmd.Println(keyValue("Cache dir", s.CacheDir))
	cmd.Println(keyValue("Cache expiry", s.CacheTTL.String()))
	cmd.Println(keyValue("Data dir", s.DataDir))
	cmd.Println(keyValue("Requests/min", strconv.FormatFloat(s.RequestsPerMinute, 'f', -1, 64)))
	cmd.Println(keyValue("Timeout", s.RequestTimeout.String()))
	cmd.Println(keyValue("Exclude", excludes))
	return nil
}
