package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var (
	cacheFormat      string
	cacheShowContent bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage parsed uploads in the file cache",
	Long: `Parsed files can be cached for later analysis with "analyze --cached".
Entries expire after the configured cache expiry.`,
}

var cachePutCmd = &cobra.Command{
	Use:   "put <file>...",
	Short: "Parse files and store them in the cache",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCachePut,
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a cached file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheGet,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a cached file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheDelete,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheCleanup,
}

func init() {
	cachePutCmd.Flags().StringVarP(&cacheFormat, "format", "f", "text", "output format: text, json or yaml")
	cacheGetCmd.Flags().BoolVar(&cacheShowContent, "content", false, "print the full parsed text")
	cacheCmd.AddCommand(cachePutCmd, cacheGetCmd, cacheDeleteCmd, cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePut(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(cacheFormat)
	if err != nil {
		return err
	}
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	files := make([]*domain.RawFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.NewRawFile(path, data))
	}

	results, err := cacheService.UploadMany(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd, format, results)
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		if r.Error != "" {
			rows[i] = []string{"-", r.Filename, "-", "-", outputStyles.Error.Render(r.Error)}
			continue
		}
		rows[i] = []string{r.ID, r.Filename, strconv.Itoa(r.Tokens), r.Language, outputStyles.Success.Render("cached")}
	}
	cmd.Println(renderTable([]string{"ID", "File", "Tokens", "Language", "Status"}, rows))
	return nil
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	f, err := cacheService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("cache entry %s not found or expired", args[0])
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	cmd.Println(keyValue("ID", f.ID))
	cmd.Println(keyValue("File", f.Filename))
	cmd.Println(keyValue("Tokens", strconv.Itoa(f.Tokens)))
	cmd.Println(keyValue("Cached at", f.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	cmd.Println()
	if cacheShowContent {
		cmd.Println(f.Content)
		return nil
	}
	cmd.Println(outputStyles.Preview.Render(preview(f.Content, previewLines)))
	return nil
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	if err := cacheService.Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("cache entry %s not found", args[0])
		}
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runCacheCleanup(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	stats, err := cacheService.Cleanup(cmd.Context())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	cmd.Printf("Removed %d expired entries", stats.Removed)
	if stats.Skipped > 0 {
		cmd.Printf(", skipped %d in use", stats.Skipped)
	}
	cmd.Println()
	return nil
}
