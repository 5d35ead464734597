// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/pebble/v2"
	"github.com/spf13/cobra"

	"github.com/jdfalk/library-enricher/internal/config"
	"github.com/jdfalk/library-enricher/internal/database"
	"github.com/jdfalk/library-enricher/internal/models"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging and cleanup helpers",
		Long:  "Diagnostic utilities for inspecting and repairing the library database.",
	}

	cleanupCmd = &cobra.Command{
		Use:   "cleanup-empty",
		Short: "Remove entries with no title, author or file name",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("yes")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runCleanupEmptyEntries(cmd.OutOrStdout(), os.Stdin, force, dryRun)
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Inspect stored entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			raw, _ := cmd.Flags().GetBool("raw")
			return runDiagnosticsQuery(cmd.OutOrStdout(), limit, prefix, raw)
		},
	}
)

func init() {
	cleanupCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	cleanupCmd.Flags().Bool("dry-run", false, "List empty entries without deleting")

	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "entry:", "Key prefix to inspect when --raw is set")
	queryCmd.Flags().Bool("raw", false, "Show raw Pebble key/value data (Pebble only)")

	diagnosticsCmd.AddCommand(cleanupCmd)
	diagnosticsCmd.AddCommand(queryCmd)
}

func ensureDiagnosticsStore() (func(), error) {
	if err := database.InitializeStore(
		config.AppConfig.DatabaseType,
		config.AppConfig.DatabasePath,
		config.AppConfig.EnableSQLite,
	); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		_ = database.CloseStore()
	}
	return cleanup, nil
}

// isEmptyEntry reports whether an entry has nothing to search or label by.
func isEmptyEntry(e models.LibraryEntry) bool {
	return strings.TrimSpace(e.Title) == "" &&
		strings.TrimSpace(e.Author) == "" &&
		strings.TrimSpace(e.FileName) == ""
}

func runCleanupEmptyEntries(out io.Writer, in io.Reader, force, dryRun bool) error {
	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	fmt.Fprintf(out, "Inspecting entries in %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

	entries, err := database.GlobalStore.ListEntries()
	if err != nil {
		return fmt.Errorf("failed to fetch entries: %w", err)
	}

	var empty []models.LibraryEntry
	for _, e := range entries {
		if isEmptyEntry(e) {
			empty = append(empty, e)
		}
	}

	if len(empty) == 0 {
		fmt.Fprintln(out, "No empty entries detected.")
		return nil
	}

	fmt.Fprintf(out, "Found %d empty entries:\n", len(empty))
	for i, e := range empty {
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, e.ID)
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run enabled; no deletions were performed.")
		return nil
	}

	if !force {
		confirmed, err := promptYesNo(out, in, fmt.Sprintf("Delete %d entries", len(empty)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted. No entries deleted.")
			return nil
		}
	}

	deleted := 0
	for _, e := range empty {
		if err := database.GlobalStore.DeleteEntry(e.ID); err != nil {
			fmt.Fprintf(out, "Failed to delete %s: %v\n", e.ID, err)
			continue
		}
		deleted++
	}

	fmt.Fprintf(out, "Deleted %d empty entries.\n", deleted)
	return nil
}

func runDiagnosticsQuery(out io.Writer, limit int, prefix string, raw bool) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}

	if raw {
		if config.AppConfig.DatabaseType != "pebble" {
			return fmt.Errorf("raw inspection is only available for Pebble databases")
		}
		return runRawPebbleQuery(out, limit, prefix)
	}

	closer, err := ensureDiagnosticsStore()
	if err != nil {
		return err
	}
	defer closer()

	entries, err := database.GlobalStore.ListEntries()
	if err != nil {
		return fmt.Errorf("failed to fetch entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return nil
	}

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Fprintf(out, "%2d. ID: %s\n", i+1, e.ID)
		fmt.Fprintf(out, "    Title: %s\n", formatValue(e.Title))
		fmt.Fprintf(out, "    Author: %s\n", formatValue(e.Author))
		fmt.Fprintf(out, "    ISBN: %s\n", formatValue(e.ISBN))
		if e.HasCover {
			fmt.Fprintf(out, "    Cover: %s\n", e.CoverPath)
		}
		fmt.Fprintln(out, "---")
	}

	return nil
}

func runRawPebbleQuery(out io.Writer, limit int, prefix string) error {
	db, err := pebble.Open(config.AppConfig.DatabasePath, &pebble.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		fmt.Fprintf(out, "Key: %s\n", string(iter.Key()))
		val := iter.Value()
		fmt.Fprintf(out, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(out, "Value preview: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(out, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(out, "No keys matched the requested prefix.")
	}

	return nil
}

func formatValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func promptYesNo(out io.Writer, in io.Reader, action string) (bool, error) {
	fmt.Fprintf(out, "%s? Type 'yes' to confirm: ", action)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes", nil
}

func truncateString(in string, max int) string {
	r := []rune(in)
	if len(r) <= max {
		return in
	}
	return string(r[:max]) + "..."
}
