// file: cmd/root_test.go
// version: 2.1.0
// guid: 7eae8d0c-7fda-4f45-8f73-5d1e0c7c9f1a

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jdfalk/library-enricher/internal/config"
)

func TestInitConfigCreatesDirectories(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "test.pebble")

	origCfgFile := cfgFile
	origDBPath := databasePath
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		databasePath = origDBPath
		config.AppConfig = origConfig
	}()

	cfgFile = filepath.Join(tempDir, "config.yaml")
	databasePath = dbPath

	initConfig()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected database directory to exist: %v", err)
	}
}

func TestInitConfigReadsConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".library-enricher.yaml")
	if err := os.WriteFile(configPath, []byte("record_delay: 2s\nport: 9090\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origCfgFile := cfgFile
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		config.AppConfig = origConfig
	}()

	cfgFile = configPath
	initConfig()

	if config.AppConfig.RecordDelay != 2*time.Second {
		t.Fatalf("expected record delay from config file, got %s", config.AppConfig.RecordDelay)
	}
	if config.AppConfig.Port != 9090 {
		t.Fatalf("expected port from config file, got %d", config.AppConfig.Port)
	}
}

func TestOpenServiceRejectsInvalidConfig(t *testing.T) {
	origConfig := config.AppConfig
	defer func() {
		config.AppConfig = origConfig
	}()

	config.AppConfig = config.Config{DatabaseType: "pebble", ProviderTimeout: 0, Port: 8484}
	if _, _, err := openService(); err == nil {
		t.Fatal("expected error for zero provider timeout")
	}
}

func TestImportRequiresReadableFile(t *testing.T) {
	useTestConfig(t, "")

	importCmd.SetOut(&bytes.Buffer{})
	if err := importCmd.RunE(importCmd, []string{filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing library file")
	}
}

func TestImportSearchEnrichExport(t *testing.T) {
	providers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer providers.Close()
	useTestConfig(t, providers.URL)

	tempDir := t.TempDir()
	libPath := filepath.Join(tempDir, "library.yaml")
	lib := "entries:\n  - title: Dune\n    author: Frank Herbert\n"
	if err := os.WriteFile(libPath, []byte(lib), 0o644); err != nil {
		t.Fatalf("failed to write library: %v", err)
	}

	var out bytes.Buffer
	importCmd.SetOut(&out)
	if err := importCmd.RunE(importCmd, []string{libPath}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 1 entries") {
		t.Fatalf("unexpected import output: %q", out.String())
	}

	out.Reset()
	searchCmd.SetOut(&out)
	if err := searchCmd.RunE(searchCmd, []string{"dune"}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out.String(), "Dune") {
		t.Fatalf("expected search hit, got %q", out.String())
	}

	out.Reset()
	enrichCmd.SetOut(&out)
	enrichCmd.SetErr(&bytes.Buffer{})
	if err := enrichCmd.RunE(enrichCmd, nil); err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !strings.Contains(out.String(), "0 updated, 1 skipped, 0 failed") {
		t.Fatalf("unexpected enrich summary: %q", out.String())
	}

	exportPath := filepath.Join(tempDir, "export.yaml")
	out.Reset()
	exportCmd.SetOut(&out)
	if err := exportCmd.RunE(exportCmd, []string{exportPath}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "Frank Herbert") {
		t.Fatalf("expected exported entry, got:\n%s", data)
	}
}

func TestRunEnrichmentHonoursCancelledContext(t *testing.T) {
	providers := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer providers.Close()
	useTestConfig(t, providers.URL)

	libPath := filepath.Join(t.TempDir(), "library.yaml")
	lib := "entries:\n  - title: Dune\n  - title: Emma\n  - title: Ubik\n"
	if err := os.WriteFile(libPath, []byte(lib), 0o644); err != nil {
		t.Fatalf("failed to write library: %v", err)
	}

	svc, closer, err := openService()
	if err != nil {
		t.Fatalf("openService failed: %v", err)
	}
	defer closer()
	if _, err := svc.Import(libPath); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	// An interrupt that lands before the job starts must still stop it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enrichCmd.SetContext(ctx)
	defer enrichCmd.SetContext(context.Background())
	enrichCmd.SetErr(&bytes.Buffer{})

	summary, err := runEnrichment(enrichCmd, svc, nil)
	if err != nil {
		t.Fatalf("runEnrichment failed: %v", err)
	}
	if got := summary.Processed(); got != 0 {
		t.Fatalf("expected no entries processed after cancellation, got %d", got)
	}
	if svc.Current().Running() {
		t.Fatal("expected the job to have stopped")
	}
}

func TestExecuteHelp(t *testing.T) {
	tempDir := t.TempDir()

	origCfg := cfgFile
	origDBPath := databasePath
	defer func() {
		cfgFile = origCfg
		databasePath = origDBPath
	}()

	cfgFile = filepath.Join(tempDir, "config.yaml")
	databasePath = filepath.Join(tempDir, "db.pebble")

	rootCmd.SetArgs([]string{"--db", databasePath, "--help"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}

// useTestConfig points the CLI at a temporary Pebble store and, when
// providerURL is set, routes every provider to it.
func useTestConfig(t *testing.T, providerURL string) {
	t.Helper()
	origConfig := config.AppConfig
	t.Cleanup(func() { config.AppConfig = origConfig })

	dir := t.TempDir()
	config.AppConfig = config.Config{
		DatabasePath:         filepath.Join(dir, "library.pebble"),
		DatabaseType:         "pebble",
		CoversDir:            filepath.Join(dir, "covers"),
		ProviderTimeout:      2 * time.Second,
		MusicBrainzUserAgent: "library-enricher-test/1.0",
		GoogleBooksBaseURL:   providerURL,
		OpenLibraryBaseURL:   providerURL,
		OpenLibraryCoversURL: providerURL,
		ITunesBaseURL:        providerURL,
		MusicBrainzBaseURL:   providerURL,
		CoverArtBaseURL:      providerURL,
		Host:                 "localhost",
		Port:                 8484,
	}
}
