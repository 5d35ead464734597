// file: cmd/root.go
// version: 2.1.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/library-enricher/internal/config"
	"github.com/jdfalk/library-enricher/internal/covers"
	"github.com/jdfalk/library-enricher/internal/database"
	"github.com/jdfalk/library-enricher/internal/enrich"
	"github.com/jdfalk/library-enricher/internal/library"
	"github.com/jdfalk/library-enricher/internal/metadata"
	"github.com/jdfalk/library-enricher/internal/models"
	"github.com/jdfalk/library-enricher/internal/realtime"
	"github.com/jdfalk/library-enricher/internal/server"
)

var cfgFile string
var databasePath string
var databaseType string
var enableSQLite bool
var coversDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "library-enricher",
	Short: "Fill in missing book metadata from public catalogues",
	Long: `Library Enricher looks up every entry in your book and audiobook library
against Google Books, Open Library, iTunes and MusicBrainz, picks the best
match and fills in missing fields and cover art.`,
	SilenceUsage: true,
}

// importCmd loads a YAML library file into the store
var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import entries from a YAML library file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		n, err := svc.Import(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", n, config.AppConfig.DatabasePath)
		return nil
	},
}

// exportCmd writes the store to a YAML library file
var exportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Export all entries to a YAML library file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		n, err := svc.Export(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", n, args[0])
		return nil
	},
}

// enrichCmd runs the enrichment pipeline in the foreground
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Look up and fill in metadata for library entries",
	Long: `Enrich every entry (or only those given with --id), one at a time.
Press Ctrl+C to stop after the entry currently being looked up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, _ := cmd.Flags().GetStringSlice("id")

		svc, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		summary, err := runEnrichment(cmd, svc, ids)
		if err != nil {
			return err
		}
		printSummary(cmd, summary)
		return nil
	},
}

// searchCmd fuzzy-searches the library
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search library entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		svc, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		matches, err := svc.Search(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching entries.")
			return nil
		}
		out := cmd.OutOrStdout()
		for i, m := range matches {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Fprintf(out, "%3d  %-40s %-25s %s\n", m.Score, truncateString(m.Entry.Label(), 40), truncateString(m.Entry.Author, 25), m.Entry.ID)
		}
		return nil
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Start the HTTP API for starting, watching and cancelling enrichment runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := openService()
		if err != nil {
			return err
		}
		defer closer()

		cfg := server.ServerConfig{Addr: config.AppConfig.Addr()}
		cfg.ReadTimeout, _ = cmd.Flags().GetDuration("read-timeout")
		cfg.WriteTimeout, _ = cmd.Flags().GetDuration("write-timeout")
		cfg.IdleTimeout, _ = cmd.Flags().GetDuration("idle-timeout")

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(svc, realtime.NewEventHub(), config.AppConfig.Overwrite)
		return srv.Start(ctx, cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.library-enricher.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "library.pebble", "path to database (default: library.pebble for PebbleDB)")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "pebble", "database type: pebble (default) or sqlite")
	rootCmd.PersistentFlags().BoolVar(&enableSQLite, "enable-sqlite3-i-know-the-risks", false, "enable SQLite3 database (WARNING: cross-compilation issues, PebbleDB recommended)")
	rootCmd.PersistentFlags().StringVar(&coversDir, "covers", "", "directory for downloaded covers (default: next to the database)")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("enable_sqlite3_i_know_the_risks", rootCmd.PersistentFlags().Lookup("enable-sqlite3-i-know-the-risks"))
	viper.BindPFlag("covers_dir", rootCmd.PersistentFlags().Lookup("covers"))

	enrichCmd.Flags().Bool("overwrite", false, "replace fields that already have a value")
	enrichCmd.Flags().StringSlice("id", nil, "only enrich these entry IDs (repeatable)")
	enrichCmd.Flags().Duration("delay", enrich.DefaultDelay, "pause between entries")
	viper.BindPFlag("overwrite", enrichCmd.Flags().Lookup("overwrite"))
	viper.BindPFlag("record_delay", enrichCmd.Flags().Lookup("delay"))

	searchCmd.Flags().Int("limit", 20, "maximum results to show (0 for all)")

	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().Int("port", 8484, "port to run the web server on")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("write-timeout", 0, "write timeout; 0 keeps event streams open")
	serveCmd.Flags().Duration("idle-timeout", 60*time.Second, "idle timeout (e.g. 60s, 2m)")
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".library-enricher")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}

// openService opens the configured store and wires the pipeline around it.
func openService() (*library.Service, func(), error) {
	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := database.InitializeStore(cfg.DatabaseType, cfg.DatabasePath, cfg.EnableSQLite); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sources := metadata.NewDefaultSources(metadata.SourceOptions{
		GoogleBooksURL:       cfg.GoogleBooksBaseURL,
		OpenLibraryURL:       cfg.OpenLibraryBaseURL,
		OpenLibraryCoversURL: cfg.OpenLibraryCoversURL,
		ITunesURL:            cfg.ITunesBaseURL,
		MusicBrainzURL:       cfg.MusicBrainzBaseURL,
		CoverArtURL:          cfg.CoverArtBaseURL,
		UserAgent:            cfg.MusicBrainzUserAgent,
		Timeout:              cfg.ProviderTimeout,
	})
	enricher := enrich.NewEnricher(metadata.NewAggregator(sources...), cfg.RecordDelay)
	svc := library.NewService(database.GlobalStore, covers.NewStore(cfg.CoversDir), enricher)

	closer := func() {
		if err := database.CloseStore(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return svc, closer, nil
}

// runEnrichment runs one enrichment job with a terminal progress bar. An
// interrupt at any point, including while the job is starting, cancels it
// after the current entry.
func runEnrichment(cmd *cobra.Command, svc *library.Service, ids []string) (models.Summary, error) {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressbar.ProgressBar
	job, err := svc.Start(ctx, ids, enrich.Options{
		Overwrite: config.AppConfig.Overwrite,
		OnProgress: func(ev models.ProgressEvent) {
			if bar == nil {
				bar = progressbar.NewOptions(ev.Total,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(30),
					progressbar.OptionSetDescription("Enriching"),
				)
			}
			if !ev.Done {
				bar.Describe(truncateString(ev.CurrentTitle, 30))
			}
			bar.Set(ev.Completed)
		},
	})
	if err != nil {
		return models.Summary{}, err
	}

	select {
	case <-job.Done():
	case <-ctx.Done():
		fmt.Fprintln(cmd.ErrOrStderr(), "\nStopping after the current entry...")
		job.Cancel()
	}

	summary := job.Wait()
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	return summary, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printSummary(cmd *cobra.Command, s models.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(), "Enrichment finished: %d updated, %d skipped, %d failed\n", s.Updated, s.Skipped, s.Failed)
}
