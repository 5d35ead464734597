// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "pebble" (default) or "sqlite"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)
	CoversDir    string

	// Enrichment
	Overwrite       bool
	RecordDelay     time.Duration
	ProviderTimeout time.Duration

	// Provider endpoints. Empty means the client default.
	MusicBrainzUserAgent string
	GoogleBooksBaseURL   string
	OpenLibraryBaseURL   string
	OpenLibraryCoversURL string
	ITunesBaseURL        string
	MusicBrainzBaseURL   string
	CoverArtBaseURL      string

	// HTTP server
	Host string
	Port int
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("database_path", "library.db")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("overwrite", false)
	viper.SetDefault("record_delay", time.Second)
	viper.SetDefault("provider_timeout", 9*time.Second)
	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", 8484)

	AppConfig = Config{
		DatabasePath:         viper.GetString("database_path"),
		DatabaseType:         viper.GetString("database_type"),
		EnableSQLite:         viper.GetBool("enable_sqlite3_i_know_the_risks"),
		CoversDir:            viper.GetString("covers_dir"),
		Overwrite:            viper.GetBool("overwrite"),
		RecordDelay:          viper.GetDuration("record_delay"),
		ProviderTimeout:      viper.GetDuration("provider_timeout"),
		MusicBrainzUserAgent: viper.GetString("musicbrainz_user_agent"),
		GoogleBooksBaseURL:   viper.GetString("google_books_base_url"),
		OpenLibraryBaseURL:   viper.GetString("openlibrary_base_url"),
		OpenLibraryCoversURL: viper.GetString("openlibrary_covers_url"),
		ITunesBaseURL:        viper.GetString("itunes_base_url"),
		MusicBrainzBaseURL:   viper.GetString("musicbrainz_base_url"),
		CoverArtBaseURL:      viper.GetString("coverart_base_url"),
		Host:                 viper.GetString("host"),
		Port:                 viper.GetInt("port"),
	}

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}

	// Covers live next to the database unless configured
	if AppConfig.CoversDir == "" {
		AppConfig.CoversDir = filepath.Join(filepath.Dir(AppConfig.DatabasePath), "covers")
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.RecordDelay < 0 {
		return fmt.Errorf("record_delay must not be negative, got %s", c.RecordDelay)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider_timeout must be positive, got %s", c.ProviderTimeout)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
