package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DBPath    string
	OutputDir string

	// Figures
	FigureDPI int

	// Open documents
	WorkspaceTTL    time.Duration
	CleanupInterval time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Import
	PDFFallbackPdftotext bool
	CSVBatchRows         int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("MDGEN_API_KEY"),

		DBPath:    envOr("MDGEN_DB_PATH", "mdgen.db"),
		OutputDir: envOr("MDGEN_OUTPUT_DIR", "output"),

		FigureDPI: envInt("MDGEN_FIGURE_DPI", 300),

		WorkspaceTTL:    envDuration("MDGEN_WORKSPACE_TTL", 1*time.Hour),
		CleanupInterval: envDuration("MDGEN_CLEANUP_INTERVAL", 5*time.Minute),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		CSVBatchRows:         envInt("MDGEN_CSV_BATCH_ROWS", 0),
	}

	if cfg.FigureDPI <= 0 {
		cfg.FigureDPI = 300
	}
	if cfg.WorkspaceTTL <= 0 {
		cfg.WorkspaceTTL = 1 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.CSVBatchRows < 0 {
		cfg.CSVBatchRows = 0
	}

	return cfg
}

// Validate checks the settings the HTTP server needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MDGEN_API_KEY is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("MDGEN_DB_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
