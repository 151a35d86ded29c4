package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "MDGEN_API_KEY", "MDGEN_DB_PATH", "MDGEN_FIGURE_DPI", "MDGEN_WORKSPACE_TTL", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DBPath != "mdgen.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.FigureDPI != 300 {
		t.Errorf("FigureDPI = %d", cfg.FigureDPI)
	}
	if cfg.WorkspaceTTL != time.Hour {
		t.Errorf("WorkspaceTTL = %v", cfg.WorkspaceTTL)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate to require an API key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MDGEN_API_KEY", "secret")
	t.Setenv("MDGEN_FIGURE_DPI", "150")
	t.Setenv("MDGEN_WORKSPACE_TTL", "10m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MDGEN_CSV_BATCH_ROWS", "25")

	cfg := Load()
	if cfg.Port != "9000" || cfg.APIKey != "secret" || cfg.FigureDPI != 150 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.WorkspaceTTL != 10*time.Minute {
		t.Errorf("WorkspaceTTL = %v", cfg.WorkspaceTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("PDFFallbackPdftotext should be false")
	}
	if cfg.CSVBatchRows != 25 {
		t.Errorf("CSVBatchRows = %d", cfg.CSVBatchRows)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_InvalidFallsBack(t *testing.T) {
	t.Setenv("MDGEN_FIGURE_DPI", "-5")
	t.Setenv("MDGEN_WORKSPACE_TTL", "soon")
	cfg := Load()
	if cfg.FigureDPI != 300 {
		t.Errorf("FigureDPI = %d", cfg.FigureDPI)
	}
	if cfg.WorkspaceTTL != time.Hour {
		t.Errorf("WorkspaceTTL = %v", cfg.WorkspaceTTL)
	}
}
