// Package backend selects the ledger the worker mirrors expense events
// into.
package backend

import (
	"context"
	"fmt"

	"spending/internal/config"
	"spending/internal/log"
	"spending/internal/sheets"
	gsheet "spending/internal/sheets/google"
	"spending/internal/sheets/memory"
)

// Type names a ledger implementation.
type Type string

const (
	GoogleSheets Type = "sheets"
	Memory       Type = "memory"
)

// IsValid reports whether t is a known ledger type.
func (t Type) IsValid() bool {
	switch t {
	case GoogleSheets, Memory:
		return true
	default:
		return false
	}
}

// Config holds what Open needs to build a ledger.
type Config struct {
	Type   Type
	Google gsheet.Config
}

// FromAppConfig picks the Google Sheets ledger when a spreadsheet is
// configured and the in-memory one otherwise.
func FromAppConfig(cfg *config.Config) Config {
	c := Config{Type: Memory}
	if cfg.SheetsEnabled() {
		c.Type = GoogleSheets
		c.Google = gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}
	}
	return c
}

// Open creates the ledger described by cfg. A Google Sheets ledger gets
// its header row written if the sheet is empty.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (sheets.Ledger, error) {
	switch cfg.Type {
	case GoogleSheets:
		client, err := gsheet.New(ctx, cfg.Google, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets ledger: %w", err)
		}
		if err := client.EnsureHeader(ctx); err != nil {
			return nil, err
		}
		return client, nil
	case Memory:
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, ledger rows are kept in memory only")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("invalid ledger type: %q", cfg.Type)
	}
}
