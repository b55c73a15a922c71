package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"coreauth/internal/config"
	"coreauth/internal/keygen"
	"coreauth/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// sheetColumns is the header row mirrored into the spreadsheet.
var sheetColumns = []interface{}{"license_key", "expiry_date", "used", "username", "updated_at"}

// SheetSync mirrors license state into a Google Sheet. A nil *SheetSync is valid
// and does nothing, which is what NewSheetSync returns when syncing is disabled.
type SheetSync struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

func NewSheetSync(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (*SheetSync, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("load sheets credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetSync{
		service:       srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger.With(slog.String("component", "sheet_sync")),
	}, nil
}

// SyncLicense writes the license row, updating it in place when the key is
// already present and appending it otherwise. username is empty for licenses that
// have not been redeemed.
func (s *SheetSync) SyncLicense(ctx context.Context, license model.License, username string) error {
	if s == nil {
		return nil
	}

	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("%s!A2:A", s.sheetName)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet keys: %w", err)
	}

	values := &sheets.ValueRange{Values: [][]interface{}{licenseRow(license, username)}}
	if row, found := findRow(keyResp.Values, license.Key); found {
		rangeData := fmt.Sprintf("%s!A%d:E%d", s.sheetName, row, row)
		_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, values).
			ValueInputOption("RAW").Context(ctx).Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.sheetName+"!A2:E", values).
			ValueInputOption("RAW").Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("write sheet row: %w", err)
	}

	s.logger.Debug("license synced", slog.String("license_key", license.Key))
	return nil
}

// EnsureHeader writes the column titles into the first row.
func (s *SheetSync) EnsureHeader(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1:E1",
		&sheets.ValueRange{Values: [][]interface{}{sheetColumns}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	return nil
}

// Go runs SyncLicense in the background and logs failures. Syncing never holds up
// or fails the request that triggered it.
func (s *SheetSync) Go(license model.License, username string) {
	if s == nil {
		return
	}
	go func() {
		if err := s.SyncLicense(context.Background(), license, username); err != nil {
			s.logger.Warn("license sync failed", slog.String("license_key", license.Key), slog.Any("error", err))
		}
	}()
}

func licenseRow(license model.License, username string) []interface{} {
	return []interface{}{
		license.Key,
		keygen.FormatDate(license.ExpiryDate),
		strconv.FormatBool(license.Used),
		username,
		license.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// findRow returns the 1-based sheet row holding key. rows starts at sheet row 2.
func findRow(rows [][]interface{}, key string) (int, bool) {
	for i, row := range rows {
		if len(row) > 0 && row[0] == key {
			return i + 2, true
		}
	}
	return 0, false
}
