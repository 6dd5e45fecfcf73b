package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/pkg/metrics"
)

// Appender writes ledger records as rows below the sheet's last row. It is
// the production ledger.Sink implementation.
type Appender struct {
	service *sheetsapi.Service
	log     *slog.Logger
	cfg     Config
}

var _ ledger.Sink = (*Appender)(nil)

// NewAppender creates a Google Sheets appender.
func NewAppender(ctx context.Context, cfg Config, log *slog.Logger) (*Appender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	service, err := createSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Appender{
		service: service,
		log:     log,
		cfg:     cfg,
	}, nil
}

// Append adds one row at the bottom of the configured sheet, retrying
// transient API failures with backoff. Values are written raw so the
// spreadsheet does not reinterpret dates or amounts.
func (a *Appender) Append(ctx context.Context, rec ledger.Record) error {
	row := make([]interface{}, len(rec))
	for i, cell := range rec {
		row[i] = cell
	}

	valueRange := &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}

	start := time.Now()
	err := apperrors.WithRetry(ctx, func() error {
		_, callErr := a.service.Spreadsheets.Values.
			Append(a.cfg.SpreadsheetID, a.cfg.SheetName, valueRange).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if callErr != nil {
			return apperrors.NewSinkError(callErr)
		}
		return nil
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordLedgerAppend(status, time.Since(start))

	if err != nil {
		a.log.Error("ledger append failed",
			slog.String("spreadsheet_id", a.cfg.SpreadsheetID),
			slog.String("sheet", a.cfg.SheetName),
			slog.Any("error", err),
		)
		return err
	}

	a.log.Info("ledger row appended",
		slog.String("spreadsheet_id", a.cfg.SpreadsheetID),
		slog.String("sheet", a.cfg.SheetName),
	)

	return nil
}

// HealthCheck verifies the spreadsheet is reachable with the configured
// credentials.
func (a *Appender) HealthCheck(ctx context.Context) error {
	_, err := a.service.Spreadsheets.Get(a.cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("spreadsheet %s is not accessible: %w", a.cfg.SpreadsheetID, err)
	}

	return nil
}

func createSheetsService(ctx context.Context, cfg Config) (*sheetsapi.Service, error) {
	var tokenSource oauth2.TokenSource

	if cfg.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(cfg.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheetsapi.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheetsapi.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
