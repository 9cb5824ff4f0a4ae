package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bankpivot/internal/log"
	"bankpivot/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Ensure interface conformance
var _ sheets.GridWriter = (*Client)(nil)

// New creates a Sheets client for one spreadsheet. Without options, service
// account credentials are resolved from the environment (see Credentials).
func New(ctx context.Context, spreadsheetID string, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	logger = logger.WithComponent(log.ComponentSheets)

	if len(opts) == 0 {
		creds, err := Credentials(ctx, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{creds, goption.WithScopes(gsheet.SpreadsheetsScope)}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// Credentials returns the service account credentials option, read from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func Credentials(ctx context.Context, logger *log.Logger) (goption.ClientOption, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		return goption.WithCredentialsJSON([]byte(serviceAccountJSON)), nil
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return goption.WithCredentialsJSON(data), nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// WriteGrid clears the sheet and writes rows from A1 as raw strings, so the
// formatted money values are not reinterpreted by the spreadsheet.
func (c *Client) WriteGrid(ctx context.Context, sheet string, rows [][]string) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if sheet == "" {
		return "", sheets.ErrNoSheet
	}

	name := quoteSheet(sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, name, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: toValues(rows)}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, name+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", sheet, err)
	}

	ref := resp.UpdatedRange
	if ref == "" {
		ref = rangeRef(sheet, rows)
	}
	c.logger.InfoContext(ctx, "Sheet updated",
		log.FieldTarget, ref,
		"updated_cells", resp.UpdatedCells)
	return ref, nil
}
