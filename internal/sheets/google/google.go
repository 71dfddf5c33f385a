package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

const (
	defaultSheetName = "Transactions"
	defaultCacheTTL  = 2 * time.Minute
	lastColumn       = "J"
)

// Config holds the spreadsheet location and service account credentials.
// CredentialsJSON wins over CredentialsFile; GOOGLE_APPLICATION_CREDENTIALS
// is the last fallback.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	RowCacheTTL     time.Duration
}

// Client mirrors transactions into a Google Sheet, one row per transaction
// keyed by the id in column A.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu                 sync.Mutex
	rowIndex           map[string]int // transaction id -> 1-based row
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

var _ ports.TransactionExporter = (*Client)(nil)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Default(log.ComponentSheets)
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg, logger), nil
}

func newClient(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = defaultSheetName
	}
	ttl := cfg.RowCacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      cfg.SpreadsheetID,
		sheetName:          name,
		logger:             logger,
		cacheValidDuration: ttl,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Upsert overwrites the row holding row.ID, or appends one.
func (c *Client) Upsert(ctx context.Context, row ports.TransactionRow) (string, error) {
	if row.ID == "" {
		return "", errors.New("transaction row without id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadIndexLocked(ctx); err != nil {
		return "", err
	}

	n, exists := c.rowIndex[row.ID]
	if !exists {
		n = c.cachedRowCount + 1
	}
	ref := c.rowRange(n)
	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}

	if !exists {
		c.rowIndex[row.ID] = n
		c.cachedRowCount = n
	}
	return ref, nil
}

// Delete clears the row holding transactionID. A missing row is not an error.
func (c *Client) Delete(ctx context.Context, transactionID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadIndexLocked(ctx); err != nil {
		return err
	}
	n, ok := c.rowIndex[transactionID]
	if !ok {
		c.logger.DebugContext(ctx, "Transaction not present in sheet, nothing to delete", "transaction_id", transactionID)
		return nil
	}

	ref := c.rowRange(n)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, ref, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		c.invalidateLocked()
		return fmt.Errorf("failed to clear %s: %w", ref, err)
	}
	delete(c.rowIndex, transactionID)
	return nil
}

// loadIndexLocked refreshes the id column when the cache has expired and
// writes the header into an empty sheet.
func (c *Client) loadIndexLocked(ctx context.Context) error {
	if c.rowIndex != nil && time.Now().Before(c.cacheExpiresAt) {
		return nil
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read ids from %s: %w", c.sheetName, err)
	}
	index, count := parseIDColumn(resp.Values)

	if count == 0 {
		header := &gsheet.ValueRange{Values: [][]any{ports.Header}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rowRange(1), header).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to write header to %s: %w", c.sheetName, err)
		}
		count = 1
	}

	c.rowIndex = index
	c.cachedRowCount = count
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	return nil
}

// InvalidateRowCache forces the next write to re-read the id column.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Client) invalidateLocked() {
	c.cacheExpiresAt = time.Time{}
}

func (c *Client) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, n, lastColumn, n)
}
