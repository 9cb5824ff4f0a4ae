package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"bankpivot/internal/gcs"
	"bankpivot/internal/log"
	"bankpivot/internal/pivot"
)

type Config struct {
	// Input
	InputPath string
	SkipRows  int
	Delimiter string

	// Aggregation
	OrderPolicy string
	ProfilePath string

	// Local outputs. An empty path disables the sink.
	OutputCSV   string
	OutputXLSX  string
	OutputChart string
	XLSXSpacers bool

	LogLevel string

	// Run history. HistoryLimit > 0 prints the most recent runs and exits.
	HistoryDBPath string
	HistoryLimit  int

	// AMQP
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Google Cloud Storage
	GCSBucket string
	GCSPrefix string

	PublishTimeout time.Duration
}

func Load() *Config {
	return &Config{
		InputPath: getEnv("INPUT_PATH", "tmp.csv"),
		SkipRows:  getEnvInt("SKIP_ROWS", 3),
		Delimiter: getEnv("CSV_DELIMITER", ","),

		OrderPolicy: getEnv("ORDER_POLICY", pivot.PolicyDynamic),
		ProfilePath: getEnv("PROFILE_PATH", ""),

		OutputCSV:   getEnvAllowEmpty("OUTPUT_CSV", "summary.csv"),
		OutputXLSX:  getEnvAllowEmpty("OUTPUT_XLSX", "financial_report.xlsx"),
		OutputChart: getEnv("OUTPUT_CHART", ""),
		XLSXSpacers: getEnvBool("XLSX_SPACERS", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		HistoryDBPath: getEnv("HISTORY_DB_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "bankpivot"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "report_generated"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Категории"),

		GCSBucket: getEnv("GCS_BUCKET", ""),
		GCSPrefix: getEnv("GCS_PREFIX", "reports/"),

		PublishTimeout: getEnvDuration("PUBLISH_TIMEOUT", 60*time.Second),
	}
}

// RegisterFlags binds the command-line overrides. Call it after Load so the
// environment values become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputPath, "input", c.InputPath, "statement export, local path or gs://bucket/object")
	fs.IntVar(&c.SkipRows, "skip", c.SkipRows, "preamble lines before the header")
	fs.StringVar(&c.Delimiter, "delimiter", c.Delimiter, "field delimiter of the statement")
	fs.StringVar(&c.OrderPolicy, "order", c.OrderPolicy, "column order: dynamic or fixed")
	fs.StringVar(&c.ProfilePath, "profile", c.ProfilePath, "YAML profile with rules, order and labels")
	fs.StringVar(&c.OutputCSV, "csv", c.OutputCSV, "summary CSV path, empty to disable")
	fs.StringVar(&c.OutputXLSX, "xlsx", c.OutputXLSX, "workbook path, empty to disable")
	fs.StringVar(&c.OutputChart, "chart", c.OutputChart, "PNG bar chart path, empty to disable")
	fs.BoolVar(&c.XLSXSpacers, "spacers", c.XLSXSpacers, "insert an empty column after every category in the workbook")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.IntVar(&c.HistoryLimit, "history", c.HistoryLimit, "print the N most recent archived runs and exit")
}

// Comma returns the delimiter as a rune.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.InputPath) == "" {
		errors = append(errors, "input path cannot be empty")
	} else if gcs.IsURI(c.InputPath) {
		if _, _, err := gcs.ParseURI(c.InputPath); err != nil {
			errors = append(errors, fmt.Sprintf("invalid input URI '%s': %v", c.InputPath, err))
		}
	}

	if c.SkipRows < 0 {
		errors = append(errors, fmt.Sprintf("invalid skip rows %d: must not be negative", c.SkipRows))
	}

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errors = append(errors, fmt.Sprintf("invalid delimiter '%s': must be a single character", c.Delimiter))
	} else if r := c.Comma(); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		errors = append(errors, fmt.Sprintf("invalid delimiter %q", c.Delimiter))
	}

	validPolicies := []string{pivot.PolicyDynamic, pivot.PolicyFixed}
	if !slices.Contains(validPolicies, strings.ToLower(strings.TrimSpace(c.OrderPolicy))) {
		errors = append(errors, fmt.Sprintf("invalid order policy '%s': must be one of %v", c.OrderPolicy, validPolicies))
	}

	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); err != nil {
			errors = append(errors, fmt.Sprintf("profile file is not readable: %s", c.ProfilePath))
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	outputs := map[string]string{}
	for name, path := range map[string]string{"csv": c.OutputCSV, "xlsx": c.OutputXLSX, "chart": c.OutputChart} {
		if path == "" {
			continue
		}
		if other, ok := outputs[path]; ok {
			errors = append(errors, fmt.Sprintf("outputs %s and %s share the path '%s'", min(name, other), max(name, other), path))
		}
		outputs[path] = name
	}

	if c.HistoryLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must not be negative", c.HistoryLimit))
	} else if c.HistoryLimit > 0 && c.HistoryDBPath == "" {
		errors = append(errors, "history database path is required to list runs")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && strings.TrimSpace(c.GoogleSheetName) == "" {
		errors = append(errors, "Google Sheet name is required when a spreadsheet ID is provided")
	}

	if c.GCSBucket != "" && strings.ContainsAny(c.GCSBucket, "/ ") {
		errors = append(errors, fmt.Sprintf("invalid GCS bucket '%s'", c.GCSBucket))
	}

	if c.PublishTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid publish timeout %v: must be at least 1 second", c.PublishTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats a variable set to the empty string as a value.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
