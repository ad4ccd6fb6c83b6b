// =============================================================================
// Payables Dashboard - Configuration Module
// =============================================================================
//
// This module loads the dashboard configuration: where the snapshot comes
// from, how headers and fields are interpreted, the analytics thresholds and
// where exports are written.
//
// LOAD ORDER:
//   1. Built-in defaults
//   2. config.yaml (optional; a missing file means "defaults only")
//   3. Environment variables, after loading an optional .env file
//   4. Validation
//
// ENVIRONMENT OVERRIDES:
//   DASHBOARD_CSV_URL    -> source.url
//   DASHBOARD_CSV_FILE   -> source.file
//   DASHBOARD_LOG_LEVEL  -> log_level
//   DASHBOARD_OUTPUT_DIR -> output_dir
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/payables-dashboard/internal/csvparser"
	"github.com/ginjaninja78/payables-dashboard/internal/types"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the dashboard configuration.
type MainConfig struct {
	// Source selects the snapshot.
	Source SourceConfig `yaml:"source"`

	// AnchorField is the date field that places a record on a calendar day
	// for grouping, filtering and aging.
	// Default: "payment_request_date"
	AnchorField string `yaml:"anchor_field"`

	// FallbackAnchorField is used when the anchor field does not parse.
	// Default: "source_request_date"
	FallbackAnchorField string `yaml:"fallback_anchor_field"`

	// HeaderAliases adds raw header variants on top of the built-in table.
	//
	// Example:
	//   header_aliases:
	//     "Beneficiary": vendor
	HeaderAliases map[string]string `yaml:"header_aliases"`

	// FuzzyHeaders enables closest-match resolution of unknown headers.
	FuzzyHeaders bool `yaml:"fuzzy_headers"`

	// FieldRules are cleanup actions applied to canonical fields before the
	// record is built.
	FieldRules []FieldRule `yaml:"field_rules"`

	// Analytics holds the thresholds used by the KPI computations.
	Analytics AnalyticsConfig `yaml:"analytics"`

	// OutputDir is where exports and issue logs are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat names export files.
	// Placeholders: {kind}, {format}, {timestamp}, {date}, {uuid}
	// Default: "{kind}_{timestamp}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, receives JSON logs in addition to the console.
	LogFile string `yaml:"log_file"`
}

// SourceConfig selects and decodes the snapshot.
type SourceConfig struct {
	// URL of the published CSV. Wins over File when both are set.
	URL string `yaml:"url"`

	// File is a local .csv or .xlsx path.
	File string `yaml:"file"`

	// Encoding of CSV input. Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// Delimiter of CSV input. Default: ","
	Delimiter string `yaml:"delimiter"`

	// Sheet of XLSX input. Default: first sheet.
	Sheet string `yaml:"sheet"`

	// FetchTimeout bounds the HTTP fetch. Zero means no timeout.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// AnalyticsConfig holds KPI thresholds.
type AnalyticsConfig struct {
	// TopN is the length of the vendor and project rankings. Default: 5
	TopN int `yaml:"top_n"`

	// SLADays is the on-time window between anchor and payment. Default: 5
	SLADays int `yaml:"sla_days"`

	// ChartDays is the length of the daily chart series. Default: 15
	ChartDays int `yaml:"chart_days"`

	// ForecastWindowDays is the trailing window of the weekday pattern and
	// the moving-average forecast. Default: 30
	ForecastWindowDays int `yaml:"forecast_window_days"`

	// ForecastHorizons lists the forecast lengths in days. Default: [7, 14]
	ForecastHorizons []int `yaml:"forecast_horizons"`

	// BottleneckLimit caps the project bottleneck list. Default: 10
	BottleneckLimit int `yaml:"bottleneck_limit"`

	// VendorPageSize is the page size of the all-vendors summary. Default: 25
	VendorPageSize int `yaml:"vendor_page_size"`
}

// =============================================================================
// FIELD RULE STRUCTURE
// =============================================================================

// FieldRule lists cleanup actions for one canonical field.
type FieldRule struct {
	// Field is a canonical field name, e.g. "vendor" or "project".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []FieldAction `yaml:"actions"`
}

// FieldAction is a single cleanup step.
type FieldAction struct {
	// Type is one of SupportedActions.
	Type string `yaml:"type"`

	// Value is the action parameter: replacement text, default value, or
	// source field name for if_empty_use_field.
	Value string `yaml:"value"`

	// Find is the substring or pattern for replace and regex_replace.
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// SupportedActions lists the field action types the normalizer implements.
var SupportedActions = []string{
	"trim",
	"uppercase",
	"lowercase",
	"replace",
	"regex_replace",
	"lookup",
	"lookup_with_default",
	"if_empty_use_default",
	"if_empty_use_field",
	"extract_digits",
	"normalize_whitespace",
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the configuration.
//
// PARAMETERS:
//   - configPath: path to config.yaml. A missing file is not an error.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file exists but cannot be parsed, or validation fails.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadDotEnv loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(config *MainConfig) {
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_CSV_URL")); v != "" {
		config.Source.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_CSV_FILE")); v != "" {
		config.Source.File = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_LOG_LEVEL")); v != "" {
		config.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_OUTPUT_DIR")); v != "" {
		config.OutputDir = v
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Source.Encoding == "" {
		config.Source.Encoding = "UTF-8"
	}
	if config.Source.Delimiter == "" {
		config.Source.Delimiter = ","
	}
	if config.AnchorField == "" {
		config.AnchorField = string(types.FieldPaymentRequestDate)
	}
	if config.FallbackAnchorField == "" {
		config.FallbackAnchorField = string(types.FieldSourceRequestDate)
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{kind}_{timestamp}_{uuid}"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	a := &config.Analytics
	if a.TopN == 0 {
		a.TopN = 5
	}
	if a.SLADays == 0 {
		a.SLADays = 5
	}
	if a.ChartDays == 0 {
		a.ChartDays = 15
	}
	if a.ForecastWindowDays == 0 {
		a.ForecastWindowDays = 30
	}
	if len(a.ForecastHorizons) == 0 {
		a.ForecastHorizons = []int{7, 14}
	}
	if a.BottleneckLimit == 0 {
		a.BottleneckLimit = 10
	}
	if a.VendorPageSize == 0 {
		a.VendorPageSize = 25
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	for _, f := range []string{config.AnchorField, config.FallbackAnchorField} {
		if !types.Field(f).IsDate() {
			return invalid("anchor field %q is not a date field", f)
		}
	}

	if !csvparser.KnownEncoding(config.Source.Encoding) {
		return invalid("unsupported encoding %q", config.Source.Encoding)
	}
	if _, err := csvparser.DelimiterRune(config.Source.Delimiter); err != nil {
		return invalid("%v", err)
	}
	if config.Source.FetchTimeout < 0 {
		return invalid("fetch_timeout must not be negative")
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("unknown log level %q", config.LogLevel)
	}

	a := config.Analytics
	if a.TopN < 0 || a.SLADays < 0 || a.ChartDays < 0 || a.ForecastWindowDays < 0 ||
		a.BottleneckLimit < 0 || a.VendorPageSize < 0 {
		return invalid("analytics values must be positive")
	}
	for _, h := range a.ForecastHorizons {
		if h <= 0 {
			return invalid("forecast horizon %d must be positive", h)
		}
	}

	for raw, target := range config.HeaderAliases {
		if !types.Field(target).IsKnown() {
			return invalid("header alias %q targets unknown field %q", raw, target)
		}
	}

	for _, rule := range config.FieldRules {
		if !types.Field(rule.Field).IsKnown() {
			return invalid("field rule targets unknown field %q", rule.Field)
		}
		for _, action := range rule.Actions {
			if err := validateAction(action); err != nil {
				return invalid("field %s: %v", rule.Field, err)
			}
		}
	}

	return nil
}

func validateAction(action FieldAction) error {
	known := false
	for _, t := range SupportedActions {
		if t == action.Type {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown action type %q", action.Type)
	}

	switch action.Type {
	case "regex_replace":
		if _, err := regexp.Compile(action.Find); err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
	case "if_empty_use_field":
		if !types.Field(action.Value).IsKnown() {
			return fmt.Errorf("if_empty_use_field names unknown field %q", action.Value)
		}
	}
	return nil
}
