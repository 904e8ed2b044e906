package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Server  ServerConfig
	Google  GoogleConfig
	Notion  NotionConfig
	Advisor AdvisorConfig
	Worker  WorkerConfig

	// BudgetFile is an optional YAML file overriding the stock budget
	// configuration. Empty means built-in defaults.
	BudgetFile string
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type GoogleConfig struct {
	ProjectID     string
	Dataset       string
	Bucket        string
	SpreadsheetID string
	ReadRange     string
}

type NotionConfig struct {
	APIKey     string
	DatabaseID string
}

type AdvisorConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

type WorkerConfig struct {
	Count      int
	QueueSize  int
	MaxRetries int
}

// Load reads the application configuration from the environment, after
// loading an optional .env file (or the file named by ENV_FILE).
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")
	cfg.BudgetFile = getEnv("BUDGET_FILE", "")

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv("API_RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv("API_RATE_LIMIT_BURST", 20)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:               getEnv("SERVER_HOST", "0.0.0.0"),
		Port:               serverPort,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	cfg.Google = GoogleConfig{
		ProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		Dataset:       getEnv("BIGQUERY_DATASET", "budget_insight"),
		Bucket:        getEnv("GCS_BUCKET", ""),
		SpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		ReadRange:     getEnv("SHEETS_READ_RANGE", "Transactions!A2:E"),
	}

	cfg.Notion = NotionConfig{
		APIKey:     getEnv("NOTION_API_KEY", ""),
		DatabaseID: getEnv("NOTION_DATABASE_ID", ""),
	}

	advisorTimeout, err := parseDurationEnv("ADVISOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	advisorMaxTokens, err := parseIntEnv("ADVISOR_MAX_OUTPUT_TOKENS", 2048)
	if err != nil {
		return cfg, err
	}

	cfg.Advisor = AdvisorConfig{
		APIKey:          getEnv("GEMINI_API_KEY", ""),
		Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Timeout:         advisorTimeout,
		MaxOutputTokens: advisorMaxTokens,
	}

	workerCount, err := parseIntEnv("WORKER_COUNT", 5)
	if err != nil {
		return cfg, err
	}

	queueSize, err := parseIntEnv("JOB_QUEUE_SIZE", 100)
	if err != nil {
		return cfg, err
	}

	maxRetries, err := parseIntEnv("JOB_MAX_RETRIES", 3)
	if err != nil {
		return cfg, err
	}

	cfg.Worker = WorkerConfig{
		Count:      workerCount,
		QueueSize:  queueSize,
		MaxRetries: maxRetries,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SheetsConfigured reports whether a Google Sheets source is configured.
func (c GoogleConfig) SheetsConfigured() bool {
	return c.SpreadsheetID != ""
}

// NotionConfigured reports whether report export to Notion is configured.
func (c NotionConfig) NotionConfigured() bool {
	return c.APIKey != "" && c.DatabaseID != ""
}

// AdvisorConfigured reports whether the AI advisor is configured.
func (c AdvisorConfig) AdvisorConfigured() bool {
	return c.APIKey != ""
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Server.RateLimitPerMinute <= 0 {
		return fmt.Errorf("API_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.Google.Dataset == "" {
		return fmt.Errorf("BIGQUERY_DATASET is required")
	}

	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be greater than 0")
	}

	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be greater than 0")
	}

	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("JOB_MAX_RETRIES cannot be negative")
	}

	if c.Advisor.MaxOutputTokens <= 0 {
		return fmt.Errorf("ADVISOR_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s cannot be negative", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
