package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/outreach-monitor/internal/pkg/logger"
)

// ErrMissingAPIKey is returned by Validate when no HeyReach API key is
// configured. This is the only configuration error treated as fatal.
var ErrMissingAPIKey = errors.New("config: heyreach api_key is required (set HEYREACH_API_KEY)")

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	HeyReach  HeyReachConfig  `yaml:"heyreach"`
	Smartlead SmartleadConfig `yaml:"smartlead"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Tasks     TasksConfig     `yaml:"tasks"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// HeyReachConfig holds HeyReach API configuration plus the manual
// sender directory and client groupings.
type HeyReachConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	// SenderIDs are manually pinned LinkedIn sender account IDs. When
	// present they take precedence over the remote account directory.
	SenderIDs []int64 `yaml:"sender_ids"`

	// SenderNames maps a sender ID (canonical int64) to a display name.
	// Keys that could not be parsed as integers are preserved in
	// RawSenderNames for string-keyed fallback lookups.
	SenderNames    map[int64]string  `yaml:"-"`
	RawSenderNames map[string]string `yaml:"sender_names"`

	// ClientGroups maps a client label to the sender IDs reporting
	// under it.
	ClientGroups map[string][]int64 `yaml:"client_groups"`
}

// Timeout returns the configured timeout as a duration
func (c HeyReachConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SenderName resolves a display name for the given sender ID: the
// canonical int-keyed map first, then the raw string key, then empty.
func (c HeyReachConfig) SenderName(id int64) string {
	if name, ok := c.SenderNames[id]; ok {
		return name
	}
	if name, ok := c.RawSenderNames[strconv.FormatInt(id, 10)]; ok {
		return name
	}
	return ""
}

// SmartleadConfig holds Smartlead API configuration
type SmartleadConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c SmartleadConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SheetsConfig holds the Google Sheets sink configuration
type SheetsConfig struct {
	SpreadsheetURL string `yaml:"spreadsheet_url"`
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	Enabled        bool   `yaml:"enabled"`
}

// CacheConfig holds Redis result-cache configuration
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	RedisAddr  string `yaml:"redis_addr"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ArchiveConfig holds S3 report-archive configuration
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

// TasksConfig holds the task manager's Postgres configuration
type TasksConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.HeyReach.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.normalizeSenderNames()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.HeyReach.BaseURL == "" {
		cfg.HeyReach.BaseURL = "https://api.heyreach.io"
	}
	if cfg.HeyReach.TimeoutSeconds == 0 {
		cfg.HeyReach.TimeoutSeconds = 30
	}
	if cfg.Smartlead.BaseURL == "" {
		cfg.Smartlead.BaseURL = "https://server.smartlead.ai"
	}
	if cfg.Smartlead.TimeoutSeconds == 0 {
		cfg.Smartlead.TimeoutSeconds = 30
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 15
	}
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = "us-east-1"
	}
}

// normalizeSenderNames moves numeric-looking keys from RawSenderNames
// into the canonical int64-keyed map. Unparsable keys stay in the raw
// map so lookups by the original string still work.
func (cfg *Config) normalizeSenderNames() {
	if cfg.HeyReach.SenderNames == nil {
		cfg.HeyReach.SenderNames = make(map[int64]string)
	}
	for key, name := range cfg.HeyReach.RawSenderNames {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			cfg.HeyReach.SenderNames[id] = name
			delete(cfg.HeyReach.RawSenderNames, key)
		}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
// A missing config file is not an error; an all-env deployment is valid.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
		cfg.applyDefaults()
		cfg.normalizeSenderNames()
	}

	// Override with environment variables if present
	if apiKey := os.Getenv("HEYREACH_API_KEY"); apiKey != "" {
		cfg.HeyReach.APIKey = apiKey
	}
	if baseURL := os.Getenv("HEYREACH_BASE_URL"); baseURL != "" {
		cfg.HeyReach.BaseURL = baseURL
	}
	if ids := os.Getenv("HEYREACH_SENDER_IDS"); ids != "" {
		parsed, ok := parseIDList(ids)
		if ok {
			cfg.HeyReach.SenderIDs = parsed
		} else {
			logger.Warn("config: malformed HEYREACH_SENDER_IDS, ignoring", "value", ids)
		}
	}
	if names := os.Getenv("HEYREACH_SENDER_NAMES"); names != "" {
		var raw map[string]string
		if err := json.Unmarshal([]byte(names), &raw); err == nil {
			cfg.HeyReach.RawSenderNames = raw
			cfg.HeyReach.SenderNames = make(map[int64]string)
			cfg.normalizeSenderNames()
		} else {
			logger.Warn("config: malformed HEYREACH_SENDER_NAMES, ignoring", "error", err.Error())
		}
	}
	if groups := os.Getenv("HEYREACH_CLIENT_GROUPS"); groups != "" {
		parsed, ok := parseClientGroups(groups)
		if ok {
			cfg.HeyReach.ClientGroups = parsed
		} else {
			logger.Warn("config: malformed HEYREACH_CLIENT_GROUPS, ignoring")
		}
	}
	if apiKey := os.Getenv("SMARTLEAD_API_KEY"); apiKey != "" {
		cfg.Smartlead.APIKey = apiKey
		cfg.Smartlead.Enabled = true
	}
	if baseURL := os.Getenv("SMARTLEAD_BASE_URL"); baseURL != "" {
		cfg.Smartlead.BaseURL = baseURL
	}
	if url := os.Getenv("SHEETS_SPREADSHEET_URL"); url != "" {
		cfg.Sheets.SpreadsheetURL = url
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Sheets.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Sheets.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REFRESH_TOKEN"); v != "" {
		cfg.Sheets.RefreshToken = v
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
		cfg.Cache.Enabled = true
	}
	if bucket := os.Getenv("ARCHIVE_S3_BUCKET"); bucket != "" {
		cfg.Archive.S3Bucket = bucket
		cfg.Archive.Enabled = true
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Tasks.DatabaseURL = dbURL
		cfg.Tasks.Enabled = true
	}

	return cfg, nil
}

// parseIDList accepts a JSON array of numbers or numeric strings and
// returns the canonical int64 IDs. Mixed arrays appear in hand-edited
// env files, so each element is normalized independently.
func parseIDList(s string) ([]int64, bool) {
	var raw []any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, ok := normalizeID(v)
		if !ok {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func parseClientGroups(s string) (map[string][]int64, bool) {
	var raw map[string][]any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	out := make(map[string][]int64, len(raw))
	for client, vals := range raw {
		ids := make([]int64, 0, len(vals))
		for _, v := range vals {
			id, ok := normalizeID(v)
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
		out[client] = ids
	}
	return out, true
}

func normalizeID(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
