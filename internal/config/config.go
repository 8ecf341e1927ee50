package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Docs      DocsConfig
	Run       RunConfig
	Providers ProvidersConfig
	S3        S3Config
	Email     EmailConfig
	Log       LogConfig
}

// ServerConfig holds HTTP settings for the read-only results API.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the results store.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// DocsConfig holds document loading settings.
type DocsConfig struct {
	InputFolder  string `mapstructure:"input_folder"`
	OutputFolder string `mapstructure:"output_folder"`
	// StartMarker/EndMarker clip each document to the clinically relevant span,
	// case-insensitive, delimiters included.
	StartMarker string `mapstructure:"start_marker"`
	EndMarker   string `mapstructure:"end_marker"`
	// Sections is "all_sections" or a comma-separated list of section headings.
	Sections string `mapstructure:"sections"`
	// MaxCases bounds how many case subfolders are processed.
	MaxCases int `mapstructure:"max_cases"`
	// SaveContext writes the extracted segment back into each case folder
	// as context.txt for audit.
	SaveContext bool `mapstructure:"save_context"`
}

// SectionList returns the configured section headings, or nil for all sections.
func (d *DocsConfig) SectionList() []string {
	if d.Sections == "" || d.Sections == "all_sections" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(d.Sections, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RunConfig holds batch run settings.
type RunConfig struct {
	Task string `mapstructure:"task"`
	// Iterations repeats the whole batch per provider for consistency checking.
	Iterations   int    `mapstructure:"iterations"`
	StoreEnabled bool   `mapstructure:"store_enabled"`
	NotifyEmail  string `mapstructure:"notify_email"`
}

// ProviderConfig holds settings for a single LLM backend.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	// Nickname is used in output file names (e.g. "geminiflash").
	Nickname    string `mapstructure:"nickname"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	// BaseURL and ContextLength apply to the local (ollama) provider.
	BaseURL       string `mapstructure:"base_url"`
	ContextLength int    `mapstructure:"context_length"`
}

// FileNickname returns the label used in output file names: the configured
// nickname, or the vendor name when none is set.
func (p *ProviderConfig) FileNickname() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Provider
}

// ProvidersConfig holds up to four model backends compared in one batch.
type ProvidersConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
	Local     ProviderConfig `mapstructure:"local"`
}

// Configured returns the providers that have a vendor set, in fixed order.
func (p *ProvidersConfig) Configured() []*ProviderConfig {
	var out []*ProviderConfig
	for _, c := range []*ProviderConfig{&p.Primary, &p.Secondary, &p.Tertiary, &p.Local} {
		if c.Provider != "" {
			out = append(out, c)
		}
	}
	return out
}

// S3Config holds the optional S3 case-folder source. An empty bucket disables it.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// EmailConfig holds run-completion notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the CLINEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLINEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "clinex")
	v.SetDefault("db.password", "clinex_secret")
	v.SetDefault("db.name", "clinex_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Document loader defaults (marker span as in the source corpus)
	v.SetDefault("docs.input_folder", "./input_documents")
	v.SetDefault("docs.output_folder", "./output_files")
	v.SetDefault("docs.start_marker", "diagnos")
	v.SetDefault("docs.end_marker", "grüße")
	v.SetDefault("docs.sections", "all_sections")
	v.SetDefault("docs.max_cases", 211)
	v.SetDefault("docs.save_context", true)

	// Run defaults
	v.SetDefault("run.task", "preop")
	v.SetDefault("run.iterations", 1)
	v.SetDefault("run.store_enabled", false)
	v.SetDefault("run.notify_email", "")

	// Provider defaults
	for _, slot := range []string{"primary", "secondary", "tertiary", "local"} {
		v.SetDefault("providers."+slot+".provider", "")
		v.SetDefault("providers."+slot+".api_key", "")
		v.SetDefault("providers."+slot+".default_model", "")
		v.SetDefault("providers."+slot+".nickname", "")
		v.SetDefault("providers."+slot+".max_retries", 2)
		v.SetDefault("providers."+slot+".timeout_secs", 120)
	}
	v.SetDefault("providers.primary.provider", "claude")
	v.SetDefault("providers.primary.default_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("providers.local.base_url", "http://localhost:11434")
	v.SetDefault("providers.local.context_length", 32768)

	// S3 defaults (disabled unless a bucket is set)
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.endpoint", "")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@clinex.local")
	v.SetDefault("email.from_name", "CLINEX")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "CLINEX_SERVER_PORT",
		"server.read_timeout":  "CLINEX_SERVER_READ_TIMEOUT",
		"server.write_timeout": "CLINEX_SERVER_WRITE_TIMEOUT",
		"server.environment":   "CLINEX_SERVER_ENVIRONMENT",
		"db.host":              "CLINEX_DB_HOST",
		"db.port":              "CLINEX_DB_PORT",
		"db.user":              "CLINEX_DB_USER",
		"db.password":          "CLINEX_DB_PASSWORD",
		"db.name":              "CLINEX_DB_NAME",
		"db.sslmode":           "CLINEX_DB_SSLMODE",
		"db.max_open":          "CLINEX_DB_MAX_OPEN",
		"db.max_idle":          "CLINEX_DB_MAX_IDLE",
		"docs.input_folder":    "CLINEX_DOCS_INPUT_FOLDER",
		"docs.output_folder":   "CLINEX_DOCS_OUTPUT_FOLDER",
		"docs.start_marker":    "CLINEX_DOCS_START_MARKER",
		"docs.end_marker":      "CLINEX_DOCS_END_MARKER",
		"docs.sections":        "CLINEX_DOCS_SECTIONS",
		"docs.max_cases":       "CLINEX_DOCS_MAX_CASES",
		"docs.save_context":    "CLINEX_DOCS_SAVE_CONTEXT",
		"run.task":             "CLINEX_RUN_TASK",
		"run.iterations":       "CLINEX_RUN_ITERATIONS",
		"run.store_enabled":    "CLINEX_RUN_STORE_ENABLED",
		"run.notify_email":     "CLINEX_RUN_NOTIFY_EMAIL",
		"s3.region":            "CLINEX_S3_REGION",
		"s3.bucket":            "CLINEX_S3_BUCKET",
		"s3.prefix":            "CLINEX_S3_PREFIX",
		"s3.endpoint":          "CLINEX_S3_ENDPOINT",
		"s3.access_key":        "CLINEX_S3_ACCESS_KEY",
		"s3.secret_key":        "CLINEX_S3_SECRET_KEY",
		"email.provider":       "CLINEX_EMAIL_PROVIDER",
		"email.region":         "CLINEX_EMAIL_REGION",
		"email.from_address":   "CLINEX_EMAIL_FROM_ADDRESS",
		"email.from_name":      "CLINEX_EMAIL_FROM_NAME",
		"log.level":            "CLINEX_LOG_LEVEL",
		"log.format":           "CLINEX_LOG_FORMAT",
	}
	for _, slot := range []string{"primary", "secondary", "tertiary", "local"} {
		upper := strings.ToUpper(slot)
		envBindings["providers."+slot+".provider"] = "CLINEX_PROVIDERS_" + upper + "_PROVIDER"
		envBindings["providers."+slot+".api_key"] = "CLINEX_PROVIDERS_" + upper + "_API_KEY"
		envBindings["providers."+slot+".default_model"] = "CLINEX_PROVIDERS_" + upper + "_DEFAULT_MODEL"
		envBindings["providers."+slot+".nickname"] = "CLINEX_PROVIDERS_" + upper + "_NICKNAME"
		envBindings["providers."+slot+".max_retries"] = "CLINEX_PROVIDERS_" + upper + "_MAX_RETRIES"
		envBindings["providers."+slot+".timeout_secs"] = "CLINEX_PROVIDERS_" + upper + "_TIMEOUT_SECS"
		envBindings["providers."+slot+".base_url"] = "CLINEX_PROVIDERS_" + upper + "_BASE_URL"
		envBindings["providers."+slot+".context_length"] = "CLINEX_PROVIDERS_" + upper + "_CONTEXT_LENGTH"
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Docs = DocsConfig{
		InputFolder:  v.GetString("docs.input_folder"),
		OutputFolder: v.GetString("docs.output_folder"),
		StartMarker:  v.GetString("docs.start_marker"),
		EndMarker:    v.GetString("docs.end_marker"),
		Sections:     v.GetString("docs.sections"),
		MaxCases:     v.GetInt("docs.max_cases"),
		SaveContext:  v.GetBool("docs.save_context"),
	}
	cfg.Run = RunConfig{
		Task:         v.GetString("run.task"),
		Iterations:   v.GetInt("run.iterations"),
		StoreEnabled: v.GetBool("run.store_enabled"),
		NotifyEmail:  v.GetString("run.notify_email"),
	}
	providerAt := func(slot string) ProviderConfig {
		return ProviderConfig{
			Provider:      v.GetString("providers." + slot + ".provider"),
			APIKey:        v.GetString("providers." + slot + ".api_key"),
			DefaultModel:  v.GetString("providers." + slot + ".default_model"),
			Nickname:      v.GetString("providers." + slot + ".nickname"),
			MaxRetries:    v.GetInt("providers." + slot + ".max_retries"),
			TimeoutSecs:   v.GetInt("providers." + slot + ".timeout_secs"),
			BaseURL:       v.GetString("providers." + slot + ".base_url"),
			ContextLength: v.GetInt("providers." + slot + ".context_length"),
		}
	}
	cfg.Providers = ProvidersConfig{
		Primary:   providerAt("primary"),
		Secondary: providerAt("secondary"),
		Tertiary:  providerAt("tertiary"),
		Local:     providerAt("local"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Prefix:    v.GetString("s3.prefix"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
