package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultAdminKey is the fallback administrator secret. It is public knowledge and
// must be overridden through ADMIN_KEY in any real deployment.
const DefaultAdminKey = "COREAUTH_ADMIN_2024"

// Config is built once at startup and passed to the components that need it.
type Config struct {
	Port     int            `yaml:"port" envconfig:"PORT" default:"5000"`
	AdminKey string         `yaml:"admin_key" envconfig:"ADMIN_KEY" default:"COREAUTH_ADMIN_2024"`
	Database DatabaseConfig `yaml:"database" envconfig:"DB"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	Auth     AuthConfig     `yaml:"auth" envconfig:"AUTH"`
	CORS     CORSConfig     `yaml:"cors" envconfig:"CORS"`
	Sheets   SheetsConfig   `yaml:"sheets" envconfig:"SHEETS"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER" default:"sqlite"`
	DSN    string `yaml:"dsn" envconfig:"DSN" default:"data/coreauth.db"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

type AuthConfig struct {
	CredentialScheme string        `yaml:"credential_scheme" envconfig:"CREDENTIAL_SCHEME" default:"bcrypt"`
	BcryptCost       int           `yaml:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"10"`
	EnforceExpiry    bool          `yaml:"enforce_expiry" envconfig:"ENFORCE_EXPIRY" default:"false"`
	TokenSecret      string        `yaml:"token_secret" envconfig:"TOKEN_SECRET"`
	TokenTTL         time.Duration `yaml:"token_ttl" envconfig:"TOKEN_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins" envconfig:"ALLOW_ORIGINS" default:"*"`
}

type SheetsConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName       string `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"Licenses"`
}

// Load reads an optional .env file, then the optional YAML file at path, and finally
// the process environment. Environment values win over file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := process(&cfg); err != nil {
		return nil, err
	}

	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = cfg.AdminKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// process overlays the environment on cfg. envconfig writes defaults into every
// field whose variable is unset, so it runs on a scratch copy and only explicitly
// set variables, or fields the file left empty, are carried over.
func process(cfg *Config) error {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	merge(cfg, &env)
	return nil
}

func merge(dst, env *Config) {
	pickInt(&dst.Port, env.Port, "PORT")
	pickString(&dst.AdminKey, env.AdminKey, "ADMIN_KEY")
	pickString(&dst.Database.Driver, env.Database.Driver, "DB_DRIVER")
	pickString(&dst.Database.DSN, env.Database.DSN, "DB_DSN")
	pickString(&dst.Log.Level, env.Log.Level, "LOG_LEVEL")
	pickString(&dst.Log.Format, env.Log.Format, "LOG_FORMAT")
	pickString(&dst.Auth.CredentialScheme, env.Auth.CredentialScheme, "AUTH_CREDENTIAL_SCHEME")
	pickInt(&dst.Auth.BcryptCost, env.Auth.BcryptCost, "AUTH_BCRYPT_COST")
	pickBool(&dst.Auth.EnforceExpiry, env.Auth.EnforceExpiry, "AUTH_ENFORCE_EXPIRY")
	pickString(&dst.Auth.TokenSecret, env.Auth.TokenSecret, "AUTH_TOKEN_SECRET")
	if _, set := os.LookupEnv("AUTH_TOKEN_TTL"); set || dst.Auth.TokenTTL == 0 {
		dst.Auth.TokenTTL = env.Auth.TokenTTL
	}
	pickString(&dst.CORS.AllowOrigins, env.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
	pickBool(&dst.Sheets.Enabled, env.Sheets.Enabled, "SHEETS_ENABLED")
	pickString(&dst.Sheets.CredentialsFile, env.Sheets.CredentialsFile, "SHEETS_CREDENTIALS_FILE")
	pickString(&dst.Sheets.SpreadsheetID, env.Sheets.SpreadsheetID, "SHEETS_SPREADSHEET_ID")
	pickString(&dst.Sheets.SheetName, env.Sheets.SheetName, "SHEETS_SHEET_NAME")
}

func pickString(dst *string, env, name string) {
	if _, set := os.LookupEnv(name); set || *dst == "" {
		*dst = env
	}
}

func pickInt(dst *int, env int, name string) {
	if _, set := os.LookupEnv(name); set || *dst == 0 {
		*dst = env
	}
}

func pickBool(dst *bool, env bool, name string) {
	if _, set := os.LookupEnv(name); set {
		*dst = env
	}
}

// Validate checks the values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AdminKey == "" {
		return errors.New("admin key must not be empty")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl: %s", c.Auth.TokenTTL)
	}
	if c.Sheets.Enabled && (c.Sheets.CredentialsFile == "" || c.Sheets.SpreadsheetID == "") {
		return errors.New("sheets sync requires credentials file and spreadsheet id")
	}
	return nil
}

// InsecureAdminKey reports whether the fallback administrator secret is in use.
func (c *Config) InsecureAdminKey() bool {
	return c.AdminKey == DefaultAdminKey
}
