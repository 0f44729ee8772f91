// Package config loads tm-roles settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/tm-roles/internal/assign"
	"github.com/pfrederiksen/tm-roles/internal/logger"
	"github.com/pfrederiksen/tm-roles/internal/scraper"
	"github.com/pfrederiksen/tm-roles/internal/secret"
)

const (
	DefaultDataDir = "~/.tm-roles"
	DefaultAddr    = ":8080"
)

// Config is the full application configuration
type Config struct {
	Club     ClubConfig     `yaml:"club"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Assign   AssignConfig   `yaml:"assign"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`

	// SecretKey decrypts "enc:" values. It is only read from the environment.
	SecretKey string `yaml:"-"`
}

// ClubConfig describes the club site and its login
type ClubConfig struct {
	Name       string        `yaml:"name"`
	SiteURL    string        `yaml:"site_url"`
	AgendaURL  string        `yaml:"agenda_url"`
	ClubNumber string        `yaml:"club_number"`
	Password   string        `yaml:"password"`
	Headless   bool          `yaml:"headless"`
	BrowserBin string        `yaml:"browser_bin"`
	Timeout    time.Duration `yaml:"timeout"`
	Settle     time.Duration `yaml:"settle"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AssignConfig tunes the assignment engine. Seed fixes the shuffle when set.
type AssignConfig struct {
	SkipRoles   []string `yaml:"skip_roles"`
	ThemePrefix string   `yaml:"theme_prefix"`
	Seed        *uint64  `yaml:"seed"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	sc := scraper.DefaultConfig()
	ac := assign.DefaultConfig()
	return &Config{
		Club: ClubConfig{
			SiteURL:   sc.SiteURL,
			AgendaURL: sc.AgendaURL,
			Headless:  sc.Headless,
			Timeout:   sc.Timeout,
			Settle:    sc.Settle,
		},
		Storage: StorageConfig{DataDir: DefaultDataDir},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Assign: AssignConfig{
			SkipRoles:   ac.SkipRoles,
			ThemePrefix: ac.ThemePrefix,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CLUB_NUMBER"); v != "" {
		c.Club.ClubNumber = v
	}
	if v := os.Getenv("PASSWORD"); v != "" {
		c.Club.Password = v
	}
	if v := os.Getenv("TM_ROLES_SECRET_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("TM_ROLES_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
}

// Scraper returns the browser session config with the password decrypted
func (c *Config) Scraper() (scraper.Config, error) {
	password, err := secret.Decrypt(c.SecretKey, c.Club.Password)
	if err != nil {
		return scraper.Config{}, fmt.Errorf("decrypting club password: %w", err)
	}

	return scraper.Config{
		SiteURL:    c.Club.SiteURL,
		AgendaURL:  c.Club.AgendaURL,
		ClubNumber: c.Club.ClubNumber,
		Password:   password,
		Headless:   c.Club.Headless,
		BrowserBin: c.Club.BrowserBin,
		Timeout:    c.Club.Timeout,
		Settle:     c.Club.Settle,
	}, nil
}

// TelegramToken returns the bot token, decrypting it if needed
func (c *Config) TelegramToken() (string, error) {
	token, err := secret.Decrypt(c.SecretKey, c.Telegram.BotToken)
	if err != nil {
		return "", fmt.Errorf("decrypting telegram token: %w", err)
	}
	return token, nil
}

// Engine builds an assignment engine from the assign section
func (c *Config) Engine() *assign.Engine {
	var opts []assign.Option
	if c.Assign.Seed != nil {
		opts = append(opts, assign.WithSeed(*c.Assign.Seed))
	}
	return assign.New(assign.Config{
		SkipRoles:   c.Assign.SkipRoles,
		ThemePrefix: c.Assign.ThemePrefix,
	}, opts...)
}

// LogLevel parses the configured level, falling back to info
func (c *Config) LogLevel() logger.Level {
	lvl, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return lvl
}
