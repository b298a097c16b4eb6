package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const configFileName = "config.yaml"

type Config struct {
	// ConfigDir holds config.yaml and, unless Dir is set, the data dir.
	ConfigDir string `yaml:"-" env:"TODO_CONFIG_DIR"`
	Dir       string `yaml:"dir" env:"TODO_DIR"`

	Storage      string `yaml:"storage" env:"TODO_STORAGE" env-default:"sqlite"`
	StorageQuota int64  `yaml:"storageQuota" env:"TODO_STORAGE_QUOTA" env-default:"0"`

	Format string `yaml:"format" env:"TODO_FORMAT" env-default:"json"`

	LogLevel string `yaml:"logLevel" env:"TODO_LOG_LEVEL" env-default:"warn"`
	LogFile  string `yaml:"logFile" env:"TODO_LOG_FILE"`

	TUI TUIConfig `yaml:"tui"`
	Web WebConfig `yaml:"web"`
}

type TUIConfig struct {
	// Theme forces the terminal palette: light|dark|auto.
	Theme  string `yaml:"theme" env:"TODO_TUI_THEME"`
	Glyphs string `yaml:"glyphs" env:"TODO_TUI_GLYPHS" env-default:"unicode"`
}

type WebConfig struct {
	Addr    string `yaml:"addr" env:"TODO_WEB_ADDR" env-default:"127.0.0.1:3335"`
	TUIAddr string `yaml:"tuiAddr" env:"TODO_WEBTUI_ADDR" env-default:"127.0.0.1:3334"`
}

type Reader interface {
	Read() (*Config, error)
}

// EnvReader reads <configDir>/config.yaml when present and lets environment
// variables override it.
type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, configFileName)
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else if errors.Is(statErr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = statErr
	}
	if err != nil {
		return nil, err
	}

	cfg.ConfigDir = dir
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = filepath.Join(dir, "data")
	}
	return cfg, nil
}

// ConfigDir is $TODO_CONFIG_DIR, or ~/.todo.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.todo).
	if v := strings.TrimSpace(os.Getenv("TODO_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".todo"), nil
}

// Description renders the supported variables, for `todo --help`.
func Description() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
