package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/prefork"
	"gopkg.in/yaml.v3"
)

// app struct config
type app = struct {
	Name        string        `yaml:"name"`
	Port        string        `yaml:"port"`
	PrintRoutes bool          `yaml:"print-routes"`
	Prefork     bool          `yaml:"prefork"`
	Production  bool          `yaml:"production"`
	IdleTimeout time.Duration `yaml:"idle-timeout"`
	TLS         struct {
		Enable   bool   `yaml:"enable"`
		CertFile string `yaml:"cert-file"`
		KeyFile  string `yaml:"key-file"`
	}
}

// db struct config
type db = struct {
	Gorm struct {
		DisableForeignKeyConstraintWhenMigrating bool `yaml:"disable-foreign-key-constraint-when-migrating"`
	}
	Postgres struct {
		DSN string `yaml:"dsn"`
	}
}

// log struct config
type logger = struct {
	TimeFormat string        `yaml:"time-format"`
	Level      zerolog.Level `yaml:"level"`
	Prettier   bool          `yaml:"prettier"`
}

// Chain is one monitored network.
type Chain = struct {
	ChainID   int    `yaml:"id" koanf:"id"`
	ChainCode string `yaml:"code" koanf:"code"`
}

type Config struct {
	App    app
	DB     db
	Logger logger
	Chains []Chain `yaml:"networks" koanf:"networks"`
}

// func to parse config
func ParseConfig(file []byte) (*Config, error) {
	var (
		contents *Config
		err      error
	)
	err = yaml.Unmarshal(file, &contents)

	return contents, err
}

func ReadAndParseConfig(filename string, debug ...bool) (*Config, error) {
	var (
		file []byte
		err  error
	)

	if len(debug) > 0 {
		file, err = os.ReadFile(filename)
	} else {
		_, b, _, _ := runtime.Caller(0)
		// get base path
		path := filepath.Dir(filepath.Dir(filepath.Dir(b)))
		file, err = os.ReadFile(filepath.Join(path, "./config/", filename))
	}

	if err != nil {
		return &Config{}, err
	}

	return ParseConfig(file)
}

// initialize config
func NewConfig() *Config {
	var filename string = "default.yaml"
	config, err := ReadAndParseConfig(filename)
	if err != nil && !prefork.IsChild() {
		// panic if config is not found
		log.Panic().Err(err).Msg("'" + filename + "' not found")
	}

	return config
}

// func to parse address
func ParseAddress(raw string) (hostname, port string) {
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		return raw[:i], raw[i+1:]
	}

	return raw, ""
}
