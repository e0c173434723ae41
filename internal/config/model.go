// internal/config/model.go
//
// Typed configuration model for Formguard.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `FORMGUARD_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the secret source *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"fmt"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.  Zero timeouts take the defaults.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
	ForceHTTPS   bool          `koanf:"force_https"`
}

//
// Forms section
//

// Forms lists extra definition directories.  Definitions found there
// replace the built-in samples that share their ID.  LayoutDir, when set,
// holds a page.html that replaces the built-in page shell.
type Forms struct {
	Dirs         []string `koanf:"dirs"`
	SkipEmbedded bool     `koanf:"skip_embedded"`
	LayoutDir    string   `koanf:"layout_dir"` // Optional page.html override.
}

//
// Database section
//

// Database is optional.  Without a DSN the store action reports an error
// and accepted submissions are only logged.
//
// The DSN may carry one %s verb for the password, so the template lives in
// YAML and the secret in Vault.
type Database struct {
	DSN      string `koanf:"dsn"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

// ResolvedDSN returns DSN with the password spliced in.
func (d Database) ResolvedDSN() string {
	if strings.Contains(d.DSN, "%s") {
		return fmt.Sprintf(d.DSN, d.Password)
	}
	return d.DSN
}

//
// Security section
//

// Security holds the CSRF signing key.  A key under 32 bytes means a random
// per-process key.
type Security struct {
	CSRFKey    string        `koanf:"csrf_key"`
	CSRFMaxAge time.Duration `koanf:"csrf_max_age" validate:"gte=0"`
}

//
// Webhook section
//

// Webhook sizes the outbound delivery pool.
type Webhook struct {
	Workers  int           `koanf:"workers"  validate:"gte=0,lte=64"`
	Capacity int           `koanf:"capacity" validate:"gte=0"`
	Timeout  time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Log section
//

// Log places the JSON log files.
type Log struct {
	Dir   string `koanf:"dir"`
	Tee   bool   `koanf:"tee"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // FORMGUARD_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Forms    Forms    `koanf:"forms"`
	Database Database `koanf:"database"`
	Security Security `koanf:"security"`
	Webhook  Webhook  `koanf:"webhook"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

func (c *Config) applyDefaults() {
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Webhook.Workers == 0 {
		c.Webhook.Workers = 4
	}
	if c.Webhook.Capacity == 0 {
		c.Webhook.Capacity = 256
	}
	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
