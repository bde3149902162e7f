package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// maxWalkDepth bounds how many parent directories config discovery visits.
const maxWalkDepth = 25

// configFileNames are tried in order in each directory.
var configFileNames = []string{"reltag.yaml", "reltag.yml"}

// Config represents the reltag configuration from reltag.yaml.
type Config struct {
	// Schemas lists the namespaces to introspect.
	Schemas []string `mapstructure:"schemas" json:"schemas"`
	// Snapshot is a YAML snapshot file read instead of the database.
	Snapshot string `mapstructure:"snapshot" json:"snapshot,omitempty"`
	// Aliases selects the SQL alias allocator: sequence or uuid.
	Aliases string `mapstructure:"aliases" json:"aliases"`

	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Log      LogConfig      `mapstructure:"log" json:"log"`

	// Per-command configuration
	Build  BuildConfig  `mapstructure:"build" json:"build"`
	Doctor DoctorConfig `mapstructure:"doctor" json:"doctor"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url" json:"url,omitempty"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" json:"port"`
	Name     string `mapstructure:"name" json:"name,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
}

// BuildConfig holds schema build settings.
type BuildConfig struct {
	// Concurrency caps parallel type builds. Zero means no cap.
	Concurrency int `mapstructure:"concurrency" json:"concurrency"`
}

// DoctorConfig holds doctor command settings.
type DoctorConfig struct {
	Verbose bool `mapstructure:"verbose" json:"verbose"`
}

// LoadConfig reads configuration. Precedence, highest first: flags (applied
// by the caller), RELTAG_* environment variables, the config file, defaults.
//
// explicitPath names the config file; when empty the nearest reltag.yaml or
// reltag.yml is used. The path actually read is returned, or "" when none
// was found.
func LoadConfig(explicitPath string) (*Config, string, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// database.host is read from RELTAG_DATABASE_HOST.
	v.SetEnvPrefix("RELTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, path, nil
}

// defaults registers every key, which AutomaticEnv needs to see nested keys
// during Unmarshal.
var defaults = map[string]any{
	"schemas":  []string{"public"},
	"snapshot": "",
	"aliases":  "sequence",

	"database.url":      "",
	"database.host":     "",
	"database.port":     5432,
	"database.name":     "",
	"database.user":     "",
	"database.password": "",
	"database.sslmode":  "prefer",

	"log.level":         "info",
	"build.concurrency": 0,
	"doctor.verbose":    false,
}

// findConfigFile returns explicitPath after checking it exists. Otherwise it
// searches the working directory and its parents, stopping after the
// directory holding .git or after maxWalkDepth levels, and returns "" when
// nothing is found.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	for range maxWalkDepth {
		for _, name := range configFileNames {
			if path := filepath.Join(dir, name); exists(path) {
				return path, nil
			}
		}
		if exists(filepath.Join(dir, ".git")) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
	return "", nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DSN returns database.url when set, and otherwise a postgres:// URL built
// from host, port, name, user, password and sslmode.
func (c *Config) DSN() (string, error) {
	db := c.Database
	if db.URL != "" {
		return db.URL, nil
	}

	for _, req := range []struct{ key, value string }{
		{"database.host", db.Host},
		{"database.name", db.Name},
		{"database.user", db.User},
	} {
		if req.value == "" {
			return "", fmt.Errorf("%s is required when database.url is not set", req.key)
		}
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String(), nil
}

// UsesSnapshot reports whether the catalog comes from a snapshot file rather
// than the database.
func (c *Config) UsesSnapshot() bool {
	return c.Snapshot != ""
}

// Redacted returns a copy safe to print: the password and any password in
// database.url are masked.
func (c *Config) Redacted() Config {
	out := *c
	out.Schemas = append([]string(nil), c.Schemas...)
	if out.Database.Password != "" {
		out.Database.Password = "****"
	}
	if u, err := url.Parse(out.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			out.Database.URL = maskURLPassword(u)
		}
	}
	return out
}

// maskURLPassword renders u with its password replaced by "****". The mask is
// spliced in after encoding since url.UserPassword would escape it.
func maskURLPassword(u *url.URL) string {
	masked := *u
	masked.User = url.User(u.User.Username())
	s := masked.String()
	prefix := masked.Scheme + "://" + masked.User.String()
	if !strings.HasPrefix(s, prefix) {
		return masked.Redacted()
	}
	return prefix + ":****" + s[len(prefix):]
}
