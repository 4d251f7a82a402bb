package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	defaultConfigName       = ".graphcal.toml"
	defaultDatabaseName     = ".graphcal.db"
	defaultTenant           = "common"
	defaultAccount          = "default"
	defaultBusinessTimeZone = "America/Sao_Paulo"
	defaultListenAddr       = "127.0.0.1:3000"
	defaultHTTPTimeout      = 30 * time.Second
	defaultAuthorityURL     = "https://login.microsoftonline.com"
)

var defaultScopes = []string{"User.Read", "Calendars.ReadWrite", "offline_access"}

type Config struct {
	ClientID         string        `toml:"client_id"`
	ClientSecret     string        `toml:"client_secret"`
	Tenant           string        `toml:"tenant"`
	AuthorityURL     string        `toml:"authority_url"`
	Scopes           []string      `toml:"scopes"`
	Account          string        `toml:"account"`
	BusinessTimeZone string        `toml:"business_timezone"`
	GraphBaseURL     string        `toml:"graph_base_url"`
	Database         string        `toml:"database"`
	ListenAddr       string        `toml:"listen_addr"`
	HTTPTimeout      time.Duration `toml:"http_timeout"`
	VerbosityLevel   int           `toml:"verbosity_level"`

	location *time.Location
}

var configDir string

func readConfig(filename string) (*Config, error) {
	// Try first current dir, then `$HOME/.config/graphcal/`
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		dir := filepath.Join(os.Getenv("HOME"), ".config", "graphcal")
		data, err = os.ReadFile(filepath.Join(dir, filepath.Base(filename)))
		if err == nil {
			configDir = dir
		}
	}
	if err != nil {
		return nil, err
	}

	return parseConfig(data)
}

// loadConfig is readConfig with a last try in `$HOME`. Only a missing file
// moves on to the next location; a file that fails to parse or validate is
// reported as is.
func loadConfig(filename string) (*Config, error) {
	config, err := readConfig(filename)
	if errors.Is(err, fs.ErrNotExist) && !filepath.IsAbs(filename) {
		return readConfig(filepath.Join(os.Getenv("HOME"), filename))
	}
	return config, err
}

func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	verbosityLevel = config.VerbosityLevel

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Tenant == "" {
		c.Tenant = defaultTenant
	}
	if c.AuthorityURL == "" {
		c.AuthorityURL = defaultAuthorityURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = append([]string(nil), defaultScopes...)
	}
	if c.Account == "" {
		c.Account = defaultAccount
	}
	if c.BusinessTimeZone == "" {
		c.BusinessTimeZone = defaultBusinessTimeZone
	}
	if c.GraphBaseURL == "" {
		c.GraphBaseURL = defaultGraphBaseURL
	}
	c.GraphBaseURL = strings.TrimRight(c.GraphBaseURL, "/")
	if c.Database == "" {
		c.Database = defaultDatabaseName
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return errors.New("client_id is required")
	}

	loc, err := time.LoadLocation(c.BusinessTimeZone)
	if err != nil {
		return fmt.Errorf("invalid business_timezone %q: %w", c.BusinessTimeZone, err)
	}
	c.location = loc

	return nil
}

// Location is the business timezone every event time is normalised into.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func newOAuthConfig(config *Config) *oauth2.Config {
	endpoint := microsoft.AzureADEndpoint(config.Tenant)
	if strings.TrimRight(config.AuthorityURL, "/") != defaultAuthorityURL {
		base := strings.TrimRight(config.AuthorityURL, "/") + "/" + config.Tenant + "/oauth2/v2.0"
		endpoint = oauth2.Endpoint{
			AuthURL:  base + "/authorize",
			TokenURL: base + "/token",
		}
	}
	if endpoint.DeviceAuthURL == "" {
		endpoint.DeviceAuthURL = strings.TrimSuffix(endpoint.TokenURL, "/token") + "/devicecode"
	}

	return &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       config.Scopes,
	}
}

func openDB(filename string) (*sql.DB, error) {
	// Try first the same dir, where the config file was found
	path := filename
	if configDir != "" && !filepath.IsAbs(filename) {
		path = filepath.Join(configDir, filename)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var verbosityLevel = 1

func printVerbosely(verbosity int, format string, a ...interface{}) {
	// 0 - no output, other than critical errors
	// 1 - results of the requested command
	// 2 - progress of each remote call
	// 3 - token acquisition details
	if verbosity <= verbosityLevel {
		fmt.Printf(format, a...)
	}
}
