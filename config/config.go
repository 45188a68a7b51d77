package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultPort          = "5000"
	DefaultListenAddr    = "0.0.0.0:" + DefaultPort
	DefaultOwnerAddress  = "febon.s.daniel01@gmail.com"
	DefaultSubjectPrefix = "Portfolio Contact: "
	DefaultSignature     = "Envoyé depuis le portfolio de FEBON Sitou Daniel"
)

type MetaConfig struct {
	Version         string `json:"-"`
	ListenAddr      string `json:"listen"`
	SiteName        string `json:"sitename"`
	SiteURL         string `json:"siteurl"`
	DevelopmentMode bool   `json:"devmode"`
	PathPublic      string `json:"publicdir"`
}

type Config struct {
	Meta           MetaConfig     `json:"Meta,omitempty"`
	Keys           KeyConfig      `json:"Keys,omitempty"`
	Sec            SecurityConfig `json:"Security,omitempty"`
	Contact        ContactConfig  `json:"Contact,omitempty"`
	ConfigFilePath string         `json:"-"` // empty if stdin or no file
}

type KeyConfig struct {
	SendgridAPIKey string `json:"SendgridAPIKey"`
	SendgridHost   string `json:"SendgridHost"` // empty for https://api.sendgrid.com
}

type SecurityConfig struct {
	CSRF       bool      `json:"csrf"`
	CSRFKey    string    `json:"csrf-key"`
	CookieName string    `json:"cookie-name"`
	CSP        CSPConfig `json:"csp"`
}

// CSPConfig holds Content-Security-Policy source lists. No header is sent
// unless DefaultSrc is set.
type CSPConfig struct {
	DefaultSrc []string `json:"default-src"`
	ScriptSrc  []string `json:"script-src"`
	StyleSrc   []string `json:"style-src"`
	ImgSrc     []string `json:"img-src"`
	FontSrc    []string `json:"font-src"`
	ConnectSrc []string `json:"connect-src"`
}

// ContactConfig holds the fixed parts of every forwarded contact email.
type ContactConfig struct {
	To            string `json:"to"`
	From          string `json:"from"` // defaults to To
	FromName      string `json:"from-name"`
	SubjectPrefix string `json:"subject-prefix"`
	Signature     string `json:"signature"`
}

// EmailConfigured reports whether a provider credential is present.
func (c Config) EmailConfigured() bool {
	return c.Keys.SendgridAPIKey != ""
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Keys.SendgridAPIKey != "" {
		c.Keys.SendgridAPIKey = "REDACTED"
	}
	if c.Sec.CSRFKey != "" {
		c.Sec.CSRFKey = "REDACTED"
	}
	return c
}

// Load reads a JSON config from path. "-" reads stdin, "" returns an empty
// config so that defaults and environment alone drive the daemon.
func Load(path string, stdin io.Reader) (*Config, error) {
	var config = new(Config)
	switch path {
	case "":
		return config, nil
	case "-":
		if err := json.NewDecoder(stdin).Decode(config); err != nil {
			return nil, fmt.Errorf("error decoding json config: %w", err)
		}
		return config, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(config); err != nil {
		return nil, fmt.Errorf("error decoding json config: %w", err)
	}
	config.ConfigFilePath = path
	return config, nil
}

// Check fills defaults, applies $PORT, $SENDGRID_API_KEY and $SITEURL
// overrides, and validates what is left.
func Check(config *Config) error {
	return check(config, os.Getenv)
}

func check(config *Config, getenv func(string) string) error {
	if config.Meta.Version == "" {
		config.Meta.Version = "portfolio"
	}
	if config.Meta.ListenAddr == "" {
		config.Meta.ListenAddr = DefaultListenAddr
	}
	if config.Meta.PathPublic == "" {
		config.Meta.PathPublic = "."
	}
	if config.Contact.To == "" {
		config.Contact.To = DefaultOwnerAddress
	}
	if config.Contact.From == "" {
		config.Contact.From = config.Contact.To
	}
	if config.Contact.SubjectPrefix == "" {
		config.Contact.SubjectPrefix = DefaultSubjectPrefix
	}
	if config.Contact.Signature == "" {
		config.Contact.Signature = DefaultSignature
	}
	if config.Sec.CookieName == "" {
		config.Sec.CookieName = "portfolio"
	}

	// override if $PORT, $SENDGRID_API_KEY or $SITEURL are used (heroku, etc)
	if port := getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
			return fmt.Errorf("bad $PORT %q", port)
		}
		config.Meta.ListenAddr = net.JoinHostPort("0.0.0.0", port)
	}
	if key := getenv("SENDGRID_API_KEY"); key != "" {
		config.Keys.SendgridAPIKey = key
	}
	if siteurl := getenv("SITEURL"); siteurl != "" {
		config.Meta.SiteURL = siteurl
	}

	if _, _, err := net.SplitHostPort(config.Meta.ListenAddr); err != nil {
		return fmt.Errorf("bad listen address %q: %w", config.Meta.ListenAddr, err)
	}

	dir := config.Meta.PathPublic
	if !filepath.IsAbs(dir) {
		base, err := os.Getwd()
		if err != nil {
			return err
		}
		if config.ConfigFilePath != "" {
			base, err = filepath.Abs(filepath.Dir(config.ConfigFilePath))
			if err != nil {
				return err
			}
		}
		dir = filepath.Join(base, dir)
	}
	if s, err := os.Stat(dir); err != nil {
		return fmt.Errorf("public dir: %w", err)
	} else if !s.IsDir() {
		return fmt.Errorf("is not a dir: %v", dir)
	}
	config.Meta.PathPublic = dir

	return nil
}
