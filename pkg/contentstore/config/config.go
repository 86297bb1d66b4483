// Package config loads service configuration from the environment and wires
// the concrete store, resolver and per-family services at process start.
// Construction is explicit and injected; there is no lazily-built global
// client.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/edupath/content-store/pkg/contentstore/publicurl"
	s3store "github.com/edupath/content-store/pkg/contentstore/storage/s3"
)

// Config is the full server configuration, populated from environment
// variables. All configuration is static; there is no dynamic discovery.
type Config struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// AdminToken is the static bearer token required by every write
	// endpoint.
	AdminToken string `env:"ADMIN_TOKEN"`

	// PublicBaseURL optionally fronts public URLs with a CDN host.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	Store      StoreConfig
	Containers ContainerConfig
}

// StoreConfig selects one of two authentication modes: a connection URL
// carrying everything inline, or discrete endpoint plus key-pair settings.
// A non-empty ConnectionURL wins.
type StoreConfig struct {
	ConnectionURL string `env:"STORE_CONNECTION_URL"`

	Endpoint        string `env:"STORE_ENDPOINT" env-default:"http://localhost:9000"`
	Region          string `env:"STORE_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"STORE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"STORE_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"STORE_USE_PATH_STYLE" env-default:"true"`

	// UseDefaultCredentials falls back to the ambient AWS credential chain
	// when no key pair is configured.
	UseDefaultCredentials bool `env:"STORE_USE_DEFAULT_CREDENTIALS" env-default:"false"`
}

// ContainerConfig names the container for each entity family.
type ContainerConfig struct {
	Colleges   string `env:"COLLEGE_CONTAINER" env-default:"college-data"`
	StudyPages string `env:"STUDY_PAGE_CONTAINER" env-default:"study-in-pages"`
	Assets     string `env:"ASSET_CONTAINER" env-default:"site-images"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if cfg.Store.ConnectionURL != "" {
		if err := applyConnectionURL(&cfg.Store); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration the server cannot run without.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.AdminToken == "" {
		return errors.New("ADMIN_TOKEN is required")
	}
	if c.Store.Endpoint == "" {
		return errors.New("store endpoint is required")
	}
	return nil
}

// applyConnectionURL parses the connection-string auth mode:
//
//	s3://ACCESS_KEY:SECRET_KEY@host:port?region=us-east-1&ssl=false&path-style=true
//
// into the discrete store settings.
func applyConnectionURL(sc *StoreConfig) error {
	u, err := url.Parse(sc.ConnectionURL)
	if err != nil {
		return fmt.Errorf("invalid STORE_CONNECTION_URL: %w", err)
	}
	if u.Scheme != "s3" {
		return fmt.Errorf("invalid STORE_CONNECTION_URL scheme %q (want s3)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("STORE_CONNECTION_URL has no host")
	}

	scheme := "https"
	q := u.Query()
	if ssl := q.Get("ssl"); ssl != "" {
		useSSL, err := strconv.ParseBool(ssl)
		if err != nil {
			return fmt.Errorf("invalid ssl value in STORE_CONNECTION_URL: %w", err)
		}
		if !useSSL {
			scheme = "http"
		}
	}
	sc.Endpoint = scheme + "://" + u.Host

	if u.User != nil {
		sc.AccessKeyID = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			sc.SecretAccessKey = pw
		}
	}
	if region := q.Get("region"); region != "" {
		sc.Region = region
	}
	if ps := q.Get("path-style"); ps != "" {
		usePathStyle, err := strconv.ParseBool(ps)
		if err != nil {
			return fmt.Errorf("invalid path-style value in STORE_CONNECTION_URL: %w", err)
		}
		sc.UsePathStyle = usePathStyle
	}
	return nil
}

// BuildStore constructs the S3 store client from the configuration.
func (c *Config) BuildStore() (*s3store.Store, error) {
	return s3store.New(s3store.Config{
		Region:                    c.Store.Region,
		AccessKeyID:               c.Store.AccessKeyID,
		SecretAccessKey:           c.Store.SecretAccessKey,
		Endpoint:                  c.Store.Endpoint,
		UsePathStyle:              c.Store.UsePathStyle,
		UseDefaultCredentialChain: c.Store.UseDefaultCredentials,
	})
}

// BuildResolver constructs the public URL resolver: path-style URLs on the
// store endpoint, optionally fronted by a CDN host.
func (c *Config) BuildResolver() (publicurl.Resolver, error) {
	origin, err := publicurl.NewEndpointResolver(strings.TrimRight(c.Store.Endpoint, "/"))
	if err != nil {
		return nil, err
	}
	if c.PublicBaseURL == "" {
		return origin, nil
	}
	return publicurl.NewCDNResolver(c.PublicBaseURL, origin)
}
