// Package config loads solea-events settings from solea.yaml, SOLEA_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	HTTP     HTTPConfig
	Enrich   EnrichConfig
	Log      LogConfig
	Timezone string `validate:"required"`
}

type ServerConfig struct {
	Port int `validate:"min=1,max=65535"`
}

// SiteConfig locates the pages that get scraped.
type SiteConfig struct {
	BaseURL     string `validate:"required,url"`
	CoursesPath string `validate:"required,startswith=/"`
	EventsPath  string `validate:"required,startswith=/"`
	UserAgent   string `validate:"required"`
}

type HTTPConfig struct {
	ConnectTimeout time.Duration `validate:"gt=0"`
	ReadTimeout    time.Duration `validate:"gt=0"`
}

// EnrichConfig bounds detail-page enrichment.
type EnrichConfig struct {
	PageLimit int     `validate:"min=0,max=20"`
	Rate      float64 `validate:"gte=0"` // pages per second, 0 = unpaced
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=json console"`
}

// Default values.
const (
	DefaultPort        = 10000
	DefaultBaseURL     = "https://isbitelecom.com"
	DefaultCoursesPath = "/prix-cours"
	DefaultEventsPath  = "/evenements"
	DefaultUserAgent   = "Mozilla/5.0"
	DefaultTimezone    = "Europe/Paris"
)

// New returns a viper instance with defaults, the config search path and the
// environment bindings installed. Callers may bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("solea")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/solea/")

	v.SetEnvPrefix("SOLEA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// hosting platforms inject a bare PORT
	_ = v.BindEnv("server.port", "SOLEA_SERVER_PORT", "PORT")

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("site.base_url", DefaultBaseURL)
	v.SetDefault("site.courses_path", DefaultCoursesPath)
	v.SetDefault("site.events_path", DefaultEventsPath)
	v.SetDefault("site.user_agent", DefaultUserAgent)
	v.SetDefault("http.connect_timeout", "5s")
	v.SetDefault("http.read_timeout", "20s")
	v.SetDefault("enrich.page_limit", 4)
	v.SetDefault("enrich.rate", 2.0)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the config file (explicit path when file is set, the search path
// otherwise), overlays the environment and validates the result. A missing
// file on the search path is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Site.BaseURL = strings.TrimRight(v.GetString("site.base_url"), "/")
	cfg.Site.CoursesPath = v.GetString("site.courses_path")
	cfg.Site.EventsPath = v.GetString("site.events_path")
	cfg.Site.UserAgent = v.GetString("site.user_agent")
	cfg.HTTP.ConnectTimeout = v.GetDuration("http.connect_timeout")
	cfg.HTTP.ReadTimeout = v.GetDuration("http.read_timeout")
	cfg.Enrich.PageLimit = v.GetInt("enrich.page_limit")
	cfg.Enrich.Rate = v.GetFloat64("enrich.rate")
	cfg.Timezone = v.GetString("timezone")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the timezone exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the reference time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CoursesURL is the absolute URL of the course/tariff page.
func (c *Config) CoursesURL() string {
	return c.Site.BaseURL + c.Site.CoursesPath
}

// EventsURL is the absolute URL of the events listing.
func (c *Config) EventsURL() string {
	return c.Site.BaseURL + c.Site.EventsPath
}

// Host returns the host of the configured site, for log fields.
func (c *Config) Host() string {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}
