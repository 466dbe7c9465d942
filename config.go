package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"invitation/constants"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Site      SiteConfig      `mapstructure:"site"`
	Guestbook GuestbookConfig `mapstructure:"guestbook"`
	Cache     CacheConfig     `mapstructure:"cache"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// comma separated, empty allows every origin
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type SiteConfig struct {
	Timezone string `mapstructure:"timezone"`

	location *time.Location
}

// Location is the time zone display dates are rendered in.
func (s SiteConfig) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

type GuestbookConfig struct {
	PreviewLimit  int    `mapstructure:"preview_limit"`
	PageSize      int    `mapstructure:"page_size"`
	DeletePolicy  string `mapstructure:"delete_policy"`
	AdminPassword string `mapstructure:"admin_password"`
	PasswordCost  int    `mapstructure:"password_cost"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Size    int           `mapstructure:"size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type SMTPConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email"`
	// comma separated recipients of new entry and RSVP mails
	Notify string `mapstructure:"notify"`
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":6235")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", "")

	v.SetDefault("database.path", "invitation.db")

	v.SetDefault("site.timezone", constants.DEFAULT_TIMEZONE)

	v.SetDefault("guestbook.preview_limit", constants.DEFAULT_PREVIEW_LIMIT)
	v.SetDefault("guestbook.page_size", constants.DEFAULT_PAGE_SIZE)
	v.SetDefault("guestbook.delete_policy", constants.DELETE_POLICY_PASSWORD)
	v.SetDefault("guestbook.admin_password", "")
	v.SetDefault("guestbook.password_cost", bcrypt.DefaultCost)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 128)
	v.SetDefault("cache.ttl", time.Minute)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from_email", "")
	v.SetDefault("smtp.notify", "")
}

// LoadConfig reads config.yaml (or the file at path) and INVITATION_*
// environment variables on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setConfigDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INVITATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Guestbook.DeletePolicy {
	case constants.DELETE_POLICY_PASSWORD:
	case constants.DELETE_POLICY_ADMIN:
		if c.Guestbook.AdminPassword == "" {
			return errors.New("guestbook.admin_password is required when guestbook.delete_policy is admin")
		}
	default:
		return fmt.Errorf("unknown guestbook.delete_policy %q", c.Guestbook.DeletePolicy)
	}

	if c.Guestbook.PreviewLimit <= 0 {
		c.Guestbook.PreviewLimit = constants.DEFAULT_PREVIEW_LIMIT
	}
	if c.Guestbook.PageSize <= 0 {
		c.Guestbook.PageSize = constants.DEFAULT_PAGE_SIZE
	}
	if c.Guestbook.PasswordCost < bcrypt.MinCost || c.Guestbook.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("guestbook.password_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return fmt.Errorf("loading site.timezone: %w", err)
	}
	c.Site.location = loc

	if c.SMTP.Enabled && (c.SMTP.FromEmail == "" || c.SMTP.Notify == "") {
		return errors.New("smtp.from_email and smtp.notify are required when smtp.enabled is set")
	}
	return nil
}
