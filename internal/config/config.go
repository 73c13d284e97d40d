package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/chatter-dev/chatter/internal/logger"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port          int    `yaml:"port"`
	CorsOrigin    string `yaml:"cors_origin"`
	SecureCookies bool   `yaml:"secure_cookies"`
	LogLevel      string `yaml:"log_level"`
	LogJSON       bool   `yaml:"log_json"`

	JwtTTL time.Duration `yaml:"jwt_ttl"`

	// Message timeline settings
	PageSize                int    `yaml:"page_size"`                 // messages per fetched page
	CompactThresholdMinutes int    `yaml:"compact_threshold_minutes"` // same-author messages closer than this render compact
	GroupingTimezone        string `yaml:"grouping_timezone"`         // IANA name or "Local"; calendar used for day grouping

	// Upload settings
	MediaRoot         string   `yaml:"media_root"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedImageMimes []string `yaml:"allowed_image_mimes"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// CompactThreshold returns the configured compaction window, defaulting to
// 5 minutes when unset.
func (p *Public) CompactThreshold() time.Duration {
	if p.CompactThresholdMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.CompactThresholdMinutes) * time.Minute
}

// GroupingLocation resolves the calendar used for day grouping. An empty or
// invalid timezone falls back to the server's local calendar.
func (p *Public) GroupingLocation() *time.Location {
	if p.GroupingTimezone == "" || p.GroupingTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.GroupingTimezone)
	if err != nil {
		logger.Log.Warn("invalid grouping timezone, using local", "timezone", p.GroupingTimezone)
		return time.Local
	}
	return loc
}

func (p *Public) MessagesPerPage() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
