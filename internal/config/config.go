package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultAddress          = ":4001"
	DefaultJWTTTL           = 24 * time.Hour
	DefaultUploadDir        = "./uploads"
	DefaultUploadBaseURL    = "/uploads"
	DefaultRebuildSchedule  = "@every 10m"
	DefaultLeaderboardSize  = 100
	DefaultUploadLimit      = 10 << 20
	DefaultLockExpiry       = 10 * time.Second
	DefaultOnePayBaseURL    = "https://bcel.la:8083/onepay"
	DefaultOnePayTimeout    = 15 * time.Second
)

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	JWT struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`
	Storage struct {
		Driver  string `yaml:"driver"`
		Dir     string `yaml:"dir"`
		BaseURL string `yaml:"base_url"`
		S3      struct {
			Endpoint  string `yaml:"endpoint"`
			Region    string `yaml:"region"`
			Bucket    string `yaml:"bucket"`
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			PublicURL string `yaml:"public_url"`
		} `yaml:"s3"`
	} `yaml:"storage"`
	OnePay struct {
		BaseURL string        `yaml:"base_url"`
		MCID    string        `yaml:"mcid"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"onepay"`
	Leaderboard struct {
		RebuildSchedule string `yaml:"rebuild_schedule"`
		Size            int    `yaml:"size"`
	} `yaml:"leaderboard"`
	Upload struct {
		MaxBytes int64 `yaml:"max_bytes"`
	} `yaml:"upload"`
	Lock struct {
		Expiry time.Duration `yaml:"expiry"`
	} `yaml:"lock"`
}

// LoadConfig reads path (optional when empty or missing), applies environment
// overrides and defaults, then validates.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal config data: %w", err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		c.Server.Address = port
	}
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.Redis.Addr, "REDIS_ADDR")
	set(&c.Redis.Password, "REDIS_PASSWORD")
	set(&c.JWT.Secret, "JWT_SECRET")
	set(&c.Storage.Driver, "STORAGE_DRIVER")
	set(&c.Storage.S3.Endpoint, "S3_ENDPOINT")
	set(&c.Storage.S3.Region, "S3_REGION")
	set(&c.Storage.S3.Bucket, "S3_BUCKET")
	set(&c.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	set(&c.Storage.S3.SecretKey, "S3_SECRET_KEY")
	set(&c.OnePay.BaseURL, "ONEPAY_BASE_URL")
	set(&c.OnePay.MCID, "ONEPAY_MCID")
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.JWT.TTL <= 0 {
		c.JWT.TTL = DefaultJWTTTL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultUploadDir
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = DefaultUploadBaseURL
	}
	if c.OnePay.BaseURL == "" {
		c.OnePay.BaseURL = DefaultOnePayBaseURL
	}
	if c.OnePay.Timeout <= 0 {
		c.OnePay.Timeout = DefaultOnePayTimeout
	}
	if c.Leaderboard.RebuildSchedule == "" {
		c.Leaderboard.RebuildSchedule = DefaultRebuildSchedule
	}
	if c.Leaderboard.Size <= 0 {
		c.Leaderboard.Size = DefaultLeaderboardSize
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = DefaultUploadLimit
	}
	if c.Lock.Expiry <= 0 {
		c.Lock.Expiry = DefaultLockExpiry
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt secret is required"))
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("s3 bucket is required"))
		}
		if c.Storage.S3.Region == "" {
			errs = append(errs, errors.New("s3 region is required"))
		}
		if c.Storage.S3.AccessKey == "" || c.Storage.S3.SecretKey == "" {
			errs = append(errs, errors.New("s3 credentials are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
