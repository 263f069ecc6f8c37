package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"waypoint/internal/infrastructure/broker"
	"waypoint/internal/infrastructure/cache"
	"waypoint/internal/infrastructure/database"
	"waypoint/internal/infrastructure/geocoder"
	"waypoint/internal/infrastructure/location"
	"waypoint/internal/infrastructure/mediacache"
	"waypoint/internal/infrastructure/minio"
	"waypoint/pkg/logger"
)

// Config represents the configs used by services on system.
type Config struct {
	Environment     string                 `yaml:"environment"`
	Default         DefaultConfig          `yaml:"default"`
	Capture         CaptureConfig          `yaml:"capture"`
	Auth            AuthConfig             `yaml:"auth"`
	MinIOClient     minio.ClientConfig     `yaml:"minio_client"`
	MinIOUploader   minio.UploaderConfig   `yaml:"minio_uploader"`
	MinIORemover    minio.RemoverConfig    `yaml:"minio_remover"`
	MinIOResolver   minio.ResolverConfig   `yaml:"minio_resolver"`
	DBConfig        database.Config        `yaml:"db_config"`
	BrokerConfig    broker.Config          `yaml:"redis_broker_config"`
	PublisherConfig broker.PublisherConfig `yaml:"publisher_config"`
	CacheConfig     cache.Config           `yaml:"redis_cache_config"`
	Location        location.Config        `yaml:"location"`
	Geocoder        geocoder.Config        `yaml:"geocoder"`
	MediaCache      mediacache.Config      `yaml:"media_cache"`
	Logger          logger.Config          `yaml:"logger"`
}

type DefaultConfig struct {
	Address        string `yaml:"address"`
	PublicBaseURL  string `yaml:"public_base_url"`
	HealthGRPCPort int    `yaml:"health_grpc_port"`
}

type CaptureConfig struct {
	SessionTTL    int64 `yaml:"session_ttl_in_s"`
	SweepInterval int64 `yaml:"sweep_interval_in_s"`
}

type AuthConfig struct {
	Secret   string
	TokenTTL int64 `yaml:"token_ttl_in_s"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}
	defer file.Close()

	config := &Config{}

	decoder := yaml.NewDecoder(file)

	if err := decoder.Decode(config); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	if config.Environment != "prod" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, Error{
				reason: err.Error(),
			}
		}
	}

	config.MinIOClient.AccessKey = os.Getenv("MINIO_ROOT_USER")
	config.MinIOClient.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	config.DBConfig.URI = os.Getenv("DATABASE_URI")
	config.BrokerConfig.URI = os.Getenv("BROKER_URI")
	config.CacheConfig.URI = os.Getenv("CACHE_URI")
	config.Auth.Secret = os.Getenv("JWT_SECRET")

	if config.CacheConfig.URI == "" {
		config.CacheConfig.URI = config.BrokerConfig.URI
	}

	if err = config.basicCheck(); err != nil {
		return nil, Error{
			reason: err.Error(),
		}
	}

	return config, nil
}

// basicCheck validates the basic stuff in config and fills defaults.
func (c *Config) basicCheck() error {
	if c.Default.Address == "" {
		c.Default.Address = ":8080"
	}
	if c.Default.PublicBaseURL == "" {
		c.Default.PublicBaseURL = "http://localhost" + c.Default.Address
	}
	c.Default.PublicBaseURL = strings.TrimSuffix(c.Default.PublicBaseURL, "/")
	if !strings.Contains(c.Default.PublicBaseURL, "://") {
		c.Default.PublicBaseURL = "http://" + c.Default.PublicBaseURL
	}
	if c.Capture.SessionTTL <= 0 {
		c.Capture.SessionTTL = 1800
	}
	if c.Capture.SweepInterval <= 0 {
		c.Capture.SweepInterval = 60
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 86400
	}
	if c.Location.Timeout <= 0 {
		c.Location.Timeout = location.DefaultTimeout
	}
	if c.Location.MaxFixAge <= 0 {
		c.Location.MaxFixAge = location.DefaultMaxFixAge
	}
	if c.MinIORemover.Timeout <= 0 {
		c.MinIORemover.Timeout = 10000
	}
	if c.MinIOResolver.Timeout <= 0 {
		c.MinIOResolver.Timeout = 5000
	}
	if c.MinIOResolver.Expiry <= 0 {
		c.MinIOResolver.Expiry = 900
	}
	if c.PublisherConfig.Timeout <= 0 {
		c.PublisherConfig.Timeout = 2000
	}
	if c.DBConfig.ConnectionTimeout <= 0 {
		c.DBConfig.ConnectionTimeout = 10000
	}
	if c.DBConfig.QueryTimeout <= 0 {
		c.DBConfig.QueryTimeout = 5000
	}
	if c.CacheConfig.ThumbnailTTL <= 0 {
		c.CacheConfig.ThumbnailTTL = 86400
	}
	if c.Geocoder.Timeout <= 0 {
		c.Geocoder.Timeout = 5000
	}
	if c.MinIOUploader.Bucket == "" {
		return errors.New("minio_uploader.bucket is required")
	}
	if c.BrokerConfig.StreamName == "" {
		return errors.New("redis_broker_config.stream_name is required")
	}
	if c.Environment == "prod" && len(c.Auth.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in prod, got %d", len(c.Auth.Secret))
	}

	return nil
}
