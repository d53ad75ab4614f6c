package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		APIKeys        []string `yaml:"apiKeys"`        // kosong = endpoint terbuka
		AllowedOrigins []string `yaml:"allowedOrigins"` // kosong = semua origin
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Provider struct {
		BaseURL string `yaml:"baseURL"`
		APIKey  string `yaml:"apiKey"`
	} `yaml:"provider"`

	Pipeline struct {
		PollIntervalSeconds  int `yaml:"pollIntervalSeconds"`  // jeda poll request QUEUED
		CheckIntervalSeconds int `yaml:"checkIntervalSeconds"` // jeda cek status export job
		MaxWaitSeconds       int `yaml:"maxWaitSeconds"`       // plafon tunggu export job
		Workers              int `yaml:"workers"`              // worker pool eksekusi request
		DownloadWorkers      int `yaml:"downloadWorkers"`      // download paralel dari staging
		ChunkSize            int `yaml:"chunkSize"`            // jendela inferensi (piksel)
	} `yaml:"pipeline"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	return &cfg, nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// PollInterval durasi poll scheduler (0 = default scheduler)
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Pipeline.PollIntervalSeconds) * time.Second
}

// CheckInterval durasi antar cek status export job
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Pipeline.CheckIntervalSeconds) * time.Second
}

// MaxWait plafon tunggu export job
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.Pipeline.MaxWaitSeconds) * time.Second
}
