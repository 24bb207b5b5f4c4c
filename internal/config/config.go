package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	Port      int              `json:"port"`
	LogConfig logger.LogConfig `json:"log_config"`
	AI        AIConfig         `json:"ai"`
	Chunking  ChunkingConfig   `json:"chunking"`
	Scrape    ScrapeConfig     `json:"scrape"`
	Archive   ArchiveConfig    `json:"archive"`
	Schedule  ScheduleConfig   `json:"schedule"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIConfig struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
	BatchSize  int         `json:"batch_size"`
	Data       interface{} `json:"data"`
}

type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

type ScrapeConfig struct {
	ActsBaseURL        string  `json:"acts_base_url"`
	RegulationsBaseURL string  `json:"regulations_base_url"`
	CasesBaseURL       string  `json:"cases_base_url"`
	Jurisdiction       string  `json:"jurisdiction"`
	MaxRetries         int     `json:"max_retries"`
	RetryBackoffFactor float64 `json:"retry_backoff_factor"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
}

type ArchiveConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

type ScheduleConfig struct {
	IngestSpec      string `json:"ingest_spec"`
	EmbeddingSpec   string `json:"embedding_spec"`
	CacheMaxAgeDays int    `json:"cache_max_age_days"`
	CacheSpec       string `json:"cache_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database.dsn or database.host/dbname is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Port == 0 {
		cfg.Port = 8750
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "text-embedding-3-small"
	}
	if cfg.AI.Dimensions == 0 {
		cfg.AI.Dimensions = 1536
	}
	if cfg.AI.BatchSize == 0 {
		cfg.AI.BatchSize = 100
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return nil, fmt.Errorf("chunking.chunk_overlap must be smaller than chunk_size")
	}
	if cfg.Scrape.Jurisdiction == "" {
		cfg.Scrape.Jurisdiction = "JM"
	}
	if cfg.Scrape.MaxRetries == 0 {
		cfg.Scrape.MaxRetries = 3
	}
	if cfg.Scrape.RetryBackoffFactor == 0 {
		cfg.Scrape.RetryBackoffFactor = 2.0
	}
	if cfg.Scrape.TimeoutSeconds == 0 {
		cfg.Scrape.TimeoutSeconds = 30
	}
	switch cfg.Archive.Type {
	case "":
		// archiving disabled
	case "local":
		if cfg.Archive.Dir == "" {
			return nil, fmt.Errorf("archive.dir is required for local archive")
		}
	case "s3":
		if cfg.Archive.S3.Endpoint == "" || cfg.Archive.S3.Bucket == "" || cfg.Archive.S3.SecretID == "" || cfg.Archive.S3.SecretKey == "" {
			return nil, fmt.Errorf("archive.s3 endpoint/bucket/secret_id/secret_key are required for s3 archive")
		}
		if cfg.Archive.S3.Region == "" {
			cfg.Archive.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("archive.type must be local or s3")
	}
	return &cfg, nil
}
