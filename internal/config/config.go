// Package config provides YAML-based configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported OCR engines.
const (
	EngineGosseract    = "gosseract"
	EngineTesseractCLI = "tesseract-cli"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	OCR           OCRConfig           `yaml:"ocr"`
	ProcessingLog ProcessingLogConfig `yaml:"processingLog"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int      `yaml:"port"`
	BindAddress          string   `yaml:"bindAddress"`
	AllowOrigins         []string `yaml:"allowOrigins"`
	ReadTimeout          int      `yaml:"readTimeoutSeconds"`
	WriteTimeout         int      `yaml:"writeTimeoutSeconds"`
	IdleTimeout          int      `yaml:"idleTimeoutSeconds"`
	BodyLimit            string   `yaml:"bodyLimit"`
	EnableRequestLogging bool     `yaml:"enableRequestLogging"`
}

// StorageConfig contains temporary upload storage settings
type StorageConfig struct {
	UploadsDirectory     string   `yaml:"uploadsDirectory"`
	MaxUploadMB          int      `yaml:"maxUploadMB"`
	AllowedMimeTypes     []string `yaml:"allowedMimeTypes"`
	StaleFileMinutes     int      `yaml:"staleFileMinutes"`
	SweepIntervalMinutes int      `yaml:"sweepIntervalMinutes"`
}

// OCRConfig selects and tunes the image OCR backend
type OCRConfig struct {
	Engine          string `yaml:"engine"`
	Language        string `yaml:"language"`
	TesseractBinary string `yaml:"tesseractBinary"`
	TessdataDir     string `yaml:"tessdataDir"`
}

// ProcessingLogConfig controls the DuckDB processing log
type ProcessingLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls application logs
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:                 5000,
			BindAddress:          "0.0.0.0",
			AllowOrigins:         []string{"http://localhost:3000", "http://127.0.0.1:3000"},
			ReadTimeout:          30,
			WriteTimeout:         120,
			IdleTimeout:          120,
			BodyLimit:            "12M",
			EnableRequestLogging: true,
		},
		Storage: StorageConfig{
			UploadsDirectory:     "./uploads",
			MaxUploadMB:          10,
			AllowedMimeTypes:     []string{"application/pdf", "image/jpeg", "image/jpg", "image/png"},
			StaleFileMinutes:     60,
			SweepIntervalMinutes: 10,
		},
		OCR: OCRConfig{
			Engine:          EngineGosseract,
			Language:        "eng",
			TesseractBinary: "tesseract",
		},
		ProcessingLog: ProcessingLogConfig{
			Enabled: true,
			Path:    "./data/processing.duckdb",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is
// created with the defaults.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Keys absent from the file keep their defaults.
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Document intake service configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values the server cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.MaxUploadMB <= 0 {
		return fmt.Errorf("storage.maxUploadMB must be positive, got %d", c.Storage.MaxUploadMB)
	}
	switch c.OCR.Engine {
	case EngineGosseract, EngineTesseractCLI:
	default:
		return fmt.Errorf("unknown ocr engine %q (want %s or %s)", c.OCR.Engine, EngineGosseract, EngineTesseractCLI)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		c.Storage.UploadsDirectory = dir
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		c.OCR.Engine = engine
	}

	// Same variable libtesseract itself reads.
	if prefix := os.Getenv("TESSDATA_PREFIX"); prefix != "" {
		c.OCR.TessdataDir = prefix
	}

	if path := os.Getenv("PROCESSING_LOG_PATH"); path != "" {
		c.ProcessingLog.Path = path
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(configDir, c.Storage.UploadsDirectory)
	}
	if c.ProcessingLog.Path != "" && !filepath.IsAbs(c.ProcessingLog.Path) {
		c.ProcessingLog.Path = filepath.Join(configDir, c.ProcessingLog.Path)
	}
}

// GetUploadDir returns the uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{c.Storage.UploadsDirectory}
	if c.ProcessingLog.Enabled && c.ProcessingLog.Path != "" {
		dirs = append(dirs, filepath.Dir(c.ProcessingLog.Path))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
