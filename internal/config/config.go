package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Paths         PathsConfig         `yaml:"paths"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`

	// Origins allowed to call /api; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type TranscriptionConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type PipelineConfig struct {
	ChunkDuration         time.Duration `yaml:"chunk_duration"`
	// SingleShot sends the whole recording as one segment.
	SingleShot            bool          `yaml:"single_shot"`
	MaxConcurrentSegments int           `yaml:"max_concurrent_segments"`
	TempDir               string        `yaml:"temp_dir"`
}

type FFmpegConfig struct {
	Binary     string `yaml:"binary"`
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Secrets holds the credentials for the two remote services.
type Secrets struct {
	GroqAPIKey    string
	GeminiAPIKeys []string
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadSecrets reads API keys from the environment. Both are required.
func LoadSecrets() (Secrets, error) {
	groq := strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	if groq == "" {
		return Secrets{}, fmt.Errorf("GROQ_API_KEY is required")
	}

	var keys []string
	for _, k := range strings.Split(os.Getenv("GEMINI_API_KEY"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return Secrets{}, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return Secrets{GroqAPIKey: groq, GeminiAPIKeys: keys}, nil
}

func (c *Config) Validate() error {
	if c.Pipeline.ChunkDuration < 0 {
		return fmt.Errorf("pipeline.chunk_duration must not be negative")
	}
	if c.Pipeline.MaxConcurrentSegments < 0 {
		return fmt.Errorf("pipeline.max_concurrent_segments must not be negative")
	}
	if c.FFmpeg.SampleRate < 0 || c.FFmpeg.Channels < 0 {
		return fmt.Errorf("ffmpeg.sample_rate and ffmpeg.channels must not be negative")
	}
	if c.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must not be negative")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 200
	}
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-large-v3"
	}
	if c.Transcription.Timeout == 0 {
		c.Transcription.Timeout = 5 * time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Pipeline.ChunkDuration == 0 {
		c.Pipeline.ChunkDuration = 2 * time.Minute
	}
	if c.Pipeline.MaxConcurrentSegments == 0 {
		c.Pipeline.MaxConcurrentSegments = 4
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}

// Default returns a config with every default applied. Used when no config
// file is present.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// SegmentDuration is the chunk length handed to the splitter; zero disables
// chunking.
func (c *Config) SegmentDuration() time.Duration {
	if c.Pipeline.SingleShot {
		return 0
	}
	return c.Pipeline.ChunkDuration
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB * 1024 * 1024
}
