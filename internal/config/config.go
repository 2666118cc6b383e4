package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings for the service.
// Values come from LUCIDFRAME_* environment variables with sensible
// defaults; a .env file is loaded by the caller before Load runs.
type Config struct {
	Port string

	// TempDir is the root under which every job gets its own staging
	// directory. Result downloads are refused for paths outside it.
	TempDir string

	// External tool locations. Bare names are resolved via PATH.
	FFmpegPath     string
	FFprobePath    string
	RealesrganPath string
	ModelsDir      string

	// MaxJobs bounds how many job records the registry tracks in total.
	// MaxConcurrentJobs bounds how many video pipelines may run at once.
	MaxJobs           int
	MaxConcurrentJobs int

	// JobTTL is how long a job record (and its staging directory) is kept,
	// refreshed once more when the job reaches a terminal state.
	JobTTL time.Duration

	// ReclaimInterval is the cleanup loop's tick. OrphanMaxAge is the
	// minimum age before an untracked staging directory is swept.
	ReclaimInterval time.Duration
	OrphanMaxAge    time.Duration

	CORSOrigins []string
}

// Load builds a Config from the environment.
func Load() *Config {
	cfg := &Config{
		Port:              getenv("PORT", "8000"),
		TempDir:           getenv("LUCIDFRAME_TEMP_DIR", filepath.Join("data", "tmp")),
		FFmpegPath:        getenv("LUCIDFRAME_FFMPEG", "ffmpeg"),
		FFprobePath:       getenv("LUCIDFRAME_FFPROBE", "ffprobe"),
		RealesrganPath:    getenv("LUCIDFRAME_REALESRGAN", "realesrgan-ncnn-vulkan"),
		ModelsDir:         getenv("LUCIDFRAME_MODELS_DIR", "models"),
		MaxJobs:           getenvInt("LUCIDFRAME_MAX_JOBS", 32),
		MaxConcurrentJobs: getenvInt("LUCIDFRAME_MAX_CONCURRENT_JOBS", 1),
		JobTTL:            getenvDuration("LUCIDFRAME_JOB_TTL", 2*time.Hour),
		ReclaimInterval:   getenvDuration("LUCIDFRAME_RECLAIM_INTERVAL", 5*time.Minute),
		OrphanMaxAge:      getenvDuration("LUCIDFRAME_ORPHAN_MAX_AGE", 24*time.Hour),
	}

	origins := getenv("LUCIDFRAME_CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
