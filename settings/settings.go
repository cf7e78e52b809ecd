// Package settings holds the immutable configuration snapshot the server
// is started with. main assembles it from CLI flags and environment
// variables; everything downstream reads it, nothing mutates it.
package settings

import (
	"os"
	"time"
)

// APIKeyEnv is the environment variable holding the LLM API key. Secrets
// never travel through flags.
const APIKeyEnv = "PROMPTCTX_API_KEY"

// Settings is the startup configuration snapshot.
type Settings struct {
	// Content scanning
	ContentRoots       []string
	ExcludedDirNames   []string
	IncludedExtensions []string
	CustomPatterns     []string
	UseGitignore       bool
	StripDocComments   bool
	MaxContextTokens   int
	MaxFileSizeBytes   int64

	// Conversation
	MaxWindowMessages int
	Language          string

	// LLM provider
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	RequestTimeout time.Duration
	MaxRetries     int

	// Server
	SyncIntervalSeconds int
	LogLevel            string
	LogFile             string
}

// Default returns the settings baseline before flags are applied.
func Default() Settings {
	return Settings{
		UseGitignore:        true,
		StripDocComments:    false,
		MaxContextTokens:    32768,
		MaxFileSizeBytes:    1024 * 1024,
		MaxWindowMessages:   10,
		Language:            "",
		APIKey:              os.Getenv(APIKeyEnv),
		BaseURL:             "https://api.openai.com/v1",
		Model:               "gpt-4o-mini",
		Temperature:         0.2,
		RequestTimeout:      120 * time.Second,
		MaxRetries:          2,
		SyncIntervalSeconds: 300,
		LogLevel:            "info",
	}
}
