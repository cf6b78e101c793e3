package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database    DatabaseConfig
	Embedder    EmbedderConfig
	Recognition RecognitionConfig
	Web         WebConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MariaDBDSN   string // MariaDB DSN, alternative backend (e.g. user:pass@tcp(host:3306)/facegate)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type EmbedderConfig struct {
	URL            string // Face detector/embedder service URL (e.g. http://localhost:5000)
	TimeoutSeconds int    // HTTP timeout for detect calls (default 15)
	MaxFrameEdge   int    // Frames with a longer edge are downscaled before upload (default 1280)
}

// RecognitionConfig holds the decision pipeline thresholds.
// All values are fixed at startup; there is no dynamic reconfiguration.
type RecognitionConfig struct {
	EmbeddingDim int // Face embedding dimension (default 128)

	// DistanceThreshold is the global cosine-distance gate. Matches above it
	// are rejected outright regardless of per-identity calibration.
	DistanceThreshold float64
	// StrictFallback applies to identities without a calibrated profile.
	// Stricter than DistanceThreshold since no per-identity data exists.
	StrictFallback float64
	// Margin is the minimum gap required between the best and second-best
	// candidate distances. A smaller gap means the match is ambiguous.
	Margin float64

	WindowSize     int // Sliding window length for temporal consensus (default 5)
	ConsensusCount int // Verified observations required within the window (default 3)
	UnknownFrames  int // Full-window rejection rounds before emitting UNKNOWN (default 3)

	CacheTTL time.Duration // Gallery snapshot lifetime (default 10m)

	LearningThreshold       float64 // Minimum confidence for active learning (default 0.92)
	MaxEmbeddingsPerStudent int     // Stored sample cap per student (default 20)

	ProfilesPath string // Path to the identity profiles YAML artifact (optional)
}

type WebConfig struct {
	Port int
	Host string
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a non-negative float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MariaDBDSN:   os.Getenv("MARIADB_DSN"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Embedder: EmbedderConfig{
			URL:            os.Getenv("EMBEDDER_URL"),
			TimeoutSeconds: envInt("EMBEDDER_TIMEOUT_SECONDS", 15),
			MaxFrameEdge:   envInt("EMBEDDER_MAX_FRAME_EDGE", 1280),
		},
		Recognition: RecognitionConfig{
			EmbeddingDim:            envInt("FACEGATE_EMBEDDING_DIM", 128),
			DistanceThreshold:       envFloat("FACEGATE_DIST_THRESHOLD", 0.32),
			StrictFallback:          envFloat("FACEGATE_STRICT_FALLBACK", 0.25),
			Margin:                  envFloat("FACEGATE_MARGIN", 0.05),
			WindowSize:              envInt("FACEGATE_WINDOW_SIZE", 5),
			ConsensusCount:          envInt("FACEGATE_CONSENSUS_COUNT", 3),
			UnknownFrames:           envInt("FACEGATE_UNKNOWN_FRAMES", 3),
			CacheTTL:                time.Duration(envInt("FACEGATE_CACHE_TTL_MINUTES", 10)) * time.Minute,
			LearningThreshold:       envFloat("FACEGATE_LEARNING_THRESHOLD", 0.92),
			MaxEmbeddingsPerStudent: envInt("FACEGATE_MAX_EMBEDDINGS_PER_STUDENT", 20),
			ProfilesPath:            os.Getenv("FACEGATE_PROFILES_PATH"),
		},
		Web: WebConfig{
			Port: envInt("WEB_PORT", 8080),
			Host: envString("WEB_HOST", "0.0.0.0"),
		},
	}
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}
