package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port          int    `envconfig:"PORT" default:"3000"`
	Environment   string `envconfig:"ENV" default:"development"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`

	// Database. Empty falls back to the in-memory store.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Security
	QRSigningSecret   string `envconfig:"QR_SIGNING_SECRET" required:"true"`
	FaceSigningSecret string `envconfig:"FACE_SIGNING_SECRET" required:"true"`

	// Geofence
	GeofenceMeters float64 `envconfig:"GEOFENCE_METERS" default:"50"`

	// Face engine
	FaceDataDir         string        `envconfig:"FACE_DATA_DIR" default:"./known_faces"`
	FaceBackend         string        `envconfig:"FACE_BACKEND" default:"encoding"`
	FaceCascadeFile     string        `envconfig:"FACE_CASCADE_FILE"`
	HistogramThreshold  float64       `envconfig:"FACE_CONFIDENCE_THRESHOLD" default:"70"`
	EncodingTolerance   float64       `envconfig:"FACE_MATCH_TOLERANCE" default:"0.6"`
	SimilarityThreshold float64       `envconfig:"FACE_SIMILARITY_THRESHOLD" default:"0.38"`
	FaceTokenTTL        time.Duration `envconfig:"FACE_TOKEN_TTL" default:"120s"`
	FaceTokenStrict     bool          `envconfig:"FACE_TOKEN_STRICT" default:"true"`
	FaceSoftAccept      bool          `envconfig:"FACE_SOFT_ACCEPT" default:"false"`
}

// Load reads .env (when present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
