package config

import "time"

// PreviewConfig controls how long an attached screen image is kept between
// a failed submission and the next attempt. Entries live in Redis when a
// client is available and in process memory otherwise.
type PreviewConfig struct {
	TTL      time.Duration
	Prefix   string
	MaxBytes int64
}

// LoadPreviewConfig reads PREVIEW_* variables. MaxBytes also bounds the
// multipart body accepted by the screen form.
func LoadPreviewConfig() PreviewConfig {
	cfg := PreviewConfig{
		TTL:      envDur("PREVIEW_TTL", 30*time.Minute),
		Prefix:   envStr("PREVIEW_PREFIX", "preview"),
		MaxBytes: int64(envInt("PREVIEW_MAX_BYTES", 10<<20)),
	}
	if cfg.TTL < time.Minute {
		cfg.TTL = time.Minute
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	return cfg
}
